package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/wadjakorntonsri/ctrltab/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
)

type fixture struct {
	repo        *sqlite.SQLiteRepository
	collections *CollectionService
	sections    *SectionService
	links       *LinkService
	favicons    *stubResolver
	alice, bob  *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newTestRepo(t)
	favicons := &stubResolver{}
	return &fixture{
		repo:        repo,
		collections: NewCollectionService(repo, testLogger()),
		sections:    NewSectionService(repo),
		links:       NewLinkService(repo, favicons),
		favicons:    favicons,
		alice:       seedUser(t, repo, "alice", false),
		bob:         seedUser(t, repo, "bob", false),
	}
}

// tree creates one collection with one section for user.
func (f *fixture) tree(t *testing.T, user *domain.User) (*domain.Collection, *domain.Section) {
	t.Helper()
	ctx := context.Background()
	c, err := f.collections.CreateCollection(ctx, user.ID, "Work", nil)
	if err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	s, err := f.sections.CreateSection(ctx, user.ID, c.ID, "Daily")
	if err != nil {
		t.Fatalf("CreateSection() error = %v", err)
	}
	return c, s
}

func linkTitles(links []domain.Link) []string {
	titles := make([]string, len(links))
	for i, l := range links {
		titles[i] = l.Title
	}
	return titles
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, s := f.tree(t, f.alice)
	l, err := f.links.CreateLink(ctx, f.alice.ID, s.ID, "Mail", "https://mail.example.com", "")
	if err != nil {
		t.Fatal(err)
	}

	bob := f.bob.ID
	checks := []struct {
		name string
		call func() error
	}{
		{"update collection", func() error {
			_, err := f.collections.UpdateCollection(ctx, bob, c.ID, domain.CollectionPatch{Name: strPtr("mine")})
			return err
		}},
		{"delete collection", func() error { return f.collections.DeleteCollection(ctx, bob, c.ID) }},
		{"dashboard", func() error { _, err := f.collections.GetDashboard(ctx, bob, c.ID); return err }},
		{"list sections", func() error { _, err := f.sections.ListSections(ctx, bob, c.ID); return err }},
		{"create section", func() error { _, err := f.sections.CreateSection(ctx, bob, c.ID, "x"); return err }},
		{"update section", func() error {
			_, err := f.sections.UpdateSection(ctx, bob, s.ID, domain.SectionPatch{Name: strPtr("x")})
			return err
		}},
		{"delete section", func() error { return f.sections.DeleteSection(ctx, bob, s.ID) }},
		{"reorder sections", func() error { return f.sections.ReorderSections(ctx, bob, c.ID, []int64{s.ID}) }},
		{"list links", func() error { _, err := f.links.ListLinks(ctx, bob, s.ID); return err }},
		{"create link", func() error {
			_, err := f.links.CreateLink(ctx, bob, s.ID, "x", "https://x.example", "")
			return err
		}},
		{"update link", func() error {
			_, err := f.links.UpdateLink(ctx, bob, l.ID, domain.LinkPatch{Title: strPtr("x")})
			return err
		}},
		{"delete link", func() error { return f.links.DeleteLink(ctx, bob, l.ID) }},
		{"reorder links", func() error { return f.links.ReorderLinks(ctx, bob, s.ID, []int64{l.ID}) }},
		{"missing collection", func() error { _, err := f.collections.GetDashboard(ctx, bob, 9999); return err }},
	}
	for _, tt := range checks {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("error = %v, want not found", err)
			}
		})
	}

	// bob reordering his own group with alice's id leaves alice untouched
	if err := f.collections.ReorderCollections(ctx, bob, []int64{c.ID}); err != nil {
		t.Fatal(err)
	}
	got, err := f.repo.GetLink(ctx, l.ID)
	if err != nil || got == nil || got.Title != "Mail" {
		t.Errorf("alice's link changed: %+v, %v", got, err)
	}
	bobs, _ := f.collections.ListCollections(ctx, bob)
	if len(bobs) != 0 {
		t.Errorf("bob sees %d collections, want 0", len(bobs))
	}
}

func TestCreateAppendsAfterMax(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, s := f.tree(t, f.alice)

	var ids []int64
	for i, title := range []string{"a", "b", "c"} {
		l, err := f.links.CreateLink(ctx, f.alice.ID, s.ID, title, "https://"+title+".example", "")
		if err != nil {
			t.Fatal(err)
		}
		if l.SortOrder != i {
			t.Errorf("link %s sort_order = %d, want %d", title, l.SortOrder, i)
		}
		ids = append(ids, l.ID)
	}

	if err := f.links.DeleteLink(ctx, f.alice.ID, ids[1]); err != nil {
		t.Fatal(err)
	}
	d, err := f.links.CreateLink(ctx, f.alice.ID, s.ID, "d", "https://d.example", "")
	if err != nil {
		t.Fatal(err)
	}
	if d.SortOrder != 3 {
		t.Errorf("sort_order after gap = %d, want 3", d.SortOrder)
	}

	c2, err := f.collections.CreateCollection(ctx, f.alice.ID, "Home", nil)
	if err != nil {
		t.Fatal(err)
	}
	if c2.SortOrder != 1 {
		t.Errorf("second collection sort_order = %d, want 1", c2.SortOrder)
	}
	bobs, err := f.collections.CreateCollection(ctx, f.bob.ID, "Bob's", nil)
	if err != nil {
		t.Fatal(err)
	}
	if bobs.SortOrder != 0 {
		t.Errorf("ordering leaked across users: sort_order = %d", bobs.SortOrder)
	}
}

func TestReorderLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, s := f.tree(t, f.alice)
	_, bobSection := f.tree(t, f.bob)

	var ids []int64
	for _, title := range []string{"a", "b", "c"} {
		l, err := f.links.CreateLink(ctx, f.alice.ID, s.ID, title, "https://"+title+".example", "")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, l.ID)
	}
	foreign, err := f.links.CreateLink(ctx, f.bob.ID, bobSection.ID, "z", "https://z.example", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := f.links.ReorderLinks(ctx, f.alice.ID, s.ID, []int64{ids[2], foreign.ID, ids[0], ids[1]}); err != nil {
		t.Fatalf("ReorderLinks() error = %v", err)
	}
	links, err := f.links.ListLinks(ctx, f.alice.ID, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := linkTitles(links); !equalStrings(got, []string{"c", "a", "b"}) {
		t.Errorf("order = %v, want [c a b]", got)
	}

	unchanged, _ := f.repo.GetLink(ctx, foreign.ID)
	if unchanged.SortOrder != foreign.SortOrder || unchanged.SectionID != bobSection.ID {
		t.Errorf("foreign link modified: %+v", unchanged)
	}
}

// A create racing a reorder always lands after the reordered links.
func TestReorderConcurrentWithCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, _ := f.tree(t, f.alice)

	for i := 0; i < 10; i++ {
		s, err := f.sections.CreateSection(ctx, f.alice.ID, c.ID, "Race")
		if err != nil {
			t.Fatal(err)
		}
		var ids []int64
		for _, title := range []string{"a", "b", "c"} {
			l, err := f.links.CreateLink(ctx, f.alice.ID, s.ID, title, "https://"+title+".example", "")
			if err != nil {
				t.Fatal(err)
			}
			ids = append(ids, l.ID)
		}

		var wg sync.WaitGroup
		var reorderErr, createErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			reorderErr = f.links.ReorderLinks(ctx, f.alice.ID, s.ID, []int64{ids[2], ids[0], ids[1]})
		}()
		go func() {
			defer wg.Done()
			_, createErr = f.links.CreateLink(ctx, f.alice.ID, s.ID, "d", "https://d.example", "")
		}()
		wg.Wait()
		if reorderErr != nil || createErr != nil {
			t.Fatalf("reorder error = %v, create error = %v", reorderErr, createErr)
		}

		links, err := f.links.ListLinks(ctx, f.alice.ID, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got := linkTitles(links); !equalStrings(got, []string{"c", "a", "b", "d"}) {
			t.Fatalf("iteration %d: order = %v, want [c a b d]", i, got)
		}
	}
}

func TestPartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.collections.CreateCollection(ctx, f.alice.ID, "Work", strPtr("/uploads/icons/a.png"))
	if err != nil {
		t.Fatal(err)
	}

	same, err := f.collections.UpdateCollection(ctx, f.alice.ID, c.ID, domain.CollectionPatch{})
	if err != nil {
		t.Fatal(err)
	}
	if same.Name != "Work" || same.Icon == nil || *same.Icon != "/uploads/icons/a.png" || same.SortOrder != 0 {
		t.Errorf("empty patch changed collection: %+v", same)
	}

	renamed, err := f.collections.UpdateCollection(ctx, f.alice.ID, c.ID, domain.CollectionPatch{Name: strPtr("Office")})
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Name != "Office" || renamed.Icon == nil {
		t.Errorf("rename touched other fields: %+v", renamed)
	}

	cleared, err := f.collections.UpdateCollection(ctx, f.alice.ID, c.ID, domain.CollectionPatch{Icon: strPtr("")})
	if err != nil {
		t.Fatal(err)
	}
	if cleared.Icon != nil {
		t.Errorf("icon = %q, want nil", *cleared.Icon)
	}

	_, err = f.collections.UpdateCollection(ctx, f.alice.ID, c.ID, domain.CollectionPatch{Name: strPtr("")})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty name error = %v, want validation", err)
	}

	stored, _ := f.repo.GetCollection(ctx, c.ID)
	if stored.Name != "Office" {
		t.Errorf("stored name = %q, want Office", stored.Name)
	}
}

func TestLinkFavicon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, s := f.tree(t, f.alice)

	l, err := f.links.CreateLink(ctx, f.alice.ID, s.ID, "Docs", "https://docs.example", "/uploads/icons/d.svg")
	if err != nil {
		t.Fatal(err)
	}
	if l.Favicon == nil || *l.Favicon != "/uploads/icons/d.svg" {
		t.Fatalf("explicit favicon not stored verbatim: %v", l.Favicon)
	}
	if len(f.favicons.calls) != 0 {
		t.Errorf("resolver looked up %v for an explicit favicon", f.favicons.calls)
	}

	moved, err := f.links.UpdateLink(ctx, f.alice.ID, l.ID, domain.LinkPatch{URL: strPtr("https://new.example")})
	if err != nil {
		t.Fatal(err)
	}
	if *moved.Favicon != "/uploads/icons/d.svg" {
		t.Errorf("favicon changed without being patched: %s", *moved.Favicon)
	}

	reresolved, err := f.links.UpdateLink(ctx, f.alice.ID, l.ID, domain.LinkPatch{Favicon: strPtr("")})
	if err != nil {
		t.Fatal(err)
	}
	if reresolved.Favicon == nil || *reresolved.Favicon != "icon:https://new.example" {
		t.Errorf("favicon = %v, want re-resolved from new url", reresolved.Favicon)
	}

	_, err = f.links.UpdateLink(ctx, f.alice.ID, l.ID, domain.LinkPatch{Title: strPtr("")})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty title error = %v, want validation", err)
	}
	_, err = f.links.CreateLink(ctx, f.alice.ID, s.ID, "no url", "", "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing url error = %v, want validation", err)
	}
}

func TestMoveLinkBetweenSections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, from := f.tree(t, f.alice)
	to, err := f.sections.CreateSection(ctx, f.alice.ID, c.ID, "Later")
	if err != nil {
		t.Fatal(err)
	}
	_, bobSection := f.tree(t, f.bob)

	if _, err := f.links.CreateLink(ctx, f.alice.ID, to.ID, "existing", "https://e.example", ""); err != nil {
		t.Fatal(err)
	}
	l, err := f.links.CreateLink(ctx, f.alice.ID, from.ID, "mover", "https://m.example", "")
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.links.UpdateLink(ctx, f.alice.ID, l.ID, domain.LinkPatch{SectionID: &bobSection.ID})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("move into foreign section error = %v, want not found", err)
	}

	moved, err := f.links.UpdateLink(ctx, f.alice.ID, l.ID, domain.LinkPatch{SectionID: &to.ID})
	if err != nil {
		t.Fatal(err)
	}
	if moved.SectionID != to.ID || moved.SortOrder != 1 {
		t.Errorf("moved link = section %d order %d, want section %d order 1", moved.SectionID, moved.SortOrder, to.ID)
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, first := f.tree(t, f.alice)
	second, err := f.sections.CreateSection(ctx, f.alice.ID, c.ID, "Empty")
	if err != nil {
		t.Fatal(err)
	}
	for _, title := range []string{"x", "y"} {
		if _, err := f.links.CreateLink(ctx, f.alice.ID, first.ID, title, "https://"+title+".example", ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.sections.ReorderSections(ctx, f.alice.ID, c.ID, []int64{second.ID, first.ID}); err != nil {
		t.Fatal(err)
	}

	d, err := f.collections.GetDashboard(ctx, f.alice.ID, c.ID)
	if err != nil {
		t.Fatalf("GetDashboard() error = %v", err)
	}
	if d.ID != c.ID || len(d.Sections) != 2 {
		t.Fatalf("dashboard = %+v", d)
	}
	if d.Sections[0].ID != second.ID || d.Sections[0].Links == nil || len(d.Sections[0].Links) != 0 {
		t.Errorf("first section = %+v, want the empty one with [] links", d.Sections[0])
	}
	if got := linkTitles(d.Sections[1].Links); !equalStrings(got, []string{"x", "y"}) {
		t.Errorf("links = %v, want [x y]", got)
	}
}

func TestDeleteCollectionCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, s := f.tree(t, f.alice)
	l, err := f.links.CreateLink(ctx, f.alice.ID, s.ID, "a", "https://a.example", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := f.collections.DeleteCollection(ctx, f.alice.ID, c.ID); err != nil {
		t.Fatalf("DeleteCollection() error = %v", err)
	}
	if got, _ := f.repo.GetSection(ctx, s.ID); got != nil {
		t.Errorf("section survived: %+v", got)
	}
	if got, _ := f.repo.GetLink(ctx, l.ID); got != nil {
		t.Errorf("link survived: %+v", got)
	}
	if err := f.collections.DeleteCollection(ctx, f.alice.ID, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete error = %v, want not found", err)
	}
}
