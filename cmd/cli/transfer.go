package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

const exportVersion = 1

type exportDoc struct {
	Version     int                `json:"version" yaml:"version"`
	User        string             `json:"user" yaml:"user"`
	ExportedAt  time.Time          `json:"exported_at" yaml:"exported_at"`
	Collections []exportCollection `json:"collections" yaml:"collections"`
}

type exportCollection struct {
	Name     string          `json:"name" yaml:"name"`
	Icon     *string         `json:"icon,omitempty" yaml:"icon,omitempty"`
	Sections []exportSection `json:"sections" yaml:"sections"`
}

type exportSection struct {
	Name  string       `json:"name" yaml:"name"`
	Links []exportLink `json:"links" yaml:"links"`
}

type exportLink struct {
	Title   string  `json:"title" yaml:"title"`
	URL     string  `json:"url" yaml:"url"`
	Favicon *string `json:"favicon,omitempty" yaml:"favicon,omitempty"`
}

// transfer moves a user's tree in and out of the store through the services,
// so ordering and ownership rules apply exactly as they do over HTTP.
type transfer struct {
	repo        ports.UserRepository
	collections ports.CollectionService
	sections    ports.SectionService
	links       ports.LinkService
}

type importCounts struct {
	collections, sections, links int
}

func (t *transfer) userID(ctx context.Context, username string) (int64, error) {
	u, err := t.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, fmt.Errorf("user %q not found", username)
	}
	return u.ID, nil
}

func (t *transfer) export(ctx context.Context, username string) (*exportDoc, error) {
	uid, err := t.userID(ctx, username)
	if err != nil {
		return nil, err
	}
	collections, err := t.collections.ListCollections(ctx, uid)
	if err != nil {
		return nil, err
	}

	doc := &exportDoc{
		Version:     exportVersion,
		User:        username,
		ExportedAt:  time.Now().UTC(),
		Collections: make([]exportCollection, 0, len(collections)),
	}
	for _, c := range collections {
		dashboard, err := t.collections.GetDashboard(ctx, uid, c.ID)
		if err != nil {
			return nil, err
		}
		ec := exportCollection{Name: c.Name, Icon: c.Icon, Sections: make([]exportSection, 0, len(dashboard.Sections))}
		for _, s := range dashboard.Sections {
			es := exportSection{Name: s.Name, Links: make([]exportLink, 0, len(s.Links))}
			for _, l := range s.Links {
				es.Links = append(es.Links, exportLink{Title: l.Title, URL: l.URL, Favicon: l.Favicon})
			}
			ec.Sections = append(ec.Sections, es)
		}
		doc.Collections = append(doc.Collections, ec)
	}
	return doc, nil
}

// importTree appends the document's collections after the user's existing ones.
func (t *transfer) importTree(ctx context.Context, username string, doc *exportDoc) (importCounts, error) {
	var counts importCounts
	if doc.Version != exportVersion {
		return counts, fmt.Errorf("unsupported export version %d", doc.Version)
	}
	uid, err := t.userID(ctx, username)
	if err != nil {
		return counts, err
	}

	for _, ec := range doc.Collections {
		c, err := t.collections.CreateCollection(ctx, uid, ec.Name, ec.Icon)
		if err != nil {
			return counts, fmt.Errorf("collection %q: %w", ec.Name, err)
		}
		counts.collections++

		for _, es := range ec.Sections {
			s, err := t.sections.CreateSection(ctx, uid, c.ID, es.Name)
			if err != nil {
				return counts, fmt.Errorf("section %q: %w", es.Name, err)
			}
			counts.sections++

			for _, el := range es.Links {
				explicit := ""
				if el.Favicon != nil {
					explicit = *el.Favicon
				}
				if _, err := t.links.CreateLink(ctx, uid, s.ID, el.Title, el.URL, explicit); err != nil {
					return counts, fmt.Errorf("link %q: %w", el.Title, err)
				}
				counts.links++
			}
		}
	}
	return counts, nil
}

func encode(w io.Writer, format string, doc *exportDoc) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

func decode(r io.Reader, format string) (*exportDoc, error) {
	var doc exportDoc
	var err error
	switch format {
	case "json":
		err = json.NewDecoder(r).Decode(&doc)
	case "yaml":
		err = yaml.NewDecoder(r).Decode(&doc)
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return &doc, nil
}
