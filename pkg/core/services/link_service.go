package services

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
	"github.com/wadjakorntonsri/ctrltab/pkg/core/validation"
	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

type LinkService struct {
	repo     ports.Repository
	owners   *Ownership
	favicons ports.FaviconResolver
	validate *validation.Validator
}

func NewLinkService(repo ports.Repository, favicons ports.FaviconResolver) *LinkService {
	return &LinkService{
		repo:     repo,
		owners:   NewOwnership(repo),
		favicons: favicons,
		validate: validation.New(),
	}
}

func (s *LinkService) ListLinks(ctx context.Context, userID, sectionID int64) ([]domain.Link, error) {
	if err := s.owners.Require(ctx, userID, domain.EntitySection, sectionID); err != nil {
		return nil, err
	}
	return s.repo.ListLinks(ctx, sectionID)
}

// CreateLink stores favicon verbatim when given, otherwise resolves one from url.
func (s *LinkService) CreateLink(ctx context.Context, userID, sectionID int64, title, url, favicon string) (*domain.Link, error) {
	if err := s.owners.Require(ctx, userID, domain.EntitySection, sectionID); err != nil {
		return nil, err
	}
	link := &domain.Link{SectionID: sectionID, Title: title, URL: url, CreatedAt: time.Now().UTC()}
	if err := s.validate.Struct(link); err != nil {
		return nil, err
	}
	link.Favicon = s.favicons.Resolve(ctx, url, favicon)

	order, err := s.repo.NextOrder(ctx, domain.GroupLinks, sectionID)
	if err != nil {
		return nil, err
	}
	link.SortOrder = order

	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// UpdateLink applies patch. An empty favicon re-resolves against the
// resulting url; a section move appends the link to the destination.
func (s *LinkService) UpdateLink(ctx context.Context, userID, id int64, patch domain.LinkPatch) (*domain.Link, error) {
	if err := s.owners.Require(ctx, userID, domain.EntityLink, id); err != nil {
		return nil, err
	}
	link, err := s.repo.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.NotFound("link not found")
	}

	if patch.Title != nil {
		link.Title = *patch.Title
	}
	if patch.URL != nil {
		link.URL = *patch.URL
	}
	if err := s.validate.Struct(link); err != nil {
		return nil, err
	}

	if patch.SectionID != nil && *patch.SectionID != link.SectionID {
		if err := s.owners.Require(ctx, userID, domain.EntitySection, *patch.SectionID); err != nil {
			return nil, err
		}
		order, err := s.repo.NextOrder(ctx, domain.GroupLinks, *patch.SectionID)
		if err != nil {
			return nil, err
		}
		link.SectionID = *patch.SectionID
		link.SortOrder = order
	}
	if patch.SortOrder != nil {
		link.SortOrder = *patch.SortOrder
	}
	if patch.Favicon != nil {
		link.Favicon = s.favicons.Resolve(ctx, link.URL, *patch.Favicon)
	}

	if err := s.repo.UpdateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *LinkService) DeleteLink(ctx context.Context, userID, id int64) error {
	if err := s.owners.Require(ctx, userID, domain.EntityLink, id); err != nil {
		return err
	}
	return s.repo.DeleteLink(ctx, id)
}

func (s *LinkService) ReorderLinks(ctx context.Context, userID, sectionID int64, ids []int64) error {
	if err := s.owners.Require(ctx, userID, domain.EntitySection, sectionID); err != nil {
		return err
	}
	return s.repo.Reorder(ctx, domain.GroupLinks, sectionID, ids)
}

var _ ports.LinkService = (*LinkService)(nil)
