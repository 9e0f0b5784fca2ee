package services

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
	"github.com/wadjakorntonsri/ctrltab/pkg/core/validation"
	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

type SectionService struct {
	repo     ports.Repository
	owners   *Ownership
	validate *validation.Validator
}

func NewSectionService(repo ports.Repository) *SectionService {
	return &SectionService{repo: repo, owners: NewOwnership(repo), validate: validation.New()}
}

func (s *SectionService) ListSections(ctx context.Context, userID, collectionID int64) ([]domain.Section, error) {
	if err := s.owners.Require(ctx, userID, domain.EntityCollection, collectionID); err != nil {
		return nil, err
	}
	return s.repo.ListSections(ctx, collectionID)
}

func (s *SectionService) CreateSection(ctx context.Context, userID, collectionID int64, name string) (*domain.Section, error) {
	if err := s.owners.Require(ctx, userID, domain.EntityCollection, collectionID); err != nil {
		return nil, err
	}
	section := &domain.Section{CollectionID: collectionID, Name: name, CreatedAt: time.Now().UTC()}
	if err := s.validate.Struct(section); err != nil {
		return nil, err
	}

	order, err := s.repo.NextOrder(ctx, domain.GroupSections, collectionID)
	if err != nil {
		return nil, err
	}
	section.SortOrder = order

	if err := s.repo.CreateSection(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *SectionService) UpdateSection(ctx context.Context, userID, id int64, patch domain.SectionPatch) (*domain.Section, error) {
	if err := s.owners.Require(ctx, userID, domain.EntitySection, id); err != nil {
		return nil, err
	}
	section, err := s.repo.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, domain.NotFound("section not found")
	}

	if patch.Name != nil {
		section.Name = *patch.Name
	}
	if patch.SortOrder != nil {
		section.SortOrder = *patch.SortOrder
	}
	if err := s.validate.Struct(section); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSection(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *SectionService) DeleteSection(ctx context.Context, userID, id int64) error {
	if err := s.owners.Require(ctx, userID, domain.EntitySection, id); err != nil {
		return err
	}
	return s.repo.DeleteSection(ctx, id)
}

func (s *SectionService) ReorderSections(ctx context.Context, userID, collectionID int64, ids []int64) error {
	if err := s.owners.Require(ctx, userID, domain.EntityCollection, collectionID); err != nil {
		return err
	}
	return s.repo.Reorder(ctx, domain.GroupSections, collectionID, ids)
}

var _ ports.SectionService = (*SectionService)(nil)
