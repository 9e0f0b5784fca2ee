package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
	"github.com/wadjakorntonsri/ctrltab/pkg/core/validation"
	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

type CollectionService struct {
	repo     ports.Repository
	owners   *Ownership
	validate *validation.Validator
	logger   *slog.Logger
}

func NewCollectionService(repo ports.Repository, logger *slog.Logger) *CollectionService {
	return &CollectionService{
		repo:     repo,
		owners:   NewOwnership(repo),
		validate: validation.New(),
		logger:   logger,
	}
}

func (s *CollectionService) ListCollections(ctx context.Context, userID int64) ([]domain.Collection, error) {
	return s.repo.ListCollections(ctx, userID)
}

func (s *CollectionService) CreateCollection(ctx context.Context, userID int64, name string, icon *string) (*domain.Collection, error) {
	if icon != nil && *icon == "" {
		icon = nil
	}
	collection := &domain.Collection{
		UserID:    userID,
		Name:      name,
		Icon:      icon,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.validate.Struct(collection); err != nil {
		return nil, err
	}

	order, err := s.repo.NextOrder(ctx, domain.GroupCollections, userID)
	if err != nil {
		return nil, err
	}
	collection.SortOrder = order

	if err := s.repo.CreateCollection(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *CollectionService) UpdateCollection(ctx context.Context, userID, id int64, patch domain.CollectionPatch) (*domain.Collection, error) {
	if err := s.owners.Require(ctx, userID, domain.EntityCollection, id); err != nil {
		return nil, err
	}
	collection, err := s.repo.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, domain.NotFound("collection not found")
	}

	if patch.Name != nil {
		collection.Name = *patch.Name
	}
	if patch.Icon != nil {
		if *patch.Icon == "" {
			collection.Icon = nil
		} else {
			icon := *patch.Icon
			collection.Icon = &icon
		}
	}
	if patch.SortOrder != nil {
		collection.SortOrder = *patch.SortOrder
	}
	if err := s.validate.Struct(collection); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCollection(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

// DeleteCollection removes the collection with all of its sections and links.
func (s *CollectionService) DeleteCollection(ctx context.Context, userID, id int64) error {
	if err := s.owners.Require(ctx, userID, domain.EntityCollection, id); err != nil {
		return err
	}
	if err := s.repo.DeleteCollection(ctx, id); err != nil {
		return err
	}
	s.logger.Info("collection deleted", "user_id", userID, "collection_id", id)
	return nil
}

// ReorderCollections assigns positions 0..n-1 to the given ids. Ids the user
// does not own are ignored.
func (s *CollectionService) ReorderCollections(ctx context.Context, userID int64, ids []int64) error {
	return s.repo.Reorder(ctx, domain.GroupCollections, userID, ids)
}

func (s *CollectionService) GetDashboard(ctx context.Context, userID, collectionID int64) (*domain.Dashboard, error) {
	if err := s.owners.Require(ctx, userID, domain.EntityCollection, collectionID); err != nil {
		return nil, err
	}
	collection, err := s.repo.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, domain.NotFound("collection not found")
	}

	sections, err := s.repo.ListSections(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	dashboard := &domain.Dashboard{
		Collection: *collection,
		Sections:   make([]domain.DashboardSection, 0, len(sections)),
	}
	for _, section := range sections {
		links, err := s.repo.ListLinks(ctx, section.ID)
		if err != nil {
			return nil, err
		}
		dashboard.Sections = append(dashboard.Sections, domain.DashboardSection{Section: section, Links: links})
	}
	return dashboard, nil
}

var _ ports.CollectionService = (*CollectionService)(nil)
