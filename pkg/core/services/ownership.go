package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

// Ownership answers "does this user own that entity". A missing entity and
// an entity owned by someone else look the same to callers.
type Ownership struct {
	repo ports.OwnershipRepository
}

func NewOwnership(repo ports.OwnershipRepository) *Ownership {
	return &Ownership{repo: repo}
}

func (o *Ownership) Owns(ctx context.Context, userID int64, entity domain.Entity, id int64) (bool, error) {
	owner, err := o.repo.OwnerOf(ctx, entity, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return owner == userID, nil
}

func (o *Ownership) OwnsCollection(ctx context.Context, userID, id int64) (bool, error) {
	return o.Owns(ctx, userID, domain.EntityCollection, id)
}

func (o *Ownership) OwnsSection(ctx context.Context, userID, id int64) (bool, error) {
	return o.Owns(ctx, userID, domain.EntitySection, id)
}

func (o *Ownership) OwnsLink(ctx context.Context, userID, id int64) (bool, error) {
	return o.Owns(ctx, userID, domain.EntityLink, id)
}

// Require returns a not-found error unless userID owns the entity.
func (o *Ownership) Require(ctx context.Context, userID int64, entity domain.Entity, id int64) error {
	ok, err := o.Owns(ctx, userID, entity, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound(fmt.Sprintf("%s not found", entity))
	}
	return nil
}
