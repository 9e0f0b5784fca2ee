package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
)

// containment describes how each entity points at its parent. The top of
// the chain (no parent) holds the owning user id in column.
var containment = map[domain.Entity]struct {
	table  string
	column string
	parent domain.Entity
}{
	domain.EntityCollection: {table: "collections", column: "user_id"},
	domain.EntitySection:    {table: "sections", column: "collection_id", parent: domain.EntityCollection},
	domain.EntityLink:       {table: "links", column: "section_id", parent: domain.EntitySection},
}

var ownerQueries = map[domain.Entity]string{}

func init() {
	for entity := range containment {
		ownerQueries[entity] = ownerQuery(entity)
	}
}

// ownerQuery builds the join walk from entity up to the owning user, e.g. for
// links: SELECT t2.user_id FROM links t0 JOIN sections t1 ON t1.id = t0.section_id
// JOIN collections t2 ON t2.id = t1.collection_id WHERE t0.id = ?
func ownerQuery(entity domain.Entity) string {
	step := containment[entity]
	alias := "t0"
	from := fmt.Sprintf("FROM %s %s", step.table, alias)
	for i := 1; step.parent != 0; i++ {
		parent := containment[step.parent]
		next := fmt.Sprintf("t%d", i)
		from += fmt.Sprintf(" JOIN %s %s ON %s.id = %s.%s", parent.table, next, next, alias, step.column)
		alias, step = next, parent
	}
	return fmt.Sprintf("SELECT %s.%s %s WHERE t0.id = ?", alias, step.column, from)
}

func (r *SQLiteRepository) OwnerOf(ctx context.Context, entity domain.Entity, id int64) (int64, error) {
	query, ok := ownerQueries[entity]
	if !ok {
		return 0, fmt.Errorf("owner of %s: unknown entity", entity)
	}

	var owner sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !owner.Valid) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("owner of %s %d: %w", entity, id, err)
	}
	return owner.Int64, nil
}
