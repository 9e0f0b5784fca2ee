package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
)

var siblingGroups = map[domain.SiblingGroup]struct {
	table        string
	parentColumn string
}{
	domain.GroupCollections: {table: "collections", parentColumn: "user_id"},
	domain.GroupSections:    {table: "sections", parentColumn: "collection_id"},
	domain.GroupLinks:       {table: "links", parentColumn: "section_id"},
}

func nextOrder(ctx context.Context, q querier, group domain.SiblingGroup, parentID int64) (int, error) {
	g, ok := siblingGroups[group]
	if !ok {
		return 0, fmt.Errorf("next order: unknown sibling group %d", group)
	}
	query := fmt.Sprintf(`SELECT COALESCE(MAX(sort_order), -1) + 1 FROM %s WHERE %s = ?`, g.table, g.parentColumn)

	var next int
	if err := q.QueryRowContext(ctx, query, parentID).Scan(&next); err != nil {
		return 0, fmt.Errorf("next order in %s: %w", g.table, err)
	}
	return next, nil
}

// NextOrder returns max(sort_order)+1 within the group, or 0 when it is empty.
func (r *SQLiteRepository) NextOrder(ctx context.Context, group domain.SiblingGroup, parentID int64) (int, error) {
	return nextOrder(ctx, r.db, group, parentID)
}

// Reorder sets sort_order = position for each id, all in one transaction.
// Ids that are not in the group match no row and are skipped.
func (r *SQLiteRepository) Reorder(ctx context.Context, group domain.SiblingGroup, parentID int64, ids []int64) error {
	g, ok := siblingGroups[group]
	if !ok {
		return fmt.Errorf("reorder: unknown sibling group %d", group)
	}
	query := fmt.Sprintf(`UPDATE %s SET sort_order = ? WHERE id = ? AND %s = ?`, g.table, g.parentColumn)

	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("reorder %s: %w", g.table, err)
		}
		defer stmt.Close()

		for i, id := range ids {
			if _, err := stmt.ExecContext(ctx, i, id, parentID); err != nil {
				return fmt.Errorf("reorder %s id %d: %w", g.table, id, err)
			}
		}
		return nil
	})
}
