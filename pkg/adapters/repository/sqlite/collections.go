package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
)

const collectionColumns = `id, COALESCE(user_id, 0), name, icon, sort_order, created_at`

func scanCollection(scan func(dest ...any) error) (*domain.Collection, error) {
	var c domain.Collection
	var icon sql.NullString
	if err := scan(&c.ID, &c.UserID, &c.Name, &icon, &c.SortOrder, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Icon = stringPtr(icon)
	return &c, nil
}

func (r *SQLiteRepository) CreateCollection(ctx context.Context, collection *domain.Collection) error {
	query := `INSERT INTO collections (user_id, name, icon, sort_order, created_at) VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, collection.UserID, collection.Name, nullString(collection.Icon),
		collection.SortOrder, collection.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert collection: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	collection.ID = id
	return nil
}

func (r *SQLiteRepository) GetCollection(ctx context.Context, id int64) (*domain.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE id = ?`

	c, err := scanCollection(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get collection %d: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCollection(ctx context.Context, collection *domain.Collection) error {
	query := `UPDATE collections SET name = ?, icon = ?, sort_order = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, collection.Name, nullString(collection.Icon), collection.SortOrder, collection.ID)
	if err != nil {
		return fmt.Errorf("update collection %d: %w", collection.ID, err)
	}
	return nil
}

// DeleteCollection removes the collection and everything below it. The
// schema cascades too; the explicit deletes keep the guarantee on
// connections where foreign keys are off.
func (r *SQLiteRepository) DeleteCollection(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM links WHERE section_id IN (SELECT id FROM sections WHERE collection_id = ?)`, id); err != nil {
			return fmt.Errorf("delete links of collection %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE collection_id = ?`, id); err != nil {
			return fmt.Errorf("delete sections of collection %d: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete collection %d: %w", id, err)
		}
		return requireAffected(res)
	})
}

func (r *SQLiteRepository) ListCollections(ctx context.Context, userID int64) ([]domain.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE user_id = ? ORDER BY sort_order, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	collections := []domain.Collection{}
	for rows.Next() {
		c, err := scanCollection(rows.Scan)
		if err != nil {
			return nil, err
		}
		collections = append(collections, *c)
	}
	return collections, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
