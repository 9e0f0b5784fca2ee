package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
)

func (r *SQLiteRepository) CreateSection(ctx context.Context, section *domain.Section) error {
	query := `INSERT INTO sections (collection_id, name, sort_order, created_at) VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, section.CollectionID, section.Name, section.SortOrder, section.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert section: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	section.ID = id
	return nil
}

func (r *SQLiteRepository) GetSection(ctx context.Context, id int64) (*domain.Section, error) {
	query := `SELECT id, collection_id, name, sort_order, created_at FROM sections WHERE id = ?`

	var s domain.Section
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.CollectionID, &s.Name, &s.SortOrder, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get section %d: %w", id, err)
	}
	return &s, nil
}

func (r *SQLiteRepository) UpdateSection(ctx context.Context, section *domain.Section) error {
	query := `UPDATE sections SET name = ?, sort_order = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, section.Name, section.SortOrder, section.ID); err != nil {
		return fmt.Errorf("update section %d: %w", section.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteSection(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE section_id = ?`, id); err != nil {
			return fmt.Errorf("delete links of section %d: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete section %d: %w", id, err)
		}
		return requireAffected(res)
	})
}

func (r *SQLiteRepository) ListSections(ctx context.Context, collectionID int64) ([]domain.Section, error) {
	query := `SELECT id, collection_id, name, sort_order, created_at
			  FROM sections WHERE collection_id = ? ORDER BY sort_order, id`

	rows, err := r.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	sections := []domain.Section{}
	for rows.Next() {
		var s domain.Section
		if err := rows.Scan(&s.ID, &s.CollectionID, &s.Name, &s.SortOrder, &s.CreatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}
