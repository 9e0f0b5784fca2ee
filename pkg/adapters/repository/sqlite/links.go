package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
)

const linkColumns = `id, section_id, title, url, favicon, sort_order, created_at`

func scanLink(scan func(dest ...any) error) (*domain.Link, error) {
	var l domain.Link
	var favicon sql.NullString
	if err := scan(&l.ID, &l.SectionID, &l.Title, &l.URL, &favicon, &l.SortOrder, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Favicon = stringPtr(favicon)
	return &l, nil
}

func (r *SQLiteRepository) CreateLink(ctx context.Context, link *domain.Link) error {
	query := `INSERT INTO links (section_id, title, url, favicon, sort_order, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, link.SectionID, link.Title, link.URL, nullString(link.Favicon),
		link.SortOrder, link.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *SQLiteRepository) GetLink(ctx context.Context, id int64) (*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = ?`

	l, err := scanLink(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get link %d: %w", id, err)
	}
	return l, nil
}

func (r *SQLiteRepository) UpdateLink(ctx context.Context, link *domain.Link) error {
	query := `UPDATE links SET section_id = ?, title = ?, url = ?, favicon = ?, sort_order = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, link.SectionID, link.Title, link.URL, nullString(link.Favicon),
		link.SortOrder, link.ID)
	if err != nil {
		return fmt.Errorf("update link %d: %w", link.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteLink(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete link %d: %w", id, err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) ListLinks(ctx context.Context, sectionID int64) ([]domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE section_id = ? ORDER BY sort_order, id`

	rows, err := r.db.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		l, err := scanLink(rows.Scan)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}
