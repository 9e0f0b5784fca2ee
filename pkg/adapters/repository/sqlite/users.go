package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
)

const userColumns = `id, username, password_hash, is_admin, preferences, created_at`

func scanUser(scan func(dest ...any) error) (*domain.User, error) {
	var u domain.User
	var prefs string
	if err := scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &prefs, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Preferences = domain.Preferences{}
	if prefs != "" {
		if err := json.Unmarshal([]byte(prefs), &u.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences of user %d: %w", u.ID, err)
		}
	}
	return &u, nil
}

func encodePreferences(p domain.Preferences) (string, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// uniqueViolation turns a username constraint failure into a conflict.
func uniqueViolation(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.Conflict("username already exists")
	}
	return err
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, user *domain.User) error {
	prefs, err := encodePreferences(user.Preferences)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (username, password_hash, is_admin, preferences, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, user.Username, user.PasswordHash, user.IsAdmin, prefs, user.CreatedAt)
	if err != nil {
		return uniqueViolation(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *SQLiteRepository) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUser(ctx, "username = ?", username)
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	prefs, err := encodePreferences(user.Preferences)
	if err != nil {
		return err
	}

	query := `UPDATE users SET username = ?, password_hash = ?, is_admin = ?, preferences = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query, user.Username, user.PasswordHash, user.IsAdmin, prefs, user.ID)
	return uniqueViolation(err)
}

// DeleteUser removes the user together with the whole tree they own.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		steps := []string{
			`DELETE FROM links WHERE section_id IN (
				SELECT s.id FROM sections s JOIN collections c ON c.id = s.collection_id WHERE c.user_id = ?)`,
			`DELETE FROM sections WHERE collection_id IN (SELECT id FROM collections WHERE user_id = ?)`,
			`DELETE FROM collections WHERE user_id = ?`,
		}
		for _, step := range steps {
			if _, err := tx.ExecContext(ctx, step, id); err != nil {
				return fmt.Errorf("delete data of user %d: %w", id, err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		return requireAffected(res)
	})
}

func (r *SQLiteRepository) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_admin = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// FirstAdmin returns the oldest admin account, or nil when there is none.
func (r *SQLiteRepository) FirstAdmin(ctx context.Context) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_admin = 1 ORDER BY id LIMIT 1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first admin: %w", err)
	}
	return u, nil
}

// AdoptOrphanCollections hands collections without an owner to userID.
func (r *SQLiteRepository) AdoptOrphanCollections(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE collections SET user_id = ? WHERE user_id IS NULL`, userID)
	if err != nil {
		return 0, fmt.Errorf("adopt collections: %w", err)
	}
	return res.RowsAffected()
}
