package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type userRepo struct {
	db *sql.DB
}

func (r *userRepo) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	now := time.Now().UTC()
	query, args := builder().Insert(UsersTable.Name).
		Columns("username", "password_hash", "created_at").
		Values(username, passwordHash, now).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create user %s: %w", username, ErrExists)
		}
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	return &User{ID: int(id), Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

func (r *userRepo) ByName(ctx context.Context, username string) (*User, error) {
	return r.one(ctx, entsql.EQ("username", username))
}

func (r *userRepo) ByID(ctx context.Context, id int) (*User, error) {
	return r.one(ctx, entsql.EQ("id", id))
}

func (r *userRepo) one(ctx context.Context, p *entsql.Predicate) (*User, error) {
	query, args := builder().Select("id", "username", "password_hash", "created_at").
		From(entsql.Table(UsersTable.Name)).
		Where(p).
		Limit(1).
		Query()

	var u User
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// isUniqueViolation matches SQLite's constraint error text; the driver's
// typed error is not part of its stable API.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
