package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type loginRepo struct {
	db *sql.DB
}

func (r *loginRepo) Create(ctx context.Context, ls *LoginSession) error {
	if ls.CreatedAt.IsZero() {
		ls.CreatedAt = time.Now().UTC()
	}
	query, args := builder().Insert(LoginSessionsTable.Name).
		Columns("token", "user_id", "course", "created_at", "expires_at").
		Values(ls.Token, ls.UserID, ls.Course, ls.CreatedAt, ls.ExpiresAt.UTC()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create login session: %w", err)
	}
	return nil
}

func (r *loginRepo) Get(ctx context.Context, token string, now time.Time) (*LoginSession, error) {
	query, args := builder().Select("token", "user_id", "course", "created_at", "expires_at").
		From(entsql.Table(LoginSessionsTable.Name)).
		Where(entsql.EQ("token", token)).
		Query()

	var ls LoginSession
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&ls.Token, &ls.UserID, &ls.Course, &ls.CreatedAt, &ls.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query login session: %w", err)
	}
	if !ls.ExpiresAt.After(now) {
		return nil, ErrNotFound
	}
	return &ls, nil
}

func (r *loginRepo) SetCourse(ctx context.Context, token, course string) error {
	query, args := builder().Update(LoginSessionsTable.Name).
		Set("course", course).
		Where(entsql.EQ("token", token)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update login session: %w", err)
	}
	return nil
}

func (r *loginRepo) Delete(ctx context.Context, token string) error {
	query, args := builder().Delete(LoginSessionsTable.Name).
		Where(entsql.EQ("token", token)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete login session: %w", err)
	}
	return nil
}

func (r *loginRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args := builder().Delete(LoginSessionsTable.Name).
		Where(entsql.LTE("expires_at", now.UTC())).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
