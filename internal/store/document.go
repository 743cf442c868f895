package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type documentRepo struct {
	db *sql.DB
}

func (r *documentRepo) Load(ctx context.Context, userID int, course string) ([]byte, error) {
	query, args := builder().Select("document").
		From(entsql.Table(UserDocumentsTable.Name)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("course", course))).
		Query()

	var doc string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user document: %w", err)
	}
	return []byte(doc), nil
}

func (r *documentRepo) Save(ctx context.Context, userID int, course string, doc []byte) error {
	query, args := builder().Insert(UserDocumentsTable.Name).
		Columns("user_id", "course", "document", "updated_at").
		Values(userID, course, string(doc), time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("user_id", "course"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save user document: %w", err)
	}
	return nil
}
