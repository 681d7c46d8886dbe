package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ChildRepository answers lookups about enrolled children.
type ChildRepository struct {
	db *sqlx.DB
}

// NewChildRepository constructs the repository.
func NewChildRepository(db *sqlx.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// Exists reports whether a child with the given id is enrolled.
func (r *ChildRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM children WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check child exists: %w", err)
	}
	return exists, nil
}
