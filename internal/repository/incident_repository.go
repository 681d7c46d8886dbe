package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/icbf-conecta-api/internal/models"
)

// IncidentRepository reads incidents logged for children.
type IncidentRepository struct {
	db *sqlx.DB
}

// NewIncidentRepository constructs the repository.
func NewIncidentRepository(db *sqlx.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// ListByChildRange returns incidents for the child dated within [from, to].
func (r *IncidentRepository) ListByChildRange(ctx context.Context, childID string, from, to time.Time) ([]models.Incident, error) {
	const query = `SELECT id, child_id, date, category, description, created_at
FROM incidents WHERE child_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC, created_at ASC`
	var incidents []models.Incident
	if err := r.db.SelectContext(ctx, &incidents, query, childID, from, to); err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return incidents, nil
}
