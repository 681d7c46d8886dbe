package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/icbf-conecta-api/internal/models"
)

// ObservationRepository reads caregivers' daily observations.
type ObservationRepository struct {
	db *sqlx.DB
}

// NewObservationRepository constructs the repository.
func NewObservationRepository(db *sqlx.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

// ListByChildRange returns the child's observations dated within [from, to] ordered by date, each with
// its dimension assessments.
func (r *ObservationRepository) ListByChildRange(ctx context.Context, childID string, from, to time.Time) ([]models.DailyObservation, error) {
	const query = `SELECT id, child_id, date, behavior, emotional_state, rating, remark, relevant, created_at, updated_at
FROM daily_observations WHERE child_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`
	var observations []models.DailyObservation
	if err := r.db.SelectContext(ctx, &observations, query, childID, from, to); err != nil {
		return nil, fmt.Errorf("list daily observations: %w", err)
	}
	if len(observations) == 0 {
		return observations, nil
	}

	ids := make([]string, len(observations))
	for i, o := range observations {
		ids[i] = o.ID
	}
	const assessmentQuery = `SELECT a.id, a.observation_id, d.name AS dimension_name, a.performance, a.note
FROM dimension_assessments a
JOIN dimensions d ON d.id = a.dimension_id
WHERE a.observation_id = ANY($1)
ORDER BY a.observation_id, d.name, a.id`
	var assessments []models.DimensionAssessment
	if err := r.db.SelectContext(ctx, &assessments, assessmentQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list dimension assessments: %w", err)
	}

	index := make(map[string]int, len(observations))
	for i, o := range observations {
		index[o.ID] = i
	}
	for _, a := range assessments {
		if i, ok := index[a.ObservationID]; ok {
			observations[i].Assessments = append(observations[i].Assessments, a)
		}
	}
	return observations, nil
}
