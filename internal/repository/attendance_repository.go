package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/icbf-conecta-api/internal/models"
)

// AttendanceRepository reads daily attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByChildRange returns attendance rows for the child dated within [from, to].
func (r *AttendanceRepository) ListByChildRange(ctx context.Context, childID string, from, to time.Time) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, child_id, date, status, created_at, updated_at
FROM attendance_records WHERE child_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, childID, from, to); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return records, nil
}
