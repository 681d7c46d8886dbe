package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/icbf-conecta-api/internal/models"
	"github.com/noah-isme/icbf-conecta-api/pkg/database"
)

const evaluationUniqueConstraint = "monthly_evaluations_child_month_key"

var (
	// ErrDuplicateEvaluation is returned when an evaluation already exists for the child and month.
	ErrDuplicateEvaluation = errors.New("evaluation already exists for child and month")
	// ErrStaleVersion is returned when an update targets an outdated row version.
	ErrStaleVersion = errors.New("evaluation version is stale")
)

const evaluationColumns = `id, child_id, month_end, achievement_level, trend, dominant_participation, dominant_behavior,
attendance_percentage, cognitive_narrative, communicative_narrative, socio_affective_narrative, physical_motor_narrative,
strengths, improvement_areas, alerts, conclusion, teacher_notes, personal_recommendations, version, created_at, updated_at`

// EvaluationRepository persists monthly development evaluations.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository constructs the repository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// FindByID returns the evaluation or nil when it does not exist.
func (r *EvaluationRepository) FindByID(ctx context.Context, id string) (*models.MonthlyEvaluation, error) {
	query := fmt.Sprintf(`SELECT %s FROM monthly_evaluations WHERE id = $1`, evaluationColumns)
	var eval models.MonthlyEvaluation
	if err := r.db.GetContext(ctx, &eval, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find evaluation: %w", err)
	}
	return &eval, nil
}

// FindByChildAndMonth returns the evaluation for the exact month-end date or nil.
func (r *EvaluationRepository) FindByChildAndMonth(ctx context.Context, childID string, monthEnd time.Time) (*models.MonthlyEvaluation, error) {
	query := fmt.Sprintf(`SELECT %s FROM monthly_evaluations WHERE child_id = $1 AND month_end = $2`, evaluationColumns)
	var eval models.MonthlyEvaluation
	if err := r.db.GetContext(ctx, &eval, query, childID, monthEnd); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find evaluation by child and month: %w", err)
	}
	return &eval, nil
}

// List returns evaluations newest first, or oldest first when the filter carries a date range.
func (r *EvaluationRepository) List(ctx context.Context, filter models.EvaluationFilter) ([]models.MonthlyEvaluation, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ChildID != "" {
		where = append(where, fmt.Sprintf("child_id = $%d", len(args)+1))
		args = append(args, filter.ChildID)
	}
	if filter.MonthEnd != nil {
		where = append(where, fmt.Sprintf("month_end = $%d", len(args)+1))
		args = append(args, *filter.MonthEnd)
	}
	switch {
	case filter.From != nil && filter.To != nil:
		where = append(where, fmt.Sprintf("month_end BETWEEN $%d AND $%d", len(args)+1, len(args)+2))
		args = append(args, *filter.From, *filter.To)
	case filter.From != nil:
		where = append(where, fmt.Sprintf("month_end >= $%d", len(args)+1))
		args = append(args, *filter.From)
	case filter.To != nil:
		where = append(where, fmt.Sprintf("month_end <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	whereClause := strings.Join(where, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	order := "month_end DESC, child_id"
	if filter.Chronological() {
		order = "month_end ASC, child_id"
	}

	query := fmt.Sprintf(`SELECT %s FROM monthly_evaluations WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		evaluationColumns, whereClause, order, size, offset)
	var items []models.MonthlyEvaluation
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list evaluations: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM monthly_evaluations WHERE %s", whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count evaluations: %w", err)
	}
	return items, total, nil
}

// Create inserts a new evaluation at version 1. The (child_id, month_end) uniqueness constraint is the
// only guard against concurrent creation; a violation surfaces as ErrDuplicateEvaluation.
func (r *EvaluationRepository) Create(ctx context.Context, eval *models.MonthlyEvaluation) error {
	if eval.ID == "" {
		eval.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if eval.CreatedAt.IsZero() {
		eval.CreatedAt = now
	}
	eval.UpdatedAt = now
	eval.Version = 1
	query := `INSERT INTO monthly_evaluations (id, child_id, month_end, achievement_level, trend, dominant_participation,
dominant_behavior, attendance_percentage, cognitive_narrative, communicative_narrative, socio_affective_narrative,
physical_motor_narrative, strengths, improvement_areas, alerts, conclusion, teacher_notes, personal_recommendations,
version, created_at, updated_at)
VALUES (:id, :child_id, :month_end, :achievement_level, :trend, :dominant_participation, :dominant_behavior,
:attendance_percentage, :cognitive_narrative, :communicative_narrative, :socio_affective_narrative,
:physical_motor_narrative, :strengths, :improvement_areas, :alerts, :conclusion, :teacher_notes,
:personal_recommendations, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, eval); err != nil {
		if database.IsUniqueViolation(err, evaluationUniqueConstraint) {
			return ErrDuplicateEvaluation
		}
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

// UpdateDerived overwrites the generated fields when the stored version still equals expectedVersion.
// Caregiver-authored fields are not part of the statement.
func (r *EvaluationRepository) UpdateDerived(ctx context.Context, eval *models.MonthlyEvaluation, expectedVersion int) error {
	now := time.Now().UTC()
	query := `UPDATE monthly_evaluations SET achievement_level = $1, trend = $2, dominant_participation = $3,
dominant_behavior = $4, attendance_percentage = $5, cognitive_narrative = $6, communicative_narrative = $7,
socio_affective_narrative = $8, physical_motor_narrative = $9, strengths = $10, improvement_areas = $11, alerts = $12,
conclusion = $13, version = version + 1, updated_at = $14
WHERE id = $15 AND version = $16`
	res, err := r.db.ExecContext(ctx, query,
		eval.AchievementLevel, eval.Trend, eval.DominantParticipation, eval.DominantBehavior, eval.AttendancePercentage,
		eval.CognitiveNarrative, eval.CommunicativeNarrative, eval.SocioAffectiveNarrative, eval.PhysicalMotorNarrative,
		eval.Strengths, eval.ImprovementAreas, eval.Alerts, eval.Conclusion, now, eval.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update evaluation derived fields: %w", err)
	}
	if err := checkVersionedWrite(res); err != nil {
		return err
	}
	eval.Version = expectedVersion + 1
	eval.UpdatedAt = now
	return nil
}

// UpdateTrend rewrites only the trend column.
func (r *EvaluationRepository) UpdateTrend(ctx context.Context, id string, trend models.Trend, expectedVersion int) error {
	query := `UPDATE monthly_evaluations SET trend = $1, version = version + 1, updated_at = $2 WHERE id = $3 AND version = $4`
	res, err := r.db.ExecContext(ctx, query, trend, time.Now().UTC(), id, expectedVersion)
	if err != nil {
		return fmt.Errorf("update evaluation trend: %w", err)
	}
	return checkVersionedWrite(res)
}

// UpdateContent stores caregiver edits of the narrative and free-text fields.
func (r *EvaluationRepository) UpdateContent(ctx context.Context, eval *models.MonthlyEvaluation, expectedVersion int) error {
	now := time.Now().UTC()
	query := `UPDATE monthly_evaluations SET cognitive_narrative = $1, communicative_narrative = $2,
socio_affective_narrative = $3, physical_motor_narrative = $4, strengths = $5, improvement_areas = $6, alerts = $7,
conclusion = $8, teacher_notes = $9, personal_recommendations = $10, version = version + 1, updated_at = $11
WHERE id = $12 AND version = $13`
	res, err := r.db.ExecContext(ctx, query,
		eval.CognitiveNarrative, eval.CommunicativeNarrative, eval.SocioAffectiveNarrative, eval.PhysicalMotorNarrative,
		eval.Strengths, eval.ImprovementAreas, eval.Alerts, eval.Conclusion, eval.TeacherNotes, eval.PersonalRecommendations,
		now, eval.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update evaluation content: %w", err)
	}
	if err := checkVersionedWrite(res); err != nil {
		return err
	}
	eval.Version = expectedVersion + 1
	eval.UpdatedAt = now
	return nil
}

// Delete removes an evaluation. It returns sql.ErrNoRows when nothing was deleted.
func (r *EvaluationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM monthly_evaluations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete evaluation rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteMany removes every listed evaluation and returns how many rows were deleted. Unknown ids are
// ignored.
func (r *EvaluationRepository) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM monthly_evaluations WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete evaluations: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete evaluations rows affected: %w", err)
	}
	return int(affected), nil
}

func checkVersionedWrite(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("versioned write rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStaleVersion
	}
	return nil
}
