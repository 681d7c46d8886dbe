package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/icbf-conecta-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() { _ = sqlxDB.Close() }
}

var evaluationRowColumns = []string{"id", "child_id", "month_end", "achievement_level", "trend", "dominant_participation",
	"dominant_behavior", "attendance_percentage", "cognitive_narrative", "communicative_narrative",
	"socio_affective_narrative", "physical_motor_narrative", "strengths", "improvement_areas", "alerts", "conclusion",
	"teacher_notes", "personal_recommendations", "version", "created_at", "updated_at"}

func TestEvaluationRepositoryFindByChildAndMonth(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)
	monthEnd := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(evaluationRowColumns).
		AddRow("eval-1", "child-1", monthEnd, "high", nil, "high", "participative", int64(95), "c", "m", "s", "p",
			"- fortalezas", "- aspectos", "- alertas", "conclusión", "nota de la madre", nil, int64(3), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM monthly_evaluations WHERE child_id = $1 AND month_end = $2")).
		WithArgs("child-1", monthEnd).
		WillReturnRows(rows)

	eval, err := repo.FindByChildAndMonth(context.Background(), "child-1", monthEnd)
	require.NoError(t, err)
	require.NotNil(t, eval)
	assert.Equal(t, models.AchievementHigh, eval.AchievementLevel)
	assert.Equal(t, models.TrendUnset, eval.Trend)
	assert.Equal(t, models.BehaviorParticipative, eval.DominantBehavior)
	require.NotNil(t, eval.AttendancePercentage)
	assert.Equal(t, 95, *eval.AttendancePercentage)
	require.NotNil(t, eval.TeacherNotes)
	assert.Equal(t, "nota de la madre", *eval.TeacherNotes)
	assert.Nil(t, eval.PersonalRecommendations)
	assert.Equal(t, 3, eval.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM monthly_evaluations WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	eval, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, eval)
}

func TestEvaluationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monthly_evaluations")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	eval := &models.MonthlyEvaluation{ChildID: "child-1", MonthEnd: time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(context.Background(), eval))
	assert.NotEmpty(t, eval.ID)
	assert.Equal(t, 1, eval.Version)
	assert.False(t, eval.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monthly_evaluations")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: evaluationUniqueConstraint})

	err := repo.Create(context.Background(), &models.MonthlyEvaluation{ChildID: "child-1"})
	assert.ErrorIs(t, err, ErrDuplicateEvaluation)
}

func TestEvaluationRepositoryCreateOtherFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monthly_evaluations")).WillReturnError(boom)

	err := repo.Create(context.Background(), &models.MonthlyEvaluation{ChildID: "child-1"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrDuplicateEvaluation)
}

func TestEvaluationRepositoryUpdateDerived(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	eval := &models.MonthlyEvaluation{ID: "eval-1", AchievementLevel: models.AchievementAdequate, Trend: models.TrendSteady}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE monthly_evaluations SET achievement_level = $1")).
		WithArgs("adequate", "steady", nil, nil, nil, "", "", "", "", "", "", "", "", sqlmock.AnyArg(), "eval-1", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateDerived(context.Background(), eval, 2))
	assert.Equal(t, 3, eval.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryUpdateDerivedStale(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE monthly_evaluations SET achievement_level = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	eval := &models.MonthlyEvaluation{ID: "eval-1", Version: 2}
	err := repo.UpdateDerived(context.Background(), eval, 2)
	assert.ErrorIs(t, err, ErrStaleVersion)
	assert.Equal(t, 2, eval.Version)
}

func TestEvaluationRepositoryUpdateTrend(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE monthly_evaluations SET trend = $1, version = version + 1")).
		WithArgs("advances", sqlmock.AnyArg(), "eval-2", 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateTrend(context.Background(), "eval-2", models.TrendAdvances, 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM monthly_evaluations WHERE id = $1")).
		WithArgs("eval-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "eval-9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEvaluationRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)
	monthEnd := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(evaluationRowColumns).
		AddRow("eval-1", "child-1", monthEnd, "adequate", "no_prior_data", "medium", "collaborative", nil, "", "", "", "",
			"", "", "", "", nil, nil, int64(1), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM monthly_evaluations WHERE 1=1 AND child_id = $1 AND month_end = $2 ORDER BY month_end DESC, child_id LIMIT 10 OFFSET 10")).
		WithArgs("child-1", monthEnd).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM monthly_evaluations WHERE 1=1 AND child_id = $1 AND month_end = $2")).
		WithArgs("child-1", monthEnd).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	items, total, err := repo.List(context.Background(), models.EvaluationFilter{ChildID: "child-1", MonthEnd: &monthEnd, Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 11, total)
	assert.Nil(t, items[0].AttendancePercentage)
	assert.Equal(t, models.TrendNoPriorData, items[0].Trend)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryListDateRangeOldestFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM monthly_evaluations WHERE 1=1 AND child_id = $1 AND month_end BETWEEN $2 AND $3 ORDER BY month_end ASC, child_id LIMIT 20 OFFSET 0")).
		WithArgs("child-1", from, to).
		WillReturnRows(sqlmock.NewRows(evaluationRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM monthly_evaluations WHERE 1=1 AND child_id = $1 AND month_end BETWEEN $2 AND $3")).
		WithArgs("child-1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.EvaluationFilter{ChildID: "child-1", From: &from, To: &to, Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryListOpenEndedRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)
	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND month_end >= $1 ORDER BY month_end ASC")).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows(evaluationRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM monthly_evaluations WHERE 1=1 AND month_end >= $1")).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.EvaluationFilter{From: &from, Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryDeleteMany(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)
	ids := []string{"eval-1", "eval-2", "eval-3"}

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM monthly_evaluations WHERE id = ANY($1)")).
		WithArgs(pq.Array(ids)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	deleted, err := repo.DeleteMany(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())

	deleted, err = repo.DeleteMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestEvaluationRepositoryDeleteManyFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM monthly_evaluations WHERE id = ANY($1)")).WillReturnError(boom)

	_, err := repo.DeleteMany(context.Background(), []string{"eval-1"})
	assert.ErrorIs(t, err, boom)
}
