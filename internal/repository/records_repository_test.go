package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/icbf-conecta-api/internal/models"
	appErrors "github.com/noah-isme/icbf-conecta-api/pkg/errors"
)

func TestAttendanceRepositoryListByChildRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_records WHERE child_id = $1")).
		WithArgs("child-1", day, day).
		WillReturnRows(sqlmock.NewRows([]string{"id", "child_id", "date", "status", "created_at", "updated_at"}).
			AddRow("att-1", "child-1", day, "present", time.Now(), time.Now()))

	items, err := repo.ListByChildRange(context.Background(), "child-1", day, day)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.AttendanceStatusPresent, items[0].Status)
}

func TestIncidentRepositoryListByChildRangeError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)

	boom := errors.New("timeout")
	mock.ExpectQuery(regexp.QuoteMeta("FROM incidents WHERE child_id = $1")).WillReturnError(boom)

	_, err := repo.ListByChildRange(context.Background(), "child-1", time.Now(), time.Now())
	assert.ErrorIs(t, err, boom)
}

func TestIncidentRepositoryListByChildRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM incidents WHERE child_id = $1")).
		WithArgs("child-1", day, day).
		WillReturnRows(sqlmock.NewRows([]string{"id", "child_id", "date", "category", "description", "created_at"}).
			AddRow("inc-1", "child-1", day, "health", "Fiebre", time.Now()))

	items, err := repo.ListByChildRange(context.Background(), "child-1", day, day)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Priority())
	assert.True(t, items[0].Critical())
}

func TestChildRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM children WHERE id = $1)")).
		WithArgs("child-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "child-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	var dest map[string]string

	assert.ErrorIs(t, repo.Get(context.Background(), "evaluations:1", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "evaluations:1", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "evaluations:1"))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "evaluations:*"))
	assert.NoError(t, repo.Close())
}
