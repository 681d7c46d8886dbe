package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/icbf-conecta-api/internal/dto"
	"github.com/noah-isme/icbf-conecta-api/internal/models"
	"github.com/noah-isme/icbf-conecta-api/internal/repository"
	appErrors "github.com/noah-isme/icbf-conecta-api/pkg/errors"
	"github.com/noah-isme/icbf-conecta-api/pkg/middleware/requestid"
)

const (
	operationGenerate       = "generate"
	operationPreview        = "preview"
	operationRegenerate     = "regenerate"
	operationRecomputeTrend = "recompute_trend"

	defaultEvaluationPageSize = 20
	maxEvaluationPageSize     = 100
)

type evaluationStore interface {
	FindByID(ctx context.Context, id string) (*models.MonthlyEvaluation, error)
	FindByChildAndMonth(ctx context.Context, childID string, monthEnd time.Time) (*models.MonthlyEvaluation, error)
	List(ctx context.Context, filter models.EvaluationFilter) ([]models.MonthlyEvaluation, int, error)
	Create(ctx context.Context, eval *models.MonthlyEvaluation) error
	UpdateDerived(ctx context.Context, eval *models.MonthlyEvaluation, expectedVersion int) error
	UpdateTrend(ctx context.Context, id string, trend models.Trend, expectedVersion int) error
	UpdateContent(ctx context.Context, eval *models.MonthlyEvaluation, expectedVersion int) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int, error)
}

type observationReader interface {
	ListByChildRange(ctx context.Context, childID string, from, to time.Time) ([]models.DailyObservation, error)
}

type attendanceReader interface {
	ListByChildRange(ctx context.Context, childID string, from, to time.Time) ([]models.AttendanceRecord, error)
}

type incidentReader interface {
	ListByChildRange(ctx context.Context, childID string, from, to time.Time) ([]models.Incident, error)
}

type childChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type evaluationCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// EvaluationServiceConfig tunes caching for single evaluations.
type EvaluationServiceConfig struct {
	CacheTTL time.Duration
}

// EvaluationService generates, regenerates and manages monthly development evaluations.
type EvaluationService struct {
	store        evaluationStore
	observations observationReader
	attendance   attendanceReader
	incidents    incidentReader
	children     childChecker
	cache        evaluationCache
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          EvaluationServiceConfig
}

// NewEvaluationService wires the evaluation workflows. cache and metrics may be nil.
func NewEvaluationService(
	store evaluationStore,
	observations observationReader,
	attendance attendanceReader,
	incidents incidentReader,
	children childChecker,
	cache evaluationCache,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg EvaluationServiceConfig,
) *EvaluationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &EvaluationService{
		store:        store,
		observations: observations,
		attendance:   attendance,
		incidents:    incidents,
		children:     children,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
	}
	svc.validator.RegisterValidation("year_month", func(fl validator.FieldLevel) bool {
		_, err := dto.ParseYearMonth(fl.Field().String())
		return err == nil
	})
	return svc
}

// GenerateFromRequest validates the payload and generates the evaluation it addresses.
func (s *EvaluationService) GenerateFromRequest(ctx context.Context, req dto.GenerateEvaluationRequest, persist bool) (*models.MonthlyEvaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	monthEnd, err := req.ResolveMonthEnd()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, err.Error())
	}
	return s.Generate(ctx, req.ChildID, monthEnd, persist)
}

// Preview computes the evaluation without writing anything.
func (s *EvaluationService) Preview(ctx context.Context, childID string, monthEnd time.Time) (*models.MonthlyEvaluation, error) {
	return s.Generate(ctx, childID, monthEnd, false)
}

// Generate builds the evaluation for the child and month-end date. When persist is true the result is
// stored, failing with Conflict if the month already has an evaluation.
func (s *EvaluationService) Generate(ctx context.Context, childID string, monthEnd time.Time, persist bool) (*models.MonthlyEvaluation, error) {
	op := operationPreview
	if persist {
		op = operationGenerate
	}
	start := time.Now()
	eval, err := s.generate(ctx, strings.TrimSpace(childID), monthEnd, persist)
	s.metrics.ObserveEvaluation(op, outcomeOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	if eval.Alerts != noAlertsText && eval.Alerts != "" {
		s.metrics.RecordEvaluationAlerts()
	}
	s.logger.Info("monthly evaluation generated",
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.String("child_id", eval.ChildID),
		zap.String("month_end", eval.MonthEnd.Format("2006-01-02")),
		zap.String("achievement_level", string(eval.AchievementLevel)),
		zap.String("trend", string(eval.Trend)),
		zap.Bool("persisted", persist),
	)
	return eval, nil
}

func (s *EvaluationService) generate(ctx context.Context, childID string, monthEnd time.Time, persist bool) (*models.MonthlyEvaluation, error) {
	if childID == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "childId is required")
	}
	if monthEnd.IsZero() || !models.IsMonthEnd(monthEnd) {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "monthEnd must be the last day of a month")
	}
	monthEnd = time.Date(monthEnd.Year(), monthEnd.Month(), monthEnd.Day(), 0, 0, 0, 0, time.UTC)

	exists, err := s.children.Exists(ctx, childID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify child")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "child not found")
	}

	if persist {
		existing, err := s.store.FindByChildAndMonth(ctx, childID, monthEnd)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing evaluation")
		}
		if existing != nil {
			return nil, duplicateEvaluationError(childID, monthEnd)
		}
	}

	in, err := s.loadInputs(ctx, childID, monthEnd)
	if err != nil {
		return nil, err
	}
	eval := generateEvaluation(childID, monthEnd, in)
	if !persist {
		return eval, nil
	}

	if err := s.store.Create(ctx, eval); err != nil {
		if errors.Is(err, repository.ErrDuplicateEvaluation) {
			return nil, duplicateEvaluationError(childID, monthEnd)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store evaluation")
	}
	return eval, nil
}

// Regenerate recomputes every derived field of an existing evaluation, keeping caregiver notes, and then
// refreshes the following month's trend if that evaluation exists. expectedVersion 0 accepts whatever
// version is currently stored.
func (s *EvaluationService) Regenerate(ctx context.Context, id string, expectedVersion int) (*models.MonthlyEvaluation, error) {
	start := time.Now()
	eval, err := s.regenerate(ctx, id, expectedVersion)
	s.metrics.ObserveEvaluation(operationRegenerate, outcomeOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	s.logger.Info("monthly evaluation regenerated",
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.String("evaluation_id", eval.ID),
		zap.String("achievement_level", string(eval.AchievementLevel)),
		zap.Int("version", eval.Version),
	)
	return eval, nil
}

func (s *EvaluationService) regenerate(ctx context.Context, id string, expectedVersion int) (*models.MonthlyEvaluation, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	version := current.Version
	if expectedVersion > 0 {
		if expectedVersion != current.Version {
			return nil, staleVersionError()
		}
		version = expectedVersion
	}

	in, err := s.loadInputs(ctx, current.ChildID, current.MonthEnd)
	if err != nil {
		return nil, err
	}
	current.CopyDerived(generateEvaluation(current.ChildID, current.MonthEnd, in))
	if err := s.store.UpdateDerived(ctx, current, version); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, staleVersionError()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update evaluation")
	}
	s.forget(ctx, current.ID)

	next, err := s.store.FindByChildAndMonth(ctx, current.ChildID, models.NextMonthEnd(current.MonthEnd))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load following evaluation")
	}
	if next != nil {
		if _, err := s.applyTrend(ctx, next, current); err != nil {
			return nil, err
		}
	}
	return current, nil
}

// RecomputeTrendOnly refreshes the trend of an evaluation from the previous month's stored achievement.
// No other field is touched.
func (s *EvaluationService) RecomputeTrendOnly(ctx context.Context, id string) (*models.MonthlyEvaluation, error) {
	start := time.Now()
	eval, err := s.recomputeTrendOnly(ctx, id)
	s.metrics.ObserveEvaluation(operationRecomputeTrend, outcomeOf(err), time.Since(start))
	return eval, err
}

func (s *EvaluationService) recomputeTrendOnly(ctx context.Context, id string) (*models.MonthlyEvaluation, error) {
	target, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	prior, err := s.store.FindByChildAndMonth(ctx, target.ChildID, models.PreviousMonthEnd(target.MonthEnd))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load previous evaluation")
	}
	return s.applyTrend(ctx, target, prior)
}

func (s *EvaluationService) applyTrend(ctx context.Context, target, prior *models.MonthlyEvaluation) (*models.MonthlyEvaluation, error) {
	trend := computeTrend(target.AchievementLevel, prior)
	if trend == target.Trend {
		return target, nil
	}
	if err := s.store.UpdateTrend(ctx, target.ID, trend, target.Version); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, staleVersionError()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update evaluation trend")
	}
	s.logger.Debug("evaluation trend updated",
		zap.String("evaluation_id", target.ID),
		zap.String("from", string(target.Trend)),
		zap.String("to", string(trend)),
	)
	target.Trend = trend
	target.Version++
	s.forget(ctx, target.ID)
	return target, nil
}

// Get returns a single evaluation, served from cache when possible.
func (s *EvaluationService) Get(ctx context.Context, id string) (*models.MonthlyEvaluation, error) {
	key := evaluationCacheKey(id)
	if s.cache != nil {
		var cached models.MonthlyEvaluation
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}
	eval, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, eval, s.cfg.CacheTTL)
	}
	return eval, nil
}

// List returns evaluations newest first, optionally filtered by child and month. A from/to range lists
// the child's history oldest first.
func (s *EvaluationService) List(ctx context.Context, req dto.EvaluationListRequest) ([]models.MonthlyEvaluation, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation filter")
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 || size > maxEvaluationPageSize {
		size = defaultEvaluationPageSize
	}
	filter := models.EvaluationFilter{ChildID: strings.TrimSpace(req.ChildID), Page: page, PageSize: size}
	if req.Month != "" {
		monthEnd, err := dto.ParseYearMonth(req.Month)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, "invalid month")
		}
		filter.MonthEnd = &monthEnd
	}
	from, to, err := req.DateRange()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, "invalid date range")
	}
	filter.From, filter.To = from, to
	items, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	if items == nil {
		items = []models.MonthlyEvaluation{}
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Update stores a caregiver edit. The edit persists until the next explicit regeneration.
func (s *EvaluationService) Update(ctx context.Context, id string, req dto.UpdateEvaluationRequest) (*models.MonthlyEvaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation update")
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != current.Version {
		return nil, staleVersionError()
	}
	req.Apply(current)
	if err := s.store.UpdateContent(ctx, current, req.Version); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, staleVersionError()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update evaluation")
	}
	s.forget(ctx, current.ID)
	s.logger.Info("monthly evaluation edited",
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.String("evaluation_id", current.ID),
		zap.Int("version", current.Version),
	)
	return current, nil
}

// Delete removes an evaluation. Source records are not affected.
func (s *EvaluationService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evaluation")
	}
	s.forget(ctx, id)
	return nil
}

// DeleteMany removes the selected evaluations and reports how many existed. Unknown ids are skipped.
func (s *EvaluationService) DeleteMany(ctx context.Context, req dto.BulkDeleteEvaluationsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation selection")
	}
	seen := make(map[string]struct{}, len(req.IDs))
	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	deleted, err := s.store.DeleteMany(ctx, ids)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evaluations")
	}
	for _, id := range ids {
		s.forget(ctx, id)
	}
	s.logger.Info("monthly evaluations deleted",
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.Int("requested", len(ids)),
		zap.Int("deleted", deleted),
	)
	return deleted, nil
}

func (s *EvaluationService) find(ctx context.Context, id string) (*models.MonthlyEvaluation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "evaluation id is required")
	}
	eval, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	if eval == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
	}
	return eval, nil
}

func (s *EvaluationService) loadInputs(ctx context.Context, childID string, monthEnd time.Time) (monthlyInputs, error) {
	var in monthlyInputs
	from := models.MonthStart(monthEnd)
	observations, err := s.observations.ListByChildRange(ctx, childID, from, monthEnd)
	if err != nil {
		return in, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load observations")
	}
	attendance, err := s.attendance.ListByChildRange(ctx, childID, from, monthEnd)
	if err != nil {
		return in, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	incidents, err := s.incidents.ListByChildRange(ctx, childID, from, monthEnd)
	if err != nil {
		return in, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incidents")
	}

	priorEnd := models.PreviousMonthEnd(monthEnd)
	prior, err := s.store.FindByChildAndMonth(ctx, childID, priorEnd)
	if err != nil {
		return in, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load previous evaluation")
	}
	priorObservations, err := s.observations.ListByChildRange(ctx, childID, models.MonthStart(priorEnd), priorEnd)
	if err != nil {
		return in, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load previous observations")
	}

	in.Observations = observations
	in.PriorObservations = priorObservations
	in.Attendance = attendance
	in.Incidents = incidents
	in.Prior = prior
	return in, nil
}

func (s *EvaluationService) forget(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, evaluationCacheKey(id)); err != nil {
		s.logger.Warn("failed to invalidate cached evaluation", zap.String("evaluation_id", id), zap.Error(err))
	}
}

func duplicateEvaluationError(childID string, monthEnd time.Time) error {
	return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("evaluation already exists for child %s and month %s", childID, monthEnd.Format("2006-01")))
}

func staleVersionError() error {
	return appErrors.Clone(appErrors.ErrConflict, "evaluation was modified by another request")
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	switch appErrors.FromError(err).Code {
	case appErrors.ErrConflict.Code:
		return outcomeConflict
	case appErrors.ErrInvalidArgument.Code, appErrors.ErrValidation.Code:
		return outcomeInvalid
	case appErrors.ErrNotFound.Code:
		return outcomeNotFound
	default:
		return outcomeError
	}
}
