package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/icbf-conecta-api/internal/dto"
	"github.com/noah-isme/icbf-conecta-api/internal/models"
	appErrors "github.com/noah-isme/icbf-conecta-api/pkg/errors"
	"github.com/noah-isme/icbf-conecta-api/pkg/response"
)

type evaluationService interface {
	GenerateFromRequest(ctx context.Context, req dto.GenerateEvaluationRequest, persist bool) (*models.MonthlyEvaluation, error)
	Get(ctx context.Context, id string) (*models.MonthlyEvaluation, error)
	List(ctx context.Context, req dto.EvaluationListRequest) ([]models.MonthlyEvaluation, *models.Pagination, error)
	Regenerate(ctx context.Context, id string, expectedVersion int) (*models.MonthlyEvaluation, error)
	RecomputeTrendOnly(ctx context.Context, id string) (*models.MonthlyEvaluation, error)
	Update(ctx context.Context, id string, req dto.UpdateEvaluationRequest) (*models.MonthlyEvaluation, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, req dto.BulkDeleteEvaluationsRequest) (int, error)
}

// EvaluationHandler exposes monthly development evaluation endpoints.
type EvaluationHandler struct {
	service evaluationService
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(service evaluationService) *EvaluationHandler {
	return &EvaluationHandler{service: service}
}

// Generate godoc
// @Summary Generate and store a monthly evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body dto.GenerateEvaluationRequest true "Child and month"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /evaluations [post]
func (h *EvaluationHandler) Generate(c *gin.Context) {
	h.generate(c, true)
}

// Preview godoc
// @Summary Preview a monthly evaluation without storing it
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body dto.GenerateEvaluationRequest true "Child and month"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /evaluations/preview [post]
func (h *EvaluationHandler) Preview(c *gin.Context) {
	h.generate(c, false)
}

func (h *EvaluationHandler) generate(c *gin.Context, persist bool) {
	var req dto.GenerateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluation payload"))
		return
	}
	eval, err := h.service.GenerateFromRequest(c.Request.Context(), req, persist)
	if err != nil {
		response.Error(c, err)
		return
	}
	if persist {
		setETag(c, eval)
		response.Created(c, eval)
		return
	}
	response.JSON(c, http.StatusOK, eval, nil)
}

// List godoc
// @Summary List monthly evaluations
// @Tags Evaluations
// @Produce json
// @Param childId query string false "Child ID"
// @Param month query string false "Month (YYYY-MM)"
// @Param from query string false "First month-end date (YYYY-MM-DD); ranges list oldest first"
// @Param to query string false "Last month-end date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /evaluations [get]
func (h *EvaluationHandler) List(c *gin.Context) {
	var req dto.EvaluationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a monthly evaluation
// @Tags Evaluations
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /evaluations/{id} [get]
func (h *EvaluationHandler) Get(c *gin.Context) {
	eval, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	setETag(c, eval)
	response.JSON(c, http.StatusOK, eval, nil)
}

// Regenerate godoc
// @Summary Recompute the derived fields of an evaluation
// @Description Caregiver notes and recommendations are kept. The following month's trend is refreshed when that evaluation exists.
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param id path string true "Evaluation ID"
// @Param If-Match header string false "Expected version"
// @Param payload body dto.RegenerateEvaluationRequest false "Expected version"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /evaluations/{id}/regenerate [post]
func (h *EvaluationHandler) Regenerate(c *gin.Context) {
	var req dto.RegenerateEvaluationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid regenerate payload"))
			return
		}
	}
	version, err := expectedVersion(c, req.Version)
	if err != nil {
		response.Error(c, err)
		return
	}
	eval, err := h.service.Regenerate(c.Request.Context(), c.Param("id"), version)
	if err != nil {
		response.Error(c, err)
		return
	}
	setETag(c, eval)
	response.JSON(c, http.StatusOK, eval, nil)
}

// RecomputeTrend godoc
// @Summary Recompute only the trend of an evaluation
// @Tags Evaluations
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /evaluations/{id}/trend [post]
func (h *EvaluationHandler) RecomputeTrend(c *gin.Context) {
	eval, err := h.service.RecomputeTrendOnly(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	setETag(c, eval)
	response.JSON(c, http.StatusOK, eval, nil)
}

// Update godoc
// @Summary Edit evaluation text
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param id path string true "Evaluation ID"
// @Param If-Match header string false "Expected version"
// @Param payload body dto.UpdateEvaluationRequest true "Edited fields"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /evaluations/{id} [put]
func (h *EvaluationHandler) Update(c *gin.Context) {
	var req dto.UpdateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluation update"))
		return
	}
	version, err := expectedVersion(c, req.Version)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.Version = version
	eval, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	setETag(c, eval)
	response.JSON(c, http.StatusOK, eval, nil)
}

// Delete godoc
// @Summary Delete an evaluation
// @Tags Evaluations
// @Param id path string true "Evaluation ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /evaluations/{id} [delete]
func (h *EvaluationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteMany godoc
// @Summary Delete selected evaluations
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body dto.BulkDeleteEvaluationsRequest true "Evaluation IDs"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /evaluations [delete]
func (h *EvaluationHandler) DeleteMany(c *gin.Context) {
	var req dto.BulkDeleteEvaluationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluation selection"))
		return
	}
	deleted, err := h.service.DeleteMany(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}

func setETag(c *gin.Context, eval *models.MonthlyEvaluation) {
	if eval == nil || eval.Version == 0 {
		return
	}
	c.Header("ETag", strconv.Quote(strconv.Itoa(eval.Version)))
}

// expectedVersion prefers the body value and falls back to the If-Match header.
func expectedVersion(c *gin.Context, fromBody int) (int, error) {
	if fromBody > 0 {
		return fromBody, nil
	}
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" || raw == "*" {
		return 0, nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	version, err := strconv.Atoi(raw)
	if err != nil || version < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "If-Match must carry an evaluation version")
	}
	return version, nil
}
