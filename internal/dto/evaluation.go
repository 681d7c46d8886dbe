package dto

import (
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/icbf-conecta-api/internal/models"
)

const (
	yearMonthLayout = "2006-01"
	dateLayout      = "2006-01-02"
)

// GenerateEvaluationRequest captures POST /evaluations and /evaluations/preview payloads. Either
// month ("YYYY-MM") or monthEnd ("YYYY-MM-DD", last day of the month) must be supplied.
type GenerateEvaluationRequest struct {
	ChildID  string `json:"childId" validate:"required"`
	Month    string `json:"month,omitempty" validate:"omitempty,year_month"`
	MonthEnd string `json:"monthEnd,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ResolveMonthEnd returns the month-end date addressed by the request.
func (r GenerateEvaluationRequest) ResolveMonthEnd() (time.Time, error) {
	if r.MonthEnd != "" {
		t, err := time.Parse(dateLayout, r.MonthEnd)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse monthEnd: %w", err)
		}
		if !models.IsMonthEnd(t) {
			return time.Time{}, fmt.Errorf("monthEnd %s is not the last day of its month", r.MonthEnd)
		}
		return t, nil
	}
	if r.Month == "" {
		return time.Time{}, errors.New("month or monthEnd is required")
	}
	return ParseYearMonth(r.Month)
}

// ParseYearMonth converts "YYYY-MM" into that month's last day.
func ParseYearMonth(value string) (time.Time, error) {
	t, err := time.Parse(yearMonthLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month: %w", err)
	}
	return models.MonthEnd(t), nil
}

// RegenerateEvaluationRequest optionally pins the version the caller last read.
type RegenerateEvaluationRequest struct {
	Version int `json:"version" validate:"gte=0"`
}

// UpdateEvaluationRequest is a caregiver edit. Nil fields are left unchanged.
type UpdateEvaluationRequest struct {
	Version                 int     `json:"version" validate:"required,gt=0"`
	CognitiveNarrative      *string `json:"cognitiveNarrative,omitempty" validate:"omitempty,max=10000"`
	CommunicativeNarrative  *string `json:"communicativeNarrative,omitempty" validate:"omitempty,max=10000"`
	SocioAffectiveNarrative *string `json:"socioAffectiveNarrative,omitempty" validate:"omitempty,max=10000"`
	PhysicalMotorNarrative  *string `json:"physicalMotorNarrative,omitempty" validate:"omitempty,max=10000"`
	Strengths               *string `json:"strengths,omitempty" validate:"omitempty,max=10000"`
	ImprovementAreas        *string `json:"improvementAreas,omitempty" validate:"omitempty,max=10000"`
	Alerts                  *string `json:"alerts,omitempty" validate:"omitempty,max=10000"`
	Conclusion              *string `json:"conclusion,omitempty" validate:"omitempty,max=10000"`
	TeacherNotes            *string `json:"teacherNotes,omitempty" validate:"omitempty,max=10000"`
	PersonalRecommendations *string `json:"personalRecommendations,omitempty" validate:"omitempty,max=10000"`
}

// Apply copies the supplied fields onto eval.
func (r UpdateEvaluationRequest) Apply(eval *models.MonthlyEvaluation) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&eval.CognitiveNarrative, r.CognitiveNarrative)
	set(&eval.CommunicativeNarrative, r.CommunicativeNarrative)
	set(&eval.SocioAffectiveNarrative, r.SocioAffectiveNarrative)
	set(&eval.PhysicalMotorNarrative, r.PhysicalMotorNarrative)
	set(&eval.Strengths, r.Strengths)
	set(&eval.ImprovementAreas, r.ImprovementAreas)
	set(&eval.Alerts, r.Alerts)
	set(&eval.Conclusion, r.Conclusion)
	if r.TeacherNotes != nil {
		eval.TeacherNotes = r.TeacherNotes
	}
	if r.PersonalRecommendations != nil {
		eval.PersonalRecommendations = r.PersonalRecommendations
	}
}

// EvaluationListRequest binds GET /evaluations query parameters. From and To ("YYYY-MM-DD") bound the
// month-end date inclusively and list the matching evaluations oldest first.
type EvaluationListRequest struct {
	ChildID  string `form:"childId"`
	Month    string `form:"month" validate:"omitempty,year_month"`
	From     string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" validate:"omitempty,gte=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,gte=1,lte=100"`
}

// DateRange parses the optional From and To bounds.
func (r EvaluationListRequest) DateRange() (from, to *time.Time, err error) {
	if r.From != "" {
		t, err := time.Parse(dateLayout, r.From)
		if err != nil {
			return nil, nil, fmt.Errorf("parse from: %w", err)
		}
		from = &t
	}
	if r.To != "" {
		t, err := time.Parse(dateLayout, r.To)
		if err != nil {
			return nil, nil, fmt.Errorf("parse to: %w", err)
		}
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, fmt.Errorf("from %s is after to %s", r.From, r.To)
	}
	return from, to, nil
}

// BulkDeleteEvaluationsRequest selects the evaluations removed by DELETE /evaluations.
type BulkDeleteEvaluationsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100,dive,required"`
}
