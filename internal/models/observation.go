package models

import (
	"strings"
	"time"
)

// Dimension is one of the fixed developmental axes tracked per observation.
type Dimension string

const (
	DimensionCognitive      Dimension = "cognitive"
	DimensionCommunicative  Dimension = "communicative"
	DimensionSocioAffective Dimension = "socio_affective"
	DimensionPhysicalMotor  Dimension = "physical_motor"
)

// Dimensions lists every dimension in report order.
var Dimensions = []Dimension{DimensionCognitive, DimensionCommunicative, DimensionSocioAffective, DimensionPhysicalMotor}

// Label returns the dimension name used in narrative text.
func (d Dimension) Label() string {
	switch d {
	case DimensionCognitive:
		return "Cognitiva"
	case DimensionCommunicative:
		return "Comunicativa"
	case DimensionSocioAffective:
		return "Socio-afectiva"
	case DimensionPhysicalMotor:
		return "Corporal"
	default:
		return string(d)
	}
}

func (d Dimension) matchKeys() []string {
	switch d {
	case DimensionCognitive:
		return []string{"cognitiv"}
	case DimensionCommunicative:
		return []string{"comunicativ", "communicativ", "lenguaje", "language"}
	case DimensionSocioAffective:
		return []string{"socio"}
	case DimensionPhysicalMotor:
		return []string{"corporal", "motric", "motor", "physical"}
	default:
		return nil
	}
}

// ClassifyDimension maps a planning-catalog dimension name onto a fixed dimension using a
// case-insensitive substring match. The first dimension in report order wins.
func ClassifyDimension(name string) (Dimension, bool) {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return "", false
	}
	for _, d := range Dimensions {
		for _, key := range d.matchKeys() {
			if strings.Contains(lowered, key) {
				return d, true
			}
		}
	}
	return "", false
}

// PerformanceLevel grades a child's performance on a dimension for one day.
type PerformanceLevel string

const (
	PerformanceHigh       PerformanceLevel = "high"
	PerformanceAdequate   PerformanceLevel = "adequate"
	PerformanceInProgress PerformanceLevel = "in_progress"
	PerformanceLow        PerformanceLevel = "low"
)

// Valid reports whether the level is known.
func (p PerformanceLevel) Valid() bool {
	switch p {
	case PerformanceHigh, PerformanceAdequate, PerformanceInProgress, PerformanceLow:
		return true
	default:
		return false
	}
}

// NeedsSupport reports levels counted as areas to improve.
func (p PerformanceLevel) NeedsSupport() bool {
	return p == PerformanceLow || p == PerformanceInProgress
}

// Label returns the lower-case wording used inside narrative sentences.
func (p PerformanceLevel) Label() string {
	switch p {
	case PerformanceHigh:
		return "alto"
	case PerformanceAdequate:
		return "adecuado"
	case PerformanceInProgress:
		return "en proceso"
	case PerformanceLow:
		return "bajo"
	default:
		return string(p)
	}
}

// DimensionAssessment grades one dimension inside a daily observation.
type DimensionAssessment struct {
	ID            string           `db:"id" json:"id"`
	ObservationID string           `db:"observation_id" json:"observation_id"`
	DimensionName string           `db:"dimension_name" json:"dimension_name"`
	Level         PerformanceLevel `db:"performance" json:"performance"`
	Note          *string          `db:"note" json:"note,omitempty"`
}

// DailyObservation is the caregiver's record of a child's day.
type DailyObservation struct {
	ID          string                `db:"id" json:"id"`
	ChildID     string                `db:"child_id" json:"child_id"`
	Date        time.Time             `db:"date" json:"date"`
	Behavior    Behavior              `db:"behavior" json:"behavior,omitempty"`
	Emotion     EmotionalState        `db:"emotional_state" json:"emotional_state,omitempty"`
	Rating      *int                  `db:"rating" json:"rating,omitempty"`
	Remark      *string               `db:"remark" json:"remark,omitempty"`
	Relevant    bool                  `db:"relevant" json:"relevant"`
	CreatedAt   time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time             `db:"updated_at" json:"updated_at"`
	Assessments []DimensionAssessment `db:"-" json:"assessments,omitempty"`
}
