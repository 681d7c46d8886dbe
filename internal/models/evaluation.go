package models

import "time"

// AchievementLevel is the month's qualitative rating bucket.
type AchievementLevel string

const (
	AchievementUnset      AchievementLevel = ""
	AchievementHigh       AchievementLevel = "high"
	AchievementAdequate   AchievementLevel = "adequate"
	AchievementInProgress AchievementLevel = "in_progress"
)

// Label returns the display text for the level.
func (a AchievementLevel) Label() string {
	switch a {
	case AchievementHigh:
		return "Alto"
	case AchievementAdequate:
		return "Adecuado"
	case AchievementInProgress:
		return "En Proceso"
	default:
		return "Sin datos"
	}
}

// Trend compares the month's achievement level against the previous month.
type Trend string

const (
	TrendUnset       Trend = ""
	TrendAdvances    Trend = "advances"
	TrendRetreats    Trend = "retreats"
	TrendSteady      Trend = "steady"
	TrendNoPriorData Trend = "no_prior_data"
)

// Participation summarises the dominant behaviour as a participation level.
type Participation string

const (
	ParticipationUnset  Participation = ""
	ParticipationHigh   Participation = "high"
	ParticipationMedium Participation = "medium"
	ParticipationLow    Participation = "low"
)

// MonthlyEvaluation is the generated development report for one child and month.
type MonthlyEvaluation struct {
	ID                      string           `db:"id" json:"id"`
	ChildID                 string           `db:"child_id" json:"child_id"`
	MonthEnd                time.Time        `db:"month_end" json:"month_end"`
	AchievementLevel        AchievementLevel `db:"achievement_level" json:"achievement_level,omitempty"`
	Trend                   Trend            `db:"trend" json:"trend,omitempty"`
	DominantParticipation   Participation    `db:"dominant_participation" json:"dominant_participation,omitempty"`
	DominantBehavior        Behavior         `db:"dominant_behavior" json:"dominant_behavior,omitempty"`
	AttendancePercentage    *int             `db:"attendance_percentage" json:"attendance_percentage"`
	CognitiveNarrative      string           `db:"cognitive_narrative" json:"cognitive_narrative"`
	CommunicativeNarrative  string           `db:"communicative_narrative" json:"communicative_narrative"`
	SocioAffectiveNarrative string           `db:"socio_affective_narrative" json:"socio_affective_narrative"`
	PhysicalMotorNarrative  string           `db:"physical_motor_narrative" json:"physical_motor_narrative"`
	Strengths               string           `db:"strengths" json:"strengths"`
	ImprovementAreas        string           `db:"improvement_areas" json:"improvement_areas"`
	Alerts                  string           `db:"alerts" json:"alerts"`
	Conclusion              string           `db:"conclusion" json:"conclusion"`
	TeacherNotes            *string          `db:"teacher_notes" json:"teacher_notes,omitempty"`
	PersonalRecommendations *string          `db:"personal_recommendations" json:"personal_recommendations,omitempty"`
	Version                 int              `db:"version" json:"version"`
	CreatedAt               time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time        `db:"updated_at" json:"updated_at"`
}

// Narrative returns the narrative text stored for the dimension.
func (e *MonthlyEvaluation) Narrative(d Dimension) string {
	switch d {
	case DimensionCognitive:
		return e.CognitiveNarrative
	case DimensionCommunicative:
		return e.CommunicativeNarrative
	case DimensionSocioAffective:
		return e.SocioAffectiveNarrative
	case DimensionPhysicalMotor:
		return e.PhysicalMotorNarrative
	default:
		return ""
	}
}

// SetNarrative stores the narrative text for the dimension.
func (e *MonthlyEvaluation) SetNarrative(d Dimension, text string) {
	switch d {
	case DimensionCognitive:
		e.CognitiveNarrative = text
	case DimensionCommunicative:
		e.CommunicativeNarrative = text
	case DimensionSocioAffective:
		e.SocioAffectiveNarrative = text
	case DimensionPhysicalMotor:
		e.PhysicalMotorNarrative = text
	}
}

// CopyDerived overwrites every generated field with the values from src, leaving identity,
// caregiver-authored fields and bookkeeping untouched.
func (e *MonthlyEvaluation) CopyDerived(src *MonthlyEvaluation) {
	e.AchievementLevel = src.AchievementLevel
	e.Trend = src.Trend
	e.DominantParticipation = src.DominantParticipation
	e.DominantBehavior = src.DominantBehavior
	e.AttendancePercentage = src.AttendancePercentage
	e.CognitiveNarrative = src.CognitiveNarrative
	e.CommunicativeNarrative = src.CommunicativeNarrative
	e.SocioAffectiveNarrative = src.SocioAffectiveNarrative
	e.PhysicalMotorNarrative = src.PhysicalMotorNarrative
	e.Strengths = src.Strengths
	e.ImprovementAreas = src.ImprovementAreas
	e.Alerts = src.Alerts
	e.Conclusion = src.Conclusion
}

// EvaluationFilter scopes evaluation listings. A From or To bound switches the order to oldest first.
type EvaluationFilter struct {
	ChildID  string
	MonthEnd *time.Time
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// Chronological reports whether the listing covers a date range.
func (f EvaluationFilter) Chronological() bool {
	return f.From != nil || f.To != nil
}
