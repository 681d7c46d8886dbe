package models

import "time"

// IncidentCategory identifies the kind of incident logged for a child.
type IncidentCategory string

const (
	IncidentHealth              IncidentCategory = "health"
	IncidentEmotional           IncidentCategory = "emotional"
	IncidentAbsence             IncidentCategory = "absence"
	IncidentAppetiteLoss        IncidentCategory = "appetite_loss"
	IncidentMedicationChange    IncidentCategory = "medication_change"
	IncidentMedicationMissed    IncidentCategory = "medication_missed"
	IncidentNoCivilRegistry     IncidentCategory = "no_civil_registry"
	IncidentNoHealthAffiliation IncidentCategory = "no_health_affiliation"
	IncidentNoVaccination       IncidentCategory = "no_vaccination"
	IncidentOther               IncidentCategory = "other"
)

// CriticalIncidentPriority is the minimum priority treated as critical by the evaluation rules.
const CriticalIncidentPriority = 4

// Valid reports whether the category is known.
func (c IncidentCategory) Valid() bool {
	switch c {
	case IncidentHealth, IncidentEmotional, IncidentAbsence, IncidentAppetiteLoss, IncidentMedicationChange,
		IncidentMedicationMissed, IncidentNoCivilRegistry, IncidentNoHealthAffiliation, IncidentNoVaccination, IncidentOther:
		return true
	default:
		return false
	}
}

// Priority returns the follow-up priority of the category (5 is the most urgent).
func (c IncidentCategory) Priority() int {
	switch c {
	case IncidentHealth:
		return 5
	case IncidentEmotional, IncidentMedicationChange, IncidentNoVaccination:
		return 4
	case IncidentAbsence, IncidentMedicationMissed, IncidentNoHealthAffiliation:
		return 3
	case IncidentAppetiteLoss, IncidentNoCivilRegistry:
		return 2
	default:
		return 1
	}
}

// Label returns the wording used in alerts.
func (c IncidentCategory) Label() string {
	switch c {
	case IncidentHealth:
		return "salud"
	case IncidentEmotional:
		return "emocional"
	case IncidentAbsence:
		return "inasistencia"
	case IncidentAppetiteLoss:
		return "inapetencia"
	case IncidentMedicationChange:
		return "cambio de medicamentos"
	case IncidentMedicationMissed:
		return "inasistencia de medicamentos"
	case IncidentNoCivilRegistry:
		return "sin registro civil"
	case IncidentNoHealthAffiliation:
		return "sin afiliación en salud"
	case IncidentNoVaccination:
		return "sin esquema de vacunación"
	default:
		return "otra"
	}
}

// Incident is an event logged about a child.
type Incident struct {
	ID          string           `db:"id" json:"id"`
	ChildID     string           `db:"child_id" json:"child_id"`
	Date        time.Time        `db:"date" json:"date"`
	Category    IncidentCategory `db:"category" json:"category"`
	Description string           `db:"description" json:"description"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// Priority is derived from the category.
func (i Incident) Priority() int {
	return i.Category.Priority()
}

// Critical reports health or emotional incidents at or above the critical priority.
func (i Incident) Critical() bool {
	return (i.Category == IncidentHealth || i.Category == IncidentEmotional) && i.Priority() >= CriticalIncidentPriority
}
