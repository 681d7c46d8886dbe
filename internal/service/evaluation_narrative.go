package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/icbf-conecta-api/internal/models"
)

const (
	noDataStrengthsText    = "No hay datos para identificar fortalezas."
	noDataImprovementsText = "No hay datos para identificar aspectos a mejorar."
	noDataConclusionText   = "No es posible generar una conclusión debido a la falta de seguimientos diarios este mes."
	noStrengthsText        = "Se requiere más observación para definir fortalezas claras."
	noImprovementsText     = "No se identificaron aspectos críticos a mejorar este mes."
	noAlertsText           = "No se generaron alertas automáticas este mes."

	continueRecommendation = "La recomendación principal es continuar fomentando sus habilidades y mantener un seguimiento cercano a su proceso."
	focusRecommendation    = "Se recomienda enfocar los esfuerzos en los 'aspectos a mejorar' identificados y atender las alertas generadas, trabajando en conjunto con la familia para establecer un plan de apoyo."
)

func insufficientDimensionText(d models.Dimension) string {
	return fmt.Sprintf("En el área %s, no se registraron datos suficientes para una evaluación este mes.", d.Label())
}

func bulleted(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return "- " + strings.Join(items, "\n- ")
}

func (b *evaluationBuilder) dimensions() {
	for _, d := range models.Dimensions {
		b.eval.SetNarrative(d, dimensionNarrative(d, b.byDim[d]))
	}
}

func dimensionNarrative(d models.Dimension, assessments []models.DimensionAssessment) string {
	levels := make([]models.PerformanceLevel, 0, len(assessments))
	notes := make([]string, 0, len(assessments))
	for _, a := range assessments {
		levels = append(levels, a.Level)
		if a.Note != nil && strings.TrimSpace(*a.Note) != "" {
			notes = append(notes, strings.TrimSpace(*a.Note))
		}
	}
	level, ok := mostFrequent(levels)
	if !ok {
		return insufficientDimensionText(d)
	}
	text := fmt.Sprintf("En el área %s, el niño/a tuvo un desempeño %s durante el mes.", d.Label(), level.Label())
	if len(notes) > 0 {
		text += " " + representativeNotes(notes)
	}
	return text
}

// representativeNotes quotes the first, a middle and the last note of the month.
func representativeNotes(notes []string) string {
	parts := []string{"Observaciones relevantes:", "Al inicio del mes: " + notes[0]}
	if len(notes) >= 3 {
		parts = append(parts, "Durante el mes: "+notes[len(notes)/2])
	}
	if len(notes) >= 2 {
		parts = append(parts, "Al finalizar el mes: "+notes[len(notes)-1])
	}
	text := strings.Join(parts, " ")
	if len(notes) > 3 {
		text += " (Se muestran solo las observaciones más representativas.)"
	}
	return text
}

func (b *evaluationBuilder) strengths() {
	var items []string
	if b.eval.AchievementLevel == models.AchievementHigh {
		items = append(items, "Valoraciones generales consistentemente altas durante el mes.")
	}
	if b.eval.Trend == models.TrendAdvances {
		items = append(items, "Tendencia de avance clara en comparación con el mes anterior.")
	}
	for _, d := range models.Dimensions {
		assessments := b.byDim[d]
		if len(assessments) == 0 {
			continue
		}
		high := 0
		for _, a := range assessments {
			if a.Level == models.PerformanceHigh {
				high++
			}
		}
		if float64(high) >= float64(len(assessments))*dimensionHighShare {
			items = append(items, fmt.Sprintf("Destacó en el área %s por su desempeño alto durante el mes.", d.Label()))
		}
	}
	if b.eval.DominantBehavior.Polarity() == models.PolarityPositive {
		items = append(items, fmt.Sprintf("Comportamiento general positivo y constructivo ('%s').", b.eval.DominantBehavior.Label()))
	}
	if b.emotion.Polarity() == models.PolarityPositive {
		items = append(items, fmt.Sprintf("Estado emocional predominante positivo ('%s').", b.emotion.Label()))
	}
	if pct := b.eval.AttendancePercentage; pct != nil && *pct >= excellentAttendance {
		items = append(items, fmt.Sprintf("Excelente asistencia (%d%%), demostrando constancia.", *pct))
	}
	if len(b.critical) == 0 {
		items = append(items, "Ausencia de novedades de alta prioridad, indicando un mes estable.")
	}
	b.eval.Strengths = bulleted(items, noStrengthsText)
}

func (b *evaluationBuilder) improvementAreas() {
	var items []string

	var struggling []string
	for _, d := range models.Dimensions {
		assessments := b.byDim[d]
		if len(assessments) == 0 {
			continue
		}
		weak := 0
		for _, a := range assessments {
			if a.Level.NeedsSupport() {
				weak++
			}
		}
		if weak > 0 {
			pct := weak * 100 / len(assessments)
			struggling = append(struggling, fmt.Sprintf("%s (%d%% del mes con desempeño bajo o en proceso)", d.Label(), pct))
		}
	}
	if len(struggling) > 0 {
		items = append(items, "Se identifican áreas de oportunidad en las siguientes dimensiones: "+strings.Join(struggling, ", ")+
			". Es importante fortalecer el acompañamiento y las estrategias pedagógicas en estos aspectos para favorecer el desarrollo integral del niño/a.")
	}

	if b.eval.Trend == models.TrendRetreats {
		items = append(items, "Se observa un retroceso en el logro general en comparación con el mes anterior. Es crucial identificar las causas y reforzar el acompañamiento.")
	}

	lowDays := 0
	for _, o := range b.in.Observations {
		if o.Rating != nil && *o.Rating <= lowRatingCeiling {
			lowDays++
		}
	}
	if lowDays > lowRatingDaysThreshold {
		items = append(items, fmt.Sprintf("Se registraron %d días con valoraciones bajas, lo que sugiere la necesidad de observar y dialogar sobre las situaciones presentadas en esas fechas.", lowDays))
	}

	if b.eval.DominantBehavior.Polarity() == models.PolarityNegative {
		items = append(items, fmt.Sprintf("El comportamiento más frecuente fue '%s', lo que requiere atención y apoyo emocional.", b.eval.DominantBehavior.Label()))
	}
	if b.emotion.Polarity() == models.PolarityNegative {
		items = append(items, fmt.Sprintf("El estado emocional predominante fue '%s', por lo que se recomienda acompañamiento emocional y espacios de escucha.", b.emotion.Label()))
	}

	if pct := b.eval.AttendancePercentage; pct != nil && *pct < lowAttendance {
		items = append(items, fmt.Sprintf("El porcentaje de asistencia mensual (%d%%) es bajo y puede afectar el proceso de desarrollo. Se sugiere buscar estrategias para mejorar la asistencia.", *pct))
	}

	absences := 0
	for _, inc := range b.in.Incidents {
		if inc.Category == models.IncidentAbsence {
			absences++
		}
	}
	if absences > absenceIncidentThreshold {
		items = append(items, fmt.Sprintf("Se registraron %d novedades por inasistencia, lo cual puede estar incidiendo en el proceso de adaptación y aprendizaje.", absences))
	}

	if len(b.critical) > 0 {
		items = append(items, "Se presentaron novedades de alta prioridad (salud o emocional), por lo que se recomienda un seguimiento cercano y articulación con la familia.")
	}

	b.gaps = items
	b.eval.ImprovementAreas = bulleted(items, noImprovementsText)
}

func (b *evaluationBuilder) alerts() {
	var items []string

	if current, ok := meanRating(b.in.Observations); ok {
		if previous, ok := meanRating(b.in.PriorObservations); ok && previous-current >= ratingDropThreshold-1e-9 {
			items = append(items, fmt.Sprintf("Disminución del rendimiento: Se ha detectado una caída notable en el rendimiento general del niño/a este mes (promedio actual: %.1f, mes anterior: %.1f). Se recomienda investigar las posibles causas.", current, previous))
		}
	}

	negativeDays, disruptiveDays := 0, 0
	for _, o := range b.in.Observations {
		if o.Emotion.Polarity() == models.PolarityNegative {
			negativeDays++
		}
		if o.Behavior.Disruptive() {
			disruptiveDays++
		}
	}
	if negativeDays >= negativeEmotionDaysThreshold {
		items = append(items, fmt.Sprintf("Estado emocional: Se han registrado estados emocionales negativos en %d ocasiones durante el mes. Es importante ofrecer apoyo emocional y un espacio de diálogo.", negativeDays))
	}

	for _, category := range []models.IncidentCategory{models.IncidentHealth, models.IncidentEmotional} {
		count := 0
		for _, inc := range b.critical {
			if inc.Category == category {
				count++
			}
		}
		switch {
		case count == 1:
			items = append(items, fmt.Sprintf("Novedades de %s: Se ha registrado 1 novedad crítica de alta prioridad este mes. Se requiere seguimiento cercano y articulación con la familia.", category.Label()))
		case count > 1:
			items = append(items, fmt.Sprintf("Novedades de %s: Se han registrado %d novedades críticas de alta prioridad este mes. Se requiere seguimiento cercano y articulación con la familia.", category.Label(), count))
		}
	}

	if pct := b.eval.AttendancePercentage; pct != nil && *pct < criticalAttendance {
		items = append(items, fmt.Sprintf("Inasistencia crítica: El porcentaje de asistencia (%d%%) es muy bajo y requiere una intervención inmediata para garantizar la continuidad del proceso pedagógico.", *pct))
	}

	if disruptiveDays >= disruptiveDaysThreshold {
		items = append(items, fmt.Sprintf("Comportamiento: Se observó un comportamiento disruptivo en %d días, lo que sugiere la necesidad de implementar estrategias de manejo conductual y apoyo.", disruptiveDays))
	}

	b.eval.Alerts = bulleted(items, noAlertsText)
}

func (b *evaluationBuilder) conclusion() {
	var opening string
	switch b.eval.AchievementLevel {
	case models.AchievementHigh:
		opening = "mostró un desarrollo sobresaliente, cumpliendo consistentemente con los objetivos esperados."
	case models.AchievementAdequate:
		opening = "mostró un progreso constante y adecuado a su etapa de desarrollo."
	default:
		opening = "se encontró en un proceso que requiere apoyo para afianzar los aprendizajes."
	}
	parts := []string{fmt.Sprintf("Durante el mes de %s, el niño/a %s", models.MonthNameES(b.eval.MonthEnd), opening)}

	if b.eval.DominantBehavior != "" && b.emotion != "" {
		parts = append(parts, fmt.Sprintf("Su comportamiento predominante fue '%s', manifestando principalmente un estado de %s.",
			b.eval.DominantBehavior.Label(), b.emotion.Noun()))
	}

	switch b.eval.Trend {
	case models.TrendAdvances:
		parts = append(parts, "Se destaca una clara tendencia de avance respecto al mes anterior.")
	case models.TrendRetreats:
		parts = append(parts, "Se observó un retroceso en su desempeño general, lo cual requiere atención.")
	}

	var remarks []string
	for _, o := range b.in.Observations {
		if len(remarks) == maxQuotedRemarks {
			break
		}
		if o.Relevant && o.Remark != nil && strings.TrimSpace(*o.Remark) != "" {
			remarks = append(remarks, strings.TrimSpace(*o.Remark))
		}
	}
	if len(remarks) > 0 {
		parts = append(parts, fmt.Sprintf("El educador destacó como observaciones relevantes: \"%s\".", strings.Join(remarks, ". ")))
	}

	if len(b.gaps) > 0 || len(b.critical) > 0 {
		parts = append(parts, focusRecommendation)
	} else {
		parts = append(parts, continueRecommendation)
	}

	b.eval.Conclusion = strings.Join(parts, " ")
}
