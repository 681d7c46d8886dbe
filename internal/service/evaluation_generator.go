package service

import (
	"math"
	"sort"
	"time"

	"github.com/noah-isme/icbf-conecta-api/internal/models"
)

const (
	highAchievementThreshold     = 4.5
	adequateAchievementThreshold = 3.0
	lowRatingCeiling             = 2
	lowRatingDaysThreshold       = 2
	dimensionHighShare           = 0.6
	excellentAttendance          = 90
	lowAttendance                = 85
	criticalAttendance           = 70
	absenceIncidentThreshold     = 2
	ratingDropThreshold          = 1.0
	negativeEmotionDaysThreshold = 4
	disruptiveDaysThreshold      = 4
	maxQuotedRemarks             = 2
)

// monthlyInputs is everything the generator reads for one child and month.
type monthlyInputs struct {
	Observations      []models.DailyObservation
	PriorObservations []models.DailyObservation
	Attendance        []models.AttendanceRecord
	Incidents         []models.Incident
	Prior             *models.MonthlyEvaluation
}

// evaluationBuilder runs the generation steps in order; later steps read fields set by earlier ones.
type evaluationBuilder struct {
	in       monthlyInputs
	eval     *models.MonthlyEvaluation
	byDim    map[models.Dimension][]models.DimensionAssessment
	emotion  models.EmotionalState
	critical []models.Incident
	gaps     []string
}

// generateEvaluation computes every derived field of the evaluation for childID and monthEnd. The
// result depends only on its arguments.
func generateEvaluation(childID string, monthEnd time.Time, in monthlyInputs) *models.MonthlyEvaluation {
	in.Observations = sortedByDate(in.Observations)
	b := &evaluationBuilder{
		in:   in,
		eval: &models.MonthlyEvaluation{ChildID: childID, MonthEnd: monthEnd},
	}

	b.eval.AttendancePercentage = attendancePercentage(in.Attendance)
	if len(in.Observations) == 0 {
		b.fillInsufficientData()
		return b.eval
	}

	b.aggregate()
	b.general()
	b.dimensions()
	b.strengths()
	b.improvementAreas()
	b.alerts()
	b.conclusion()
	return b.eval
}

func (b *evaluationBuilder) fillInsufficientData() {
	for _, d := range models.Dimensions {
		b.eval.SetNarrative(d, insufficientDimensionText(d))
	}
	b.eval.Strengths = noDataStrengthsText
	b.eval.ImprovementAreas = noDataImprovementsText
	b.eval.Alerts = noAlertsText
	b.eval.Conclusion = noDataConclusionText
}

func (b *evaluationBuilder) aggregate() {
	b.byDim = make(map[models.Dimension][]models.DimensionAssessment, len(models.Dimensions))
	emotions := make([]models.EmotionalState, 0, len(b.in.Observations))
	for _, o := range b.in.Observations {
		for _, a := range o.Assessments {
			if d, ok := models.ClassifyDimension(a.DimensionName); ok {
				b.byDim[d] = append(b.byDim[d], a)
			}
		}
		if o.Emotion != "" {
			emotions = append(emotions, o.Emotion)
		}
	}
	b.emotion, _ = mostFrequent(emotions)

	for _, inc := range b.in.Incidents {
		if inc.Critical() {
			b.critical = append(b.critical, inc)
		}
	}
}

func (b *evaluationBuilder) general() {
	b.eval.AchievementLevel = achievementLevel(b.in.Observations)
	b.eval.Trend = computeTrend(b.eval.AchievementLevel, b.in.Prior)

	behaviors := make([]models.Behavior, 0, len(b.in.Observations))
	for _, o := range b.in.Observations {
		if o.Behavior != "" {
			behaviors = append(behaviors, o.Behavior)
		}
	}
	b.eval.DominantBehavior, _ = mostFrequent(behaviors)
	b.eval.DominantParticipation = b.eval.DominantBehavior.Participation()
}

// achievementLevel buckets the mean of the non-null ratings. Observations without any rating still
// count as in progress.
func achievementLevel(observations []models.DailyObservation) models.AchievementLevel {
	if len(observations) == 0 {
		return models.AchievementUnset
	}
	mean, ok := meanRating(observations)
	if !ok {
		return models.AchievementInProgress
	}
	return achievementForMean(mean)
}

func achievementForMean(mean float64) models.AchievementLevel {
	switch {
	case mean >= highAchievementThreshold:
		return models.AchievementHigh
	case mean >= adequateAchievementThreshold:
		return models.AchievementAdequate
	default:
		return models.AchievementInProgress
	}
}

// computeTrend applies the single-step transition table. Any change that does not land on High or on
// In Progress is Steady, so In Progress to Adequate does not count as an advance.
func computeTrend(current models.AchievementLevel, prior *models.MonthlyEvaluation) models.Trend {
	if current == models.AchievementUnset {
		return models.TrendUnset
	}
	if prior == nil || prior.AchievementLevel == models.AchievementUnset {
		return models.TrendNoPriorData
	}
	switch {
	case current == prior.AchievementLevel:
		return models.TrendSteady
	case current == models.AchievementHigh:
		return models.TrendAdvances
	case current == models.AchievementInProgress:
		return models.TrendRetreats
	default:
		return models.TrendSteady
	}
}

func attendancePercentage(records []models.AttendanceRecord) *int {
	if len(records) == 0 {
		return nil
	}
	present := 0
	for _, r := range records {
		if r.Status == models.AttendanceStatusPresent {
			present++
		}
	}
	pct := int(math.Round(float64(present) / float64(len(records)) * 100))
	return &pct
}

func meanRating(observations []models.DailyObservation) (float64, bool) {
	sum, count := 0, 0
	for _, o := range observations {
		if o.Rating != nil {
			sum += *o.Rating
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return float64(sum) / float64(count), true
}

// mostFrequent returns the most common value; ties go to the value seen first.
func mostFrequent[T comparable](values []T) (T, bool) {
	var best T
	if len(values) == 0 {
		return best, false
	}
	counts := make(map[T]int, len(values))
	bestCount := 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, true
}

func sortedByDate(observations []models.DailyObservation) []models.DailyObservation {
	out := make([]models.DailyObservation, len(observations))
	copy(out, observations)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
