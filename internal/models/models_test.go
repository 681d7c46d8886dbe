package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDimension(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Dimension
		ok    bool
	}{
		{name: "cognitive", input: "Dimensión Cognitiva", want: DimensionCognitive, ok: true},
		{name: "language alias", input: "Lenguaje y expresión", want: DimensionCommunicative, ok: true},
		{name: "socio affective", input: "SOCIO-AFECTIVA", want: DimensionSocioAffective, ok: true},
		{name: "motor", input: "Motricidad fina", want: DimensionPhysicalMotor, ok: true},
		{name: "first match wins", input: "cognitiva y comunicativa", want: DimensionCognitive, ok: true},
		{name: "blank", input: "   ", ok: false},
		{name: "unknown", input: "Artística", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ClassifyDimension(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIncidentPriorityAndCritical(t *testing.T) {
	assert.Equal(t, 5, IncidentHealth.Priority())
	assert.Equal(t, 4, IncidentEmotional.Priority())
	assert.Equal(t, 3, IncidentAbsence.Priority())
	assert.Equal(t, 1, IncidentOther.Priority())

	assert.True(t, Incident{Category: IncidentHealth}.Critical())
	assert.True(t, Incident{Category: IncidentEmotional}.Critical())
	assert.False(t, Incident{Category: IncidentNoVaccination}.Critical(), "priority 4 outside health/emotional")
	assert.False(t, Incident{Category: IncidentAbsence}.Critical())
}

func TestBehaviorClassification(t *testing.T) {
	assert.Equal(t, PolarityPositive, BehaviorParticipative.Polarity())
	assert.Equal(t, PolarityNegative, BehaviorAggressive.Polarity())
	assert.Equal(t, PolarityNeutral, BehaviorCalm.Polarity())
	assert.True(t, BehaviorDifficulty.Disruptive())
	assert.False(t, BehaviorWithdrawn.Disruptive())

	assert.Equal(t, ParticipationHigh, BehaviorParticipative.Participation())
	assert.Equal(t, ParticipationMedium, BehaviorCollaborative.Participation())
	assert.Equal(t, ParticipationLow, BehaviorCalm.Participation())
	assert.Equal(t, ParticipationUnset, Behavior("").Participation())

	assert.False(t, Behavior("sleepy").Valid())
	assert.Equal(t, PolarityNegative, EmotionAnxious.Polarity())
	assert.Equal(t, PolarityNeutral, EmotionShy.Polarity())
	assert.Equal(t, "alegría", EmotionHappy.Noun())
}

func TestMonthHelpers(t *testing.T) {
	leap := time.Date(2024, time.February, 10, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), MonthStart(leap))
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), MonthEnd(leap))
	assert.Equal(t, time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), PreviousMonthEnd(leap))
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), NextMonthEnd(leap))

	january := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), PreviousMonthEnd(january))
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), NextMonthEnd(january))

	assert.True(t, IsMonthEnd(january))
	assert.False(t, IsMonthEnd(leap))
	assert.False(t, IsMonthEnd(time.Time{}))
	assert.Equal(t, "Febrero", MonthNameES(leap))
}

func TestNullableCategoricalColumns(t *testing.T) {
	var trend Trend
	require.NoError(t, trend.Scan(nil))
	assert.Equal(t, TrendUnset, trend)
	require.NoError(t, trend.Scan([]byte("advances")))
	assert.Equal(t, TrendAdvances, trend)

	var behavior Behavior
	assert.Error(t, behavior.Scan(42))

	value, err := AchievementUnset.Value()
	require.NoError(t, err)
	assert.Nil(t, value)

	value, err = ParticipationHigh.Value()
	require.NoError(t, err)
	assert.Equal(t, "high", value)
}

func TestAchievementLabel(t *testing.T) {
	assert.Equal(t, "Alto", AchievementHigh.Label())
	assert.Equal(t, "En Proceso", AchievementInProgress.Label())
	assert.Equal(t, "Sin datos", AchievementUnset.Label())
}
