package models

// Polarity classifies a categorical observation as favourable or not.
type Polarity int

const (
	PolarityNeutral Polarity = iota
	PolarityPositive
	PolarityNegative
)

// Behavior is the general behaviour category recorded in a daily observation.
type Behavior string

const (
	BehaviorParticipative Behavior = "participative"
	BehaviorCollaborative Behavior = "collaborative"
	BehaviorCalm          Behavior = "calm"
	BehaviorRestless      Behavior = "restless"
	BehaviorImpulsive     Behavior = "impulsive"
	BehaviorIsolated      Behavior = "isolated"
	BehaviorWithdrawn     Behavior = "withdrawn"
	BehaviorDifficulty    Behavior = "difficulty"
	BehaviorAggressive    Behavior = "aggressive"
)

// Valid reports whether the behaviour is a known category.
func (b Behavior) Valid() bool {
	switch b {
	case BehaviorParticipative, BehaviorCollaborative, BehaviorCalm, BehaviorRestless, BehaviorImpulsive,
		BehaviorIsolated, BehaviorWithdrawn, BehaviorDifficulty, BehaviorAggressive:
		return true
	default:
		return false
	}
}

// Polarity returns whether the behaviour counts as a strength or a concern.
func (b Behavior) Polarity() Polarity {
	switch b {
	case BehaviorParticipative, BehaviorCollaborative:
		return PolarityPositive
	case BehaviorWithdrawn, BehaviorDifficulty, BehaviorAggressive:
		return PolarityNegative
	default:
		return PolarityNeutral
	}
}

// Disruptive reports behaviours counted by the behaviour alert.
func (b Behavior) Disruptive() bool {
	return b == BehaviorAggressive || b == BehaviorDifficulty
}

// Participation maps the dominant behaviour to a participation level.
func (b Behavior) Participation() Participation {
	switch b {
	case "":
		return ParticipationUnset
	case BehaviorParticipative:
		return ParticipationHigh
	case BehaviorCollaborative:
		return ParticipationMedium
	default:
		return ParticipationLow
	}
}

// Label returns the display text used in reports.
func (b Behavior) Label() string {
	switch b {
	case BehaviorParticipative:
		return "Participativo"
	case BehaviorCollaborative:
		return "Colaborativo"
	case BehaviorCalm:
		return "Tranquilo"
	case BehaviorRestless:
		return "Inquieto"
	case BehaviorImpulsive:
		return "Impulsivo"
	case BehaviorIsolated:
		return "Aislado"
	case BehaviorWithdrawn:
		return "Retraído"
	case BehaviorDifficulty:
		return "Con dificultad"
	case BehaviorAggressive:
		return "Agresivo"
	default:
		return string(b)
	}
}

// EmotionalState is the emotional category recorded in a daily observation.
type EmotionalState string

const (
	EmotionHappy        EmotionalState = "happy"
	EmotionCalm         EmotionalState = "calm"
	EmotionCurious      EmotionalState = "curious"
	EmotionMotivated    EmotionalState = "motivated"
	EmotionAffectionate EmotionalState = "affectionate"
	EmotionTired        EmotionalState = "tired"
	EmotionSad          EmotionalState = "sad"
	EmotionAnxious      EmotionalState = "anxious"
	EmotionFrustrated   EmotionalState = "frustrated"
	EmotionIrritable    EmotionalState = "irritable"
	EmotionShy          EmotionalState = "shy"
	EmotionWithdrawn    EmotionalState = "withdrawn"
)

// Valid reports whether the emotional state is a known category.
func (e EmotionalState) Valid() bool {
	switch e {
	case EmotionHappy, EmotionCalm, EmotionCurious, EmotionMotivated, EmotionAffectionate, EmotionTired,
		EmotionSad, EmotionAnxious, EmotionFrustrated, EmotionIrritable, EmotionShy, EmotionWithdrawn:
		return true
	default:
		return false
	}
}

// Polarity returns whether the state counts as a strength or a concern.
func (e EmotionalState) Polarity() Polarity {
	switch e {
	case EmotionHappy, EmotionCalm, EmotionMotivated, EmotionCurious:
		return PolarityPositive
	case EmotionSad, EmotionIrritable, EmotionAnxious, EmotionFrustrated:
		return PolarityNegative
	default:
		return PolarityNeutral
	}
}

// Label returns the display text used in reports.
func (e EmotionalState) Label() string {
	switch e {
	case EmotionHappy:
		return "Alegre"
	case EmotionCalm:
		return "Tranquilo"
	case EmotionCurious:
		return "Curioso"
	case EmotionMotivated:
		return "Motivado"
	case EmotionAffectionate:
		return "Cariñoso"
	case EmotionTired:
		return "Cansado"
	case EmotionSad:
		return "Triste"
	case EmotionAnxious:
		return "Ansioso"
	case EmotionFrustrated:
		return "Frustrado"
	case EmotionIrritable:
		return "Irritable"
	case EmotionShy:
		return "Tímido"
	case EmotionWithdrawn:
		return "Aislado"
	default:
		return string(e)
	}
}

// Noun returns the state phrased as a noun ("un estado de alegría").
func (e EmotionalState) Noun() string {
	switch e {
	case EmotionHappy:
		return "alegría"
	case EmotionCalm:
		return "tranquilidad"
	case EmotionCurious:
		return "curiosidad"
	case EmotionMotivated:
		return "motivación"
	case EmotionAffectionate:
		return "afecto"
	case EmotionTired:
		return "cansancio"
	case EmotionSad:
		return "tristeza"
	case EmotionAnxious:
		return "ansiedad"
	case EmotionFrustrated:
		return "frustración"
	case EmotionIrritable:
		return "irritabilidad"
	case EmotionShy:
		return "timidez"
	case EmotionWithdrawn:
		return "aislamiento"
	default:
		return string(e)
	}
}
