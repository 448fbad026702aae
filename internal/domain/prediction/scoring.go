package prediction

// Outcome is the result class of a scoreline.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeAway Outcome = "away"
	OutcomeDraw Outcome = "draw"
)

const (
	PointsExactScore    = 5
	PointsOneExactSide  = 3
	PointsCloseScore    = 2
	PointsCorrectResult = 1
	PointsMiss          = 0
)

func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHome
	case home < away:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

// Score awards points for a predicted scoreline against the actual one.
// Rules are checked from most to least specific; the first match wins.
func Score(predictedHome, predictedAway, actualHome, actualAway int) int {
	if predictedHome == actualHome && predictedAway == actualAway {
		return PointsExactScore
	}

	if OutcomeOf(predictedHome, predictedAway) != OutcomeOf(actualHome, actualAway) {
		return PointsMiss
	}

	if predictedHome == actualHome || predictedAway == actualAway {
		return PointsOneExactSide
	}
	if absInt(predictedHome-actualHome) <= 1 && absInt(predictedAway-actualAway) <= 1 {
		return PointsCloseScore
	}

	return PointsCorrectResult
}

// ScorePrediction scores p against a final result.
func ScorePrediction(p Prediction, actualHome, actualAway int) int {
	return Score(p.PredictedHome, p.PredictedAway, actualHome, actualAway)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
