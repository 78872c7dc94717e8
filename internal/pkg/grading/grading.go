// Package grading computes final grades from weighted component scores.
//
// A final grade is the weighted average of whichever component scores have
// been recorded, with the weights renormalized over the present components.
// A student with only a final exam and coursework recorded is graded on
// those two components alone.
package grading

import "math"

// Component identifies one graded input contributing to the final grade.
type Component string

// Graded components.
const (
	ComponentMidterm1      Component = "MIDTERM_1"
	ComponentMidterm2      Component = "MIDTERM_2"
	ComponentFinal         Component = "FINAL"
	ComponentCoursework    Component = "COURSEWORK"
	ComponentParticipation Component = "PARTICIPATION"
)

// Weights maps each component to its share of the total grade.
// The weights sum to 1.0 when every component is present.
var Weights = map[Component]float64{
	ComponentMidterm1:      0.25,
	ComponentMidterm2:      0.25,
	ComponentFinal:         0.30,
	ComponentCoursework:    0.15,
	ComponentParticipation: 0.05,
}

// MinScore and MaxScore bound every component score and the final grade.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// PartialScores is a sparse mapping from component to recorded score.
// Components absent from the map have not been graded yet.
type PartialScores map[Component]float64

// IsValidComponent reports whether name is a known graded component.
func IsValidComponent(name Component) bool {
	_, ok := Weights[name]
	return ok
}

// IsValidScore reports whether a score lies within the accepted range.
func IsValidScore(score float64) bool {
	return score >= MinScore && score <= MaxScore
}

// ComputeFinalGrade returns the weighted average of the present component
// scores, rounded to two decimal places. The second return value is false
// when no component has been recorded, meaning there is no final grade yet.
func ComputeFinalGrade(scores PartialScores) (float64, bool) {
	var weightedSum, weightSum float64

	for component, score := range scores {
		weight, ok := Weights[component]
		if !ok {
			continue
		}
		weightedSum += score * weight
		weightSum += weight
	}

	if weightSum == 0 {
		return 0, false
	}

	return round2(weightedSum / weightSum), true
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
