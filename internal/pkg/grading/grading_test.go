package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFinalGradeAllComponents(t *testing.T) {
	scores := PartialScores{
		ComponentMidterm1:      80,
		ComponentMidterm2:      90,
		ComponentFinal:         70,
		ComponentCoursework:    100,
		ComponentParticipation: 60,
	}

	grade, ok := ComputeFinalGrade(scores)
	assert.True(t, ok)
	// 80*0.25 + 90*0.25 + 70*0.30 + 100*0.15 + 60*0.05 = 81.5
	assert.Equal(t, 81.5, grade)
}

func TestComputeFinalGradeRenormalizesPartialComponents(t *testing.T) {
	scores := PartialScores{
		ComponentFinal:      80,
		ComponentCoursework: 90,
	}

	grade, ok := ComputeFinalGrade(scores)
	assert.True(t, ok)
	// (80*0.30 + 90*0.15) / (0.30 + 0.15) = 83.33
	assert.Equal(t, 83.33, grade)
}

func TestComputeFinalGradeSingleComponent(t *testing.T) {
	grade, ok := ComputeFinalGrade(PartialScores{ComponentParticipation: 55})
	assert.True(t, ok)
	assert.Equal(t, 55.0, grade)
}

func TestComputeFinalGradeNoComponents(t *testing.T) {
	grade, ok := ComputeFinalGrade(PartialScores{})
	assert.False(t, ok)
	assert.Equal(t, 0.0, grade)

	grade, ok = ComputeFinalGrade(nil)
	assert.False(t, ok)
	assert.Equal(t, 0.0, grade)
}

func TestComputeFinalGradeIgnoresUnknownComponents(t *testing.T) {
	scores := PartialScores{
		Component("EXTRA_CREDIT"): 100,
		ComponentFinal:            80,
	}

	grade, ok := ComputeFinalGrade(scores)
	assert.True(t, ok)
	assert.Equal(t, 80.0, grade)
}

func TestComputeFinalGradeIsDeterministic(t *testing.T) {
	scores := PartialScores{
		ComponentMidterm1:   73.5,
		ComponentFinal:      81.25,
		ComponentCoursework: 66,
	}

	first, ok := ComputeFinalGrade(scores)
	assert.True(t, ok)

	for i := 0; i < 10; i++ {
		again, ok := ComputeFinalGrade(scores)
		assert.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestComputeFinalGradeRounding(t *testing.T) {
	// (70*0.25 + 80*0.30) / 0.55 = 75.4545... -> 75.45
	grade, ok := ComputeFinalGrade(PartialScores{
		ComponentMidterm1: 70,
		ComponentFinal:    80,
	})
	assert.True(t, ok)
	assert.Equal(t, 75.45, grade)
}

func TestIsValidComponent(t *testing.T) {
	assert.True(t, IsValidComponent(ComponentMidterm1))
	assert.True(t, IsValidComponent(ComponentParticipation))
	assert.False(t, IsValidComponent(Component("HOMEWORK")))
}

func TestIsValidScore(t *testing.T) {
	assert.True(t, IsValidScore(0))
	assert.True(t, IsValidScore(100))
	assert.True(t, IsValidScore(69.99))
	assert.False(t, IsValidScore(-0.01))
	assert.False(t, IsValidScore(100.01))
}
