package program

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []Exercise {
	return []Exercise{
		{ID: "squat", Name: "Squats", Duration: 30},
		{ID: "plank", Name: "Plank", Duration: 45},
		{ID: "jacks", Name: "Jumping jacks", Duration: 20},
	}
}

func TestNewExercise(t *testing.T) {
	ex, err := NewExercise("  Burpees ", 40)
	require.NoError(t, err)
	assert.Equal(t, "Burpees", ex.Name)
	assert.Equal(t, 40, ex.Duration)
	assert.NotEmpty(t, ex.ID)

	other, err := NewExercise("Burpees", 40)
	require.NoError(t, err)
	assert.NotEqual(t, ex.ID, other.ID)
}

func TestNewExerciseValidation(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		duration int
		code     ErrorCode
	}{
		{"blank name", "   ", 30, EmptyName},
		{"zero duration", "Plank", 0, InvalidDuration},
		{"negative duration", "Plank", -5, InvalidDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExercise(tt.in, tt.duration)
			require.Error(t, err)
			assert.True(t, HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestBuildExpandsRepetitions(t *testing.T) {
	p, err := Build("Leg day", []Selection{
		{ExerciseID: "squat", RepetitionCount: 3},
		{ExerciseID: "plank", RepetitionCount: 1},
	}, false, 1, testCatalog())
	require.NoError(t, err)

	require.Len(t, p.Steps, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, "Squats", p.Steps[i].Exercise.Name)
		assert.Equal(t, i+1, p.Steps[i].RepetitionIndex)
		assert.Equal(t, 3, p.Steps[i].RepetitionCount)
		assert.True(t, p.Steps[i].Repeated())
	}
	assert.Equal(t, "Plank", p.Steps[3].Exercise.Name)
	assert.Equal(t, 1, p.Steps[3].RepetitionIndex)
	assert.False(t, p.Steps[3].Repeated())

	assert.Equal(t, "Leg day", p.Name)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, 30*3+45, p.TotalDuration())
}

func TestBuildSnapshotsCatalog(t *testing.T) {
	catalog := testCatalog()
	p, err := Build("Core", []Selection{{ExerciseID: "plank", RepetitionCount: 1}}, false, 1, catalog)
	require.NoError(t, err)

	catalog[1].Duration = 999
	catalog[1].Name = "Renamed"

	assert.Equal(t, 45, p.Steps[0].Duration())
	assert.Equal(t, "Plank", p.Steps[0].Exercise.Name)
}

func TestBuildNormalizesCycleCount(t *testing.T) {
	sel := []Selection{{ExerciseID: "jacks", RepetitionCount: 1}}

	p, err := Build("Warmup", sel, false, 5, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, 1, p.CycleCount)
	assert.False(t, p.IsCyclic)

	p, err = Build("Circuit", sel, true, 3, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, 3, p.CycleCount)
	assert.True(t, p.IsCyclic)
	assert.Equal(t, 60, p.TotalDuration())
	assert.Equal(t, 3, p.TotalOccurrences())
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name       string
		progName   string
		selections []Selection
		cyclic     bool
		cycles     int
		code       ErrorCode
	}{
		{"blank name", " ", []Selection{{"squat", 1}}, false, 1, EmptyName},
		{"no selections", "A", nil, false, 1, EmptySelection},
		{"unknown exercise", "A", []Selection{{"squat", 1}, {"ghost", 1}}, false, 1, UnknownExercise},
		{"zero repetitions", "A", []Selection{{"squat", 0}}, false, 1, InvalidRepetition},
		{"cyclic zero cycles", "A", []Selection{{"squat", 1}}, true, 0, InvalidCycleCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.progName, tt.selections, tt.cyclic, tt.cycles, testCatalog())
			require.Error(t, err)
			assert.True(t, HasCode(err, tt.code), "got %v", err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestBuildRejectsBadCatalogEntry(t *testing.T) {
	catalog := append(testCatalog(), Exercise{ID: "broken", Name: "Broken", Duration: 0})

	_, err := Build("A", []Selection{{"squat", 1}, {"broken", 2}}, false, 1, catalog)
	require.Error(t, err)
	assert.True(t, HasCode(err, InvalidDuration), "got %v", err)

	// an unselected bad entry does not matter
	_, err = Build("A", []Selection{{"squat", 1}}, false, 1, catalog)
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	good, err := Build("Good", []Selection{{"squat", 2}}, true, 2, testCatalog())
	require.NoError(t, err)
	assert.NoError(t, good.Validate())

	bad := good.Clone()
	bad.IsCyclic = false
	assert.True(t, HasCode(bad.Validate(), InvalidCycleCount))

	bad = good.Clone()
	bad.Steps[0].Exercise.Duration = 0
	assert.True(t, HasCode(bad.Validate(), InvalidDuration))

	bad = good.Clone()
	bad.Steps[1].RepetitionIndex = 3
	assert.True(t, HasCode(bad.Validate(), InvalidRepetition))

	bad = good.Clone()
	bad.Steps = nil
	assert.True(t, HasCode(bad.Validate(), EmptySelection))
}

func TestIsLastStep(t *testing.T) {
	p, err := Build("Circuit", []Selection{{"squat", 1}, {"plank", 1}, {"jacks", 1}}, true, 2, testCatalog())
	require.NoError(t, err)

	for cycle := 1; cycle <= 2; cycle++ {
		for idx := 0; idx < 3; idx++ {
			want := idx == 2 && cycle == 2
			assert.Equal(t, want, p.IsLastStep(idx, cycle), fmt.Sprintf("idx=%d cycle=%d", idx, cycle))
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p, err := Build("Core", []Selection{{"plank", 2}}, false, 1, testCatalog())
	require.NoError(t, err)

	c := p.Clone()
	c.Steps[0].Exercise.Name = "Changed"
	c.Steps = append(c.Steps, c.Steps[0])

	assert.Equal(t, "Plank", p.Steps[0].Exercise.Name)
	assert.Len(t, p.Steps, 2)
}

func TestValidationErrorMessage(t *testing.T) {
	_, err := Build("", []Selection{{"squat", 1}}, false, 1, testCatalog())
	require.Error(t, err)
	assert.Equal(t, "invalid name: workout name is required", err.Error())
}
