package export

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/pipefit/internal/program"
)

// MergeExercises appends the incoming exercises whose names are not taken
// yet (case-insensitively), each under a fresh id. It returns the merged
// catalog and how many were added.
func MergeExercises(existing, incoming []program.Exercise) ([]program.Exercise, int) {
	merged := append([]program.Exercise(nil), existing...)
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, ex := range existing {
		seen[nameKey(ex.Name)] = true
	}
	added := 0
	for _, ex := range incoming {
		key := nameKey(ex.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		ex.ID = uuid.NewString()
		merged = append(merged, ex)
		added++
	}
	return merged, added
}

// MergeWorkouts is MergeExercises for workouts. Added workouts are stamped
// with now.
func MergeWorkouts(existing, incoming []program.Program, now time.Time) ([]program.Program, int) {
	merged := make([]program.Program, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, p := range existing {
		merged = append(merged, p.Clone())
		seen[nameKey(p.Name)] = true
	}
	added := 0
	for _, p := range incoming {
		key := nameKey(p.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		c := p.Clone()
		c.ID = uuid.NewString()
		c.CreatedAt = now.UTC()
		merged = append(merged, c)
		added++
	}
	return merged, added
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
