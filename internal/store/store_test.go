package store

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/pipefit/internal/program"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock pins the store's timestamps to at.
func fixedClock(s *Store, at time.Time) {
	s.now = func() time.Time { return at }
}

// buildWorkout is a test helper that builds a workout from new catalog exercises.
func buildWorkout(t *testing.T, s *Store, name string, cyclic bool, cycles int, durations ...int) program.Program {
	t.Helper()
	var sel []program.Selection
	for i, d := range durations {
		ex, err := s.CreateExercise(name+" ex"+string(rune('A'+i)), d)
		if err != nil {
			t.Fatalf("create exercise: %v", err)
		}
		sel = append(sel, program.Selection{ExerciseID: ex.ID, RepetitionCount: 1})
	}
	catalog, err := s.ListExercises()
	if err != nil {
		t.Fatalf("list exercises: %v", err)
	}
	p, err := program.Build(name, sel, cyclic, cycles, catalog)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return p
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/pipefit.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateExercise("Squats", 30); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration is not repeated
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	exs, _ := s2.ListExercises()
	if len(exs) != 1 {
		t.Fatalf("expected 1 exercise after reopen, got %d", len(exs))
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Running migrate again should be a no-op
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Exercises
// ============================================================

func TestCreateAndGetExercise(t *testing.T) {
	s := newTestStore(t)

	ex, err := s.CreateExercise("  Push-ups ", 45)
	if err != nil {
		t.Fatal(err)
	}
	if ex.ID == "" {
		t.Fatal("expected an id")
	}
	if ex.Name != "Push-ups" {
		t.Fatalf("expected trimmed name, got %q", ex.Name)
	}

	got, err := s.GetExercise(ex.ID)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *ex {
		t.Fatalf("got %+v, want %+v", got, ex)
	}
}

func TestCreateExerciseInvalid(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name     string
		exName   string
		duration int
		code     program.ErrorCode
	}{
		{"blank name", "  ", 30, program.EmptyName},
		{"zero duration", "Plank", 0, program.InvalidDuration},
		{"negative duration", "Plank", -5, program.InvalidDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateExercise(tt.exName, tt.duration)
			if !program.HasCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
		})
	}

	exs, _ := s.ListExercises()
	if len(exs) != 0 {
		t.Fatalf("invalid exercises must not be stored, got %d", len(exs))
	}
}

func TestGetExerciseNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetExercise("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListExercisesKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"Squats", "Burpees", "Lunges"} {
		if _, err := s.CreateExercise(name, 30); err != nil {
			t.Fatal(err)
		}
	}

	exs, err := s.ListExercises()
	if err != nil {
		t.Fatal(err)
	}
	if len(exs) != 3 {
		t.Fatalf("expected 3 exercises, got %d", len(exs))
	}
	if exs[0].Name != "Squats" || exs[2].Name != "Lunges" {
		t.Fatalf("unexpected order: %v", exs)
	}
}

func TestDeleteExercise(t *testing.T) {
	s := newTestStore(t)
	ex, _ := s.CreateExercise("Squats", 30)

	if err := s.DeleteExercise(ex.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteExercise(ex.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteExerciseKeepsWorkoutCopy(t *testing.T) {
	s := newTestStore(t)
	p := buildWorkout(t, s, "Legs", false, 1, 30)
	if err := s.SaveProgram(p); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteExercise(p.Steps[0].Exercise.ID); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetProgram(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Steps[0].Exercise.Name != p.Steps[0].Exercise.Name {
		t.Fatalf("workout lost its exercise copy: %+v", got.Steps[0])
	}
}

func TestReplaceExercises(t *testing.T) {
	s := newTestStore(t)
	s.CreateExercise("Old", 10)

	err := s.ReplaceExercises([]program.Exercise{
		{ID: "b", Name: "Second", Duration: 20},
		{Name: "No id", Duration: 5},
	})
	if err != nil {
		t.Fatal(err)
	}

	exs, _ := s.ListExercises()
	if len(exs) != 2 {
		t.Fatalf("expected 2 exercises, got %d", len(exs))
	}
	if exs[0].ID != "b" || exs[0].Name != "Second" {
		t.Fatalf("unexpected first exercise: %+v", exs[0])
	}
	if exs[1].ID == "" {
		t.Fatal("expected a generated id")
	}
}

func TestReplaceExercisesInvalidKeepsCatalog(t *testing.T) {
	s := newTestStore(t)
	s.CreateExercise("Keep", 10)

	err := s.ReplaceExercises([]program.Exercise{{ID: "x", Name: "Bad", Duration: 0}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	exs, _ := s.ListExercises()
	if len(exs) != 1 || exs[0].Name != "Keep" {
		t.Fatalf("catalog changed: %v", exs)
	}
}

// ============================================================
// Workouts
// ============================================================

func TestSaveAndGetProgram(t *testing.T) {
	s := newTestStore(t)
	p := buildWorkout(t, s, "Circuit", true, 3, 30, 20)

	if err := s.SaveProgram(p); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetProgram(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Circuit" || !got.IsCyclic || got.CycleCount != 3 {
		t.Fatalf("unexpected workout: %+v", got)
	}
	if len(got.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(got.Steps))
	}
	if got.Steps[1] != p.Steps[1] {
		t.Fatalf("step mismatch: %+v vs %+v", got.Steps[1], p.Steps[1])
	}
	if got.TotalDuration() != 150 {
		t.Fatalf("expected total 150, got %d", got.TotalDuration())
	}
	if !got.CreatedAt.Equal(p.CreatedAt.Truncate(time.Second)) {
		t.Fatalf("created_at %v, want %v", got.CreatedAt, p.CreatedAt)
	}
}

func TestSaveProgramRepeatedSteps(t *testing.T) {
	s := newTestStore(t)
	ex, _ := s.CreateExercise("Sprint", 15)
	catalog, _ := s.ListExercises()
	p, err := program.Build("Sprints", []program.Selection{{ExerciseID: ex.ID, RepetitionCount: 4}}, false, 1, catalog)
	if err != nil {
		t.Fatal(err)
	}
	s.SaveProgram(p)

	got, _ := s.GetProgram(p.ID)
	if len(got.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(got.Steps))
	}
	for i, st := range got.Steps {
		if st.RepetitionIndex != i+1 || st.RepetitionCount != 4 {
			t.Fatalf("step %d: rep %d/%d", i, st.RepetitionIndex, st.RepetitionCount)
		}
	}
}

func TestSaveProgramOverwrites(t *testing.T) {
	s := newTestStore(t)
	p := buildWorkout(t, s, "Legs", false, 1, 30, 20, 10)
	s.SaveProgram(p)

	p.Name = "Legs v2"
	p.Steps = p.Steps[:1]
	if err := s.SaveProgram(p); err != nil {
		t.Fatal(err)
	}

	all, _ := s.ListPrograms()
	if len(all) != 1 {
		t.Fatalf("expected 1 workout, got %d", len(all))
	}
	if all[0].Name != "Legs v2" || len(all[0].Steps) != 1 {
		t.Fatalf("unexpected workout: %+v", all[0])
	}
}

func TestSaveProgramInvalid(t *testing.T) {
	s := newTestStore(t)
	err := s.SaveProgram(program.Program{ID: "x", Name: "Empty", CycleCount: 1})
	if !program.HasCode(err, program.EmptySelection) {
		t.Fatalf("expected EmptySelection, got %v", err)
	}
}

func TestListPrograms(t *testing.T) {
	s := newTestStore(t)
	a := buildWorkout(t, s, "A", false, 1, 10)
	b := buildWorkout(t, s, "B", true, 2, 20, 30)
	s.SaveProgram(a)
	s.SaveProgram(b)

	all, err := s.ListPrograms()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 workouts, got %d", len(all))
	}
	if all[0].Name != "A" || len(all[1].Steps) != 2 {
		t.Fatalf("unexpected workouts: %+v", all)
	}
}

func TestListProgramsEmpty(t *testing.T) {
	s := newTestStore(t)
	all, err := s.ListPrograms()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("expected 0 workouts, got %d", len(all))
	}
}

func TestSavePrograms(t *testing.T) {
	s := newTestStore(t)
	old := buildWorkout(t, s, "Old", false, 1, 10)
	s.SaveProgram(old)

	a := buildWorkout(t, s, "A", false, 1, 10)
	b := buildWorkout(t, s, "B", false, 1, 20)
	if err := s.SavePrograms([]program.Program{a, b}); err != nil {
		t.Fatal(err)
	}

	all, _ := s.ListPrograms()
	if len(all) != 2 {
		t.Fatalf("expected 2 workouts, got %d", len(all))
	}
	if _, err := s.GetProgram(old.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old workout should be gone, got %v", err)
	}

	// steps of the removed workout cascade away
	var n int
	s.db.QueryRow(`SELECT COUNT(*) FROM workout_steps WHERE workout_id = ?`, old.ID).Scan(&n)
	if n != 0 {
		t.Fatalf("expected orphan steps to be deleted, got %d", n)
	}
}

func TestSaveProgramsInvalidWritesNothing(t *testing.T) {
	s := newTestStore(t)
	keep := buildWorkout(t, s, "Keep", false, 1, 10)
	s.SaveProgram(keep)

	good := buildWorkout(t, s, "Good", false, 1, 10)
	bad := program.Program{ID: "bad", Name: "", CycleCount: 1}
	if err := s.SavePrograms([]program.Program{good, bad}); err == nil {
		t.Fatal("expected validation error")
	}

	all, _ := s.ListPrograms()
	if len(all) != 1 || all[0].Name != "Keep" {
		t.Fatalf("workouts changed: %+v", all)
	}
}

// ============================================================
// Restore
// ============================================================

func TestRestoreReplacesBoth(t *testing.T) {
	s := newTestStore(t)
	s.SaveProgram(buildWorkout(t, s, "Old", false, 1, 10))
	restored := buildWorkout(t, s, "New", false, 1, 20)

	exs := []program.Exercise{{ID: "r1", Name: "Rowing", Duration: 60}}
	if err := s.Restore(exs, []program.Program{restored}, true, true); err != nil {
		t.Fatal(err)
	}

	cat, _ := s.ListExercises()
	if len(cat) != 1 || cat[0].Name != "Rowing" {
		t.Fatalf("catalog: %+v", cat)
	}
	all, _ := s.ListPrograms()
	if len(all) != 1 || all[0].Name != "New" {
		t.Fatalf("workouts: %+v", all)
	}
}

func TestRestoreHonoursMissingSections(t *testing.T) {
	s := newTestStore(t)
	s.SaveProgram(buildWorkout(t, s, "Keep", false, 1, 10))

	exs := []program.Exercise{{ID: "r1", Name: "Rowing", Duration: 60}}
	if err := s.Restore(exs, nil, true, false); err != nil {
		t.Fatal(err)
	}
	all, _ := s.ListPrograms()
	if len(all) != 1 || all[0].Name != "Keep" {
		t.Fatalf("workouts changed: %+v", all)
	}
}

func TestRestoreInvalidWorkoutKeepsCatalog(t *testing.T) {
	s := newTestStore(t)
	s.CreateExercise("Keep", 10)

	exs := []program.Exercise{{ID: "r1", Name: "Rowing", Duration: 60}}
	bad := program.Program{ID: "bad", Name: "", CycleCount: 1}
	if err := s.Restore(exs, []program.Program{bad}, true, true); err == nil {
		t.Fatal("expected validation error")
	}

	cat, _ := s.ListExercises()
	if len(cat) != 1 || cat[0].Name != "Keep" {
		t.Fatalf("catalog changed: %+v", cat)
	}
}

func TestRestoreFailedWriteRollsBack(t *testing.T) {
	s := newTestStore(t)
	keep := buildWorkout(t, s, "Keep", false, 1, 10)
	s.SaveProgram(keep)
	replacement := buildWorkout(t, s, "Replacement", false, 1, 20)

	// duplicate ids pass validation but fail the insert
	exs := []program.Exercise{
		{ID: "dup", Name: "One", Duration: 10},
		{ID: "dup", Name: "Two", Duration: 10},
	}
	if err := s.Restore(exs, []program.Program{replacement}, true, true); err == nil {
		t.Fatal("expected insert error")
	}

	all, _ := s.ListPrograms()
	if len(all) != 1 || all[0].Name != "Keep" {
		t.Fatalf("workouts changed: %+v", all)
	}
	cat, _ := s.ListExercises()
	if len(cat) != 2 {
		t.Fatalf("catalog changed: %+v", cat)
	}
}

func TestDeleteProgram(t *testing.T) {
	s := newTestStore(t)
	p := buildWorkout(t, s, "Legs", false, 1, 10)
	s.SaveProgram(p)

	if err := s.DeleteProgram(p.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteProgram(p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetProgram(p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Runs
// ============================================================

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
	fixedClock(s, start)

	r, err := s.StartRun("w1", "Legs")
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != RunRunning {
		t.Fatalf("expected running, got %s", r.Status)
	}
	if !r.StartedAt.Equal(start) {
		t.Fatalf("started_at %v, want %v", r.StartedAt, start)
	}
	if r.EndedAt != nil {
		t.Fatal("new run should not have ended")
	}

	fixedClock(s, start.Add(10*time.Minute))
	if err := s.FinishRun(r.ID, RunCompleted, 540); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetRun(r.ID)
	if got.Status != RunCompleted || got.WorkSeconds != 540 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.EndedAt == nil || !got.EndedAt.Equal(start.Add(10*time.Minute)) {
		t.Fatalf("unexpected ended_at: %v", got.EndedAt)
	}
}

func TestFinishRunNotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.FinishRun(999, RunStopped, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetRun(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRuns(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	for i, name := range []string{"A", "B", "C"} {
		fixedClock(s, base.Add(time.Duration(i)*time.Hour))
		s.StartRun("w", name)
	}

	runs, err := s.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].WorkoutName != "C" {
		t.Fatalf("expected newest first, got %s", runs[0].WorkoutName)
	}

	limited, _ := s.ListRuns(2)
	if len(limited) != 2 {
		t.Fatalf("expected 2 runs with limit, got %d", len(limited))
	}
}

func TestGetDailyTraining(t *testing.T) {
	s := newTestStore(t)
	day1 := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	add := func(at time.Time, status RunStatus, secs int64) {
		fixedClock(s, at)
		r, err := s.StartRun("w", "Legs")
		if err != nil {
			t.Fatal(err)
		}
		if status != RunRunning {
			s.FinishRun(r.ID, status, secs)
		}
	}
	add(day1, RunCompleted, 600)
	add(day1.Add(time.Hour), RunStopped, 120)
	add(day2, RunCompleted, 300)
	add(day2.Add(time.Hour), RunRunning, 0) // unfinished, excluded

	days, err := s.GetDailyTraining(day1.Add(-time.Hour), day2.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Date != "2026-03-02" || days[0].TotalSeconds != 720 || days[0].RunCount != 2 {
		t.Fatalf("unexpected day 1: %+v", days[0])
	}
	if days[1].TotalSeconds != 300 || days[1].RunCount != 1 {
		t.Fatalf("unexpected day 2: %+v", days[1])
	}

	stats, err := s.GetRunStats(day1.Add(-time.Hour), day2.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Completed != 2 || stats.Stopped != 1 || stats.TotalSeconds != 1020 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestGetDailyTrainingEmpty(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	days, err := s.GetDailyTraining(now.AddDate(0, 0, -7), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 0 {
		t.Fatalf("expected no days, got %d", len(days))
	}
	stats, _ := s.GetRunStats(now.AddDate(0, 0, -7), now)
	if stats != (RunStats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"auto_rest":       "true",
		"rest_duration":   "10",
		"notify_enabled":  "true",
		"notify_start":    "true",
		"notify_exercise": "true",
		"notify_pause":    "true",
		"notify_finish":   "true",
		"notify_upcoming": "true",
		"sound":           "true",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("key", "v1")
	s.SetSetting("key", "v2")
	val, _ := s.GetSetting("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) < 9 {
		t.Fatalf("expected at least 9 default settings, got %d", len(all))
	}
	// Should be sorted by key
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestTypedSettings(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("flag", "false")
	s.SetSetting("count", "42")
	s.SetSetting("junk", "abc")

	if s.GetBool("flag", true) {
		t.Fatal("expected false")
	}
	if !s.GetBool("junk", true) {
		t.Fatal("unparsable bool should fall back")
	}
	if !s.GetBool("missing", true) {
		t.Fatal("missing bool should fall back")
	}
	if got := s.GetInt("count", 0); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := s.GetInt("junk", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if got := s.GetPreferences(); got != DefaultPreferences() {
		t.Fatalf("fresh store preferences %+v, want defaults", got)
	}

	p := DefaultPreferences()
	p.AutoRest = false
	p.RestDuration = 25
	p.NotifyUpcoming = false
	if err := s.SavePreferences(p); err != nil {
		t.Fatal(err)
	}
	if got := s.GetPreferences(); got != p {
		t.Fatalf("got %+v, want %+v", got, p)
	}

	p.RestDuration = -1
	if err := s.SavePreferences(p); err == nil {
		t.Fatal("expected error for negative rest duration")
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	err := s.Close()
	if err != nil {
		t.Fatalf("first close: %v", err)
	}
}
