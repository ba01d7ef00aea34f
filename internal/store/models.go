package store

import "time"

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunStopped   RunStatus = "stopped"
)

// Run is one playback of a workout, kept after the workout itself is deleted.
type Run struct {
	ID          int64
	WorkoutID   string
	WorkoutName string
	Status      RunStatus
	WorkSeconds int64
	StartedAt   time.Time
	EndedAt     *time.Time
}

type Setting struct {
	Key   string
	Value string
}

// DailyTraining is the finished work time of one day.
type DailyTraining struct {
	Date         string
	TotalSeconds int64
	RunCount     int
}

type RunStats struct {
	Completed    int
	Stopped      int
	TotalSeconds int64
}
