package store

import (
	"fmt"
	"strconv"
)

const (
	KeyAutoRest       = "auto_rest"
	KeyRestDuration   = "rest_duration"
	KeyNotifyEnabled  = "notify_enabled"
	KeyNotifyStart    = "notify_start"
	KeyNotifyExercise = "notify_exercise"
	KeyNotifyPause    = "notify_pause"
	KeyNotifyFinish   = "notify_finish"
	KeyNotifyUpcoming = "notify_upcoming"
	KeySound          = "sound"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// GetBool returns fallback when the key is missing or not a boolean.
func (s *Store) GetBool(key string, fallback bool) bool {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// GetInt returns fallback when the key is missing or not an integer.
func (s *Store) GetInt(key string, fallback int) int {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Preferences are the user-facing workout settings.
type Preferences struct {
	AutoRest       bool
	RestDuration   int
	NotifyEnabled  bool
	NotifyStart    bool
	NotifyExercise bool
	NotifyPause    bool
	NotifyFinish   bool
	NotifyUpcoming bool
	Sound          bool
}

func DefaultPreferences() Preferences {
	return Preferences{
		AutoRest:       true,
		RestDuration:   10,
		NotifyEnabled:  true,
		NotifyStart:    true,
		NotifyExercise: true,
		NotifyPause:    true,
		NotifyFinish:   true,
		NotifyUpcoming: true,
		Sound:          true,
	}
}

func (s *Store) GetPreferences() Preferences {
	d := DefaultPreferences()
	return Preferences{
		AutoRest:       s.GetBool(KeyAutoRest, d.AutoRest),
		RestDuration:   s.GetInt(KeyRestDuration, d.RestDuration),
		NotifyEnabled:  s.GetBool(KeyNotifyEnabled, d.NotifyEnabled),
		NotifyStart:    s.GetBool(KeyNotifyStart, d.NotifyStart),
		NotifyExercise: s.GetBool(KeyNotifyExercise, d.NotifyExercise),
		NotifyPause:    s.GetBool(KeyNotifyPause, d.NotifyPause),
		NotifyFinish:   s.GetBool(KeyNotifyFinish, d.NotifyFinish),
		NotifyUpcoming: s.GetBool(KeyNotifyUpcoming, d.NotifyUpcoming),
		Sound:          s.GetBool(KeySound, d.Sound),
	}
}

func (s *Store) SavePreferences(p Preferences) error {
	if p.RestDuration < 0 {
		return fmt.Errorf("rest duration must not be negative")
	}
	values := map[string]string{
		KeyAutoRest:       strconv.FormatBool(p.AutoRest),
		KeyRestDuration:   strconv.Itoa(p.RestDuration),
		KeyNotifyEnabled:  strconv.FormatBool(p.NotifyEnabled),
		KeyNotifyStart:    strconv.FormatBool(p.NotifyStart),
		KeyNotifyExercise: strconv.FormatBool(p.NotifyExercise),
		KeyNotifyPause:    strconv.FormatBool(p.NotifyPause),
		KeyNotifyFinish:   strconv.FormatBool(p.NotifyFinish),
		KeyNotifyUpcoming: strconv.FormatBool(p.NotifyUpcoming),
		KeySound:          strconv.FormatBool(p.Sound),
	}
	for k, v := range values {
		if err := s.SetSetting(k, v); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return nil
}
