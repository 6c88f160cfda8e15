package models

import (
	"encoding/json"
)

const (
	DefaultPreAlertTime  = 3 // minutes
	DefaultPreAlertCount = 1
)

// Settings holds the process wide alert switches
type Settings struct {
	GlobalAlertEnabled bool `json:"globalAlertEnabled"`
	PreAlertTime       int  `json:"preAlertTime"`  // minutes ahead to start pre-alerting
	PreAlertCount      int  `json:"preAlertCount"` // pre-alert pulses allowed inside the window
}

// DefaultSettings returns the settings used when none are stored
func DefaultSettings() Settings {
	return Settings{
		GlobalAlertEnabled: true,
		PreAlertTime:       DefaultPreAlertTime,
		PreAlertCount:      DefaultPreAlertCount,
	}
}

// ParseSettings decodes stored settings. Missing fields keep their defaults and
// out of range values are replaced, so the result is always usable.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), err
	}
	return s.Normalize(), nil
}

// Normalize replaces values the scheduler cannot work with
func (s Settings) Normalize() Settings {
	if s.PreAlertTime < 0 {
		s.PreAlertTime = DefaultPreAlertTime
	}
	if s.PreAlertCount <= 0 {
		s.PreAlertCount = DefaultPreAlertCount
	}
	return s
}

// PreAlertInterval is the minimum spacing in minutes between two pre-alerts
func (s Settings) PreAlertInterval() int {
	if s.PreAlertCount <= 0 {
		return s.PreAlertTime
	}
	return s.PreAlertTime / s.PreAlertCount
}
