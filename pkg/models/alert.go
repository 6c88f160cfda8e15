package models

import (
	"fmt"
	"time"
)

// AlertKind distinguishes early warnings from the on-time alert
type AlertKind string

const (
	AlertKindPre  AlertKind = "pre"  // Fired inside the pre-alert window
	AlertKindMain AlertKind = "main" // Fired at the scheduled minute
)

// Alert is one notification produced by an evaluation pass
type Alert struct {
	BlockID          string    // Block that fired
	Kind             AlertKind // Pre or main
	Task             string    // Block task text
	At               time.Time // Evaluation instant that fired it
	RemainingMinutes int       // Minutes until the main alert (pre alerts only)
}

// Title returns the notification title
func (a Alert) Title() string {
	if a.Kind == AlertKindPre {
		return "Coming up: " + a.Task
	}
	return a.Task
}

// Body returns the notification body
func (a Alert) Body() string {
	if a.Kind == AlertKindPre {
		if a.RemainingMinutes == 1 {
			return "Starts in 1 minute"
		}
		return fmt.Sprintf("Starts in %d minutes", a.RemainingMinutes)
	}
	return fmt.Sprintf("It's %s, time to start", a.At.Format("15:04"))
}

// RoundToMinute rounds a time down to the nearest minute
func RoundToMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// StartOfDay returns local midnight of t's calendar day
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MinuteOfDay returns hour*60+minute, ignoring seconds
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
