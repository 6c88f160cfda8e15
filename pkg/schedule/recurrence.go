package schedule

import (
	"errors"
	"time"

	"github.com/borgmon/timeblock/pkg/models"
)

var (
	// ErrNoRecurrence is returned for once blocks, which are deleted instead of rescheduled
	ErrNoRecurrence = errors.New("reminder mode does not recur")
	// ErrNoWeekdays is returned for weekly blocks without any weekday selected
	ErrNoWeekdays = errors.New("weekly reminder has no weekdays")
)

// NextStart computes the trigger instant following from for the given mode.
// The result keeps from's wall clock hour and minute.
func NextStart(from time.Time, mode models.ReminderMode, weekdays []int) (time.Time, error) {
	switch mode {
	case models.ReminderModeOnce:
		return time.Time{}, ErrNoRecurrence
	case models.ReminderModeWeekly:
		return nextWeekly(from, weekdays)
	default:
		return nextDaily(from), nil
	}
}

// nextDaily moves one calendar day, so DST changes keep the same wall clock time
func nextDaily(from time.Time) time.Time {
	return from.AddDate(0, 0, 1)
}

// nextWeekly scans the following seven days for the first selected weekday
func nextWeekly(from time.Time, weekdays []int) (time.Time, error) {
	if len(weekdays) == 0 {
		return time.Time{}, ErrNoWeekdays
	}
	selected := [7]bool{}
	ok := false
	for _, d := range weekdays {
		if d >= 0 && d <= 6 {
			selected[d] = true
			ok = true
		}
	}
	if !ok {
		return time.Time{}, ErrNoWeekdays
	}

	for i := 1; i <= 7; i++ {
		candidate := from.AddDate(0, 0, i)
		if selected[candidate.Weekday()] {
			return candidate, nil
		}
	}
	return time.Time{}, ErrNoWeekdays
}

// occurrenceOn places the block's hour and minute on day's calendar date
func occurrenceOn(day time.Time, block *models.TimeBlock) time.Time {
	start := block.Start(day.Location())
	return time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, day.Location())
}
