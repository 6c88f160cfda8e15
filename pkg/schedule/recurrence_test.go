package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/borgmon/timeblock/pkg/models"
)

func TestNextStart(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		from     time.Time
		mode     models.ReminderMode
		weekdays []int
		want     time.Time
	}{
		{
			name: "daily crosses month end",
			from: time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
			mode: models.ReminderModeDaily,
			want: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "daily leap day",
			from: time.Date(2024, 2, 28, 22, 15, 0, 0, time.UTC),
			mode: models.ReminderModeDaily,
			want: time.Date(2024, 2, 29, 22, 15, 0, 0, time.UTC),
		},
		{
			name:     "weekly friday to monday",
			from:     time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC), // Friday
			mode:     models.ReminderModeWeekly,
			weekdays: []int{1, 3, 5},
			want:     time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "weekly monday to wednesday",
			from:     time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC),
			mode:     models.ReminderModeWeekly,
			weekdays: []int{1, 3, 5},
			want:     time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "weekly single day wraps a full week",
			from:     time.Date(2024, 1, 2, 18, 30, 0, 0, time.UTC), // Tuesday
			mode:     models.ReminderModeWeekly,
			weekdays: []int{2},
			want:     time.Date(2024, 1, 9, 18, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextStart(tt.from, tt.mode, tt.weekdays)
			if err != nil {
				t.Fatalf("NextStart error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("NextStart = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextStartErrors(t *testing.T) {
	t.Parallel()
	from := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	if _, err := NextStart(from, models.ReminderModeOnce, nil); !errors.Is(err, ErrNoRecurrence) {
		t.Fatalf("once: got %v, want ErrNoRecurrence", err)
	}
	if _, err := NextStart(from, models.ReminderModeWeekly, nil); !errors.Is(err, ErrNoWeekdays) {
		t.Fatalf("weekly empty: got %v, want ErrNoWeekdays", err)
	}
	if _, err := NextStart(from, models.ReminderModeWeekly, []int{9, -1}); !errors.Is(err, ErrNoWeekdays) {
		t.Fatalf("weekly out of range: got %v, want ErrNoWeekdays", err)
	}
}

func TestNextStartKeepsWallClockAcrossDST(t *testing.T) {
	t.Parallel()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2024-03-10 is the spring forward day
	from := time.Date(2024, 3, 9, 9, 0, 0, 0, loc)
	got, err := NextStart(from, models.ReminderModeDaily, nil)
	if err != nil {
		t.Fatalf("NextStart error: %v", err)
	}
	if got.Hour() != 9 || got.Minute() != 0 || got.Day() != 10 {
		t.Fatalf("NextStart = %v, want 2024-03-10 09:00 local", got)
	}
	if got.Sub(from) != 23*time.Hour {
		t.Fatalf("elapsed = %v, want 23h", got.Sub(from))
	}
}
