package models

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNewTimeBlockDefaults(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 3, 4, 9, 30, 0, 0, time.Local)
	b := NewTimeBlock("stand-up", start, ReminderModeWeekly, []int{5, 1, 3, 1}, 0, true)

	if b.ID == "" {
		t.Fatal("expected generated id")
	}
	if !b.Active() {
		t.Fatalf("new block should be active, got enabled=%v status=%s", b.Enabled, b.Status)
	}
	if !b.Unlimited() || b.RemainingCount != UnlimitedReminders {
		t.Fatalf("count 0 should mean unlimited, got %d/%d", b.RemainingCount, b.ReminderCount)
	}
	if want := []int{1, 3, 5}; !reflect.DeepEqual(b.Weekdays, want) {
		t.Fatalf("Weekdays = %v, want %v", b.Weekdays, want)
	}
	if got := b.MinuteOfDay(time.Local); got != 9*60+30 {
		t.Fatalf("MinuteOfDay = %d, want %d", got, 9*60+30)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestModeDefaultsToDaily(t *testing.T) {
	t.Parallel()
	for _, raw := range []ReminderMode{"", "hourly"} {
		b := TimeBlock{ReminderMode: raw}
		if got := b.Mode(); got != ReminderModeDaily {
			t.Fatalf("Mode(%q) = %s, want daily", raw, got)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	valid := func() TimeBlock {
		return NewTimeBlock("read", time.Now(), ReminderModeDaily, nil, 3, false)
	}

	tests := []struct {
		name   string
		mutate func(b *TimeBlock)
	}{
		{name: "missing id", mutate: func(b *TimeBlock) { b.ID = " " }},
		{name: "empty task", mutate: func(b *TimeBlock) { b.Task = "" }},
		{name: "unknown mode", mutate: func(b *TimeBlock) { b.ReminderMode = "monthly" }},
		{name: "unknown status", mutate: func(b *TimeBlock) { b.Status = "snoozed" }},
		{name: "weekday out of range", mutate: func(b *TimeBlock) { b.Weekdays = []int{7} }},
		{name: "zero count", mutate: func(b *TimeBlock) { b.ReminderCount = 0 }},
		{name: "remaining above count", mutate: func(b *TimeBlock) { b.RemainingCount = 4 }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			b := valid()
			tt.mutate(&b)
			if err := b.Validate(); !errors.Is(err, ErrInvalidBlock) {
				t.Fatalf("Validate() = %v, want ErrInvalidBlock", err)
			}
		})
	}
}

func TestParseWeekdays(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want []int
	}{
		{raw: "1,3,5", want: []int{1, 3, 5}},
		{raw: "fri, mon ,Wed", want: []int{1, 3, 5}},
		{raw: "sunday,saturday,sun", want: []int{0, 6}},
		{raw: "", want: nil},
	}
	for _, tt := range tests {
		got, err := ParseWeekdays(tt.raw)
		if err != nil {
			t.Fatalf("ParseWeekdays(%q) error: %v", tt.raw, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ParseWeekdays(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}

	if _, err := ParseWeekdays("mon,funday"); !errors.Is(err, ErrInvalidBlock) {
		t.Fatalf("expected ErrInvalidBlock for unknown day, got %v", err)
	}
}

func TestFindBlock(t *testing.T) {
	t.Parallel()
	blocks := []TimeBlock{{ID: "a"}, {ID: "b"}}
	if got := FindBlock(blocks, "b"); got != 1 {
		t.Fatalf("FindBlock(b) = %d, want 1", got)
	}
	if got := FindBlock(blocks, "c"); got != -1 {
		t.Fatalf("FindBlock(c) = %d, want -1", got)
	}
}

func TestStartsAfter(t *testing.T) {
	t.Parallel()
	b := NewTimeBlock("dentist", time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC), ReminderModeOnce, nil, -1, false)

	tests := []struct {
		now  time.Time
		want bool
	}{
		{time.Date(2024, 1, 9, 23, 59, 0, 0, time.UTC), true},
		{time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC), false},
		{time.Date(2024, 1, 11, 9, 30, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		if got := b.StartsAfter(tt.now); got != tt.want {
			t.Fatalf("StartsAfter(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestRearm(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	spent := NewTimeBlock("stretch", start, ReminderModeDaily, nil, 3, false)
	spent.RemainingCount = 0
	spent.Status = BlockStatusDisabled
	spent.Rearm()
	if spent.Status != BlockStatusPending || spent.RemainingCount != 3 {
		t.Fatalf("rearmed status=%s remaining=%d, want pending 3", spent.Status, spent.RemainingCount)
	}

	done := NewTimeBlock("read", start, ReminderModeDaily, nil, 3, false)
	done.RemainingCount = 2
	done.Status = BlockStatusCompleted
	done.Rearm()
	if done.Status != BlockStatusPending || done.RemainingCount != 2 {
		t.Fatalf("rearmed status=%s remaining=%d, want pending 2", done.Status, done.RemainingCount)
	}
}
