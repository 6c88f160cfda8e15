package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlockStatus tracks where a time block is in its lifecycle
type BlockStatus string

const (
	BlockStatusPending   BlockStatus = "pending"   // Evaluated every poll
	BlockStatusDisabled  BlockStatus = "disabled"  // Reminder count exhausted or switched off
	BlockStatusCompleted BlockStatus = "completed" // Marked done by the user
)

// ReminderMode governs how StartTime advances after a main alert
type ReminderMode string

const (
	ReminderModeDaily  ReminderMode = "daily"
	ReminderModeWeekly ReminderMode = "weekly"
	ReminderModeOnce   ReminderMode = "once"
)

// UnlimitedReminders disables the remaining count lifecycle
const UnlimitedReminders = -1

var ErrInvalidBlock = errors.New("invalid time block")

// TimeBlock is a single scheduled reminder.
// Timestamps are epoch milliseconds so the stored form stays stable across backends.
type TimeBlock struct {
	ID             string       `json:"id"`
	Task           string       `json:"task"`
	StartTime      int64        `json:"startTime"`
	Enabled        bool         `json:"enabled"`
	Status         BlockStatus  `json:"status"`
	PreAlert       bool         `json:"preAlert"`
	ReminderMode   ReminderMode `json:"reminderMode,omitempty"`
	Weekdays       []int        `json:"weekdays,omitempty"` // 0 = Sunday
	ReminderCount  int          `json:"reminderCount"`
	RemainingCount int          `json:"remainingCount"`
	CreatedAt      int64        `json:"createdAt"`
}

// NewTimeBlock creates a pending, enabled block with a fresh ID
func NewTimeBlock(task string, start time.Time, mode ReminderMode, weekdays []int, count int, preAlert bool) TimeBlock {
	if count == 0 {
		count = UnlimitedReminders
	}
	return TimeBlock{
		ID:             uuid.New().String(),
		Task:           task,
		StartTime:      start.UnixMilli(),
		Enabled:        true,
		Status:         BlockStatusPending,
		PreAlert:       preAlert,
		ReminderMode:   mode,
		Weekdays:       normalizeWeekdays(weekdays),
		ReminderCount:  count,
		RemainingCount: count,
		CreatedAt:      time.Now().UnixMilli(),
	}
}

// Mode returns the reminder mode, defaulting to daily when unset or unknown
func (b *TimeBlock) Mode() ReminderMode {
	switch b.ReminderMode {
	case ReminderModeWeekly, ReminderModeOnce:
		return b.ReminderMode
	default:
		return ReminderModeDaily
	}
}

// Active reports whether the scheduling loop should evaluate this block
func (b *TimeBlock) Active() bool {
	return b.Enabled && b.Status == BlockStatusPending
}

// Start returns StartTime as a time in loc
func (b *TimeBlock) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(b.StartTime).In(loc)
}

// SetStart stores t as the next trigger instant
func (b *TimeBlock) SetStart(t time.Time) {
	b.StartTime = t.UnixMilli()
}

// MinuteOfDay returns hour*60+minute of the trigger in loc
func (b *TimeBlock) MinuteOfDay(loc *time.Location) int {
	return MinuteOfDay(b.Start(loc))
}

// StartsAfter reports whether the trigger lies on a later calendar day than day
func (b *TimeBlock) StartsAfter(day time.Time) bool {
	return StartOfDay(b.Start(day.Location())).After(StartOfDay(day))
}

// HasWeekday reports whether wd is one of the block's weekdays
func (b *TimeBlock) HasWeekday(wd time.Weekday) bool {
	for _, d := range b.Weekdays {
		if d == int(wd) {
			return true
		}
	}
	return false
}

// Rearm puts a finished block back to pending. An exhausted count starts over.
func (b *TimeBlock) Rearm() {
	b.Status = BlockStatusPending
	if !b.Unlimited() && b.RemainingCount <= 0 {
		b.RemainingCount = b.ReminderCount
	}
}

// Unlimited reports whether the block repeats forever
func (b *TimeBlock) Unlimited() bool {
	return b.ReminderCount == UnlimitedReminders
}

// Validate checks user supplied fields before a block is stored
func (b *TimeBlock) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidBlock)
	}
	if strings.TrimSpace(b.Task) == "" {
		return fmt.Errorf("%w: task is empty", ErrInvalidBlock)
	}
	switch b.ReminderMode {
	case "", ReminderModeDaily, ReminderModeWeekly, ReminderModeOnce:
	default:
		return fmt.Errorf("%w: unknown reminder mode %q", ErrInvalidBlock, b.ReminderMode)
	}
	switch b.Status {
	case BlockStatusPending, BlockStatusDisabled, BlockStatusCompleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidBlock, b.Status)
	}
	for _, d := range b.Weekdays {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: weekday %d out of range", ErrInvalidBlock, d)
		}
	}
	if b.ReminderCount < UnlimitedReminders || b.ReminderCount == 0 {
		return fmt.Errorf("%w: reminder count must be -1 or positive", ErrInvalidBlock)
	}
	if !b.Unlimited() && (b.RemainingCount < 0 || b.RemainingCount > b.ReminderCount) {
		return fmt.Errorf("%w: remaining count %d outside 0..%d", ErrInvalidBlock, b.RemainingCount, b.ReminderCount)
	}
	return nil
}

// FindBlock returns the index of the block with id, or -1
func FindBlock(blocks []TimeBlock, id string) int {
	for i := range blocks {
		if blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// ParseWeekdays parses "1,3,5" or "mon,wed,fri" into weekday numbers
func ParseWeekdays(s string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		d, ok := weekdayNames[part]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidBlock, part)
		}
		days = append(days, d)
	}
	return normalizeWeekdays(days), nil
}

var weekdayNames = map[string]int{
	"0": 0, "sun": 0, "sunday": 0,
	"1": 1, "mon": 1, "monday": 1,
	"2": 2, "tue": 2, "tuesday": 2,
	"3": 3, "wed": 3, "wednesday": 3,
	"4": 4, "thu": 4, "thursday": 4,
	"5": 5, "fri": 5, "friday": 5,
	"6": 6, "sat": 6, "saturday": 6,
}

// normalizeWeekdays sorts and removes duplicates, keeping out of range values for Validate
func normalizeWeekdays(days []int) []int {
	if len(days) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for d := 0; d <= 6; d++ {
		for _, v := range days {
			if v == d && !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	for _, v := range days {
		if (v < 0 || v > 6) && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
