package calendar

import (
	"time"

	"github.com/borgmon/timeblock/pkg/models"
	"github.com/teambition/rrule-go"
)

// rruleWeekdays is indexed by time.Weekday
var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// ruleForBlock maps a block's reminder mode onto an RRULE. Once blocks have none.
func ruleForBlock(block models.TimeBlock) *rrule.ROption {
	var rule *rrule.ROption
	switch block.Mode() {
	case models.ReminderModeDaily:
		rule = &rrule.ROption{Freq: rrule.DAILY}
	case models.ReminderModeWeekly:
		rule = &rrule.ROption{Freq: rrule.WEEKLY}
		for _, d := range block.Weekdays {
			if d >= 0 && d <= 6 {
				rule.Byweekday = append(rule.Byweekday, rruleWeekdays[d])
			}
		}
	default:
		return nil
	}
	if !block.Unlimited() && block.RemainingCount > 0 {
		rule.Count = block.RemainingCount
	}
	return rule
}

// modeForRule maps an RRULE back to a reminder mode. ok is false for
// frequencies the scheduler cannot express.
func modeForRule(rule *rrule.ROption, start time.Time) (mode models.ReminderMode, weekdays []int, ok bool) {
	if rule == nil {
		return models.ReminderModeOnce, nil, true
	}
	if rule.Interval > 1 {
		return "", nil, false
	}

	switch rule.Freq {
	case rrule.DAILY:
		if len(rule.Byweekday) == 0 {
			return models.ReminderModeDaily, nil, true
		}
		// FREQ=DAILY;BYDAY=... is a weekly pattern in disguise
		return models.ReminderModeWeekly, weekdaysOf(rule.Byweekday), true
	case rrule.WEEKLY:
		if len(rule.Byweekday) == 0 {
			return models.ReminderModeWeekly, []int{int(start.Weekday())}, true
		}
		return models.ReminderModeWeekly, weekdaysOf(rule.Byweekday), true
	default:
		return "", nil, false
	}
}

func weekdaysOf(days []rrule.Weekday) []int {
	out := make([]int, 0, len(days))
	for _, wd := range days {
		// rrule counts from Monday = 0
		out = append(out, (wd.Day()+1)%7)
	}
	return out
}

// shiftWeekdays moves days by the calendar day offset between the same instant
// seen in two zones
func shiftWeekdays(days []int, from, to time.Time) []int {
	delta := (int(to.Weekday()) - int(from.Weekday()) + 7) % 7
	if delta == 0 || len(days) == 0 {
		return days
	}
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = (d + delta) % 7
	}
	return out
}
