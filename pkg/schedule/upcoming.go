package schedule

import (
	"sort"
	"time"

	"github.com/borgmon/timeblock/pkg/models"
)

// Occurrence is a block's next main alert
type Occurrence struct {
	Block models.TimeBlock
	At    time.Time
}

// Upcoming returns the main alerts still due today after now, earliest first.
// Blocks dated for a later day are left out.
// A limit of zero or less returns all of them.
func Upcoming(now time.Time, blocks []models.TimeBlock, limit int) []Occurrence {
	current := models.MinuteOfDay(now)
	result := []Occurrence{}

	for _, block := range blocks {
		if !block.Active() || block.StartsAfter(now) {
			continue
		}
		if block.Mode() == models.ReminderModeWeekly && !block.HasWeekday(now.Weekday()) {
			continue
		}
		if block.MinuteOfDay(now.Location()) < current {
			continue
		}
		result = append(result, Occurrence{Block: block, At: occurrenceOn(now, &block)})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].At.Before(result[j].At)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
