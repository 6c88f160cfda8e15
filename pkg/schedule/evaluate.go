package schedule

import (
	"time"

	"github.com/borgmon/timeblock/pkg/models"
)

// MainAlertDebounce is the minimum spacing between two main alerts of one block.
// Several polls land inside the matching minute; only the first may fire.
const MainAlertDebounce = 10 * time.Second

// Result is the outcome of one evaluation pass
type Result struct {
	Alerts  []models.Alert     // Alerts to dispatch, in block order
	Blocks  []models.TimeBlock // Snapshot to persist, once blocks removed
	Mutated []string           // IDs of blocks whose fields changed
	Deleted []string           // IDs of once blocks removed after firing
}

// Changed reports whether Blocks differs from the input snapshot
func (r Result) Changed() bool {
	return len(r.Mutated) > 0 || len(r.Deleted) > 0
}

// Evaluate decides which blocks fire at now. It never touches the input slice:
// the returned snapshot carries rolled forward start times, decremented counts and
// drops fired once blocks. Dedup guards in tracker are updated in place.
func Evaluate(now time.Time, blocks []models.TimeBlock, settings models.Settings, tracker *Tracker) Result {
	res := Result{Blocks: make([]models.TimeBlock, 0, len(blocks))}
	if !settings.GlobalAlertEnabled {
		res.Blocks = append(res.Blocks, blocks...)
		return res
	}
	settings = settings.Normalize()

	loc := now.Location()
	current := models.MinuteOfDay(now)
	today := models.StartOfDay(now)

	for _, block := range blocks {
		// a start on a later day is not due yet, rolled blocks wait for their next date
		if !block.Active() || block.StartsAfter(now) {
			res.Blocks = append(res.Blocks, block)
			continue
		}

		weekly := block.Mode() == models.ReminderModeWeekly
		weekdayOK := !weekly || block.HasWeekday(now.Weekday())
		diff := block.MinuteOfDay(loc) - current

		if block.PreAlert && diff > 0 && diff <= settings.PreAlertTime && weekdayOK {
			if shouldPreAlert(tracker, block.ID, now, diff, settings) {
				tracker.recordPre(block.ID, now, diff)
				res.Alerts = append(res.Alerts, models.Alert{
					BlockID:          block.ID,
					Kind:             models.AlertKindPre,
					Task:             block.Task,
					At:               now,
					RemainingMinutes: diff,
				})
			}
		}

		if diff != 0 || !weekdayOK || !shouldMainAlert(tracker, block.ID, now, today) {
			res.Blocks = append(res.Blocks, block)
			continue
		}

		tracker.recordMain(block.ID, now)
		res.Alerts = append(res.Alerts, models.Alert{
			BlockID: block.ID,
			Kind:    models.AlertKindMain,
			Task:    block.Task,
			At:      now,
		})

		if block.Mode() == models.ReminderModeOnce {
			tracker.ClearFor(block.ID)
			res.Deleted = append(res.Deleted, block.ID)
			continue
		}

		advance(&block, now)
		tracker.rearmPre(block.ID)
		res.Blocks = append(res.Blocks, block)
		res.Mutated = append(res.Mutated, block.ID)
	}

	return res
}

func shouldPreAlert(tracker *Tracker, id string, now time.Time, remaining int, settings models.Settings) bool {
	st, _ := tracker.Get(id)
	if st.PreAlertsFired >= settings.PreAlertCount {
		return false
	}
	if !st.hasPreAlert() {
		return true
	}
	if st.LastRemainingMinutes == remaining {
		return false
	}
	interval := time.Duration(settings.PreAlertInterval()) * time.Minute
	return now.Sub(st.LastPreAlertTime) >= interval
}

func shouldMainAlert(tracker *Tracker, id string, now, today time.Time) bool {
	st, _ := tracker.Get(id)
	if !st.LastAlertDate.IsZero() && st.LastAlertDate.Equal(today) {
		return false
	}
	if !st.LastNotificationTime.IsZero() && now.Sub(st.LastNotificationTime) < MainAlertDebounce {
		return false
	}
	return true
}

// advance applies the post-fire lifecycle to a recurring block
func advance(block *models.TimeBlock, now time.Time) {
	if !block.Unlimited() {
		if block.RemainingCount > 0 {
			block.RemainingCount--
		}
		if block.RemainingCount <= 0 {
			block.Status = models.BlockStatusDisabled
			return
		}
	}

	next, err := NextStart(occurrenceOn(now, block), block.Mode(), block.Weekdays)
	if err != nil {
		return
	}
	block.SetStart(next)
	block.Status = models.BlockStatusPending
}
