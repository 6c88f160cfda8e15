package calendar

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/borgmon/timeblock/pkg/logx"
	"github.com/borgmon/timeblock/pkg/models"
	"github.com/emersion/go-ical"
)

// ImportOptions tunes Import. Zero values select defaults.
type ImportOptions struct {
	Location *time.Location // Zone for floating times, default time.Local
	Now      time.Time      // Reference for dropping past events, default time.Now()
	Log      logx.Logger
}

// Import decodes every VEVENT in r into a time block. Cancelled, all-day and
// already finished events are skipped, as are recurrences other than plain
// daily or weekly rules.
func Import(r io.Reader, opts ImportOptions) ([]models.TimeBlock, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Log.IsZero() {
		opts.Log = logx.Nop()
	}

	dec := ical.NewDecoder(r)
	var (
		blocks []models.TimeBlock
		stats  importStats
	)
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode calendar: %w", err)
		}

		for _, ev := range cal.Events() {
			stats.events++
			block, ok := parseEvent(ev.Component, opts, &stats)
			if !ok {
				continue
			}
			stats.imported++
			blocks = append(blocks, block)
		}
	}

	stats.log(opts.Log)
	return blocks, nil
}

func parseEvent(comp *ical.Component, opts ImportOptions, stats *importStats) (models.TimeBlock, bool) {
	summary := ""
	if prop := comp.Props.Get(ical.PropSummary); prop != nil {
		summary = strings.TrimSpace(prop.Value)
	}
	log := opts.Log.With(logx.String("summary", summary))

	if isCancelled(comp) {
		stats.cancelled++
		log.Debug("skip cancelled event")
		return models.TimeBlock{}, false
	}
	if isAllDay(comp) {
		stats.allDay++
		log.Debug("skip all-day event")
		return models.TimeBlock{}, false
	}

	normalizeTimezones(comp)
	prop := comp.Props.Get(ical.PropDateTimeStart)
	if prop == nil || summary == "" {
		stats.missingTime++
		log.Debug("skip event without start or summary")
		return models.TimeBlock{}, false
	}
	start, err := parseDateTimeProperty(prop, opts.Location)
	if err != nil {
		stats.missingTime++
		log.Debug("skip event with bad start", logx.Err(err))
		return models.TimeBlock{}, false
	}

	rule, err := comp.Props.RecurrenceRule()
	if err != nil {
		stats.unsupported++
		log.Debug("skip event with bad rrule", logx.Err(err))
		return models.TimeBlock{}, false
	}
	mode, weekdays, ok := modeForRule(rule, start)
	if !ok {
		stats.unsupported++
		log.Debug("skip event with unsupported rrule")
		return models.TimeBlock{}, false
	}
	if isOver(start, rule, opts.Now) {
		stats.past++
		log.Debug("skip finished event", logx.Time("start", start))
		return models.TimeBlock{}, false
	}

	// BYDAY is read in the event's own zone, blocks keep weekdays in ours
	weekdays = shiftWeekdays(weekdays, start, start.In(opts.Location))

	count := models.UnlimitedReminders
	if rule != nil && rule.Count > 0 {
		count = rule.Count
	}
	return models.NewTimeBlock(summary, start, mode, weekdays, count, hasAlarm(comp)), true
}

// hasAlarm reports a VALARM that triggers before the start
func hasAlarm(comp *ical.Component) bool {
	for _, child := range comp.Children {
		if child.Name != ical.CompAlarm {
			continue
		}
		trigger := child.Props.Get(ical.PropTrigger)
		if trigger != nil && strings.HasPrefix(strings.TrimSpace(trigger.Value), "-") {
			return true
		}
	}
	return false
}

func parseDateTimeProperty(prop *ical.Prop, loc *time.Location) (time.Time, error) {
	if t, err := prop.DateTime(loc); err == nil {
		return t, nil
	}

	formats := []string{
		"20060102T150405",
		"20060102T150405Z",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, prop.Value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse datetime value: %s", prop.Value)
}
