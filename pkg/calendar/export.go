package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/borgmon/timeblock/pkg/models"
	"github.com/emersion/go-ical"
)

const (
	productID = "-//borgmon//timeblock//EN"
	// floatingFormat is a DTSTART without zone, read as wall clock time by calendars
	floatingFormat = "20060102T150405"
)

// Export writes the active blocks as an iCalendar stream in the local zone.
// Recurrence becomes an RRULE and blocks with pre-alerts carry a VALARM
// settings.PreAlertTime minutes before.
func Export(w io.Writer, blocks []models.TimeBlock, settings models.Settings) error {
	return ExportIn(w, blocks, settings, time.Local)
}

// ExportIn is Export with start times written in loc. Weekdays are wall clock
// days, so DTSTART must carry the zone they were picked in or BYDAY drifts.
func ExportIn(w io.Writer, blocks []models.TimeBlock, settings models.Settings, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	settings = settings.Normalize()

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	stamp := time.Now().UTC()
	for _, block := range blocks {
		if !block.Active() {
			continue
		}
		if block.Mode() == models.ReminderModeWeekly && len(block.Weekdays) == 0 {
			continue
		}
		cal.Children = append(cal.Children, eventFor(block, settings, stamp, loc).Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func eventFor(block models.TimeBlock, settings models.Settings, stamp time.Time, loc *time.Location) *ical.Event {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, block.ID+"@timeblock")
	ev.Props.SetText(ical.PropSummary, block.Task)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ev.Props.Set(startProp(block.Start(loc)))
	if rule := ruleForBlock(block); rule != nil {
		ev.Props.SetRecurrenceRule(rule)
	}

	if block.PreAlert && settings.PreAlertTime > 0 {
		alarm := ical.NewComponent(ical.CompAlarm)
		alarm.Props.SetText(ical.PropAction, "DISPLAY")
		alarm.Props.SetText(ical.PropDescription, block.Task)
		trigger := ical.NewProp(ical.PropTrigger)
		trigger.Value = fmt.Sprintf("-PT%dM", settings.PreAlertTime)
		alarm.Props.Set(trigger)
		ev.Children = append(ev.Children, alarm)
	}
	return ev
}

// startProp writes t with a TZID, or as floating time for time.Local which has
// no IANA name to put in one
func startProp(t time.Time) *ical.Prop {
	prop := ical.NewProp(ical.PropDateTimeStart)
	if t.Location() != time.Local {
		prop.SetDateTime(t)
		return prop
	}
	prop.SetValueType(ical.ValueDateTime)
	prop.Value = t.Format(floatingFormat)
	return prop
}
