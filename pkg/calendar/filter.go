package calendar

import (
	"regexp"
	"strings"
	"time"

	"github.com/borgmon/timeblock/pkg/logx"
	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

type importStats struct {
	events      int
	imported    int
	cancelled   int
	allDay      int
	missingTime int
	past        int
	unsupported int
}

func (s *importStats) filtered() int {
	return s.cancelled + s.allDay + s.missingTime + s.past + s.unsupported
}

func (s *importStats) log(log logx.Logger) {
	log.Info("calendar imported",
		logx.Int("events", s.events),
		logx.Int("imported", s.imported),
		logx.Int("filtered", s.filtered()),
	)
	if s.filtered() > 0 {
		log.Debug("calendar filter breakdown",
			logx.Int("cancelled", s.cancelled),
			logx.Int("all_day", s.allDay),
			logx.Int("missing_time", s.missingTime),
			logx.Int("past", s.past),
			logx.Int("unsupported_rule", s.unsupported),
		)
	}
}

// isCancelled also catches events whose organiser only renamed them
func isCancelled(comp *ical.Component) bool {
	if prop := comp.Props.Get(ical.PropStatus); prop != nil && strings.EqualFold(prop.Value, "CANCELLED") {
		return true
	}
	prop := comp.Props.Get(ical.PropSummary)
	if prop == nil {
		return false
	}
	clean := nonAlnum.ReplaceAllString(strings.ToLower(prop.Value), "")
	return strings.HasPrefix(clean, "canceled") || strings.HasPrefix(clean, "cancelled")
}

// isAllDay reports DATE valued starts, which carry no time of day to remind at
func isAllDay(comp *ical.Component) bool {
	prop := comp.Props.Get(ical.PropDateTimeStart)
	if prop == nil {
		return false
	}
	if prop.Params.Get(ical.ParamValue) == string(ical.ValueDate) {
		return true
	}
	return len(prop.Value) == len("20060102")
}

// isOver reports events that can never fire again after now
func isOver(start time.Time, rule *rrule.ROption, now time.Time) bool {
	if rule == nil {
		return start.Before(now)
	}
	return !rule.Until.IsZero() && rule.Until.Before(now)
}
