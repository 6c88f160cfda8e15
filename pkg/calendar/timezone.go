package calendar

import (
	"github.com/emersion/go-ical"
)

// windowsToIANA maps the zone names Outlook and Exchange put in TZID
var windowsToIANA = map[string]string{
	"Pacific Standard Time":        "America/Los_Angeles",
	"Mountain Standard Time":       "America/Denver",
	"Central Standard Time":        "America/Chicago",
	"Eastern Standard Time":        "America/New_York",
	"Atlantic Standard Time":       "America/Halifax",
	"Alaskan Standard Time":        "America/Anchorage",
	"Hawaiian Standard Time":       "Pacific/Honolulu",
	"GMT Standard Time":            "Europe/London",
	"W. Europe Standard Time":      "Europe/Berlin",
	"Central Europe Standard Time": "Europe/Budapest",
	"Romance Standard Time":        "Europe/Paris",
	"China Standard Time":          "Asia/Shanghai",
	"Tokyo Standard Time":          "Asia/Tokyo",
	"India Standard Time":          "Asia/Kolkata",
	"AUS Eastern Standard Time":    "Australia/Sydney",
}

var tzidProps = []string{
	ical.PropDateTimeStart,
	ical.PropDateTimeEnd,
	ical.PropExceptionDates,
	ical.PropRecurrenceDates,
}

// normalizeTimezones rewrites Windows TZID parameters to IANA names in place
func normalizeTimezones(comp *ical.Component) {
	for _, name := range tzidProps {
		for i := range comp.Props[name] {
			prop := &comp.Props[name][i]
			tzid := prop.Params.Get(ical.ParamTimezoneID)
			if iana, ok := windowsToIANA[tzid]; ok {
				prop.Params.Set(ical.ParamTimezoneID, iana)
			}
		}
	}
}
