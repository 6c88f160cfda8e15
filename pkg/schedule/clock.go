package schedule

import "time"

// Clock supplies local wall clock time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads time.Now in the process time zone
var SystemClock Clock = ClockFunc(time.Now)
