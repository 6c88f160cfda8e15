package notify

import (
	"errors"

	"github.com/borgmon/timeblock/pkg/logx"
)

// Dispatcher renders one alert
type Dispatcher interface {
	Dispatch(title, body string) error
}

// Func adapts a function to Dispatcher
type Func func(title, body string) error

func (f Func) Dispatch(title, body string) error { return f(title, body) }

// Multi fans an alert out to every dispatcher. One failing style does not stop the others.
type Multi []Dispatcher

func (m Multi) Dispatch(title, body string) error {
	var errs []error
	for _, d := range m {
		if d == nil {
			continue
		}
		if err := d.Dispatch(title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogDispatcher writes alerts to the log, for headless hosts
type LogDispatcher struct {
	Log logx.Logger
}

func (d LogDispatcher) Dispatch(title, body string) error {
	d.Log.Info("reminder", logx.String("title", title), logx.String("body", body))
	return nil
}
