package notify

import (
	"errors"

	"fyne.io/fyne/v2"
)

// SystemDispatcher shows a native OS notification through the Fyne app
type SystemDispatcher struct {
	app fyne.App
}

func NewSystemDispatcher(app fyne.App) *SystemDispatcher {
	return &SystemDispatcher{app: app}
}

func (d *SystemDispatcher) Dispatch(title, body string) error {
	if d.app == nil {
		return errors.New("system notifications need a running app")
	}
	d.app.SendNotification(fyne.NewNotification(title, body))
	return nil
}
