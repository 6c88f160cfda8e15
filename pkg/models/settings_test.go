package models

import (
	"testing"
	"time"
)

func TestParseSettings(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    Settings
		wantErr bool
	}{
		{name: "empty", raw: "", want: DefaultSettings()},
		{name: "partial keeps defaults", raw: `{"preAlertTime":10}`, want: Settings{GlobalAlertEnabled: true, PreAlertTime: 10, PreAlertCount: 1}},
		{name: "disabled", raw: `{"globalAlertEnabled":false,"preAlertTime":3,"preAlertCount":3}`, want: Settings{PreAlertTime: 3, PreAlertCount: 3}},
		{name: "out of range normalized", raw: `{"preAlertTime":-2,"preAlertCount":0}`, want: DefaultSettings()},
		{name: "malformed", raw: `{"preAlertTime":`, want: DefaultSettings(), wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSettings([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSettings error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseSettings = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPreAlertInterval(t *testing.T) {
	t.Parallel()
	if got := (Settings{PreAlertTime: 3, PreAlertCount: 3}).PreAlertInterval(); got != 1 {
		t.Fatalf("PreAlertInterval = %d, want 1", got)
	}
	if got := (Settings{PreAlertTime: 10, PreAlertCount: 3}).PreAlertInterval(); got != 3 {
		t.Fatalf("PreAlertInterval = %d, want 3", got)
	}
}

func TestAlertText(t *testing.T) {
	t.Parallel()
	at := time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)

	pre := Alert{Kind: AlertKindPre, Task: "Write report", RemainingMinutes: 1, At: at}
	if pre.Title() != "Coming up: Write report" || pre.Body() != "Starts in 1 minute" {
		t.Fatalf("unexpected pre alert text %q / %q", pre.Title(), pre.Body())
	}
	pre.RemainingMinutes = 3
	if pre.Body() != "Starts in 3 minutes" {
		t.Fatalf("Body = %q", pre.Body())
	}

	main := Alert{Kind: AlertKindMain, Task: "Write report", At: at}
	if main.Title() != "Write report" || main.Body() != "It's 09:05, time to start" {
		t.Fatalf("unexpected main alert text %q / %q", main.Title(), main.Body())
	}
}
