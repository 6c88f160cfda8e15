package store

import (
	"errors"
	"testing"
	"time"

	"github.com/borgmon/timeblock/pkg/logx"
	"github.com/borgmon/timeblock/pkg/models"
)

func TestBlockStoreRoundTrip(t *testing.T) {
	t.Parallel()
	bs := NewBlockStore(NewMemoryKV(), logx.Nop())

	blocks, err := bs.LoadBlocks()
	if err != nil || blocks == nil || len(blocks) != 0 {
		t.Fatalf("LoadBlocks on empty store = %v, %v; want empty slice", blocks, err)
	}

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	in := []models.TimeBlock{
		models.NewTimeBlock("a", start, models.ReminderModeDaily, nil, 0, true),
		models.NewTimeBlock("b", start, models.ReminderModeWeekly, []int{1, 3}, 2, false),
	}
	if err := bs.SaveBlocks(in); err != nil {
		t.Fatalf("SaveBlocks: %v", err)
	}
	out, err := bs.LoadBlocks()
	if err != nil {
		t.Fatalf("LoadBlocks: %v", err)
	}
	if len(out) != 2 || out[0].ID != in[0].ID || out[1].ID != in[1].ID {
		t.Fatalf("order or content lost: %+v", out)
	}
	if out[1].RemainingCount != 2 || len(out[1].Weekdays) != 2 || out[0].StartTime != start.UnixMilli() {
		t.Fatalf("fields lost: %+v", out)
	}
}

func TestBlockStoreMalformed(t *testing.T) {
	t.Parallel()
	kv := NewMemoryKV()
	bs := NewBlockStore(kv, logx.Nop())

	_ = kv.Set(KeySettings, "{not json")
	settings, err := bs.LoadSettings()
	if err != nil {
		t.Fatalf("malformed settings should fall back silently, got %v", err)
	}
	if settings != models.DefaultSettings() {
		t.Fatalf("settings = %+v, want defaults", settings)
	}

	_ = kv.Set(KeyTimeBlocks, "{not json")
	if _, err := bs.LoadBlocks(); err == nil {
		t.Fatal("malformed block list must be an error")
	}
}

func TestBlockStoreSettings(t *testing.T) {
	t.Parallel()
	bs := NewBlockStore(NewMemoryKV(), logx.Nop())

	want := models.Settings{GlobalAlertEnabled: false, PreAlertTime: 10, PreAlertCount: 2}
	if err := bs.SaveSettings(want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, err := bs.LoadSettings()
	if err != nil || got != want {
		t.Fatalf("LoadSettings = %+v, %v; want %+v", got, err, want)
	}
}

func TestBlockStoreBackendFailure(t *testing.T) {
	t.Parallel()
	kv := NewMemoryKV()
	_ = kv.Close()
	bs := NewBlockStore(kv, logx.Nop())

	settings, err := bs.LoadSettings()
	if !errors.Is(err, ErrClosed) || settings != models.DefaultSettings() {
		t.Fatalf("LoadSettings = %+v, %v; want defaults and ErrClosed", settings, err)
	}
	if err := bs.SaveBlocks(nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("SaveBlocks = %v, want ErrClosed", err)
	}
}
