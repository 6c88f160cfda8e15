package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/borgmon/timeblock/pkg/logx"
	"github.com/borgmon/timeblock/pkg/models"
	"github.com/borgmon/timeblock/pkg/store"
)

func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	base := []string{
		"timeblockctl",
		"--config", filepath.Join(dir, "missing.yaml"),
		"--driver", "file",
		"--store", filepath.Join(dir, "blocks.json"),
		"--log-level", "error",
	}
	err := app.Run(append(base, args...))
	return out.String(), err
}

func loadBlocks(t *testing.T, dir string) []models.TimeBlock {
	t.Helper()
	kv, err := store.OpenFile(filepath.Join(dir, "blocks.json"), logx.Nop())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer kv.Close()
	blocks, err := store.NewBlockStore(kv, logx.Nop()).LoadBlocks()
	if err != nil {
		t.Fatalf("LoadBlocks: %v", err)
	}
	return blocks
}

func TestAddListRemove(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "add", "--at", "09:30", "--mode", "weekly", "--days", "mon,fri", "--count", "4", "--pre-alert", "Write", "report")
	if err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "added") {
		t.Fatalf("add output = %q", out)
	}

	blocks := loadBlocks(t, dir)
	if len(blocks) != 1 {
		t.Fatalf("stored %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	if b.Task != "Write report" || b.Mode() != models.ReminderModeWeekly || b.ReminderCount != 4 || !b.PreAlert {
		t.Fatalf("stored block = %+v", b)
	}
	if b.MinuteOfDay(time.Local) != 9*60+30 || len(b.Weekdays) != 2 {
		t.Fatalf("stored block time/days = %d %v", b.MinuteOfDay(time.Local), b.Weekdays)
	}

	out, err = runCLI(t, dir, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Write report") || !strings.Contains(out, "mon,fri") || !strings.Contains(out, "4/4") {
		t.Fatalf("list output = %q", out)
	}

	if out, err = runCLI(t, dir, "disable", b.ID[:6]); err != nil {
		t.Fatalf("disable: %v\n%s", err, out)
	}
	if out, _ = runCLI(t, dir, "list"); !strings.Contains(out, "no time blocks") {
		t.Fatalf("disabled block still listed: %q", out)
	}
	if out, _ = runCLI(t, dir, "list", "--all"); !strings.Contains(out, "off") {
		t.Fatalf("list --all output = %q", out)
	}

	if out, err = runCLI(t, dir, "remove", b.ID); err != nil {
		t.Fatalf("remove: %v\n%s", err, out)
	}
	if got := loadBlocks(t, dir); len(got) != 0 {
		t.Fatalf("block not removed: %+v", got)
	}
}

func TestEnableRearmsExhaustedBlock(t *testing.T) {
	dir := t.TempDir()
	kv, err := store.OpenFile(filepath.Join(dir, "blocks.json"), logx.Nop())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	b := models.NewTimeBlock("stretch", time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local), models.ReminderModeDaily, nil, 2, false)
	b.RemainingCount = 0
	b.Status = models.BlockStatusDisabled
	if err := store.NewBlockStore(kv, logx.Nop()).SaveBlocks([]models.TimeBlock{b}); err != nil {
		t.Fatalf("SaveBlocks: %v", err)
	}
	_ = kv.Close()

	if out, err := runCLI(t, dir, "enable", b.ID[:6]); err != nil {
		t.Fatalf("enable: %v\n%s", err, out)
	}
	got := loadBlocks(t, dir)[0]
	if !got.Active() || got.RemainingCount != 2 {
		t.Fatalf("after enable status=%s remaining=%d, want pending 2", got.Status, got.RemainingCount)
	}
}

func TestAddRequiresTimeAndTask(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, dir, "add", "no time"); err == nil {
		t.Fatal("add without --at should fail")
	}
	if _, err := runCLI(t, dir, "add", "--at", "09:00"); err == nil {
		t.Fatal("add without a task should fail")
	}
	if _, err := runCLI(t, dir, "add", "--at", "half past nine", "task"); err == nil {
		t.Fatal("unparseable time should fail")
	}
}

func TestSettingsCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "settings", "--alerts", "off", "--pre-alert-time", "10", "--pre-alert-count", "2")
	if err != nil {
		t.Fatalf("settings: %v\n%s", err, out)
	}
	if !strings.Contains(out, "alerts:          off") || !strings.Contains(out, "10 min") {
		t.Fatalf("settings output = %q", out)
	}

	kv, err := store.OpenFile(filepath.Join(dir, "blocks.json"), logx.Nop())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer kv.Close()
	got, err := store.NewBlockStore(kv, logx.Nop()).LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	want := models.Settings{GlobalAlertEnabled: false, PreAlertTime: 10, PreAlertCount: 2}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}

	if _, err := runCLI(t, dir, "settings", "--alerts", "maybe"); err == nil {
		t.Fatal("bad --alerts value accepted")
	}
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	if out, err := runCLI(t, dir, "add", "--at", "2099-01-01 07:15", "--mode", "once", "Flight"); err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	ics := filepath.Join(dir, "out.ics")
	if out, err := runCLI(t, dir, "export", ics); err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	data, err := os.ReadFile(ics)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "SUMMARY:Flight") {
		t.Fatalf("export = %s", data)
	}

	other := t.TempDir()
	out, err := runCLI(t, other, "import", ics)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 blocks imported") {
		t.Fatalf("import output = %q", out)
	}
	blocks := loadBlocks(t, other)
	if len(blocks) != 1 || blocks[0].Task != "Flight" || blocks[0].Mode() != models.ReminderModeOnce {
		t.Fatalf("imported = %+v", blocks)
	}
}

func TestResolveID(t *testing.T) {
	t.Parallel()
	blocks := []models.TimeBlock{{ID: "abc123"}, {ID: "abd456"}}
	if id, err := resolveID(blocks, "abc"); err != nil || id != "abc123" {
		t.Fatalf("resolveID(abc) = %q, %v", id, err)
	}
	if _, err := resolveID(blocks, "ab"); err == nil {
		t.Fatal("ambiguous prefix accepted")
	}
	if _, err := resolveID(blocks, "zz"); err == nil {
		t.Fatal("unknown prefix accepted")
	}
}

func TestParseStart(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	tests := map[string]time.Time{
		"08:05":                     time.Date(2024, 5, 6, 8, 5, 0, 0, time.UTC),
		"2024-06-01 18:30":          time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC),
		"2024-06-01T18:30":          time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC),
		"2024-06-01T18:30:00+00:00": time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC),
		"2024-06-01T18:30:45Z":      time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC),
	}
	for raw, want := range tests {
		got, err := parseStart(raw, now)
		if err != nil {
			t.Fatalf("parseStart(%q): %v", raw, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parseStart(%q) = %v, want %v", raw, got, want)
		}
	}
}
