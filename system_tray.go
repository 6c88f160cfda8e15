package main

import (
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/borgmon/timeblock/pkg/logx"
	"github.com/borgmon/timeblock/pkg/schedule"
)

const upcomingLimit = 5

type trayState struct {
	enabled  bool
	upcoming []string
	key      string
}

// setupSystemTray runs on the main goroutine before the app loop starts
func (tb *TimeBlock) setupSystemTray() {
	desk, ok := tb.app.(desktop.App)
	if !ok {
		return
	}
	state := tb.currentTray()
	tb.trayKey = state.key
	desk.SetSystemTrayMenu(tb.buildMenu(state.enabled, state.upcoming))
	desk.SetSystemTrayIcon(theme.HistoryIcon())
}

// refreshTray rebuilds the menu when its content changed. Safe from any goroutine.
func (tb *TimeBlock) refreshTray(force bool) {
	desk, ok := tb.app.(desktop.App)
	if !ok {
		return
	}

	state := tb.currentTray()
	fyne.Do(func() {
		if !force && state.key == tb.trayKey {
			return
		}
		tb.trayKey = state.key
		desk.SetSystemTrayMenu(tb.buildMenu(state.enabled, state.upcoming))
	})
}

func (tb *TimeBlock) currentTray() trayState {
	settings, err := tb.blocks.LoadSettings()
	if err != nil {
		tb.log.Debug("tray settings unreadable", logx.Err(err))
	}
	blocks, err := tb.sched.Blocks()
	if err != nil {
		tb.log.Debug("tray blocks unreadable", logx.Err(err))
	}
	upcoming := schedule.Upcoming(time.Now(), blocks, upcomingLimit)

	lines := make([]string, 0, len(upcoming))
	for _, occ := range upcoming {
		lines = append(lines, fmt.Sprintf("  %s - %s", occ.At.Format("15:04"), truncateString(occ.Block.Task, 35)))
	}
	return trayState{
		enabled:  settings.GlobalAlertEnabled,
		upcoming: lines,
		key:      fmt.Sprintf("%t|%s", settings.GlobalAlertEnabled, strings.Join(lines, "|")),
	}
}

func (tb *TimeBlock) buildMenu(enabled bool, upcoming []string) *fyne.Menu {
	items := []*fyne.MenuItem{}

	if len(upcoming) > 0 {
		header := fyne.NewMenuItem("Upcoming Today:", nil)
		header.Disabled = true
		items = append(items, header)
		for _, line := range upcoming {
			item := fyne.NewMenuItem(line, nil)
			item.Disabled = true
			items = append(items, item)
		}
	} else {
		empty := fyne.NewMenuItem("Nothing else today", nil)
		empty.Disabled = true
		items = append(items, empty)
	}
	items = append(items, fyne.NewMenuItemSeparator())

	toggle := fyne.NewMenuItem("Alerts Enabled", func() {
		go tb.setAlerts(!enabled)
	})
	toggle.Checked = enabled
	items = append(items,
		toggle,
		fyne.NewMenuItem("Reload", func() {
			go func() {
				tb.sched.Reload()
				tb.refreshTray(true)
			}()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", tb.quit),
	)

	return fyne.NewMenu("Time Blocks", items...)
}

func (tb *TimeBlock) setAlerts(enabled bool) {
	if err := tb.sched.SetGlobalAlertEnabled(enabled); err != nil {
		tb.log.Error("toggle alerts failed", logx.Err(err))
		return
	}
	tb.refreshTray(true)
}

// truncateString truncates a string to maxLen runes, adding "..." if needed
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
