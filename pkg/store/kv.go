package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"github.com/borgmon/timeblock/pkg/logx"
)

var (
	ErrClosed        = errors.New("store closed")
	ErrUnknownDriver = errors.New("unknown store driver")
)

// KV is the contract the engine persists through. Get reports absent keys
// with ok=false and a nil error. Writes are last-write-wins.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

// Config selects and configures a backend
type Config struct {
	Driver      string        `yaml:"driver"`
	Path        string        `yaml:"path"`
	BusyTimeout time.Duration `yaml:"busy_timeout"` // sqlite only
}

// DefaultPath returns the per-user location of the block store file
func DefaultPath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "timeblock", name)
}

// Open initializes the configured backend. prefs is only needed by the "prefs" driver.
func Open(cfg Config, prefs fyne.Preferences, log logx.Logger) (KV, error) {
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver := strings.ToLower(strings.TrimSpace(cfg.Driver)); driver {
	case "", "file":
		path := cfg.Path
		if strings.TrimSpace(path) == "" {
			path = DefaultPath("blocks.json")
		}
		return OpenFile(path, log)
	case "sqlite", "sqlite3":
		path := cfg.Path
		if strings.TrimSpace(path) == "" {
			path = DefaultPath("blocks.db")
		}
		return OpenSQLite(path, cfg.BusyTimeout)
	case "prefs", "preferences":
		if prefs == nil {
			return nil, fmt.Errorf("prefs driver needs the desktop app preferences")
		}
		return NewPrefsKV(prefs), nil
	case "memory", "mem":
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
