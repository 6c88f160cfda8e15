package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/borgmon/timeblock/pkg/logx"
	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// FileKV keeps every key in one JSON object file. JSON object and array values are
// embedded as-is so the file stays hand editable; anything else is stored as a string.
//
// Every Get reads the file, so edits from other processes are seen on the next poll.
type FileKV struct {
	path string
	log  logx.Logger

	mu sync.Mutex
	// lastHash is the content hash seen at open, after our last write, or when Watch
	// last reported a change. Get leaves it alone so an outside edit read by a poll
	// still reaches the watcher.
	lastHash uint64
	closed   bool
}

// OpenFile opens (or prepares) the store file at path
func OpenFile(path string, log logx.Logger) (*FileKV, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	f := &FileKV{path: path, log: log}
	if b, err := os.ReadFile(path); err == nil {
		f.lastHash = hashBytes(b)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	return f, nil
}

func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", false, ErrClosed
	}

	values, err := f.readLocked()
	if err != nil {
		return "", false, err
	}
	raw, ok := values[key]
	if !ok {
		return "", false, nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, fmt.Errorf("decode %q: %w", key, err)
		}
		return s, true, nil
	}
	// the file is stored indented, callers get the compact form back
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", false, fmt.Errorf("decode %q: %w", key, err)
	}
	return buf.String(), true, nil
}

func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	values, err := f.readLocked()
	if err != nil {
		return err
	}
	values[key] = encodeValue(value)

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	data = append(data, '\n')

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace store file: %w", err)
	}
	f.lastHash = hashBytes(data)
	return nil
}

func (f *FileKV) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *FileKV) readLocked() (map[string]json.RawMessage, error) {
	values := map[string]json.RawMessage{}
	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("decode store file: %w", err)
	}
	return values, nil
}

func encodeValue(value string) json.RawMessage {
	trimmed := strings.TrimSpace(value)
	if trimmed != "" && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	b, _ := json.Marshal(value)
	return b
}

// Watch calls onChange after the file is modified by someone else. Writes made
// through this FileKV are ignored. It blocks until ctx is done.
func (f *FileKV) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(f.path)
	file := filepath.Base(f.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	f.log.Debug("store watcher started", logx.String("path", f.path))

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, func() {
			if f.changedExternally() {
				f.log.Info("store file changed externally", logx.String("path", f.path))
				onChange()
			}
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.log.Warn("store watch error", logx.Err(err), logx.String("dir", dir))
		}
	}
}

// changedExternally compares the file content against the last known hash
func (f *FileKV) changedExternally() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if err != nil && !os.IsNotExist(err) {
		return false
	}
	h := hashBytes(b)
	if h == f.lastHash {
		return false
	}
	f.lastHash = h
	return true
}

func hashBytes(b []byte) uint64 {
	if len(b) == 0 {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
