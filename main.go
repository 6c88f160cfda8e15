package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/borgmon/timeblock/pkg/config"
	"github.com/borgmon/timeblock/pkg/logx"
	"github.com/borgmon/timeblock/pkg/notify"
	"github.com/borgmon/timeblock/pkg/platform"
	"github.com/borgmon/timeblock/pkg/schedule"
	"github.com/borgmon/timeblock/pkg/store"
)

const appID = "com.borgmon.timeblock"

// configEnv overrides the config file location
const configEnv = "TIMEBLOCK_CONFIG"

type TimeBlock struct {
	app    fyne.App
	config config.Config
	log    logx.Logger

	kv       store.KV
	blocks   *store.BlockStore
	notifier *notify.Async
	sched    *schedule.Scheduler

	cancel  context.CancelFunc
	closers []io.Closer

	trayKey string
}

func main() {
	tb := &TimeBlock{app: app.NewWithID(appID)}

	if err := tb.initialize(); err != nil {
		fmt.Fprintln(os.Stderr, "timeblock:", err)
		tb.shutdown()
		os.Exit(1)
	}

	tb.run()
}

func (tb *TimeBlock) initialize() error {
	path := os.Getenv(configEnv)
	if strings.TrimSpace(path) == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	tb.config = cfg

	log, closer, err := logx.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	tb.closers = append(tb.closers, closer)
	tb.log = log.With(logx.String("app", "timeblock"))
	tb.log.Info("config loaded", logx.String("path", path), logx.String("store", cfg.Store.Driver))

	// Sync autostart state with config on startup
	if err := setupAutostart(cfg.AutoStart, tb.log); err != nil {
		tb.log.Warn("failed to setup autostart", logx.Err(err))
	}

	kv, err := store.Open(cfg.Store, tb.app.Preferences(), tb.log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	tb.kv = kv
	tb.closers = append(tb.closers, kv)
	tb.blocks = store.NewBlockStore(kv, tb.log)

	dispatcher, err := notify.Build(cfg.Notify.Styles, notify.Deps{
		App:       tb.app,
		SoundFile: cfg.Notify.SoundFile,
		Log:       tb.log,
	})
	if err != nil {
		return fmt.Errorf("build notifier: %w", err)
	}
	tb.notifier = notify.NewAsync(dispatcher, cfg.Notify.RatePerSec, cfg.Notify.QueueSize, tb.log)

	tb.sched = schedule.New(tb.blocks, tb.notifier, schedule.Options{
		Interval: cfg.Interval(),
		Logger:   tb.log,
	})
	tb.sched.OnTick(func(schedule.Result) {
		tb.refreshTray(false)
	})

	tb.setupSystemTray()
	tb.sched.Start()
	tb.watchStore()
	return nil
}

// watchStore reloads the scheduler when another process rewrites the store file
func (tb *TimeBlock) watchStore() {
	file, ok := tb.kv.(*store.FileKV)
	if !ok || !tb.config.WatchStore {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	tb.cancel = cancel
	go func() {
		err := file.Watch(ctx, func() {
			tb.sched.Reload()
			tb.refreshTray(true)
		})
		if err != nil {
			tb.log.Warn("store watcher stopped", logx.Err(err))
		}
	}()
}

func (tb *TimeBlock) run() {
	tb.app.Lifecycle().SetOnStarted(func() {
		platform.SetActivationPolicy()
	})
	tb.app.Lifecycle().SetOnStopped(tb.shutdown)
	tb.app.Run()
}

func (tb *TimeBlock) shutdown() {
	if tb.cancel != nil {
		tb.cancel()
		tb.cancel = nil
	}
	if tb.sched != nil {
		tb.sched.Stop()
	}
	if tb.notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := tb.notifier.Close(ctx); err != nil {
			tb.log.Warn("notifier did not drain", logx.Err(err))
		}
		cancel()
		tb.notifier = nil
	}
	for i := len(tb.closers) - 1; i >= 0; i-- {
		_ = tb.closers[i].Close()
	}
	tb.closers = nil
}

func (tb *TimeBlock) quit() {
	tb.app.Quit()
}
