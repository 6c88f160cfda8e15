package schedule

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/borgmon/timeblock/pkg/logx"
	"github.com/borgmon/timeblock/pkg/models"
	"github.com/robfig/cron/v3"
)

// DefaultInterval is the poll period. Firing is minute granular, so the
// interval must stay well under a minute or matching minutes get skipped.
const DefaultInterval = 5 * time.Second

var (
	ErrBlockNotFound = errors.New("time block not found")
	ErrDuplicateID   = errors.New("time block id already exists")
)

// Repository is the persistence the scheduler reads every tick
type Repository interface {
	LoadBlocks() ([]models.TimeBlock, error)
	SaveBlocks(blocks []models.TimeBlock) error
	LoadSettings() (models.Settings, error)
	SaveSettings(settings models.Settings) error
}

// Dispatcher renders an alert. Implementations must return quickly.
type Dispatcher interface {
	Dispatch(title, body string) error
}

// Options tunes a Scheduler. Zero values select defaults.
type Options struct {
	Interval time.Duration
	Clock    Clock
	Tracker  *Tracker
	Logger   logx.Logger
}

// Scheduler polls the repository, fires alerts and writes back rolled forward blocks.
// Ticks and edits are serialised, so no two passes ever overlap.
type Scheduler struct {
	repo       Repository
	dispatcher Dispatcher
	clock      Clock
	tracker    *Tracker
	interval   time.Duration
	log        logx.Logger

	mu sync.Mutex
	// unsaved holds a mutated snapshot whose write failed. It is retried before
	// the next read and, while the store keeps failing, evaluated in place of it.
	unsaved    []models.TimeBlock
	hasUnsaved bool

	cron      *cron.Cron
	first     sync.WaitGroup // the pass Start runs before the first interval
	observers []func(Result)
}

// New creates a Scheduler. Call Start to begin polling.
func New(repo Repository, dispatcher Dispatcher, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Tracker == nil {
		opts.Tracker = NewTracker()
	}
	if opts.Logger.IsZero() {
		opts.Logger = logx.Nop()
	}

	return &Scheduler{
		repo:       repo,
		dispatcher: dispatcher,
		clock:      opts.Clock,
		tracker:    opts.Tracker,
		interval:   opts.Interval,
		log:        opts.Logger.With(logx.String("component", "scheduler")),
	}
}

// Tracker exposes the dedup guards
func (s *Scheduler) Tracker() *Tracker { return s.tracker }

// OnTick registers fn to run after every completed pass. Register before Start.
func (s *Scheduler) OnTick(fn func(Result)) {
	s.observers = append(s.observers, fn)
}

// Start begins polling on the configured interval
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return
	}

	logger := cronLogger{log: s.log}
	s.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		_, _ = s.Tick()
	}))
	s.cron.Start()
	s.log.Info("scheduler started", logx.Duration("interval", s.interval))

	// first pass without waiting for the interval
	s.first.Add(1)
	go func() {
		defer s.first.Done()
		_, _ = s.Tick()
	}()
}

// Stop halts polling and waits for a running pass to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.first.Wait()
	s.log.Info("scheduler stopped")
}

// Tick runs one evaluation pass
func (s *Scheduler) Tick() (Result, error) {
	s.mu.Lock()
	res, err := s.tickLocked()
	s.mu.Unlock()

	if err != nil {
		return res, err
	}
	for _, fn := range s.observers {
		fn(res)
	}
	return res, nil
}

func (s *Scheduler) tickLocked() (Result, error) {
	settings, err := s.repo.LoadSettings()
	if err != nil {
		s.log.Warn("settings unreadable, using defaults", logx.Err(err))
		settings = models.DefaultSettings()
	}
	if !settings.GlobalAlertEnabled {
		return Result{}, nil
	}

	blocks, err := s.snapshotLocked()
	if err != nil {
		s.log.Error("load time blocks failed", logx.Err(err))
		return Result{}, err
	}

	now := s.clock.Now()
	res := Evaluate(now, blocks, settings, s.tracker)

	// guards of blocks removed from the store by someone else
	live := make(map[string]bool, len(res.Blocks))
	for _, b := range res.Blocks {
		live[b.ID] = true
	}
	s.tracker.Retain(live)

	for _, alert := range res.Alerts {
		s.log.Info("alert fired",
			logx.String("block", alert.BlockID),
			logx.String("kind", string(alert.Kind)),
			logx.String("task", alert.Task),
		)
		s.dispatch(alert)
	}

	if res.Changed() {
		if err := s.repo.SaveBlocks(res.Blocks); err != nil {
			s.unsaved = res.Blocks
			s.hasUnsaved = true
			s.log.Warn("persist time blocks failed, will retry next tick",
				logx.Err(err),
				logx.Int("mutated", len(res.Mutated)),
				logx.Int("deleted", len(res.Deleted)),
			)
		} else {
			s.log.Debug("time blocks persisted",
				logx.Int("mutated", len(res.Mutated)),
				logx.Int("deleted", len(res.Deleted)),
			)
		}
	}
	return res, nil
}

// snapshotLocked returns the blocks to evaluate, flushing an unsaved snapshot first
func (s *Scheduler) snapshotLocked() ([]models.TimeBlock, error) {
	if s.hasUnsaved {
		if err := s.repo.SaveBlocks(s.unsaved); err != nil {
			s.log.Warn("retry persist failed, evaluating unsaved snapshot", logx.Err(err))
			return append([]models.TimeBlock(nil), s.unsaved...), nil
		}
		s.log.Info("unsaved time blocks persisted on retry", logx.Int("blocks", len(s.unsaved)))
		s.unsaved = nil
		s.hasUnsaved = false
	}
	return s.repo.LoadBlocks()
}

func (s *Scheduler) dispatch(alert models.Alert) {
	if s.dispatcher == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("dispatcher panicked", logx.String("block", alert.BlockID), logx.Any("panic", r))
		}
	}()
	if err := s.dispatcher.Dispatch(alert.Title(), alert.Body()); err != nil {
		s.log.Warn("dispatch failed", logx.String("block", alert.BlockID), logx.Err(err))
	}
}

// Reload discards in-memory state after the store was changed from outside
func (s *Scheduler) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unsaved = nil
	s.hasUnsaved = false
	s.tracker.ClearAll()
	s.log.Info("time blocks reloaded, dedup guards cleared")
}

// Blocks returns the current snapshot
func (s *Scheduler) Blocks() ([]models.TimeBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AddBlock validates and stores a new block
func (s *Scheduler) AddBlock(block models.TimeBlock) error {
	if err := block.Validate(); err != nil {
		return err
	}
	return s.edit(block.ID, func(blocks []models.TimeBlock) ([]models.TimeBlock, error) {
		if models.FindBlock(blocks, block.ID) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, block.ID)
		}
		return append(blocks, block), nil
	})
}

// UpdateBlock replaces the stored block with the same ID
func (s *Scheduler) UpdateBlock(block models.TimeBlock) error {
	if err := block.Validate(); err != nil {
		return err
	}
	return s.edit(block.ID, func(blocks []models.TimeBlock) ([]models.TimeBlock, error) {
		i := models.FindBlock(blocks, block.ID)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, block.ID)
		}
		blocks[i] = block
		return blocks, nil
	})
}

// DeleteBlock removes a block
func (s *Scheduler) DeleteBlock(id string) error {
	return s.edit(id, func(blocks []models.TimeBlock) ([]models.TimeBlock, error) {
		i := models.FindBlock(blocks, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
		}
		return append(blocks[:i], blocks[i+1:]...), nil
	})
}

// CompleteBlock marks a block done so it is no longer evaluated
func (s *Scheduler) CompleteBlock(id string) error {
	return s.edit(id, func(blocks []models.TimeBlock) ([]models.TimeBlock, error) {
		i := models.FindBlock(blocks, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
		}
		blocks[i].Status = models.BlockStatusCompleted
		return blocks, nil
	})
}

// SetBlockEnabled switches a single block on or off. Switching on also rearms a
// block that ran out of reminders or was completed.
func (s *Scheduler) SetBlockEnabled(id string, enabled bool) error {
	return s.edit(id, func(blocks []models.TimeBlock) ([]models.TimeBlock, error) {
		i := models.FindBlock(blocks, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
		}
		blocks[i].Enabled = enabled
		if enabled {
			blocks[i].Rearm()
		}
		return blocks, nil
	})
}

// SetGlobalAlertEnabled flips the master switch
func (s *Scheduler) SetGlobalAlertEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.repo.LoadSettings()
	if err != nil {
		s.log.Warn("settings unreadable, rewriting from defaults", logx.Err(err))
		settings = models.DefaultSettings()
	}
	settings.GlobalAlertEnabled = enabled
	if err := s.repo.SaveSettings(settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.log.Info("global alerts toggled", logx.Bool("enabled", enabled))
	return nil
}

// edit applies fn to the current snapshot, stores the result and clears the
// block's dedup guards in the same critical section
func (s *Scheduler) edit(id string, fn func([]models.TimeBlock) ([]models.TimeBlock, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks, err := s.snapshotLocked()
	if err != nil {
		return fmt.Errorf("load time blocks: %w", err)
	}
	blocks, err = fn(blocks)
	if err != nil {
		return err
	}
	if err := s.repo.SaveBlocks(blocks); err != nil {
		return fmt.Errorf("save time blocks: %w", err)
	}
	s.unsaved = nil
	s.hasUnsaved = false
	s.tracker.ClearFor(id)
	return nil
}
