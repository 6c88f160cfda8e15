package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/borgmon/timeblock/pkg/logx"
	"golang.org/x/time/rate"
)

const (
	DefaultQueueSize  = 64
	DefaultRatePerSec = 2
)

var (
	ErrQueueFull = errors.New("alert queue full")
	ErrClosed    = errors.New("dispatcher closed")
)

type alertItem struct {
	title string
	body  string
}

// Async hands alerts to a background worker so a slow renderer never stalls the
// scheduler. Bursts are smoothed by a rate limiter; when the queue is full the
// alert is dropped and ErrQueueFull returned.
type Async struct {
	next    Dispatcher
	log     logx.Logger
	limiter *rate.Limiter
	queue   chan alertItem

	mu        sync.RWMutex
	closed    bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewAsync starts the worker. ratePerSec and queueSize fall back to defaults when <= 0.
func NewAsync(next Dispatcher, ratePerSec, queueSize int, log logx.Logger) *Async {
	if ratePerSec <= 0 {
		ratePerSec = DefaultRatePerSec
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &Async{
		next:    next,
		log:     log.With(logx.String("component", "notify")),
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		queue:   make(chan alertItem, queueSize),
		cancel:  cancel,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.worker(ctx)
	}()
	return a
}

// Dispatch enqueues the alert without blocking
func (a *Async) Dispatch(title, body string) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- alertItem{title: title, body: body}:
		return nil
	default:
		a.log.Warn("alert dropped, queue full", logx.String("title", title), logx.Int("queue_cap", cap(a.queue)))
		return ErrQueueFull
	}
}

// Close stops the worker once queued alerts are delivered or ctx expires
func (a *Async) Close(ctx context.Context) error {
	var err error
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.queue)
		a.mu.Unlock()

		done := make(chan struct{})
		go func() {
			a.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			// a renderer stuck in Dispatch is abandoned
			err = ctx.Err()
		}
		a.cancel()
	})
	return err
}

func (a *Async) worker(ctx context.Context) {
	for it := range a.queue {
		if err := a.limiter.Wait(ctx); err != nil {
			return
		}
		if err := a.deliver(it); err != nil {
			a.log.Warn("alert delivery failed", logx.String("title", it.title), logx.Err(err))
		}
	}
}

func (a *Async) deliver(it alertItem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatcher panic: %v", r)
		}
	}()
	return a.next.Dispatch(it.title, it.body)
}
