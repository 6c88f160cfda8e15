package schedule

import (
	"sync"
	"time"

	"github.com/borgmon/timeblock/pkg/models"
)

// BlockState is the transient bookkeeping kept per block between polls
type BlockState struct {
	LastAlertDate        time.Time // Midnight of the day the main alert last fired
	LastNotificationTime time.Time // When the main alert last fired
	LastPreAlertTime     time.Time // When a pre-alert last fired; zero when re-armed
	LastRemainingMinutes int       // Remaining minutes reported by the last pre-alert
	PreAlertsFired       int       // Pre-alerts fired in the current cycle
}

func (s BlockState) hasPreAlert() bool {
	return !s.LastPreAlertTime.IsZero()
}

// Tracker holds dedup guards keyed by block ID. It is never persisted, so a
// process restart re-arms every guard.
type Tracker struct {
	mu     sync.RWMutex
	states map[string]*BlockState
}

// NewTracker creates an empty Tracker
func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]*BlockState)}
}

// Get returns a copy of the state recorded for id
func (t *Tracker) Get(id string) (BlockState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.states[id]
	if !ok {
		return BlockState{}, false
	}
	return *st, true
}

// ClearFor drops all guards for id. Call it whenever the block is edited or deleted.
func (t *Tracker) ClearFor(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, id)
}

// ClearAll drops every guard. Call it after the block list is reloaded from outside.
func (t *Tracker) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states = make(map[string]*BlockState)
}

// Len returns the number of blocks with recorded state
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.states)
}

// Retain drops state for blocks that no longer exist
func (t *Tracker) Retain(ids map[string]bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.states {
		if !ids[id] {
			delete(t.states, id)
		}
	}
}

// stateLocked returns the mutable state for id, creating it. Caller holds mu.
func (t *Tracker) stateLocked(id string) *BlockState {
	st, ok := t.states[id]
	if !ok {
		st = &BlockState{}
		t.states[id] = st
	}
	return st
}

func (t *Tracker) recordMain(id string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.stateLocked(id)
	st.LastAlertDate = models.StartOfDay(now)
	st.LastNotificationTime = now
}

func (t *Tracker) recordPre(id string, now time.Time, remaining int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.stateLocked(id)
	st.LastPreAlertTime = now
	st.LastRemainingMinutes = remaining
	st.PreAlertsFired++
}

// rearmPre clears pre-alert guards so the next cycle can warn again
func (t *Tracker) rearmPre(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[id]
	if !ok {
		return
	}
	st.LastPreAlertTime = time.Time{}
	st.LastRemainingMinutes = 0
	st.PreAlertsFired = 0
}
