package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/borgmon/timeblock/pkg/logx"
)

type recorder struct {
	mu     sync.Mutex
	titles []string
}

func (r *recorder) Dispatch(title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.titles...)
}

func TestAsyncDeliversInOrder(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	a := NewAsync(rec, 100, 8, logx.Nop())

	for _, title := range []string{"a", "b", "c"} {
		if err := a.Dispatch(title, "body"); err != nil {
			t.Fatalf("Dispatch(%s): %v", title, err)
		}
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := rec.list()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("delivered %v, want [a b c]", got)
	}
	if err := a.Dispatch("late", ""); !errors.Is(err, ErrClosed) {
		t.Fatalf("Dispatch after Close = %v, want ErrClosed", err)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestAsyncDoesNotBlockOnSlowRenderer(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	slow := Func(func(title, body string) error {
		<-release
		return nil
	})
	a := NewAsync(slow, 100, 1, logx.Nop())
	defer func() {
		close(release)
		_ = a.Close(context.Background())
	}()

	start := time.Now()
	var full int
	for i := 0; i < 5; i++ {
		if err := a.Dispatch("x", ""); errors.Is(err, ErrQueueFull) {
			full++
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Dispatch blocked for %v", elapsed)
	}
	if full == 0 {
		t.Fatal("expected ErrQueueFull once the queue filled")
	}
}

func TestAsyncRecoversPanics(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	calls := 0
	flaky := Func(func(title, body string) error {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return rec.Dispatch(title, body)
	})
	a := NewAsync(flaky, 100, 4, logx.Nop())

	_ = a.Dispatch("first", "")
	_ = a.Dispatch("second", "")
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := rec.list(); len(got) != 1 || got[0] != "second" {
		t.Fatalf("delivered %v, want the worker to survive the panic", got)
	}
}

func TestMulti(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	failing := Func(func(title, body string) error { return errors.New("no daemon") })
	m := Multi{failing, nil, rec}

	err := m.Dispatch("t", "b")
	if err == nil {
		t.Fatal("expected the failing style's error")
	}
	if got := rec.list(); len(got) != 1 {
		t.Fatalf("a failing style stopped the others: %v", got)
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()
	d, err := Build(nil, Deps{Log: logx.Nop()})
	if err != nil {
		t.Fatalf("Build(nil): %v", err)
	}
	if _, ok := d.(LogDispatcher); !ok {
		t.Fatalf("Build(nil) = %T, want LogDispatcher", d)
	}

	if _, err := Build([]string{"pigeon"}, Deps{}); err == nil {
		t.Fatal("unknown style should fail")
	}
	if _, err := Build([]string{StyleSystem}, Deps{}); err == nil {
		t.Fatal("system style without an app should fail")
	}
	if _, err := Build([]string{StyleSound}, Deps{}); err == nil {
		t.Fatal("sound style without a file should fail")
	}
}

func TestSystemDispatcher(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	d, err := Build([]string{StyleSystem, StyleLog}, Deps{App: a, Log: logx.Nop()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := d.Dispatch("Write report", "It's 09:00, time to start"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
}
