package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/connection"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/event"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestDispatchLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	if got := s.State().Status; got != connection.StatusNone {
		t.Fatalf("initial status = %s", got)
	}
	if _, err := s.StartConnection(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.SetConnected(ctx); err != nil {
		t.Fatalf("connected: %v", err)
	}
	if got := s.State().Status; got != connection.StatusConnected {
		t.Fatalf("status = %s", got)
	}
	if _, err := s.SetFailed(ctx); err != nil {
		t.Fatalf("failed: %v", err)
	}
	if got := s.State().Status; got != connection.StatusFailed {
		t.Fatalf("status = %s", got)
	}
}

func TestDispatchErrorKeepsState(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.Receive(ctx, event.TypeCatalog, []byte(`{"categories":[]}`)); err != nil {
		t.Fatalf("receive: %v", err)
	}
	before := s.State()
	got, err := s.Receive(ctx, event.TypeCatalog, []byte(`[`))
	if err == nil {
		t.Fatal("expected error")
	}
	if got.Catalog != before.Catalog || s.State().Catalog != before.Catalog {
		t.Fatal("catalog replaced by a malformed push")
	}
}

func TestSubscribeSeesCommitsInOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	var seen []connection.Status
	unsubscribe := s.Subscribe(func(_, next connection.State) {
		seen = append(seen, next.Status)
	})
	s.StartConnection(ctx)
	s.SetConnected(ctx)
	// A failed fold is not a commit.
	s.Receive(ctx, event.TypeSettings, []byte(`nope`))
	unsubscribe()
	s.SetFailed(ctx)
	want := []connection.Status{connection.StatusStart, connection.StatusConnected}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}

func TestSetCurrentTimeUsesStoreClock(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.UnixMilli(10_000)}
	s := New(WithClock(clock.Now))
	if _, err := s.Receive(ctx, event.TypeServerTime, []byte(`{"time":"2024-05-01T12:00:00Z","tz":"UTC"}`)); err != nil {
		t.Fatalf("server time: %v", err)
	}
	load := s.State().PageLoadTime
	if s.State().PageLoadTimeLocal != 10_000 {
		t.Fatalf("local load = %d", s.State().PageLoadTimeLocal)
	}
	clock.Advance(5 * time.Minute)
	state, err := s.SetCurrentTime(ctx, 30_000)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if state.CurrentTime != load+300_000 {
		t.Fatalf("current = %d, want %d", state.CurrentTime, load+300_000)
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	ctx := context.Background()
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Receive(ctx, event.TypeSettings, []byte(`{"config":{}}`))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.State().Versions.Settings
			}
		}()
	}
	wg.Wait()
	if got := s.State().Versions.Settings; got != 400 {
		t.Fatalf("settings version = %d, want 400", got)
	}
}
