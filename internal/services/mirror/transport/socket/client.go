// Package socket keeps the mirror connected to the storefront's websocket
// feed and folds every pushed frame into the store.
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/connection"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/event"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/storage"
	"golang.org/x/net/websocket"
)

const (
	// DefaultPollInterval is the nominal clock tick period.
	DefaultPollInterval = 30 * time.Second

	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 30 * time.Second
)

// Target receives connection lifecycle actions and server payloads.
type Target interface {
	StartConnection(ctx context.Context) (connection.State, error)
	SetConnected(ctx context.Context) (connection.State, error)
	SetFailed(ctx context.Context) (connection.State, error)
	Receive(ctx context.Context, t event.Type, payload []byte) (connection.State, error)
	SetCurrentTime(ctx context.Context, ticksElapsed int64) (connection.State, error)
}

// Frame is one inbound socket message.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Config configures a socket client.
type Config struct {
	// URL is the full websocket URL, host plus namespace.
	URL string
	// Origin defaults to the URL with an http scheme.
	Origin string
	// PollInterval is the clock ticker period. Zero uses DefaultPollInterval.
	PollInterval time.Duration
	// InitialBackoff and MaxBackoff bound the reconnect delay.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Cache, when set, receives every cacheable payload.
	Cache storage.PayloadStore
}

// Client maintains one websocket connection at a time.
type Client struct {
	cfg    Config
	target Target
	now    func() time.Time
}

// New validates cfg and builds a client.
func New(cfg Config, target Target) (*Client, error) {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		return nil, errors.New("socket url is required")
	}
	if !strings.HasPrefix(cfg.URL, "ws://") && !strings.HasPrefix(cfg.URL, "wss://") {
		return nil, fmt.Errorf("socket url %q must use ws or wss", cfg.URL)
	}
	if target == nil {
		return nil, errors.New("socket target is required")
	}
	if strings.TrimSpace(cfg.Origin) == "" {
		cfg.Origin = "http" + strings.TrimPrefix(cfg.URL, "ws")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	return &Client{cfg: cfg, target: target, now: time.Now}, nil
}

// URL joins a socket host and namespace.
func URL(host, namespace string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	namespace = strings.Trim(strings.TrimSpace(namespace), "/")
	if namespace == "" {
		return host
	}
	return host + "/" + namespace
}

// Run connects, reads until the connection drops, and reconnects until ctx
// is done. It returns nil on cancellation.
func (c *Client) Run(ctx context.Context) error {
	for {
		conn, err := c.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if _, err := c.target.SetConnected(ctx); err != nil {
			log.Printf("socket: set connected: %v", err)
		}
		log.Printf("socket: connected url=%s", c.cfg.URL)

		readErr := c.serve(ctx, conn)
		_ = conn.Close()

		// Record the disconnect even when shutting down.
		if _, err := c.target.SetFailed(context.WithoutCancel(ctx)); err != nil {
			log.Printf("socket: set failed: %v", err)
		}
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("socket: disconnected url=%s: %v", c.cfg.URL, readErr)
	}
}

func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.InitialBackoff
	policy.MaxInterval = c.cfg.MaxBackoff

	return backoff.Retry(ctx, func() (*websocket.Conn, error) {
		if _, err := c.target.StartConnection(ctx); err != nil {
			log.Printf("socket: start connection: %v", err)
		}
		wsConfig, err := websocket.NewConfig(c.cfg.URL, c.cfg.Origin)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("socket config: %w", err))
		}
		conn, err := wsConfig.DialContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", c.cfg.URL, err)
		}
		return conn, nil
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Printf("socket: retry in %s: %v", next, err)
		}),
	)
}

// serve reads frames until the connection fails or ctx is done.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	ticker := &clockTicker{}
	defer ticker.Stop()

	decoder := json.NewDecoder(conn)
	for {
		var frame Frame
		if err := decoder.Decode(&frame); err != nil {
			return fmt.Errorf("read frame: %w", err)
		}
		t := event.Type(frame.Event)
		if !t.IsServer() {
			log.Printf("socket: ignore event=%q", frame.Event)
			continue
		}
		if _, err := c.target.Receive(ctx, t, frame.Payload); err != nil {
			// The store already logged the dropped payload.
			continue
		}
		if t == event.TypeServerTime {
			ticker.Restart(ctx, c.cfg.PollInterval, c.tick)
		}
		if t.Cacheable() && c.cfg.Cache != nil {
			err := c.cfg.Cache.SavePayload(ctx, storage.Payload{
				EventType:  t,
				Payload:    frame.Payload,
				ReceivedAt: c.now(),
			})
			if err != nil {
				log.Printf("socket: cache %s: %v", t, err)
			}
		}
	}
}

func (c *Client) tick(ctx context.Context) {
	if _, err := c.target.SetCurrentTime(ctx, c.cfg.PollInterval.Milliseconds()); err != nil {
		log.Printf("socket: clock tick: %v", err)
	}
}

// clockTicker runs at most one periodic tick loop.
type clockTicker struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Restart stops any running loop and starts a new one.
func (k *clockTicker) Restart(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	k.Stop()

	k.mu.Lock()
	defer k.mu.Unlock()
	tickCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	k.cancel = cancel
	k.done = done
	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-tickCtx.Done():
				return
			case <-t.C:
				fn(tickCtx)
			}
		}
	}()
}

// Stop cancels the running loop and waits for it to exit.
func (k *clockTicker) Stop() {
	k.mu.Lock()
	cancel, done := k.cancel, k.done
	k.cancel, k.done = nil, nil
	k.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Replay folds every cached payload into target, oldest first.
func Replay(ctx context.Context, cache storage.PayloadStore, target Target) (int, error) {
	if cache == nil || target == nil {
		return 0, nil
	}
	payloads, err := cache.ListPayloads(ctx)
	if err != nil {
		return 0, fmt.Errorf("list cached payloads: %w", err)
	}
	applied := 0
	for _, payload := range payloads {
		if !payload.EventType.Cacheable() {
			continue
		}
		if _, err := target.Receive(ctx, payload.EventType, payload.Payload); err != nil {
			log.Printf("socket: replay %s: %v", payload.EventType, err)
			continue
		}
		applied++
	}
	return applied, nil
}
