package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/event"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestSaveGetPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 3, 18, 15, 0, 0, time.UTC)
	input := storage.Payload{
		EventType:  event.TypeCatalog,
		Payload:    []byte(`{"version":3}`),
		ReceivedAt: now,
	}
	if err := store.SavePayload(context.Background(), input); err != nil {
		t.Fatalf("save payload: %v", err)
	}

	got, err := store.GetPayload(context.Background(), event.TypeCatalog)
	if err != nil {
		t.Fatalf("get payload: %v", err)
	}
	if got.EventType != event.TypeCatalog {
		t.Fatalf("event type = %q, want %q", got.EventType, event.TypeCatalog)
	}
	if string(got.Payload) != `{"version":3}` {
		t.Fatalf("payload = %s", got.Payload)
	}
	if !got.ReceivedAt.Equal(now) {
		t.Fatalf("received at = %v, want %v", got.ReceivedAt, now)
	}
}

func TestSavePayloadOverwritesPrevious(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	first := time.Date(2026, time.March, 3, 18, 0, 0, 0, time.UTC)
	for i, body := range []string{`{"version":1}`, `{"version":2}`} {
		err := store.SavePayload(ctx, storage.Payload{
			EventType:  event.TypeSettings,
			Payload:    []byte(body),
			ReceivedAt: first.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("save payload %d: %v", i, err)
		}
	}

	payloads, err := store.ListPayloads(ctx)
	if err != nil {
		t.Fatalf("list payloads: %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}
	if string(payloads[0].Payload) != `{"version":2}` {
		t.Fatalf("payload = %s, want latest", payloads[0].Payload)
	}
}

func TestListPayloadsOrdersByReceiveTime(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 3, 18, 0, 0, 0, time.UTC)
	inputs := []storage.Payload{
		{EventType: event.TypeSettings, Payload: []byte(`{}`), ReceivedAt: base.Add(2 * time.Second)},
		{EventType: event.TypeCatalog, Payload: []byte(`{}`), ReceivedAt: base},
		{EventType: event.TypeFulfillments, Payload: []byte(`[]`), ReceivedAt: base.Add(time.Second)},
	}
	for _, input := range inputs {
		if err := store.SavePayload(ctx, input); err != nil {
			t.Fatalf("save %s: %v", input.EventType, err)
		}
	}

	payloads, err := store.ListPayloads(ctx)
	if err != nil {
		t.Fatalf("list payloads: %v", err)
	}
	want := []event.Type{event.TypeCatalog, event.TypeFulfillments, event.TypeSettings}
	if len(payloads) != len(want) {
		t.Fatalf("expected %d payloads, got %d", len(want), len(payloads))
	}
	for i, payload := range payloads {
		if payload.EventType != want[i] {
			t.Fatalf("payload[%d] = %q, want %q", i, payload.EventType, want[i])
		}
	}
}

func TestGetPayloadNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetPayload(context.Background(), event.TypeCatalog)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSavePayloadRejectsUncacheableType(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	err := store.SavePayload(context.Background(), storage.Payload{
		EventType: event.TypeServerTime,
		Payload:   []byte(`{"time":"2026-03-03T18:00:00Z"}`),
	})
	if err == nil {
		t.Fatal("expected server time payload to be rejected")
	}
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	t.Parallel()

	var store *Store
	if _, err := store.ListPayloads(context.Background()); err == nil {
		t.Fatal("expected not configured error")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
