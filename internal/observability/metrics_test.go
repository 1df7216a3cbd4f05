package observability

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/events"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/v1/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/v1/tickets", "GET", 200, 30*time.Millisecond)
	m.RecordError("/api/v1/tickets", "POST", "CONFLICT")

	snap := m.Snapshot()
	key := "/api/v1/tickets|GET|200"
	if snap.Requests[key] != 2 {
		t.Errorf("Requests[%s] = %d, want 2", key, snap.Requests[key])
	}
	if snap.AvgLatencyMS[key] != 20 {
		t.Errorf("AvgLatencyMS[%s] = %v, want 20", key, snap.AvgLatencyMS[key])
	}
	if snap.Errors["/api/v1/tickets|POST|CONFLICT"] != 1 {
		t.Errorf("Errors = %v", snap.Errors)
	}

	// Snapshots are copies.
	snap.Requests[key] = 99
	if m.Snapshot().Requests[key] != 2 {
		t.Error("Snapshot() shares its maps with the collector")
	}
}

func TestMetricsObserveEvents(t *testing.T) {
	m := NewMetrics()
	d := events.NewInMemoryDispatcher()
	m.ObserveEvents(d)

	ctx := context.Background()
	_ = d.Publish(ctx, events.Event{Type: events.EventTicketCreated})
	_ = d.Publish(ctx, events.Event{Type: events.EventTicketStatusChanged, Payload: events.TicketStatusChangedPayload{NewStatus: domain.TicketStatusDone}})
	_ = d.Publish(ctx, events.Event{Type: events.EventTicketStatusChanged, Payload: events.TicketStatusChangedPayload{NewStatus: domain.TicketStatusDone}})

	snap := m.Snapshot()
	if snap.Events["ticket_created"] != 1 {
		t.Errorf("Events[ticket_created] = %d, want 1", snap.Events["ticket_created"])
	}
	if snap.Events["ticket_status_changed|Done"] != 2 {
		t.Errorf("Events[ticket_status_changed|Done] = %d, want 2", snap.Events["ticket_status_changed|Done"])
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.ObserveEvents(events.NewInMemoryDispatcher())
	if len(m.Snapshot().Requests) != 0 {
		t.Error("nil Metrics snapshot not empty")
	}
}
