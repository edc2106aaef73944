package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/destru/catalog-api/internal/core/domain"
)

type memAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *memAuditRepo) Insert(_ context.Context, event domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *memAuditRepo) snapshot() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditEvent(nil), r.events...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestAuditDispatcher_DeliversEvents(t *testing.T) {
	repo := &memAuditRepo{}
	d := NewAuditDispatcher(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Record(domain.AuditEvent{Name: "alice", Action: domain.AuditLoginOK, OccurredAt: time.Now()})
	d.Record(domain.AuditEvent{Name: "bob", Action: domain.AuditRegistered, OccurredAt: time.Now()})

	waitFor(t, func() bool { return len(repo.snapshot()) == 2 })
}

func TestAuditDispatcher_PerAccountOrdering(t *testing.T) {
	repo := &memAuditRepo{}
	d := NewAuditDispatcher(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	actions := []string{domain.AuditRegistered, domain.AuditLoginFailed, domain.AuditLoginOK, domain.AuditLogout}
	for _, a := range actions {
		d.Record(domain.AuditEvent{Name: "carol", Action: a, OccurredAt: time.Now()})
	}

	waitFor(t, func() bool { return len(repo.snapshot()) == len(actions) })

	for i, e := range repo.snapshot() {
		if e.Action != actions[i] {
			t.Fatalf("events for one account arrived out of order: %v", repo.snapshot())
		}
	}
}

func TestAuditDispatcher_ShardIsStable(t *testing.T) {
	d := NewAuditDispatcher(8, &memAuditRepo{}, zerolog.Nop())

	for _, name := range []string{"alice", "bob", "", "validuser1"} {
		if a, b := d.shardIndex(name), d.shardIndex(name); a != b {
			t.Fatalf("shardIndex(%q) not deterministic: %d vs %d", name, a, b)
		}
	}
}
