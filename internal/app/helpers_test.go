package app

import (
	"context"
	"sync"
	"testing"

	"taxpro/internal/common"
	"taxpro/internal/domain/notification"
	"taxpro/internal/domain/profile"
	"taxpro/internal/repository/memory"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg notification.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) kinds() []notification.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.Kind, 0, len(n.sent))
	for _, msg := range n.sent {
		out = append(out, msg.Kind)
	}
	return out
}

func (n *recordingNotifier) last() notification.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return notification.Notification{}
	}
	return n.sent[len(n.sent)-1]
}

func mustProfile(t *testing.T, store *memory.Store, name string) common.UUID {
	t.Helper()
	p, err := store.Profiles().Create(context.Background(), profile.Profile{DisplayName: name})
	if err != nil {
		t.Fatalf("create profile %s: %v", name, err)
	}
	return p.ID
}

func mustFirm(t *testing.T, store *memory.Store, admins ...common.UUID) common.UUID {
	t.Helper()
	firm, err := store.Firms().Create(context.Background(), profile.Firm{Name: "Ledger & Co"}, admins)
	if err != nil {
		t.Fatalf("create firm: %v", err)
	}
	return firm.ID
}

func expectCode(t *testing.T, err error, code common.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !common.Is(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}
