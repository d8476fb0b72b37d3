package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"taxpro/internal/common"
	"taxpro/internal/domain/connection"
	"taxpro/internal/domain/notification"
	"taxpro/internal/notify"
	"taxpro/internal/repository/memory"
)

func newConnectionFixture(t *testing.T) (*ConnectionService, *memory.Store, *recordingNotifier, common.UUID, common.UUID) {
	t.Helper()
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	alice := mustProfile(t, store, "alice")
	bob := mustProfile(t, store, "bob")
	return NewConnectionService(store.Connections(), store.Profiles(), notifier), store, notifier, alice, bob
}

func TestConnectionCreateIsIdempotent(t *testing.T) {
	svc, store, _, alice, bob := newConnectionFixture(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, alice, bob)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.AlreadyExists {
		t.Fatalf("first create should insert")
	}
	second, err := svc.Create(ctx, alice, bob)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if !second.AlreadyExists || second.Connection.ID != first.Connection.ID {
		t.Fatalf("expected existing request %s, got %+v", first.Connection.ID, second)
	}
	reverse, err := svc.Create(ctx, bob, alice)
	if err != nil {
		t.Fatalf("reverse create: %v", err)
	}
	if reverse.Connection.ID != first.Connection.ID {
		t.Fatalf("reverse direction should return the same request")
	}
	if got := store.Connections().Count(); got != 1 {
		t.Fatalf("expected 1 stored request, got %d", got)
	}
}

func TestConnectionCreateConcurrent(t *testing.T) {
	svc, store, _, alice, bob := newConnectionFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make(chan common.UUID, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := alice, bob
			if i%2 == 1 {
				from, to = bob, alice
			}
			res, err := svc.Create(ctx, from, to)
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			ids <- res.Connection.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	var first common.UUID
	for id := range ids {
		if first == "" {
			first = id
		}
		if id != first {
			t.Fatalf("concurrent creates returned different requests: %s and %s", first, id)
		}
	}
	if got := store.Connections().Count(); got != 1 {
		t.Fatalf("expected 1 stored request, got %d", got)
	}
}

func TestConnectionCreateRejectsSelfAndUnknown(t *testing.T) {
	svc, _, _, alice, _ := newConnectionFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, alice)
	expectCode(t, err, common.CodeValidation)

	_, err = svc.Create(ctx, alice, common.NewUUID())
	expectCode(t, err, common.CodeNotFound)
}

func TestConnectionDecideByRequesterIsForbidden(t *testing.T) {
	ctx := context.Background()
	for _, status := range []connection.Status{connection.StatusPending, connection.StatusAccepted, connection.StatusRejected, connection.StatusWithdrawn} {
		t.Run(string(status), func(t *testing.T) {
			svc, _, _, alice, bob := newConnectionFixture(t)
			res, err := svc.Create(ctx, alice, bob)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			id := res.Connection.ID
			switch status {
			case connection.StatusAccepted, connection.StatusRejected:
				if _, err := svc.Decide(ctx, id, status, bob); err != nil {
					t.Fatalf("decide: %v", err)
				}
			case connection.StatusWithdrawn:
				if _, err := svc.Withdraw(ctx, id, alice); err != nil {
					t.Fatalf("withdraw: %v", err)
				}
			}
			_, err = svc.Decide(ctx, id, connection.StatusAccepted, alice)
			expectCode(t, err, common.CodeForbidden)
		})
	}
}

func TestConnectionAcceptNotifiesRequester(t *testing.T) {
	svc, _, notifier, alice, bob := newConnectionFixture(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, alice, bob)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(notifier.kinds()) != 0 {
		t.Fatalf("create should not notify, got %v", notifier.kinds())
	}
	accepted, err := svc.Decide(ctx, res.Connection.ID, connection.StatusAccepted, bob)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != connection.StatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}
	msg := notifier.last()
	if msg.Kind != notification.KindConnectionAccepted || msg.RecipientID != alice {
		t.Fatalf("unexpected notification %+v", msg)
	}

	_, err = svc.Decide(ctx, res.Connection.ID, connection.StatusRejected, bob)
	expectCode(t, err, common.CodeInvalidTransition)
}

func TestConnectionWithdrawIsTerminal(t *testing.T) {
	svc, _, _, alice, bob := newConnectionFixture(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, alice, bob)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.Withdraw(ctx, res.Connection.ID, bob)
	expectCode(t, err, common.CodeForbidden)

	withdrawn, err := svc.Withdraw(ctx, res.Connection.ID, alice)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if withdrawn.Status != connection.StatusWithdrawn {
		t.Fatalf("expected withdrawn, got %s", withdrawn.Status)
	}
	_, err = svc.Withdraw(ctx, res.Connection.ID, alice)
	expectCode(t, err, common.CodeInvalidTransition)
	_, err = svc.Decide(ctx, res.Connection.ID, connection.StatusAccepted, bob)
	expectCode(t, err, common.CodeInvalidTransition)

	again, err := svc.Create(ctx, alice, bob)
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if again.AlreadyExists || again.Connection.ID == res.Connection.ID {
		t.Fatalf("expected a fresh request after withdrawal")
	}
}

func TestConnectionDecideRejectsUnknownDecision(t *testing.T) {
	svc, _, _, alice, bob := newConnectionFixture(t)
	ctx := context.Background()
	res, err := svc.Create(ctx, alice, bob)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.Decide(ctx, res.Connection.ID, connection.StatusWithdrawn, bob)
	expectCode(t, err, common.CodeValidation)
}

func TestConnectionGetAndList(t *testing.T) {
	svc, store, _, alice, bob := newConnectionFixture(t)
	ctx := context.Background()
	carol := mustProfile(t, store, "carol")

	res, err := svc.Create(ctx, alice, bob)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(ctx, res.Connection.ID, bob); err != nil {
		t.Fatalf("get as recipient: %v", err)
	}
	_, err = svc.Get(ctx, res.Connection.ID, carol)
	expectCode(t, err, common.CodeForbidden)

	pending, err := svc.List(ctx, bob, "pending")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}
	accepted, err := svc.List(ctx, bob, "accepted")
	if err != nil {
		t.Fatalf("list accepted: %v", err)
	}
	if len(accepted) != 0 {
		t.Fatalf("expected no accepted requests, got %d", len(accepted))
	}
	_, err = svc.List(ctx, bob, "archived")
	expectCode(t, err, common.CodeValidation)
}

type failingSender struct{}

func (failingSender) Send(context.Context, notification.Notification) error {
	return errors.New("broker unavailable")
}

func TestConnectionAcceptSurvivesNotificationFailure(t *testing.T) {
	store := memory.NewStore()
	alice := mustProfile(t, store, "alice")
	bob := mustProfile(t, store, "bob")
	dispatcher := notify.NewDispatcher(failingSender{}, slog.New(slog.NewJSONHandler(io.Discard, nil)), nil, notify.Options{Buffer: 4, Workers: 1})
	svc := NewConnectionService(store.Connections(), store.Profiles(), dispatcher)
	ctx := context.Background()

	res, err := svc.Create(ctx, alice, bob)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	accepted, err := svc.Decide(ctx, res.Connection.ID, connection.StatusAccepted, bob)
	if err != nil {
		t.Fatalf("accept should not fail on delivery errors: %v", err)
	}
	if err := dispatcher.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	stored, err := store.Connections().GetByID(ctx, accepted.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != connection.StatusAccepted {
		t.Fatalf("expected accepted, got %s", stored.Status)
	}
}
