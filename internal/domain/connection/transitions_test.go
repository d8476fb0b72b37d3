package connection

import "testing"

func TestOnlyPendingHasTransitions(t *testing.T) {
	actions := []Action{ActionAccept, ActionReject, ActionWithdraw}
	for _, from := range []Status{StatusAccepted, StatusRejected, StatusWithdrawn} {
		for _, action := range actions {
			if _, ok := Next(from, action); ok {
				t.Fatalf("expected no transition from %s via %s", from, action)
			}
		}
	}
	for _, action := range actions {
		tr, ok := Next(StatusPending, action)
		if !ok {
			t.Fatalf("expected transition from pending via %s", action)
		}
		if tr.Side != ActorSide(action) {
			t.Fatalf("side mismatch for %s: %s vs %s", action, tr.Side, ActorSide(action))
		}
		if !tr.To.Terminal() {
			t.Fatalf("expected terminal target for %s, got %s", action, tr.To)
		}
	}
}

func TestDecisionAction(t *testing.T) {
	if a, ok := DecisionAction(StatusAccepted); !ok || a != ActionAccept {
		t.Fatalf("unexpected action %s", a)
	}
	if _, ok := DecisionAction(StatusWithdrawn); ok {
		t.Fatal("withdrawn is not a recipient decision")
	}
}
