package bench

import (
	"testing"
	"time"

	"taxpro/internal/common"
)

func TestAssignPriorities(t *testing.T) {
	updates := AssignPriorities([]common.UUID{"c", "a", "b"})
	want := map[common.UUID]int{"c": 100, "a": 90, "b": 80}
	if len(updates) != len(want) {
		t.Fatalf("expected %d updates, got %d", len(want), len(updates))
	}
	for _, u := range updates {
		if want[u.EntryID] != u.Priority {
			t.Fatalf("entry %s: expected %d, got %d", u.EntryID, want[u.EntryID], u.Priority)
		}
	}
}

func TestSortForDisplay(t *testing.T) {
	now := time.Now()
	entries := []Entry{
		{ID: "low", Priority: 80, CreatedAt: now},
		{ID: "tie-new", Priority: 90, CreatedAt: now.Add(time.Minute)},
		{ID: "high", Priority: 100, CreatedAt: now},
		{ID: "tie-old", Priority: 90, CreatedAt: now},
	}
	SortForDisplay(entries)
	order := []common.UUID{"high", "tie-old", "tie-new", "low"}
	for i, id := range order {
		if entries[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, entries[i].ID)
		}
	}
}

func TestNextTailPriority(t *testing.T) {
	if got := NextTailPriority(nil); got != PriorityBase {
		t.Fatalf("expected %d for empty bench, got %d", PriorityBase, got)
	}
	if got := NextTailPriority([]Entry{{Priority: 100}, {Priority: 70}, {Priority: 90}}); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
}

func TestNormalizeCategories(t *testing.T) {
	got := NormalizeCategories([]string{" Audit ", "", "audit", "Payroll"})
	if len(got) != 2 || got[0] != "Audit" || got[1] != "Payroll" {
		t.Fatalf("unexpected categories %v", got)
	}
}

func TestInvitationExpired(t *testing.T) {
	now := time.Now()
	inv := Invitation{ExpiresAt: now.Add(time.Hour)}
	if inv.Expired(now) {
		t.Fatal("expected invitation to be valid")
	}
	if !inv.Expired(now.Add(2 * time.Hour)) {
		t.Fatal("expected invitation to be expired")
	}
	accepted := now
	inv.AcceptedAt = &accepted
	if inv.Expired(now.Add(2 * time.Hour)) {
		t.Fatal("accepted invitations never expire")
	}
}
