package memory

import (
	"context"
	"time"

	"taxpro/internal/common"
	"taxpro/internal/domain/bench"
)

type BenchRepository struct {
	store *Store
}

func cloneEntry(entry bench.Entry) bench.Entry {
	entry.Categories = append([]string(nil), entry.Categories...)
	return entry
}

func (r *BenchRepository) GetEntry(_ context.Context, id common.UUID) (*bench.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	entry, ok := r.store.entries[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "bench entry not found", nil)
	}
	entry = cloneEntry(entry)
	return &entry, nil
}

func (r *BenchRepository) openEntryLocked(firmID, profileID common.UUID) *bench.Entry {
	for _, entry := range r.store.entries {
		if entry.FirmID != firmID || entry.ProfileID != profileID {
			continue
		}
		if entry.Status == bench.StatusPendingInvite || entry.Status == bench.StatusActive {
			found := cloneEntry(entry)
			return &found
		}
	}
	return nil
}

func (r *BenchRepository) FindOpenEntry(_ context.Context, firmID, profileID common.UUID) (*bench.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if entry := r.openEntryLocked(firmID, profileID); entry != nil {
		return entry, nil
	}
	return nil, common.NewError(common.CodeNotFound, "bench entry not found", nil)
}

func (r *BenchRepository) InsertInvite(_ context.Context, entry bench.Entry, invitation bench.Invitation) (*bench.Entry, *bench.Invitation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing := r.openEntryLocked(entry.FirmID, entry.ProfileID); existing != nil {
		return nil, nil, common.NewDuplicateError(common.CodeDuplicateInvite, "profile already has an open invite for this firm", *existing)
	}
	now := r.store.now()
	entry.ID = common.NewUUID()
	entry.Categories = append([]string(nil), entry.Categories...)
	entry.CreatedAt = now
	entry.UpdatedAt = now
	invitation.ID = common.NewUUID()
	invitation.EntryID = entry.ID
	invitation.CreatedAt = now
	r.store.entries[entry.ID] = entry
	r.store.invitations[invitation.ID] = invitation
	out := cloneEntry(entry)
	return &out, &invitation, nil
}

func (r *BenchRepository) GetInvitationByEntry(_ context.Context, entryID common.UUID) (*bench.Invitation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, invitation := range r.store.invitations {
		if invitation.EntryID == entryID {
			found := invitation
			return &found, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "invitation not found", nil)
}

func (r *BenchRepository) ActivateEntry(_ context.Context, entryID common.UUID, acceptedAt time.Time) (*bench.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	entry, ok := r.store.entries[entryID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "bench entry not found", nil)
	}
	if entry.Status != bench.StatusPendingInvite {
		return nil, common.NewError(common.CodeInvalidTransition, "bench entry is not pending", nil)
	}
	entry.Status = bench.StatusActive
	entry.UpdatedAt = r.store.now()
	r.store.entries[entryID] = entry
	for id, invitation := range r.store.invitations {
		if invitation.EntryID == entryID {
			accepted := acceptedAt
			invitation.AcceptedAt = &accepted
			r.store.invitations[id] = invitation
		}
	}
	out := cloneEntry(entry)
	return &out, nil
}

func (r *BenchRepository) DeletePendingEntry(_ context.Context, entryID common.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	entry, ok := r.store.entries[entryID]
	if !ok {
		return common.NewError(common.CodeNotFound, "bench entry not found", nil)
	}
	if entry.Status != bench.StatusPendingInvite {
		return common.NewError(common.CodeInvalidTransition, "bench entry is not pending", nil)
	}
	delete(r.store.entries, entryID)
	for id, invitation := range r.store.invitations {
		if invitation.EntryID == entryID {
			delete(r.store.invitations, id)
		}
	}
	return nil
}

func (r *BenchRepository) RemoveEntry(_ context.Context, entryID common.UUID) (*bench.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	entry, ok := r.store.entries[entryID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "bench entry not found", nil)
	}
	if entry.Status != bench.StatusActive {
		return nil, common.NewError(common.CodeInvalidTransition, "bench entry is not active", nil)
	}
	entry.Status = bench.StatusRemoved
	entry.UpdatedAt = r.store.now()
	r.store.entries[entryID] = entry
	out := cloneEntry(entry)
	return &out, nil
}

func (r *BenchRepository) UpdateEntryDetails(_ context.Context, update bench.Entry) (*bench.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	entry, ok := r.store.entries[update.ID]
	if !ok || entry.Status == bench.StatusRemoved {
		return nil, common.NewError(common.CodeNotFound, "bench entry not found", nil)
	}
	entry.Categories = append([]string(nil), update.Categories...)
	entry.CustomTitle = update.CustomTitle
	entry.VisibilityPublic = update.VisibilityPublic
	entry.UpdatedAt = r.store.now()
	r.store.entries[entry.ID] = entry
	out := cloneEntry(entry)
	return &out, nil
}

func (r *BenchRepository) ListEntries(_ context.Context, firmID common.UUID, statuses ...bench.EntryStatus) ([]bench.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var items []bench.Entry
	for _, entry := range r.store.entries {
		if entry.FirmID != firmID || !hasStatus(statuses, entry.Status) {
			continue
		}
		items = append(items, cloneEntry(entry))
	}
	bench.SortForDisplay(items)
	return items, nil
}

func hasStatus(statuses []bench.EntryStatus, status bench.EntryStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r *BenchRepository) BatchUpdatePriorities(_ context.Context, firmID common.UUID, updates []bench.PriorityUpdate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, update := range updates {
		entry, ok := r.store.entries[update.EntryID]
		if !ok || entry.FirmID != firmID || entry.Status == bench.StatusRemoved {
			return common.NewValidationError("reorder contains an entry outside the firm's bench", map[string]string{"items": update.EntryID.String()})
		}
	}
	now := r.store.now()
	for _, update := range updates {
		entry := r.store.entries[update.EntryID]
		entry.Priority = update.Priority
		entry.UpdatedAt = now
		r.store.entries[update.EntryID] = entry
	}
	return nil
}

// EntryCount returns how many entries, in any status, exist for the pair.
func (r *BenchRepository) EntryCount(firmID, profileID common.UUID) int {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, entry := range r.store.entries {
		if entry.FirmID == firmID && entry.ProfileID == profileID {
			count++
		}
	}
	return count
}
