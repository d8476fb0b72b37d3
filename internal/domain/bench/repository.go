package bench

import (
	"context"
	"time"

	"taxpro/internal/common"
)

type Repository interface {
	GetEntry(ctx context.Context, id common.UUID) (*Entry, error)
	// FindOpenEntry returns the pending_invite or active entry for the pair.
	FindOpenEntry(ctx context.Context, firmID, profileID common.UUID) (*Entry, error)
	// InsertInvite stores the entry and its invitation together. It fails with
	// CodeDuplicateInvite when the pair already has an open entry.
	InsertInvite(ctx context.Context, entry Entry, invitation Invitation) (*Entry, *Invitation, error)
	GetInvitationByEntry(ctx context.Context, entryID common.UUID) (*Invitation, error)
	ActivateEntry(ctx context.Context, entryID common.UUID, acceptedAt time.Time) (*Entry, error)
	DeletePendingEntry(ctx context.Context, entryID common.UUID) error
	RemoveEntry(ctx context.Context, entryID common.UUID) (*Entry, error)
	UpdateEntryDetails(ctx context.Context, entry Entry) (*Entry, error)
	// ListEntries returns the firm's entries in the given statuses in display order.
	ListEntries(ctx context.Context, firmID common.UUID, statuses ...EntryStatus) ([]Entry, error)
	// BatchUpdatePriorities writes every update or none. Any id that is not a
	// pending_invite or active entry of the firm aborts the batch with CodeValidation.
	BatchUpdatePriorities(ctx context.Context, firmID common.UUID, updates []PriorityUpdate) error
}
