package app

import (
	"context"
	"strings"
	"time"

	"taxpro/internal/common"
	"taxpro/internal/domain/bench"
	"taxpro/internal/domain/notification"
	"taxpro/internal/domain/profile"
)

const DefaultInviteTTL = 14 * 24 * time.Hour

// BenchService manages a firm's bench: invitations and display ordering.
type BenchService struct {
	repo      bench.Repository
	firms     profile.FirmRepository
	profiles  profile.Repository
	notifier  notification.Notifier
	inviteTTL time.Duration
	clock     func() time.Time
}

func NewBenchService(repo bench.Repository, firms profile.FirmRepository, profiles profile.Repository, notifier notification.Notifier, inviteTTL time.Duration) *BenchService {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	if inviteTTL <= 0 {
		inviteTTL = DefaultInviteTTL
	}
	return &BenchService{
		repo:      repo,
		firms:     firms,
		profiles:  profiles,
		notifier:  notifier,
		inviteTTL: inviteTTL,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *BenchService) requireAdmin(ctx context.Context, firmID, actorID common.UUID) error {
	ok, err := s.firms.IsAdmin(ctx, firmID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewError(common.CodeForbidden, "only firm admins can manage the bench", nil)
	}
	return nil
}

type InviteInput struct {
	FirmID      common.UUID
	ProfileID   common.UUID
	ActorID     common.UUID
	Category    string
	CustomTitle string
}

type InviteResult struct {
	Entry      *bench.Entry      `json:"entry"`
	Invitation *bench.Invitation `json:"invitation"`
}

func (s *BenchService) Invite(ctx context.Context, in InviteInput) (*InviteResult, error) {
	if err := s.requireAdmin(ctx, in.FirmID, in.ActorID); err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetByID(ctx, in.ProfileID); err != nil {
		return nil, err
	}
	now := s.clock()
	existing, err := s.repo.FindOpenEntry(ctx, in.FirmID, in.ProfileID)
	switch {
	case err == nil && existing.Status == bench.StatusActive:
		return nil, common.NewDuplicateError(common.CodeConflict, "profile is already on this firm's bench", *existing)
	case err == nil:
		if err := s.clearExpiredInvite(ctx, *existing, now); err != nil {
			return nil, err
		}
	case !common.Is(err, common.CodeNotFound):
		return nil, err
	}

	open, err := s.repo.ListEntries(ctx, in.FirmID, bench.StatusPendingInvite, bench.StatusActive)
	if err != nil {
		return nil, err
	}
	var categories []string
	if in.Category != "" {
		categories = bench.NormalizeCategories([]string{in.Category})
	}
	entry, invitation, err := s.repo.InsertInvite(ctx, bench.Entry{
		FirmID:           in.FirmID,
		ProfileID:        in.ProfileID,
		Status:           bench.StatusPendingInvite,
		Priority:         bench.NextTailPriority(open),
		Categories:       categories,
		CustomTitle:      strings.TrimSpace(in.CustomTitle),
		VisibilityPublic: true,
	}, bench.Invitation{
		FirmID:    in.FirmID,
		ProfileID: in.ProfileID,
		InvitedBy: in.ActorID,
		ExpiresAt: now.Add(s.inviteTTL),
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, notification.New(notification.KindBenchInvited, in.ProfileID, map[string]string{
		"firm_id":    in.FirmID.String(),
		"entry_id":   entry.ID.String(),
		"expires_at": invitation.ExpiresAt.Format(time.RFC3339),
	}))
	return &InviteResult{Entry: entry, Invitation: invitation}, nil
}

// clearExpiredInvite rejects a live pending invite and deletes an expired one
// so a fresh invite can take its place.
func (s *BenchService) clearExpiredInvite(ctx context.Context, entry bench.Entry, now time.Time) error {
	invitation, err := s.repo.GetInvitationByEntry(ctx, entry.ID)
	if err != nil && !common.Is(err, common.CodeNotFound) {
		return err
	}
	if invitation != nil && !invitation.Expired(now) {
		return common.NewDuplicateError(common.CodeDuplicateInvite, "an invite for this profile is already pending", entry)
	}
	if err := s.repo.DeletePendingEntry(ctx, entry.ID); err != nil && !common.Is(err, common.CodeNotFound) {
		return err
	}
	return nil
}

func (s *BenchService) AcceptInvite(ctx context.Context, entryID, actorID common.UUID) (*bench.Entry, error) {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.ProfileID != actorID {
		return nil, common.NewError(common.CodeForbidden, "only the invited profile can accept this invite", nil)
	}
	if entry.Status != bench.StatusPendingInvite {
		return nil, common.NewError(common.CodeInvalidTransition, "bench entry is "+string(entry.Status), nil)
	}
	invitation, err := s.repo.GetInvitationByEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	if invitation.Expired(now) {
		return nil, common.NewError(common.CodeInvalidTransition, "invitation has expired", nil)
	}
	activated, err := s.repo.ActivateEntry(ctx, entryID, now)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, notification.New(notification.KindBenchInviteAccepted, invitation.InvitedBy, map[string]string{
		"firm_id":    activated.FirmID.String(),
		"entry_id":   activated.ID.String(),
		"profile_id": activated.ProfileID.String(),
	}))
	return activated, nil
}

func (s *BenchService) DeclineInvite(ctx context.Context, entryID, actorID common.UUID) error {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.ProfileID != actorID {
		return common.NewError(common.CodeForbidden, "only the invited profile can decline this invite", nil)
	}
	if entry.Status != bench.StatusPendingInvite {
		return common.NewError(common.CodeInvalidTransition, "bench entry is "+string(entry.Status), nil)
	}
	return s.repo.DeletePendingEntry(ctx, entryID)
}

func (s *BenchService) CancelInvite(ctx context.Context, entryID, actorID common.UUID) error {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, entry.FirmID, actorID); err != nil {
		return err
	}
	if entry.Status != bench.StatusPendingInvite {
		return common.NewError(common.CodeInvalidTransition, "bench entry is "+string(entry.Status), nil)
	}
	return s.repo.DeletePendingEntry(ctx, entryID)
}

// Reorder assigns priorities in the given order. Active entries that are not
// named follow the named ones in their current relative order, and pending
// invites come last, so the whole roster is rewritten in one batch and no two
// open entries share a priority.
func (s *BenchService) Reorder(ctx context.Context, firmID common.UUID, orderedIDs []common.UUID, actorID common.UUID) ([]bench.Entry, error) {
	if err := s.requireAdmin(ctx, firmID, actorID); err != nil {
		return nil, err
	}
	if len(orderedIDs) == 0 {
		return nil, common.NewValidationError("invalid reorder", map[string]string{"items": "at least one item is required"})
	}
	open, err := s.repo.ListEntries(ctx, firmID, bench.StatusActive, bench.StatusPendingInvite)
	if err != nil {
		return nil, err
	}
	activeIDs := make(map[common.UUID]struct{}, len(open))
	for _, entry := range open {
		if entry.Status == bench.StatusActive {
			activeIDs[entry.ID] = struct{}{}
		}
	}
	named := make(map[common.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := activeIDs[id]; !ok {
			return nil, common.NewValidationError("reorder contains an entry outside the firm's active bench", map[string]string{"items": id.String()})
		}
		if _, dup := named[id]; dup {
			return nil, common.NewValidationError("reorder lists an entry twice", map[string]string{"items": id.String()})
		}
		named[id] = struct{}{}
	}
	order := append([]common.UUID(nil), orderedIDs...)
	for _, entry := range open {
		if _, ok := named[entry.ID]; !ok && entry.Status == bench.StatusActive {
			order = append(order, entry.ID)
		}
	}
	for _, entry := range open {
		if entry.Status == bench.StatusPendingInvite {
			order = append(order, entry.ID)
		}
	}
	if err := s.repo.BatchUpdatePriorities(ctx, firmID, bench.AssignPriorities(order)); err != nil {
		return nil, err
	}
	return s.repo.ListEntries(ctx, firmID, bench.StatusActive)
}

func (s *BenchService) Remove(ctx context.Context, entryID, actorID common.UUID) (*bench.Entry, error) {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, entry.FirmID, actorID); err != nil {
		return nil, err
	}
	if entry.Status != bench.StatusActive {
		return nil, common.NewError(common.CodeInvalidTransition, "bench entry is "+string(entry.Status), nil)
	}
	return s.repo.RemoveEntry(ctx, entryID)
}

type UpdateEntryInput struct {
	EntryID          common.UUID
	ActorID          common.UUID
	Categories       *[]string
	CustomTitle      *string
	VisibilityPublic *bool
}

func (s *BenchService) UpdateEntry(ctx context.Context, in UpdateEntryInput) (*bench.Entry, error) {
	entry, err := s.repo.GetEntry(ctx, in.EntryID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, entry.FirmID, in.ActorID); err != nil {
		return nil, err
	}
	if entry.Status == bench.StatusRemoved {
		return nil, common.NewError(common.CodeInvalidTransition, "bench entry is removed", nil)
	}
	if in.Categories != nil {
		entry.Categories = bench.NormalizeCategories(*in.Categories)
	}
	if in.CustomTitle != nil {
		entry.CustomTitle = strings.TrimSpace(*in.CustomTitle)
	}
	if in.VisibilityPublic != nil {
		entry.VisibilityPublic = *in.VisibilityPublic
	}
	return s.repo.UpdateEntryDetails(ctx, *entry)
}

// List returns the bench as seen by actorID: admins see pending and private
// entries, everyone else only active public ones.
func (s *BenchService) List(ctx context.Context, firmID, actorID common.UUID) ([]bench.Entry, error) {
	isAdmin, err := s.firms.IsAdmin(ctx, firmID, actorID)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return s.repo.ListEntries(ctx, firmID, bench.StatusActive, bench.StatusPendingInvite)
	}
	entries, err := s.repo.ListEntries(ctx, firmID, bench.StatusActive)
	if err != nil {
		return nil, err
	}
	visible := entries[:0]
	for _, entry := range entries {
		if entry.VisibilityPublic {
			visible = append(visible, entry)
		}
	}
	return visible, nil
}
