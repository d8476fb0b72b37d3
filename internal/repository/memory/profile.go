package memory

import (
	"context"

	"taxpro/internal/common"
	"taxpro/internal/domain/profile"
)

type ProfileRepository struct {
	store *Store
}

func (r *ProfileRepository) Create(_ context.Context, p profile.Profile) (*profile.Profile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p.ID == "" {
		p.ID = common.NewUUID()
	}
	if _, ok := r.store.profiles[p.ID]; ok {
		return nil, common.NewError(common.CodeConflict, "profile already exists", nil)
	}
	if p.Verification == "" {
		p.Verification = profile.VerificationUnverified
	}
	now := r.store.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.store.profiles[p.ID] = p
	return &p, nil
}

func (r *ProfileRepository) GetByID(_ context.Context, id common.UUID) (*profile.Profile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.profiles[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "profile not found", nil)
	}
	return &p, nil
}

func (r *ProfileRepository) SetVerification(_ context.Context, id common.UUID, from, to profile.VerificationStatus) (*profile.Profile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.profiles[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "profile not found", nil)
	}
	if p.Verification != from {
		return nil, common.NewError(common.CodeInvalidTransition, "verification status changed concurrently", nil)
	}
	p.Verification = to
	p.UpdatedAt = r.store.now()
	r.store.profiles[id] = p
	return &p, nil
}

func (r *ProfileRepository) SetListed(_ context.Context, id common.UUID, listed bool) (*profile.Profile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.profiles[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "profile not found", nil)
	}
	p.Listed = listed
	p.UpdatedAt = r.store.now()
	r.store.profiles[id] = p
	return &p, nil
}

type FirmRepository struct {
	store *Store
}

func (r *FirmRepository) Create(_ context.Context, firm profile.Firm, adminIDs []common.UUID) (*profile.Firm, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if firm.ID == "" {
		firm.ID = common.NewUUID()
	}
	for _, adminID := range adminIDs {
		if _, ok := r.store.profiles[adminID]; !ok {
			return nil, common.NewError(common.CodeNotFound, "profile not found", nil)
		}
	}
	firm.CreatedAt = r.store.now()
	r.store.firms[firm.ID] = firm
	admins := make(map[common.UUID]struct{}, len(adminIDs))
	for _, adminID := range adminIDs {
		admins[adminID] = struct{}{}
	}
	r.store.firmAdmins[firm.ID] = admins
	return &firm, nil
}

func (r *FirmRepository) GetByID(_ context.Context, id common.UUID) (*profile.Firm, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	firm, ok := r.store.firms[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "firm not found", nil)
	}
	return &firm, nil
}

func (r *FirmRepository) IsAdmin(_ context.Context, firmID, profileID common.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.firms[firmID]; !ok {
		return false, common.NewError(common.CodeNotFound, "firm not found", nil)
	}
	_, ok := r.store.firmAdmins[firmID][profileID]
	return ok, nil
}
