package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"taxpro/internal/common"
	"taxpro/internal/domain/profile"
)

type ProfileService struct {
	profiles profile.Repository
	firms    profile.FirmRepository
}

func NewProfileService(profiles profile.Repository, firms profile.FirmRepository) *ProfileService {
	return &ProfileService{profiles: profiles, firms: firms}
}

// CreateProfile onboards the authenticated subject. The profile id is the
// token subject, so each identity owns exactly one profile.
func (s *ProfileService) CreateProfile(ctx context.Context, actorID common.UUID, displayName string) (*profile.Profile, error) {
	name := strings.TrimSpace(displayName)
	if err := validateName("displayName", name); err != nil {
		return nil, err
	}
	created, err := s.profiles.Create(ctx, profile.Profile{ID: actorID, DisplayName: name})
	if err == nil {
		return created, nil
	}
	if !common.Is(err, common.CodeConflict) {
		return nil, err
	}
	existing, getErr := s.profiles.GetByID(ctx, actorID)
	if getErr != nil {
		return nil, getErr
	}
	return nil, common.NewDuplicateError(common.CodeConflict, "profile already exists", *existing)
}

// CreateFirm registers a firm with the caller as its first admin.
func (s *ProfileService) CreateFirm(ctx context.Context, actorID common.UUID, name string) (*profile.Firm, error) {
	name = strings.TrimSpace(name)
	if err := validateName("name", name); err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetByID(ctx, actorID); err != nil {
		return nil, err
	}
	return s.firms.Create(ctx, profile.Firm{Name: name}, []common.UUID{actorID})
}

func (s *ProfileService) GetFirm(ctx context.Context, id common.UUID) (*profile.Firm, error) {
	return s.firms.GetByID(ctx, id)
}

func validateName(field, value string) error {
	length := utf8.RuneCountInString(value)
	if length == 0 {
		return common.NewValidationError("invalid "+field, map[string]string{field: field + " is required"})
	}
	if length > 120 {
		return common.NewValidationError("invalid "+field, map[string]string{field: field + " must be at most 120 characters"})
	}
	return nil
}

func (s *ProfileService) Get(ctx context.Context, id common.UUID) (*profile.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// RequestVerification submits the caller's own profile for review.
func (s *ProfileService) RequestVerification(ctx context.Context, actorID common.UUID) (*profile.Profile, error) {
	return s.transitionVerification(ctx, actorID, profile.VerificationPending)
}

// DecideVerification is restricted to admins by the caller.
func (s *ProfileService) DecideVerification(ctx context.Context, profileID common.UUID, decision string) (*profile.Profile, error) {
	next, ok := profile.ParseVerificationStatus(decision)
	if !ok || (next != profile.VerificationVerified && next != profile.VerificationRejected) {
		return nil, common.NewValidationError("invalid verification decision", map[string]string{"status": "status must be verified or rejected"})
	}
	updated, err := s.transitionVerification(ctx, profileID, next)
	if err != nil {
		return nil, err
	}
	if next == profile.VerificationRejected && updated.Listed {
		return s.profiles.SetListed(ctx, profileID, false)
	}
	return updated, nil
}

func (s *ProfileService) transitionVerification(ctx context.Context, profileID common.UUID, next profile.VerificationStatus) (*profile.Profile, error) {
	current, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !profile.CanTransitionVerification(current.Verification, next) {
		return nil, common.NewError(common.CodeInvalidTransition, "cannot move verification from "+string(current.Verification)+" to "+string(next), nil)
	}
	return s.profiles.SetVerification(ctx, profileID, current.Verification, next)
}

// SetListed toggles search visibility. Only verified profiles can be listed.
func (s *ProfileService) SetListed(ctx context.Context, actorID common.UUID, listed bool) (*profile.Profile, error) {
	current, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if listed && current.Verification != profile.VerificationVerified {
		return nil, common.NewError(common.CodeValidation, "only verified profiles can be listed", nil)
	}
	if current.Listed == listed {
		return current, nil
	}
	return s.profiles.SetListed(ctx, actorID, listed)
}
