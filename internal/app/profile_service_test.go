package app

import (
	"context"
	"testing"

	"taxpro/internal/common"
	"taxpro/internal/domain/profile"
	"taxpro/internal/repository/memory"
)

func TestProfileVerificationFlow(t *testing.T) {
	store := memory.NewStore()
	svc := NewProfileService(store.Profiles(), store.Firms())
	ctx := context.Background()
	id := mustProfile(t, store, "cpa")

	_, err := svc.SetListed(ctx, id, true)
	expectCode(t, err, common.CodeValidation)

	_, err = svc.DecideVerification(ctx, id, "verified")
	expectCode(t, err, common.CodeInvalidTransition)

	pending, err := svc.RequestVerification(ctx, id)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if pending.Verification != profile.VerificationPending {
		t.Fatalf("expected pending, got %s", pending.Verification)
	}
	_, err = svc.DecideVerification(ctx, id, "unverified")
	expectCode(t, err, common.CodeValidation)

	verified, err := svc.DecideVerification(ctx, id, "verified")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.Verification != profile.VerificationVerified {
		t.Fatalf("expected verified, got %s", verified.Verification)
	}
	listed, err := svc.SetListed(ctx, id, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !listed.Listed {
		t.Fatalf("expected listed profile")
	}
	_, err = svc.RequestVerification(ctx, id)
	expectCode(t, err, common.CodeInvalidTransition)
}

func TestProfileRejectedCanResubmit(t *testing.T) {
	store := memory.NewStore()
	svc := NewProfileService(store.Profiles(), store.Firms())
	ctx := context.Background()
	id := mustProfile(t, store, "ea")

	if _, err := svc.RequestVerification(ctx, id); err != nil {
		t.Fatalf("request: %v", err)
	}
	rejected, err := svc.DecideVerification(ctx, id, "rejected")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Verification != profile.VerificationRejected {
		t.Fatalf("expected rejected, got %s", rejected.Verification)
	}
	if _, err := svc.RequestVerification(ctx, id); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
}

func TestProfileAndFirmOnboarding(t *testing.T) {
	store := memory.NewStore()
	svc := NewProfileService(store.Profiles(), store.Firms())
	ctx := context.Background()
	subject := common.NewUUID()

	_, err := svc.CreateFirm(ctx, subject, "Ledger & Co")
	expectCode(t, err, common.CodeNotFound)

	_, err = svc.CreateProfile(ctx, subject, "   ")
	expectCode(t, err, common.CodeValidation)

	created, err := svc.CreateProfile(ctx, subject, "  Dana Ruiz, EA ")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if created.ID != subject || created.DisplayName != "Dana Ruiz, EA" || created.Verification != profile.VerificationUnverified {
		t.Fatalf("unexpected profile %+v", created)
	}
	_, err = svc.CreateProfile(ctx, subject, "Dana again")
	expectCode(t, err, common.CodeConflict)

	firm, err := svc.CreateFirm(ctx, subject, "Ledger & Co")
	if err != nil {
		t.Fatalf("create firm: %v", err)
	}
	isAdmin, err := store.Firms().IsAdmin(ctx, firm.ID, subject)
	if err != nil || !isAdmin {
		t.Fatalf("creator should administer the firm, got %v %v", isAdmin, err)
	}
	if _, err := svc.GetFirm(ctx, firm.ID); err != nil {
		t.Fatalf("get firm: %v", err)
	}
}
