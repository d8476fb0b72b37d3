package profile

import (
	"strings"
	"time"

	"taxpro/internal/common"
)

type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending_verification"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

// Profile is a professional or firm-admin identity. Profiles are created by
// onboarding and never hard-deleted here.
type Profile struct {
	ID           common.UUID        `json:"id"`
	DisplayName  string             `json:"displayName"`
	Verification VerificationStatus `json:"verificationStatus"`
	Listed       bool               `json:"listed"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type Firm struct {
	ID        common.UUID `json:"id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"createdAt"`
}

var verificationTransitions = map[VerificationStatus][]VerificationStatus{
	VerificationUnverified: {VerificationPending},
	VerificationRejected:   {VerificationPending},
	VerificationPending:    {VerificationVerified, VerificationRejected},
}

func CanTransitionVerification(from, to VerificationStatus) bool {
	for _, next := range verificationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ParseVerificationStatus(value string) (VerificationStatus, bool) {
	status := VerificationStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case VerificationUnverified, VerificationPending, VerificationVerified, VerificationRejected:
		return status, true
	default:
		return "", false
	}
}
