package profile

import "testing"

func TestVerificationTransitions(t *testing.T) {
	cases := []struct {
		from, to VerificationStatus
		ok       bool
	}{
		{VerificationUnverified, VerificationPending, true},
		{VerificationRejected, VerificationPending, true},
		{VerificationPending, VerificationVerified, true},
		{VerificationPending, VerificationRejected, true},
		{VerificationUnverified, VerificationVerified, false},
		{VerificationVerified, VerificationPending, false},
		{VerificationVerified, VerificationRejected, false},
	}
	for _, tc := range cases {
		if got := CanTransitionVerification(tc.from, tc.to); got != tc.ok {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}
