package bench

import (
	"strings"
	"time"

	"taxpro/internal/common"
)

type EntryStatus string

const (
	StatusPendingInvite EntryStatus = "pending_invite"
	StatusActive        EntryStatus = "active"
	StatusRemoved       EntryStatus = "removed"
)

// Entry is a professional's membership in a firm's bench. Higher priority
// displays first.
type Entry struct {
	ID               common.UUID `json:"id"`
	FirmID           common.UUID `json:"firmId"`
	ProfileID        common.UUID `json:"profileId"`
	Status           EntryStatus `json:"status"`
	Priority         int         `json:"priority"`
	Categories       []string    `json:"categories"`
	CustomTitle      string      `json:"customTitle,omitempty"`
	VisibilityPublic bool        `json:"visibilityPublic"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// Invitation accompanies a pending entry. Expiry is evaluated when read.
type Invitation struct {
	ID         common.UUID `json:"id"`
	EntryID    common.UUID `json:"entryId"`
	FirmID     common.UUID `json:"firmId"`
	ProfileID  common.UUID `json:"profileId"`
	InvitedBy  common.UUID `json:"invitedBy"`
	ExpiresAt  time.Time   `json:"expiresAt"`
	AcceptedAt *time.Time  `json:"acceptedAt,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func (i Invitation) Expired(now time.Time) bool {
	return i.AcceptedAt == nil && !now.Before(i.ExpiresAt)
}

// NormalizeCategories trims labels and drops blanks and repeats, keeping order.
func NormalizeCategories(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, category := range categories {
		label := strings.TrimSpace(category)
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, label)
	}
	return out
}
