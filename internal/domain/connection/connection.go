package connection

import (
	"strings"
	"time"

	"taxpro/internal/common"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// Request is a directed connection intent between two profiles.
type Request struct {
	ID          common.UUID `json:"id"`
	RequesterID common.UUID `json:"requesterProfileId"`
	RecipientID common.UUID `json:"recipientProfileId"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Open reports whether the request blocks a new request for the same pair.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusAccepted
}

func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusWithdrawn
}

func (r Request) Involves(profileID common.UUID) bool {
	return r.RequesterID == profileID || r.RecipientID == profileID
}

// Counterpart returns the other party of the request.
func (r Request) Counterpart(profileID common.UUID) common.UUID {
	if r.RequesterID == profileID {
		return r.RecipientID
	}
	return r.RequesterID
}

func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case StatusPending, StatusAccepted, StatusRejected, StatusWithdrawn:
		return status, true
	default:
		return "", false
	}
}
