package application

import (
	"strings"
	"time"

	"taxpro/internal/common"
)

type Status string

const (
	StatusApplied     Status = "applied"
	StatusShortlisted Status = "shortlisted"
	StatusHired       Status = "hired"
	StatusRejected    Status = "rejected"
	StatusWithdrawn   Status = "withdrawn"
	StatusCompleted   Status = "completed"
)

// Application is one applicant's application to a job posting. Notes are
// private to the poster.
type Application struct {
	ID           common.UUID `json:"id"`
	JobID        common.UUID `json:"jobId"`
	ApplicantID  common.UUID `json:"applicantProfileId"`
	CoverNote    string      `json:"coverNote"`
	ProposedRate *int64      `json:"proposedRate"`
	Status       Status      `json:"status"`
	Notes        string      `json:"notes,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// ForApplicant strips poster-private fields.
func (a Application) ForApplicant() Application {
	a.Notes = ""
	return a
}

func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case StatusApplied, StatusShortlisted, StatusHired, StatusRejected, StatusWithdrawn, StatusCompleted:
		return status, true
	default:
		return "", false
	}
}
