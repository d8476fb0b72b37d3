package job

import (
	"strings"
	"time"

	"taxpro/internal/common"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

type Job struct {
	ID          common.UUID `json:"id"`
	PosterID    common.UUID `json:"posterProfileId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case StatusOpen, StatusClosed:
		return status, true
	default:
		return "", false
	}
}
