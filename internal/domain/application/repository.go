package application

import (
	"context"

	"taxpro/internal/common"
)

type Repository interface {
	// FindActive returns the non-withdrawn application for the pair.
	FindActive(ctx context.Context, jobID, applicantID common.UUID) (*Application, error)
	// Insert fails with CodeDuplicateApplication when an active application exists.
	Insert(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	// UpdateStatus applies only while the stored status equals from. A nil notes keeps the stored value.
	UpdateStatus(ctx context.Context, id common.UUID, from, to Status, notes *string) (*Application, error)
	ListByApplicant(ctx context.Context, applicantID common.UUID) ([]Application, error)
	ListByJob(ctx context.Context, jobID common.UUID) ([]Application, error)
}
