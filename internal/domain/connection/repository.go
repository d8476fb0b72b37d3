package connection

import (
	"context"

	"taxpro/internal/common"
)

type Repository interface {
	// FindOpenBetween returns the pending or accepted request for the unordered pair.
	FindOpenBetween(ctx context.Context, a, b common.UUID) (*Request, error)
	// Insert fails with CodeConflict when an open request for the pair already exists.
	Insert(ctx context.Context, req Request) (*Request, error)
	GetByID(ctx context.Context, id common.UUID) (*Request, error)
	// UpdateStatus applies only while the stored status equals from; otherwise CodeInvalidTransition.
	UpdateStatus(ctx context.Context, id common.UUID, from, to Status) (*Request, error)
	ListByProfile(ctx context.Context, profileID common.UUID, status Status) ([]Request, error)
}
