package job

import (
	"context"

	"taxpro/internal/common"
)

type Repository interface {
	Create(ctx context.Context, j Job) (*Job, error)
	GetByID(ctx context.Context, id common.UUID) (*Job, error)
	UpdateStatus(ctx context.Context, id common.UUID, status Status) (*Job, error)
	ListOpen(ctx context.Context, limit, offset int) ([]Job, error)
}
