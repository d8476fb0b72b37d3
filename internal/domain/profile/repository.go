package profile

import (
	"context"

	"taxpro/internal/common"
)

type Repository interface {
	Create(ctx context.Context, p Profile) (*Profile, error)
	GetByID(ctx context.Context, id common.UUID) (*Profile, error)
	// SetVerification only applies when the stored status still equals from.
	SetVerification(ctx context.Context, id common.UUID, from, to VerificationStatus) (*Profile, error)
	SetListed(ctx context.Context, id common.UUID, listed bool) (*Profile, error)
}

type FirmRepository interface {
	Create(ctx context.Context, firm Firm, adminIDs []common.UUID) (*Firm, error)
	GetByID(ctx context.Context, id common.UUID) (*Firm, error)
	IsAdmin(ctx context.Context, firmID, profileID common.UUID) (bool, error)
}
