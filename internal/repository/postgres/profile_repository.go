package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taxpro/internal/common"
	"taxpro/internal/domain/profile"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, display_name, verification_status, listed, created_at, updated_at`

func scanProfile(row scanner) (*profile.Profile, error) {
	var p profile.Profile
	if err := row.Scan(&p.ID, &p.DisplayName, &p.Verification, &p.Listed, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p profile.Profile) (*profile.Profile, error) {
	if p.ID == "" {
		p.ID = common.NewUUID()
	}
	if p.Verification == "" {
		p.Verification = profile.VerificationUnverified
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles (`+profileColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.DisplayName, p.Verification, p.Listed, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "profile already exists", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create profile", err)
	}
	return &p, nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id common.UUID) (*profile.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "profile not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load profile", err)
	}
	return p, nil
}

func (r *ProfileRepository) SetVerification(ctx context.Context, id common.UUID, from, to profile.VerificationStatus) (*profile.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `UPDATE profiles SET verification_status = $1, updated_at = $2
		WHERE id = $3 AND verification_status = $4
		RETURNING `+profileColumns, to, time.Now().UTC(), id, from))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, common.NewError(common.CodeInvalidTransition, "verification status changed concurrently", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to update verification", err)
	}
	return p, nil
}

func (r *ProfileRepository) SetListed(ctx context.Context, id common.UUID, listed bool) (*profile.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `UPDATE profiles SET listed = $1, updated_at = $2 WHERE id = $3
		RETURNING `+profileColumns, listed, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "profile not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to update profile", err)
	}
	return p, nil
}

type FirmRepository struct {
	db *sql.DB
}

func NewFirmRepository(db *sql.DB) *FirmRepository {
	return &FirmRepository{db: db}
}

func (r *FirmRepository) Create(ctx context.Context, firm profile.Firm, adminIDs []common.UUID) (*profile.Firm, error) {
	if firm.ID == "" {
		firm.ID = common.NewUUID()
	}
	firm.CreatedAt = time.Now().UTC()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `INSERT INTO firms (id, name, created_at) VALUES ($1, $2, $3)`, firm.ID, firm.Name, firm.CreatedAt); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create firm", err)
	}
	for _, adminID := range adminIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO firm_admins (firm_id, profile_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, firm.ID, adminID); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to add firm admin", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to commit firm", err)
	}
	return &firm, nil
}

func (r *FirmRepository) GetByID(ctx context.Context, id common.UUID) (*profile.Firm, error) {
	var firm profile.Firm
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM firms WHERE id = $1`, id).Scan(&firm.ID, &firm.Name, &firm.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "firm not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load firm", err)
	}
	return &firm, nil
}

func (r *FirmRepository) IsAdmin(ctx context.Context, firmID, profileID common.UUID) (bool, error) {
	var firmExists, isAdmin bool
	err := r.db.QueryRowContext(ctx, `SELECT
			EXISTS (SELECT 1 FROM firms WHERE id = $1),
			EXISTS (SELECT 1 FROM firm_admins WHERE firm_id = $1 AND profile_id = $2)`,
		firmID, profileID).Scan(&firmExists, &isAdmin)
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to check firm admin", err)
	}
	if !firmExists {
		return false, common.NewError(common.CodeNotFound, "firm not found", nil)
	}
	return isAdmin, nil
}
