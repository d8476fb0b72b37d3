package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	"taxpro/internal/common"
	"taxpro/internal/domain/bench"
)

type BenchRepository struct {
	db *sql.DB
}

func NewBenchRepository(db *sql.DB) *BenchRepository {
	return &BenchRepository{db: db}
}

const entryColumns = `id, firm_id, profile_id, status, priority, categories, custom_title, visibility_public, created_at, updated_at`

const invitationColumns = `id, entry_id, firm_id, profile_id, invited_by, expires_at, accepted_at, created_at`

func scanEntry(row scanner) (*bench.Entry, error) {
	var entry bench.Entry
	if err := row.Scan(&entry.ID, &entry.FirmID, &entry.ProfileID, &entry.Status, &entry.Priority, pq.Array(&entry.Categories),
		&entry.CustomTitle, &entry.VisibilityPublic, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return nil, err
	}
	return &entry, nil
}

func scanInvitation(row scanner) (*bench.Invitation, error) {
	var inv bench.Invitation
	var acceptedAt sql.NullTime
	if err := row.Scan(&inv.ID, &inv.EntryID, &inv.FirmID, &inv.ProfileID, &inv.InvitedBy, &inv.ExpiresAt, &acceptedAt, &inv.CreatedAt); err != nil {
		return nil, err
	}
	if acceptedAt.Valid {
		at := acceptedAt.Time
		inv.AcceptedAt = &at
	}
	return &inv, nil
}

func entryNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.NewError(common.CodeNotFound, "bench entry not found", err)
	}
	return common.NewError(common.CodeInternal, "failed to load bench entry", err)
}

func (r *BenchRepository) GetEntry(ctx context.Context, id common.UUID) (*bench.Entry, error) {
	entry, err := scanEntry(r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM firm_bench_entries WHERE id = $1`, id))
	if err != nil {
		return nil, entryNotFound(err)
	}
	return entry, nil
}

func (r *BenchRepository) FindOpenEntry(ctx context.Context, firmID, profileID common.UUID) (*bench.Entry, error) {
	entry, err := scanEntry(r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM firm_bench_entries
		WHERE firm_id = $1 AND profile_id = $2 AND status IN ('pending_invite', 'active')`, firmID, profileID))
	if err != nil {
		return nil, entryNotFound(err)
	}
	return entry, nil
}

func (r *BenchRepository) InsertInvite(ctx context.Context, entry bench.Entry, invitation bench.Invitation) (*bench.Entry, *bench.Invitation, error) {
	now := time.Now().UTC()
	entry.ID = common.NewUUID()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.Categories == nil {
		entry.Categories = []string{}
	}
	invitation.ID = common.NewUUID()
	invitation.EntryID = entry.ID
	invitation.CreatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()
	_, err = tx.ExecContext(ctx, `INSERT INTO firm_bench_entries (`+entryColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.FirmID, entry.ProfileID, entry.Status, entry.Priority, pq.Array(entry.Categories),
		entry.CustomTitle, entry.VisibilityPublic, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			_ = tx.Rollback()
			existing, findErr := r.FindOpenEntry(ctx, entry.FirmID, entry.ProfileID)
			if findErr != nil {
				return nil, nil, common.NewError(common.CodeDuplicateInvite, "profile already has an open invite for this firm", err)
			}
			return nil, nil, common.NewDuplicateError(common.CodeDuplicateInvite, "profile already has an open invite for this firm", *existing)
		}
		return nil, nil, common.NewError(common.CodeInternal, "failed to create bench entry", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO bench_invitations (`+invitationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		invitation.ID, invitation.EntryID, invitation.FirmID, invitation.ProfileID, invitation.InvitedBy, invitation.ExpiresAt, nil, invitation.CreatedAt)
	if err != nil {
		return nil, nil, common.NewError(common.CodeInternal, "failed to create invitation", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, common.NewError(common.CodeInternal, "failed to commit invite", err)
	}
	return &entry, &invitation, nil
}

func (r *BenchRepository) GetInvitationByEntry(ctx context.Context, entryID common.UUID) (*bench.Invitation, error) {
	inv, err := scanInvitation(r.db.QueryRowContext(ctx, `SELECT `+invitationColumns+` FROM bench_invitations WHERE entry_id = $1`, entryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "invitation not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load invitation", err)
	}
	return inv, nil
}

func (r *BenchRepository) ActivateEntry(ctx context.Context, entryID common.UUID, acceptedAt time.Time) (*bench.Entry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()
	entry, err := scanEntry(tx.QueryRowContext(ctx, `UPDATE firm_bench_entries SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING `+entryColumns, bench.StatusActive, time.Now().UTC(), entryID, bench.StatusPendingInvite))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.transitionError(ctx, entryID, "bench entry is not pending")
		}
		return nil, common.NewError(common.CodeInternal, "failed to activate bench entry", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE bench_invitations SET accepted_at = $1 WHERE entry_id = $2`, acceptedAt, entryID); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to accept invitation", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to commit activation", err)
	}
	return entry, nil
}

// transitionError distinguishes a missing entry from one in the wrong status.
func (r *BenchRepository) transitionError(ctx context.Context, entryID common.UUID, message string) error {
	if _, err := r.GetEntry(ctx, entryID); err != nil {
		return err
	}
	return common.NewError(common.CodeInvalidTransition, message, nil)
}

func (r *BenchRepository) DeletePendingEntry(ctx context.Context, entryID common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM firm_bench_entries WHERE id = $1 AND status = $2`, entryID, bench.StatusPendingInvite)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete bench entry", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return r.transitionError(ctx, entryID, "bench entry is not pending")
	}
	return nil
}

func (r *BenchRepository) RemoveEntry(ctx context.Context, entryID common.UUID) (*bench.Entry, error) {
	entry, err := scanEntry(r.db.QueryRowContext(ctx, `UPDATE firm_bench_entries SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING `+entryColumns, bench.StatusRemoved, time.Now().UTC(), entryID, bench.StatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.transitionError(ctx, entryID, "bench entry is not active")
		}
		return nil, common.NewError(common.CodeInternal, "failed to remove bench entry", err)
	}
	return entry, nil
}

func (r *BenchRepository) UpdateEntryDetails(ctx context.Context, update bench.Entry) (*bench.Entry, error) {
	categories := update.Categories
	if categories == nil {
		categories = []string{}
	}
	entry, err := scanEntry(r.db.QueryRowContext(ctx, `UPDATE firm_bench_entries
		SET categories = $1, custom_title = $2, visibility_public = $3, updated_at = $4
		WHERE id = $5 AND status <> $6
		RETURNING `+entryColumns, pq.Array(categories), update.CustomTitle, update.VisibilityPublic, time.Now().UTC(), update.ID, bench.StatusRemoved))
	if err != nil {
		return nil, entryNotFound(err)
	}
	return entry, nil
}

func (r *BenchRepository) ListEntries(ctx context.Context, firmID common.UUID, statuses ...bench.EntryStatus) ([]bench.Entry, error) {
	filter := make([]string, 0, len(statuses))
	for _, status := range statuses {
		filter = append(filter, string(status))
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM firm_bench_entries
		WHERE firm_id = $1 AND (cardinality($2::text[]) = 0 OR status = ANY($2::text[]))
		ORDER BY priority DESC, created_at ASC`, firmID, pq.Array(filter))
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list bench", err)
	}
	defer rows.Close()
	var items []bench.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan bench entry", err)
		}
		items = append(items, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list bench", err)
	}
	return items, nil
}

// BatchUpdatePriorities locks the firm's open entries, checks every update
// against them, and only then writes. Any mismatch rolls the whole batch back.
func (r *BenchRepository) BatchUpdatePriorities(ctx context.Context, firmID common.UUID, updates []bench.PriorityUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM firm_bench_entries WHERE firm_id = $1 AND status IN ($2, $3) FOR UPDATE`, firmID, bench.StatusActive, bench.StatusPendingInvite)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to lock bench", err)
	}
	open := make(map[common.UUID]struct{})
	for rows.Next() {
		var id common.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return common.NewError(common.CodeInternal, "failed to scan bench entry", err)
		}
		open[common.UUID(strings.ToLower(string(id)))] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return common.NewError(common.CodeInternal, "failed to lock bench", err)
	}
	for _, update := range updates {
		if _, ok := open[update.EntryID]; !ok {
			return common.NewValidationError("reorder contains an entry outside the firm's bench", map[string]string{"items": update.EntryID.String()})
		}
	}

	now := time.Now().UTC()
	for _, update := range updates {
		if _, err := tx.ExecContext(ctx, `UPDATE firm_bench_entries SET priority = $1, updated_at = $2 WHERE id = $3 AND firm_id = $4`,
			update.Priority, now, update.EntryID, firmID); err != nil {
			return common.NewError(common.CodeInternal, "failed to update priority", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return common.NewError(common.CodeInternal, "failed to commit reorder", err)
	}
	return nil
}
