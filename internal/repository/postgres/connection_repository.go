package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taxpro/internal/common"
	"taxpro/internal/domain/connection"
)

type ConnectionRepository struct {
	db *sql.DB
}

func NewConnectionRepository(db *sql.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

const connectionColumns = `id, requester_profile_id, recipient_profile_id, status, created_at, updated_at`

func scanConnection(row scanner) (*connection.Request, error) {
	var req connection.Request
	if err := row.Scan(&req.ID, &req.RequesterID, &req.RecipientID, &req.Status, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ConnectionRepository) FindOpenBetween(ctx context.Context, a, b common.UUID) (*connection.Request, error) {
	req, err := scanConnection(r.db.QueryRowContext(ctx, `SELECT `+connectionColumns+` FROM connection_requests
		WHERE LEAST(requester_profile_id, recipient_profile_id) = LEAST($1::uuid, $2::uuid)
		  AND GREATEST(requester_profile_id, recipient_profile_id) = GREATEST($1::uuid, $2::uuid)
		  AND status IN ('pending', 'accepted')`, a, b))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "connection not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load connection", err)
	}
	return req, nil
}

func (r *ConnectionRepository) Insert(ctx context.Context, req connection.Request) (*connection.Request, error) {
	req.ID = common.NewUUID()
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO connection_requests (`+connectionColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		req.ID, req.RequesterID, req.RecipientID, req.Status, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			existing, findErr := r.FindOpenBetween(ctx, req.RequesterID, req.RecipientID)
			if findErr != nil {
				return nil, common.NewError(common.CodeConflict, "connection already exists", err)
			}
			return nil, common.NewDuplicateError(common.CodeConflict, "connection already exists", *existing)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create connection", err)
	}
	return &req, nil
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id common.UUID) (*connection.Request, error) {
	req, err := scanConnection(r.db.QueryRowContext(ctx, `SELECT `+connectionColumns+` FROM connection_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "connection not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load connection", err)
	}
	return req, nil
}

func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id common.UUID, from, to connection.Status) (*connection.Request, error) {
	req, err := scanConnection(r.db.QueryRowContext(ctx, `UPDATE connection_requests SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING `+connectionColumns, to, time.Now().UTC(), id, from))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, common.NewError(common.CodeInvalidTransition, "connection status changed concurrently", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to update connection", err)
	}
	return req, nil
}

func (r *ConnectionRepository) ListByProfile(ctx context.Context, profileID common.UUID, status connection.Status) ([]connection.Request, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+connectionColumns+` FROM connection_requests
		WHERE (requester_profile_id = $1 OR recipient_profile_id = $1)
		  AND ($2::text = '' OR status = $2::text)
		ORDER BY created_at DESC`, profileID, status)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list connections", err)
	}
	defer rows.Close()
	var items []connection.Request
	for rows.Next() {
		req, err := scanConnection(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan connection", err)
		}
		items = append(items, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list connections", err)
	}
	return items, nil
}
