package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taxpro/internal/common"
	"taxpro/internal/domain/application"
)

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, job_id, applicant_profile_id, cover_note, proposed_rate, status, notes, created_at, updated_at`

func scanApplication(row scanner) (*application.Application, error) {
	var app application.Application
	var rate sql.NullInt64
	if err := row.Scan(&app.ID, &app.JobID, &app.ApplicantID, &app.CoverNote, &rate, &app.Status, &app.Notes, &app.CreatedAt, &app.UpdatedAt); err != nil {
		return nil, err
	}
	if rate.Valid {
		value := rate.Int64
		app.ProposedRate = &value
	}
	return &app, nil
}

func (r *ApplicationRepository) FindActive(ctx context.Context, jobID, applicantID common.UUID) (*application.Application, error) {
	app, err := scanApplication(r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM job_applications
		WHERE job_id = $1 AND applicant_profile_id = $2 AND status <> $3`, jobID, applicantID, application.StatusWithdrawn))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	return app, nil
}

func (r *ApplicationRepository) Insert(ctx context.Context, app application.Application) (*application.Application, error) {
	app.ID = common.NewUUID()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	var rate sql.NullInt64
	if app.ProposedRate != nil {
		rate = sql.NullInt64{Int64: *app.ProposedRate, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO job_applications (`+applicationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		app.ID, app.JobID, app.ApplicantID, app.CoverNote, rate, app.Status, app.Notes, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			existing, findErr := r.FindActive(ctx, app.JobID, app.ApplicantID)
			if findErr != nil {
				return nil, common.NewError(common.CodeDuplicateApplication, "already applied to this job", err)
			}
			return nil, common.NewDuplicateError(common.CodeDuplicateApplication, "already applied to this job", existing.ForApplicant())
		}
		return nil, common.NewError(common.CodeInternal, "failed to create application", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	app, err := scanApplication(r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM job_applications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	return app, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id common.UUID, from, to application.Status, notes *string) (*application.Application, error) {
	var notesArg sql.NullString
	if notes != nil {
		notesArg = sql.NullString{String: *notes, Valid: true}
	}
	app, err := scanApplication(r.db.QueryRowContext(ctx, `UPDATE job_applications
		SET status = $1, notes = COALESCE($2, notes), updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING `+applicationColumns, to, notesArg, time.Now().UTC(), id, from))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, common.NewError(common.CodeInvalidTransition, "application status changed concurrently", err)
		}
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeDuplicateApplication, "another active application exists for this job", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to update application", err)
	}
	return app, nil
}

func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID common.UUID) ([]application.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM job_applications WHERE applicant_profile_id = $1 ORDER BY created_at DESC`, applicantID)
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID common.UUID) ([]application.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM job_applications WHERE job_id = $1 ORDER BY created_at DESC`, jobID)
}

func (r *ApplicationRepository) list(ctx context.Context, query string, args ...any) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	defer rows.Close()
	var items []application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		items = append(items, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	return items, nil
}
