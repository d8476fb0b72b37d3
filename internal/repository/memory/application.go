package memory

import (
	"context"
	"sort"

	"taxpro/internal/common"
	"taxpro/internal/domain/application"
)

type ApplicationRepository struct {
	store *Store
}

func (r *ApplicationRepository) activeLocked(jobID, applicantID common.UUID) *application.Application {
	for _, app := range r.store.applications {
		if app.JobID == jobID && app.ApplicantID == applicantID && app.Status != application.StatusWithdrawn {
			found := app
			return &found
		}
	}
	return nil
}

func (r *ApplicationRepository) FindActive(_ context.Context, jobID, applicantID common.UUID) (*application.Application, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing := r.activeLocked(jobID, applicantID); existing != nil {
		return existing, nil
	}
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func (r *ApplicationRepository) Insert(_ context.Context, app application.Application) (*application.Application, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing := r.activeLocked(app.JobID, app.ApplicantID); existing != nil {
		return nil, common.NewDuplicateError(common.CodeDuplicateApplication, "already applied to this job", existing.ForApplicant())
	}
	app.ID = common.NewUUID()
	now := r.store.now()
	app.CreatedAt = now
	app.UpdatedAt = now
	r.store.applications[app.ID] = app
	return &app, nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, id common.UUID) (*application.Application, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	app, ok := r.store.applications[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	return &app, nil
}

func (r *ApplicationRepository) UpdateStatus(_ context.Context, id common.UUID, from, to application.Status, notes *string) (*application.Application, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	app, ok := r.store.applications[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	if app.Status != from {
		return nil, common.NewError(common.CodeInvalidTransition, "application status changed concurrently", nil)
	}
	app.Status = to
	if notes != nil {
		app.Notes = *notes
	}
	app.UpdatedAt = r.store.now()
	r.store.applications[id] = app
	return &app, nil
}

func (r *ApplicationRepository) ListByApplicant(_ context.Context, applicantID common.UUID) ([]application.Application, error) {
	return r.list(func(app application.Application) bool { return app.ApplicantID == applicantID }), nil
}

func (r *ApplicationRepository) ListByJob(_ context.Context, jobID common.UUID) ([]application.Application, error) {
	return r.list(func(app application.Application) bool { return app.JobID == jobID }), nil
}

func (r *ApplicationRepository) list(match func(application.Application) bool) []application.Application {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var items []application.Application
	for _, app := range r.store.applications {
		if match(app) {
			items = append(items, app)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}
