package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"taxpro/internal/common"
	"taxpro/internal/domain/application"
	"taxpro/internal/domain/job"
	"taxpro/internal/domain/notification"
	"taxpro/internal/domain/profile"
)

const (
	maxCoverNoteLength = 5000
	maxNotesLength     = 5000
)

type ApplicationService struct {
	repo     application.Repository
	jobs     job.Repository
	profiles profile.Repository
	notifier notification.Notifier
}

func NewApplicationService(repo application.Repository, jobs job.Repository, profiles profile.Repository, notifier notification.Notifier) *ApplicationService {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &ApplicationService{repo: repo, jobs: jobs, profiles: profiles, notifier: notifier}
}

type ApplyInput struct {
	JobID        common.UUID
	ApplicantID  common.UUID
	CoverNote    string
	ProposedRate *int64
}

func (s *ApplicationService) Apply(ctx context.Context, in ApplyInput) (*application.Application, error) {
	coverNote := strings.TrimSpace(in.CoverNote)
	fields := map[string]string{}
	if coverNote == "" {
		fields["coverNote"] = "coverNote is required"
	} else if utf8.RuneCountInString(coverNote) > maxCoverNoteLength {
		fields["coverNote"] = "coverNote is too long"
	}
	if in.ProposedRate != nil && *in.ProposedRate < 0 {
		fields["proposedRate"] = "proposedRate must not be negative"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid application", fields)
	}
	if _, err := s.profiles.GetByID(ctx, in.ApplicantID); err != nil {
		return nil, err
	}
	posting, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if posting.Status != job.StatusOpen {
		return nil, common.NewError(common.CodeValidation, "job is not open", nil)
	}
	if posting.PosterID == in.ApplicantID {
		return nil, common.NewError(common.CodeValidation, "cannot apply to your own job", nil)
	}
	if existing, err := s.repo.FindActive(ctx, in.JobID, in.ApplicantID); err == nil {
		return nil, common.NewDuplicateError(common.CodeDuplicateApplication, "already applied to this job", existing.ForApplicant())
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	created, err := s.repo.Insert(ctx, application.Application{
		JobID:        in.JobID,
		ApplicantID:  in.ApplicantID,
		CoverNote:    coverNote,
		ProposedRate: in.ProposedRate,
		Status:       application.StatusApplied,
	})
	if err != nil {
		return nil, err
	}
	view := created.ForApplicant()
	return &view, nil
}

type UpdateStatusInput struct {
	ApplicationID common.UUID
	ActorID       common.UUID
	// Status is optional; empty keeps the current status so Notes can be
	// written on their own.
	Status string
	Notes  *string
}

func (s *ApplicationService) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*application.Application, error) {
	app, err := s.repo.GetByID(ctx, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	posting, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	var side application.Side
	switch in.ActorID {
	case posting.PosterID:
		side = application.SidePoster
	case app.ApplicantID:
		side = application.SideApplicant
	default:
		return nil, common.NewError(common.CodeForbidden, "application belongs to another job poster", nil)
	}

	target := app.Status
	explicit := strings.TrimSpace(in.Status) != ""
	if !explicit && in.Notes == nil {
		return nil, common.NewValidationError("nothing to update", map[string]string{"status": "status or notes is required"})
	}
	if explicit {
		parsed, ok := application.ParseStatus(in.Status)
		if !ok {
			return nil, common.NewValidationError("invalid status", map[string]string{"status": "status must be applied, shortlisted, hired, rejected, withdrawn, or completed"})
		}
		target = parsed
	}
	if in.Notes != nil {
		if side != application.SidePoster {
			return nil, common.NewError(common.CodeForbidden, "notes are private to the job poster", nil)
		}
		if utf8.RuneCountInString(*in.Notes) > maxNotesLength {
			return nil, common.NewValidationError("invalid notes", map[string]string{"notes": "notes are too long"})
		}
	}

	if explicit && application.InitiatorFor(target) != side {
		return nil, common.NewError(common.CodeForbidden, "only the "+string(application.InitiatorFor(target))+" can move an application to "+string(target), nil)
	}
	// A status equal to the current one is only a notes update; without notes
	// it is a self-transition, which the table never allows.
	if target == app.Status {
		if in.Notes == nil {
			return nil, common.NewError(common.CodeInvalidTransition, "application is already "+string(app.Status), nil)
		}
		return s.repo.UpdateStatus(ctx, app.ID, app.Status, app.Status, in.Notes)
	}
	if !application.Allowed(app.Status, target) {
		return nil, common.NewError(common.CodeInvalidTransition, "cannot move application from "+string(app.Status)+" to "+string(target), nil)
	}
	updated, err := s.repo.UpdateStatus(ctx, app.ID, app.Status, target, in.Notes)
	if err != nil {
		return nil, err
	}
	if side == application.SidePoster {
		s.notifier.Notify(ctx, notification.New(notification.KindApplicationStatusChanged, updated.ApplicantID, map[string]string{
			"application_id": updated.ID.String(),
			"job_id":         posting.ID.String(),
			"job_title":      posting.Title,
			"new_status":     string(updated.Status),
		}))
		return updated, nil
	}
	view := updated.ForApplicant()
	return &view, nil
}

func (s *ApplicationService) Withdraw(ctx context.Context, applicationID, actorID common.UUID) (*application.Application, error) {
	return s.UpdateStatus(ctx, UpdateStatusInput{
		ApplicationID: applicationID,
		ActorID:       actorID,
		Status:        string(application.StatusWithdrawn),
	})
}

func (s *ApplicationService) Get(ctx context.Context, applicationID, actorID common.UUID) (*application.Application, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID == actorID {
		view := app.ForApplicant()
		return &view, nil
	}
	posting, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if posting.PosterID != actorID {
		return nil, common.NewError(common.CodeForbidden, "application belongs to another job poster", nil)
	}
	return app, nil
}

func (s *ApplicationService) ListMine(ctx context.Context, applicantID common.UUID) ([]application.Application, error) {
	items, err := s.repo.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = items[i].ForApplicant()
	}
	return items, nil
}

func (s *ApplicationService) ListForJob(ctx context.Context, jobID, actorID common.UUID) ([]application.Application, error) {
	posting, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if posting.PosterID != actorID {
		return nil, common.NewError(common.CodeForbidden, "job belongs to another poster", nil)
	}
	return s.repo.ListByJob(ctx, jobID)
}
