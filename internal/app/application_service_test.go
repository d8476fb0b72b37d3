package app

import (
	"context"
	"errors"
	"testing"

	"taxpro/internal/common"
	"taxpro/internal/domain/application"
	"taxpro/internal/domain/job"
	"taxpro/internal/domain/notification"
	"taxpro/internal/repository/memory"
)

type applicationFixture struct {
	svc       *ApplicationService
	store     *memory.Store
	notifier  *recordingNotifier
	poster    common.UUID
	applicant common.UUID
	job       *job.Job
}

func newApplicationFixture(t *testing.T) applicationFixture {
	t.Helper()
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	poster := mustProfile(t, store, "poster")
	applicant := mustProfile(t, store, "applicant")
	jobs := NewJobService(store.Jobs(), store.Profiles())
	posting, err := jobs.Create(context.Background(), poster, "Seasonal 1040 preparer", "Individual returns, Jan through Apr.")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return applicationFixture{
		svc:       NewApplicationService(store.Applications(), store.Jobs(), store.Profiles(), notifier),
		store:     store,
		notifier:  notifier,
		poster:    poster,
		applicant: applicant,
		job:       posting,
	}
}

func (f applicationFixture) apply(t *testing.T) *application.Application {
	t.Helper()
	app, err := f.svc.Apply(context.Background(), ApplyInput{JobID: f.job.ID, ApplicantID: f.applicant, CoverNote: "Ten seasons of 1040 work."})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return app
}

func (f applicationFixture) move(t *testing.T, id, actor common.UUID, status application.Status) (*application.Application, error) {
	t.Helper()
	return f.svc.UpdateStatus(context.Background(), UpdateStatusInput{ApplicationID: id, ActorID: actor, Status: string(status)})
}

func TestApplyRejectsDuplicate(t *testing.T) {
	f := newApplicationFixture(t)
	first := f.apply(t)
	if first.Status != application.StatusApplied {
		t.Fatalf("expected applied, got %s", first.Status)
	}

	_, err := f.svc.Apply(context.Background(), ApplyInput{JobID: f.job.ID, ApplicantID: f.applicant, CoverNote: "again"})
	expectCode(t, err, common.CodeDuplicateApplication)
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *common.Error")
	}
	existing, ok := appErr.Existing.(application.Application)
	if !ok || existing.ID != first.ID {
		t.Fatalf("expected existing application %s, got %#v", first.ID, appErr.Existing)
	}
}

func TestApplyAfterWithdrawal(t *testing.T) {
	f := newApplicationFixture(t)
	first := f.apply(t)
	if _, err := f.svc.Withdraw(context.Background(), first.ID, f.applicant); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	second := f.apply(t)
	if second.ID == first.ID {
		t.Fatalf("expected a new application after withdrawal")
	}
}

func TestApplyValidation(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	negative := int64(-5)

	_, err := f.svc.Apply(ctx, ApplyInput{JobID: f.job.ID, ApplicantID: f.applicant, CoverNote: "  "})
	expectCode(t, err, common.CodeValidation)
	_, err = f.svc.Apply(ctx, ApplyInput{JobID: f.job.ID, ApplicantID: f.applicant, CoverNote: "hi", ProposedRate: &negative})
	expectCode(t, err, common.CodeValidation)
	_, err = f.svc.Apply(ctx, ApplyInput{JobID: f.job.ID, ApplicantID: f.poster, CoverNote: "mine"})
	expectCode(t, err, common.CodeValidation)
	_, err = f.svc.Apply(ctx, ApplyInput{JobID: common.NewUUID(), ApplicantID: f.applicant, CoverNote: "hi"})
	expectCode(t, err, common.CodeNotFound)

	if _, err := f.store.Jobs().UpdateStatus(ctx, f.job.ID, job.StatusClosed); err != nil {
		t.Fatalf("close job: %v", err)
	}
	_, err = f.svc.Apply(ctx, ApplyInput{JobID: f.job.ID, ApplicantID: f.applicant, CoverNote: "late"})
	expectCode(t, err, common.CodeValidation)
}

func TestApplicationTransitionGrid(t *testing.T) {
	// paths from applied to each starting status
	setup := map[application.Status][]application.Status{
		application.StatusApplied:     nil,
		application.StatusShortlisted: {application.StatusShortlisted},
		application.StatusHired:       {application.StatusHired},
		application.StatusRejected:    {application.StatusRejected},
		application.StatusWithdrawn:   {application.StatusWithdrawn},
		application.StatusCompleted:   {application.StatusHired, application.StatusCompleted},
	}
	for from, path := range setup {
		for _, to := range application.AllStatuses() {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				f := newApplicationFixture(t)
				app := f.apply(t)
				for _, step := range path {
					actor := f.poster
					if step == application.StatusWithdrawn {
						actor = f.applicant
					}
					if _, err := f.move(t, app.ID, actor, step); err != nil {
						t.Fatalf("setup %s: %v", step, err)
					}
				}
				actor := f.poster
				if application.InitiatorFor(to) == application.SideApplicant {
					actor = f.applicant
				}
				updated, err := f.move(t, app.ID, actor, to)
				if application.Allowed(from, to) {
					if err != nil {
						t.Fatalf("expected success, got %v", err)
					}
					if updated.Status != to {
						t.Fatalf("expected %s, got %s", to, updated.Status)
					}
					return
				}
				expectCode(t, err, common.CodeInvalidTransition)
				current, getErr := f.store.Applications().GetByID(context.Background(), app.ID)
				if getErr != nil {
					t.Fatalf("get: %v", getErr)
				}
				if current.Status != from {
					t.Fatalf("rejected transition changed status to %s", current.Status)
				}
			})
		}
	}
}

func TestApplicationEndToEnd(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)

	if _, err := f.move(t, app.ID, f.poster, application.StatusShortlisted); err != nil {
		t.Fatalf("shortlist: %v", err)
	}
	_, err := f.move(t, app.ID, f.poster, application.StatusWithdrawn)
	expectCode(t, err, common.CodeForbidden)
	if _, err := f.move(t, app.ID, f.poster, application.StatusHired); err != nil {
		t.Fatalf("hire: %v", err)
	}
	completed, err := f.move(t, app.ID, f.poster, application.StatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != application.StatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}
	_, err = f.svc.Withdraw(context.Background(), app.ID, f.applicant)
	expectCode(t, err, common.CodeInvalidTransition)

	kinds := f.notifier.kinds()
	if len(kinds) != 3 {
		t.Fatalf("expected 3 notifications, got %v", kinds)
	}
	last := f.notifier.last()
	if last.Kind != notification.KindApplicationStatusChanged || last.RecipientID != f.applicant {
		t.Fatalf("unexpected notification %+v", last)
	}
	if last.Payload["new_status"] != string(application.StatusCompleted) || last.Payload["job_title"] != f.job.Title {
		t.Fatalf("unexpected payload %v", last.Payload)
	}
}

func TestApplicantCannotDriveHiring(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)
	_, err := f.move(t, app.ID, f.applicant, application.StatusHired)
	expectCode(t, err, common.CodeForbidden)

	stranger := mustProfile(t, f.store, "stranger")
	_, err = f.move(t, app.ID, stranger, application.StatusShortlisted)
	expectCode(t, err, common.CodeForbidden)
}

func TestApplicationNotesArePosterPrivate(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	app := f.apply(t)
	notes := "strong on trusts"

	updated, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{ApplicationID: app.ID, ActorID: f.poster, Notes: &notes})
	if err != nil {
		t.Fatalf("notes: %v", err)
	}
	if updated.Notes != notes || updated.Status != application.StatusApplied {
		t.Fatalf("unexpected update %+v", updated)
	}
	if len(f.notifier.kinds()) != 0 {
		t.Fatalf("notes-only update should not notify")
	}

	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{ApplicationID: app.ID, ActorID: f.applicant, Notes: &notes})
	expectCode(t, err, common.CodeForbidden)

	mine, err := f.svc.Get(ctx, app.ID, f.applicant)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if mine.Notes != "" {
		t.Fatalf("applicant view leaked notes")
	}
	listed, err := f.svc.ListMine(ctx, f.applicant)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Notes != "" {
		t.Fatalf("applicant list leaked notes: %+v", listed)
	}
	forJob, err := f.svc.ListForJob(ctx, f.job.ID, f.poster)
	if err != nil {
		t.Fatalf("list for job: %v", err)
	}
	if len(forJob) != 1 || forJob[0].Notes != notes {
		t.Fatalf("poster list should include notes: %+v", forJob)
	}
	_, err = f.svc.ListForJob(ctx, f.job.ID, f.applicant)
	expectCode(t, err, common.CodeForbidden)
}

func TestApplicationUpdateRejectsUnknownStatus(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)
	_, err := f.svc.UpdateStatus(context.Background(), UpdateStatusInput{ApplicationID: app.ID, ActorID: f.poster, Status: "archived"})
	expectCode(t, err, common.CodeValidation)
}

func TestApplicationSameStatusIsOnlyANotesUpdate(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	app := f.apply(t)
	for _, step := range []application.Status{application.StatusHired, application.StatusCompleted} {
		if _, err := f.move(t, app.ID, f.poster, step); err != nil {
			t.Fatalf("%s: %v", step, err)
		}
	}

	_, err := f.move(t, app.ID, f.poster, application.StatusCompleted)
	expectCode(t, err, common.CodeInvalidTransition)
	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{ApplicationID: app.ID, ActorID: f.poster})
	expectCode(t, err, common.CodeValidation)

	notes := "closed out cleanly"
	updated, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{ApplicationID: app.ID, ActorID: f.poster, Status: string(application.StatusCompleted), Notes: &notes})
	if err != nil {
		t.Fatalf("notes on completed: %v", err)
	}
	if updated.Status != application.StatusCompleted || updated.Notes != notes {
		t.Fatalf("unexpected update %+v", updated)
	}
}
