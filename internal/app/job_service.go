package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"taxpro/internal/common"
	"taxpro/internal/domain/job"
	"taxpro/internal/domain/profile"
)

type JobService struct {
	repo     job.Repository
	profiles profile.Repository
}

func NewJobService(repo job.Repository, profiles profile.Repository) *JobService {
	return &JobService{repo: repo, profiles: profiles}
}

func (s *JobService) Create(ctx context.Context, posterID common.UUID, title, description string) (*job.Job, error) {
	j := job.Job{
		PosterID:    posterID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      job.StatusOpen,
	}
	if err := validateJob(j); err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetByID(ctx, posterID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, j)
}

func validateJob(j job.Job) error {
	fields := map[string]string{}
	titleLength := utf8.RuneCountInString(j.Title)
	if titleLength == 0 {
		fields["title"] = "title is required"
	} else if titleLength < 4 || titleLength > 120 {
		fields["title"] = "title must be between 4 and 120 characters"
	}
	if j.Description == "" {
		fields["description"] = "description is required"
	}
	if len(fields) > 0 {
		return common.NewValidationError("invalid job", fields)
	}
	return nil
}

func (s *JobService) SetStatus(ctx context.Context, jobID, actorID common.UUID, status string) (*job.Job, error) {
	next, ok := job.ParseStatus(status)
	if !ok {
		return nil, common.NewValidationError("invalid job status", map[string]string{"status": "status must be open or closed"})
	}
	current, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if current.PosterID != actorID {
		return nil, common.NewError(common.CodeForbidden, "job belongs to another poster", nil)
	}
	if current.Status == next {
		return current, nil
	}
	return s.repo.UpdateStatus(ctx, jobID, next)
}

func (s *JobService) Get(ctx context.Context, jobID common.UUID) (*job.Job, error) {
	return s.repo.GetByID(ctx, jobID)
}

func (s *JobService) ListOpen(ctx context.Context, limit, offset int) ([]job.Job, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListOpen(ctx, limit, offset)
}
