package memory

import (
	"context"
	"sort"

	"taxpro/internal/common"
	"taxpro/internal/domain/job"
)

type JobRepository struct {
	store *Store
}

func (r *JobRepository) Create(_ context.Context, j job.Job) (*job.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	j.ID = common.NewUUID()
	now := r.store.now()
	j.CreatedAt = now
	j.UpdatedAt = now
	r.store.jobs[j.ID] = j
	return &j, nil
}

func (r *JobRepository) GetByID(_ context.Context, id common.UUID) (*job.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	j, ok := r.store.jobs[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	return &j, nil
}

func (r *JobRepository) UpdateStatus(_ context.Context, id common.UUID, status job.Status) (*job.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	j, ok := r.store.jobs[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	j.Status = status
	j.UpdatedAt = r.store.now()
	r.store.jobs[id] = j
	return &j, nil
}

func (r *JobRepository) ListOpen(_ context.Context, limit, offset int) ([]job.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var items []job.Job
	for _, j := range r.store.jobs {
		if j.Status == job.StatusOpen {
			items = append(items, j)
		}
	}
	sort.Slice(items, func(i, k int) bool {
		return items[i].CreatedAt.After(items[k].CreatedAt)
	})
	if offset >= len(items) {
		return nil, nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}
