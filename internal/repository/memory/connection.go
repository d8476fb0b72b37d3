package memory

import (
	"context"
	"sort"

	"taxpro/internal/common"
	"taxpro/internal/domain/connection"
)

type ConnectionRepository struct {
	store *Store
}

func (r *ConnectionRepository) FindOpenBetween(_ context.Context, a, b common.UUID) (*connection.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing := r.openBetweenLocked(a, b); existing != nil {
		return existing, nil
	}
	return nil, common.NewError(common.CodeNotFound, "connection not found", nil)
}

func (r *ConnectionRepository) openBetweenLocked(a, b common.UUID) *connection.Request {
	for _, req := range r.store.connections {
		if !req.Status.Open() {
			continue
		}
		if req.Involves(a) && req.Involves(b) {
			found := req
			return &found
		}
	}
	return nil
}

func (r *ConnectionRepository) Insert(_ context.Context, req connection.Request) (*connection.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing := r.openBetweenLocked(req.RequesterID, req.RecipientID); existing != nil {
		return nil, common.NewDuplicateError(common.CodeConflict, "connection already exists", *existing)
	}
	req.ID = common.NewUUID()
	now := r.store.now()
	req.CreatedAt = now
	req.UpdatedAt = now
	r.store.connections[req.ID] = req
	return &req, nil
}

func (r *ConnectionRepository) GetByID(_ context.Context, id common.UUID) (*connection.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.store.connections[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "connection not found", nil)
	}
	return &req, nil
}

func (r *ConnectionRepository) UpdateStatus(_ context.Context, id common.UUID, from, to connection.Status) (*connection.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.store.connections[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "connection not found", nil)
	}
	if req.Status != from {
		return nil, common.NewError(common.CodeInvalidTransition, "connection status changed concurrently", nil)
	}
	req.Status = to
	req.UpdatedAt = r.store.now()
	r.store.connections[id] = req
	return &req, nil
}

func (r *ConnectionRepository) ListByProfile(_ context.Context, profileID common.UUID, status connection.Status) ([]connection.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var items []connection.Request
	for _, req := range r.store.connections {
		if !req.Involves(profileID) {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		items = append(items, req)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// Count returns the number of stored requests, whatever their status.
func (r *ConnectionRepository) Count() int {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.connections)
}
