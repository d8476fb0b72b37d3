package handlers

import (
	"net/http"

	"taxpro/internal/app"
	"taxpro/internal/common"
	"taxpro/internal/domain/bench"
	"taxpro/internal/http/response"
)

type BenchHandler struct {
	bench *app.BenchService
}

func NewBenchHandler(bench *app.BenchService) *BenchHandler {
	return &BenchHandler{bench: bench}
}

type inviteRequest struct {
	FirmID      string `json:"firmId"`
	ProfileID   string `json:"profileId"`
	Category    string `json:"category"`
	CustomTitle string `json:"customTitle"`
}

// reorderItem accepts a priority for compatibility; array order decides.
type reorderItem struct {
	ID       string `json:"id"`
	Priority *int   `json:"priority,omitempty"`
}

type reorderRequest struct {
	FirmID string        `json:"firmId"`
	Items  []reorderItem `json:"items"`
}

type updateEntryRequest struct {
	Categories       *[]string `json:"categories"`
	CustomTitle      *string   `json:"customTitle"`
	VisibilityPublic *bool     `json:"visibilityPublic"`
}

func (h *BenchHandler) Invite(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	firmID, err := uuidField(req.FirmID, "firmId")
	if err != nil {
		response.Error(w, err)
		return
	}
	profileID, err := uuidField(req.ProfileID, "profileId")
	if err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.bench.Invite(r.Context(), app.InviteInput{
		FirmID:      firmID,
		ProfileID:   profileID,
		ActorID:     actorID,
		Category:    req.Category,
		CustomTitle: req.CustomTitle,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *BenchHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	firmID, err := uuidField(req.FirmID, "firmId")
	if err != nil {
		response.Error(w, err)
		return
	}
	ordered := make([]common.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		id, err := uuidField(item.ID, "items")
		if err != nil {
			response.Error(w, err)
			return
		}
		ordered = append(ordered, id)
	}
	entries, err := h.bench.Reorder(r.Context(), firmID, ordered, actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	writeEntries(w, entries)
}

func (h *BenchHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	firmID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	entries, err := h.bench.List(r.Context(), firmID, actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	writeEntries(w, entries)
}

func (h *BenchHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	entryID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	entry, err := h.bench.AcceptInvite(r.Context(), entryID, actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, entry)
}

func (h *BenchHandler) DeclineInvite(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	entryID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.bench.DeclineInvite(r.Context(), entryID, actorID); err != nil {
		response.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BenchHandler) CancelInvite(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	entryID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.bench.CancelInvite(r.Context(), entryID, actorID); err != nil {
		response.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BenchHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	entryID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req updateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.bench.UpdateEntry(r.Context(), app.UpdateEntryInput{
		EntryID:          entryID,
		ActorID:          actorID,
		Categories:       req.Categories,
		CustomTitle:      req.CustomTitle,
		VisibilityPublic: req.VisibilityPublic,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *BenchHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	entryID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	removed, err := h.bench.Remove(r.Context(), entryID, actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, removed)
}

func writeEntries(w http.ResponseWriter, entries []bench.Entry) {
	if entries == nil {
		entries = []bench.Entry{}
	}
	response.JSON(w, http.StatusOK, entries)
}
