package handlers

import (
	"net/http"
	"time"

	"taxpro/internal/app"
	"taxpro/internal/common"
	"taxpro/internal/domain/application"
	"taxpro/internal/http/middleware"
	"taxpro/internal/http/response"
)

type ApplicationHandler struct {
	applications *app.ApplicationService
	limiter      middleware.Limiter
	applyPerMin  int
}

func NewApplicationHandler(applications *app.ApplicationService, limiter middleware.Limiter, applyPerMin int) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, limiter: limiter, applyPerMin: applyPerMin}
}

type applyRequest struct {
	CoverNote    string `json:"coverNote"`
	ProposedRate *int64 `json:"proposedRate"`
}

type updateApplicationRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	applicantID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if h.limiter != nil {
		key := "apply:" + jobID.String() + ":" + applicantID.String()
		if !h.limiter.Allow(key, h.applyPerMin, time.Minute) {
			response.Error(w, common.NewError(common.CodeRateLimited, "apply rate limit exceeded", nil))
			return
		}
	}
	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.applications.Apply(r.Context(), app.ApplyInput{
		JobID:        jobID,
		ApplicantID:  applicantID,
		CoverNote:    req.CoverNote,
		ProposedRate: req.ProposedRate,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	applicationID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req updateApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.Status == nil && req.Notes == nil {
		response.Error(w, common.NewValidationError("nothing to update", map[string]string{"status": "status or notes is required"}))
		return
	}
	input := app.UpdateStatusInput{ApplicationID: applicationID, ActorID: actorID, Notes: req.Notes}
	if req.Status != nil {
		input.Status = *req.Status
	}
	updated, err := h.applications.UpdateStatus(r.Context(), input)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ApplicationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	applicationID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.applications.Withdraw(r.Context(), applicationID, actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	applicationID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	found, err := h.applications.Get(r.Context(), applicationID, actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, found)
}

func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.applications.ListMine(r.Context(), actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	writeApplications(w, items)
}

func (h *ApplicationHandler) ListForJob(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.applications.ListForJob(r.Context(), jobID, actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	writeApplications(w, items)
}

func writeApplications(w http.ResponseWriter, items []application.Application) {
	if items == nil {
		items = []application.Application{}
	}
	response.JSON(w, http.StatusOK, items)
}
