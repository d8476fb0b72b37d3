package handlers

import (
	"net/http"

	"taxpro/internal/app"
	"taxpro/internal/http/response"
)

type ProfileHandler struct {
	profiles *app.ProfileService
}

func NewProfileHandler(profiles *app.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type verificationDecisionRequest struct {
	Status string `json:"status"`
}

type listedRequest struct {
	Listed bool `json:"listed"`
}

type createProfileRequest struct {
	DisplayName string `json:"displayName"`
}

type createFirmRequest struct {
	Name string `json:"name"`
}

// Create onboards the caller. An identity that already has a profile gets
// 409 with the stored profile.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req createProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.profiles.CreateProfile(r.Context(), actorID, req.DisplayName)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *ProfileHandler) CreateFirm(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req createFirmRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.profiles.CreateFirm(r.Context(), actorID, req.Name)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *ProfileHandler) GetFirm(w http.ResponseWriter, r *http.Request) {
	firmID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	found, err := h.profiles.GetFirm(r.Context(), firmID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, found)
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	found, err := h.profiles.Get(r.Context(), profileID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, found)
}

func (h *ProfileHandler) RequestVerification(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.profiles.RequestVerification(r.Context(), actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

// DecideVerification is mounted behind RequireRole(admin).
func (h *ProfileHandler) DecideVerification(w http.ResponseWriter, r *http.Request) {
	profileID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req verificationDecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.profiles.DecideVerification(r.Context(), profileID, req.Status)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ProfileHandler) SetListed(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req listedRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.profiles.SetListed(r.Context(), actorID, req.Listed)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}
