package handlers

import (
	"net/http"

	"taxpro/internal/app"
	"taxpro/internal/domain/connection"
	"taxpro/internal/http/response"
)

type ConnectionHandler struct {
	connections *app.ConnectionService
}

func NewConnectionHandler(connections *app.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connections: connections}
}

type createConnectionRequest struct {
	RecipientProfileID string `json:"recipientProfileId"`
}

type connectionDecisionRequest struct {
	Decision string `json:"decision"`
}

// Create answers 201 for a new request and 200 with the existing one when the
// pair already has an open request.
func (h *ConnectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req createConnectionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	recipientID, err := uuidField(req.RecipientProfileID, "recipientProfileId")
	if err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.connections.Create(r.Context(), actorID, recipientID)
	if err != nil {
		response.Error(w, err)
		return
	}
	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}
	response.JSON(w, status, result.Connection)
}

func (h *ConnectionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	connectionID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req connectionDecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.connections.Decide(r.Context(), connectionID, connection.Status(req.Decision), actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ConnectionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	connectionID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.connections.Withdraw(r.Context(), connectionID, actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ConnectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	connectionID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	found, err := h.connections.Get(r.Context(), connectionID, actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, found)
}

func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.connections.List(r.Context(), actorID, r.URL.Query().Get("status"))
	if err != nil {
		response.Error(w, err)
		return
	}
	if items == nil {
		items = []connection.Request{}
	}
	response.JSON(w, http.StatusOK, items)
}
