package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"taxpro/internal/common"
	"taxpro/internal/http/middleware"
)

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "unauthorized", nil)
}

func actorFromRequest(r *http.Request) (common.UUID, error) {
	id, ok := middleware.ProfileIDFromContext(r.Context())
	if !ok {
		return "", errUnauthorized()
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return common.NewValidationError("request body is required", nil)
	}
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewValidationError("request body is required", nil)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return common.NewValidationError("request body too large", nil)
		}
		return common.NewValidationError("invalid json", nil)
	}
	return nil
}

func pathSegments(r *http.Request) []string {
	return strings.Split(strings.Trim(r.URL.Path, "/"), "/")
}

// idFromPath parses the UUID at position index of the slash-separated path.
func idFromPath(r *http.Request, index int) (common.UUID, error) {
	segments := pathSegments(r)
	if index >= len(segments) || segments[index] == "" {
		return "", common.NewValidationError("invalid path", map[string]string{"id": "id is required"})
	}
	id, err := common.ParseUUID(segments[index])
	if err != nil {
		return "", common.NewValidationError("invalid path", map[string]string{"id": "invalid uuid"})
	}
	return id, nil
}

func uuidField(value, field string) (common.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return "", common.NewValidationError("invalid request", map[string]string{field: field + " is required"})
	}
	id, err := common.ParseUUID(value)
	if err != nil {
		return "", common.NewValidationError("invalid request", map[string]string{field: "invalid uuid"})
	}
	return id, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
