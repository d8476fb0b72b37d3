package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"taxpro/internal/common"
)

type errorBody struct {
	Error    common.Code       `json:"error"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Existing any               `json:"existing,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", slog.String("error", err.Error()))
	}
}

// Error renders err with the status mapped from its code. Errors that did not
// come from common are reported as internal without leaking their text.
func Error(w http.ResponseWriter, err error) {
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error", slog.String("error", err.Error()))
		JSON(w, http.StatusInternalServerError, errorBody{Error: common.CodeInternal, Message: "internal error"})
		return
	}
	status := StatusFor(appErr.Code)
	message := appErr.Message
	if status == http.StatusInternalServerError {
		if appErr.Err != nil {
			slog.Error(appErr.Message, slog.String("error", appErr.Err.Error()))
		}
		message = "internal error"
	}
	JSON(w, status, errorBody{
		Error:    appErr.Code,
		Message:  message,
		Fields:   appErr.Fields,
		Existing: appErr.Existing,
	})
}

func StatusFor(code common.Code) int {
	switch code {
	case common.CodeValidation:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeInvalidTransition, common.CodeDuplicateApplication, common.CodeDuplicateInvite, common.CodeConflict:
		return http.StatusConflict
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
