package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"loopwise-go/internal/api"
	"loopwise-go/internal/audit"
	"loopwise-go/internal/state"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func sendJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("Failed to write response", zap.Error(err))
	}
}

// sendError sends a JSON error response. Validation errors are expanded per field.
func sendError(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	resp := ErrorResponse{Error: message}
	var verrs validator.ValidationErrors
	if errors.As(validationErr, &verrs) {
		resp.Details = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			resp.Details[fe.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", fe.Tag())
		}
	}
	sendJSON(w, statusCode, resp)
}

// sendControllerError maps controller errors onto HTTP status codes.
func sendControllerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, api.ErrNotSignedIn):
		sendError(w, err.Error(), http.StatusUnauthorized, nil)
	case errors.Is(err, api.ErrSuggestionNotFound),
		errors.Is(err, api.ErrMemberNotFound),
		errors.Is(err, api.ErrSessionNotFound),
		errors.Is(err, api.ErrTransactionNotFound),
		errors.Is(err, state.ErrSubscriptionNotFound):
		sendError(w, err.Error(), http.StatusNotFound, nil)
	case errors.Is(err, api.ErrInvalidAmount),
		errors.Is(err, api.ErrInvalidStatus),
		errors.Is(err, api.ErrEmptyMessage),
		errors.Is(err, state.ErrUnknownPlan):
		sendError(w, err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, audit.ErrNothingToExport):
		sendError(w, audit.UserMessage(err), http.StatusNotFound, nil)
	default:
		zap.L().Error("Request failed", zap.Error(err))
		sendError(w, err.Error(), http.StatusInternalServerError, nil)
	}
}

// decodeJSON reads exactly one JSON object into dst and validates it.
// It writes the error response itself and reports whether to continue.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		sendError(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		sendError(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		sendError(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}
