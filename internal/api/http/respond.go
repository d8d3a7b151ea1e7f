package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/security"
	"rentmarket-backend/internal/service"

	"github.com/gorilla/mux"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// statusFor maps an error to its HTTP status and the kind reported to the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrExpiredToken),
		errors.Is(err, security.ErrWrongTokenType):
		return http.StatusUnauthorized, "unauthorized"
	}
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest, string(kind)
	case domain.KindNotFound:
		return http.StatusNotFound, string(kind)
	case domain.KindForbidden:
		return http.StatusForbidden, string(kind)
	case domain.KindConflict:
		return http.StatusConflict, string(kind)
	default:
		return http.StatusServiceUnavailable, string(domain.KindDependency)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	message := err.Error()
	var de *domain.Error
	if !errors.As(err, &de) && status == http.StatusServiceUnavailable {
		message = "service is temporarily unavailable"
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err, "cause", errors.Unwrap(err))
	} else {
		logger.DebugContext(r.Context(), "Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: kind, Message: message})
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.NewValidationError("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("invalid %s %q", name, raw)
	}
	return int32(id), nil
}

func queryInt(r *http.Request, name string, def int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return def
	}
	return int32(n)
}
