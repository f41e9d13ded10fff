package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tipster/domain/entities"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return entities.NewValidationError("body", fmt.Sprintf("malformed JSON: %v", err))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	body := map[string]any{"error": code}
	if message = strings.TrimSpace(message); message != "" {
		body["message"] = message
	}
	writeJSON(w, status, body)
}

// writeServiceError maps domain errors onto HTTP responses
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *entities.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid_payload",
			"fields": verr.Fields,
		})
		return
	}

	var guard *entities.GuardViolation
	if errors.As(err, &guard) {
		writeError(w, guardStatus(guard.Reason), string(guard.Reason), guard.Message)
		return
	}

	log.WithFields(log.Fields{
		"method":    r.Method,
		"path":      r.URL.Path,
		"requestID": middleware.GetReqID(r.Context()),
		"error":     err,
	}).Error("Request failed")
	writeError(w, http.StatusInternalServerError, "server_error", "")
}

func guardStatus(reason entities.Reason) int {
	switch reason {
	case entities.ReasonNotFound:
		return http.StatusNotFound
	case entities.ReasonForbidden:
		return http.StatusForbidden
	case entities.ReasonEmailInUse, entities.ReasonPseudoInUse:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// requestLogger logs every request with logrus
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"bytes":     ww.BytesWritten(),
			"duration":  time.Since(start),
			"requestID": middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}
