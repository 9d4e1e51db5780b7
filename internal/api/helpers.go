package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "garagerent/internal/errors"
)

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps any service error to its stable code/message pair.
func respondError(w http.ResponseWriter, err error, method, endpoint string) {
	status := apperrors.HTTPStatus(err)
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	respondJSON(w, status, map[string]string{
		"error":   string(apperrors.KindOf(err)),
		"message": message,
	})
}

func respondOK(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	respondJSON(w, code, payload)
}
