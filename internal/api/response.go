package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"staybook/internal/domain"
	"staybook/internal/validation"
	"staybook/pkg/logger"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// hotelPathID reads {id}. An id that cannot name a hotel is answered like an
// absent one.
func hotelPathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusNotFound, "Hotel not found")
		return 0, false
	}
	return id, true
}

// writeError maps service errors onto status codes. Anything unrecognised
// is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request", Errors: verr.Fields})
	case errors.Is(err, domain.ErrUsernameTaken):
		writeMessage(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, domain.ErrInvalidLogin):
		writeMessage(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, domain.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Only hotel owners can add hotels")
	case errors.Is(err, domain.ErrPriceMismatch):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidDate):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrHotelNotFound):
		writeMessage(w, http.StatusNotFound, "Hotel not found")
	default:
		log.ErrorContext(r.Context(), "Request failed", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		})
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
