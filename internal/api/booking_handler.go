package api

import (
	"errors"
	"net/http"

	"staybook/internal/api/middleware"
	"staybook/internal/domain"
	"staybook/pkg/logger"
)

type BookingHandler struct {
	service domain.BookingService
	logger  logger.Logger
}

func NewBookingHandler(service domain.BookingService, logger logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		logger:  logger,
	}
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListBookings(r.Context(), middleware.UserFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var in domain.NewBooking
	if !decodeJSON(w, r, &in) {
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), middleware.UserFromContext(r.Context()), in)
	if err != nil {
		if errors.Is(err, domain.ErrHotelNotFound) {
			// the request names a hotel that does not exist
			writeMessage(w, http.StatusBadRequest, "Unknown hotelId")
			return
		}
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) RegisterRoutes(mux *http.ServeMux, auth *middleware.Auth) {
	mux.HandleFunc("GET /api/bookings", auth.RequireAuth(h.ListBookings))
	mux.HandleFunc("POST /api/bookings", auth.RequireAuth(h.CreateBooking))
}
