package api

import (
	"net/http"

	"staybook/internal/api/middleware"
	"staybook/internal/domain"
	"staybook/pkg/logger"
)

type HotelHandler struct {
	service domain.HotelService
	logger  logger.Logger
}

func NewHotelHandler(service domain.HotelService, logger logger.Logger) *HotelHandler {
	return &HotelHandler{
		service: service,
		logger:  logger,
	}
}

func (h *HotelHandler) ListHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.service.ListHotels(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, hotels)
}

func (h *HotelHandler) GetHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelPathID(w, r)
	if !ok {
		return
	}

	hotel, err := h.service.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if hotel == nil {
		writeMessage(w, http.StatusNotFound, "Hotel not found")
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

// QuoteStay answers GET /api/hotels/{id}/quote?checkIn=...&checkOut=...
func (h *HotelHandler) QuoteStay(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelPathID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	checkIn, err := domain.ParseDate(q.Get("checkIn"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "checkIn must be a date")
		return
	}
	checkOut, err := domain.ParseDate(q.Get("checkOut"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "checkOut must be a date")
		return
	}

	quote, err := h.service.QuoteStay(r.Context(), id, checkIn, checkOut)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *HotelHandler) CreateHotel(w http.ResponseWriter, r *http.Request) {
	var in domain.NewHotel
	if !decodeJSON(w, r, &in) {
		return
	}

	hotel, err := h.service.CreateHotel(r.Context(), middleware.UserFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, hotel)
}

func (h *HotelHandler) RegisterRoutes(mux *http.ServeMux, auth *middleware.Auth) {
	mux.HandleFunc("GET /api/hotels", h.ListHotels)
	mux.HandleFunc("GET /api/hotels/{id}", h.GetHotel)
	mux.HandleFunc("GET /api/hotels/{id}/quote", h.QuoteStay)
	mux.HandleFunc("POST /api/hotels", auth.RequireHotelOwner(h.CreateHotel))
}
