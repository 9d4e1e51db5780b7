package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"garagerent/internal/auth"
	"garagerent/internal/db"
	"garagerent/internal/entities"
	"garagerent/internal/service"
)

type BookingHandler struct {
	Bookings     *service.BookingService
	Availability *service.AvailabilityService
}

func NewBookingHandler(bookings *service.BookingService, availability *service.AvailabilityService) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Availability: availability}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req entities.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	resp, err := h.Availability.CheckConflict(r.Context(), req.SpaceID, req.StartDate, req.EndDate, 0)
	if err != nil {
		respondError(w, err, "POST", "/availability")
		return
	}
	respondOK(w, http.StatusOK, resp, "POST", "/availability")
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/bookings"))
	defer timer.ObserveDuration()

	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req entities.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	result, err := h.Bookings.Create(r.Context(), userID, &req)
	if err != nil {
		bookingTransitionsTotal.WithLabelValues("create", "error").Inc()
		respondError(w, err, "POST", "/bookings")
		return
	}
	bookingTransitionsTotal.WithLabelValues("create", "ok").Inc()
	respondOK(w, http.StatusCreated, result, "POST", "/bookings")
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}
	booking, err := h.Bookings.GetByID(r.Context(), userID, id)
	if err != nil {
		respondError(w, err, "GET", "/bookings/{id}")
		return
	}
	respondOK(w, http.StatusOK, entities.BookingToResponse(booking), "GET", "/bookings/{id}")
}

func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bookings, err := h.Bookings.ListForRenter(r.Context(), userID)
	if err != nil {
		respondError(w, err, "GET", "/bookings")
		return
	}
	respondOK(w, http.StatusOK, toBookingsList(bookings), "GET", "/bookings")
}

func (h *BookingHandler) ListSpaceBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	spaceID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid space ID", http.StatusBadRequest)
		return
	}
	bookings, err := h.Bookings.ListForSpace(r.Context(), userID, spaceID)
	if err != nil {
		respondError(w, err, "GET", "/spaces/{id}/bookings")
		return
	}
	respondOK(w, http.StatusOK, toBookingsList(bookings), "GET", "/spaces/{id}/bookings")
}

// TransitionBooking applies the owner-side confirm/reject action.
func (h *BookingHandler) TransitionBooking(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("PUT", "/bookings/{id}/status"))
	defer timer.ObserveDuration()

	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}
	var req entities.TransitionBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	booking, err := h.Bookings.Transition(r.Context(), userID, id, req.Action)
	if err != nil {
		bookingTransitionsTotal.WithLabelValues(req.Action, "error").Inc()
		respondError(w, err, "PUT", "/bookings/{id}/status")
		return
	}
	bookingTransitionsTotal.WithLabelValues(req.Action, "ok").Inc()
	respondOK(w, http.StatusOK, entities.BookingToResponse(booking), "PUT", "/bookings/{id}/status")
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}
	booking, err := h.Bookings.Cancel(r.Context(), userID, id)
	if err != nil {
		bookingTransitionsTotal.WithLabelValues("cancel", "error").Inc()
		respondError(w, err, "DELETE", "/bookings/{id}")
		return
	}
	bookingTransitionsTotal.WithLabelValues("cancel", "ok").Inc()
	respondOK(w, http.StatusOK, entities.BookingToResponse(booking), "DELETE", "/bookings/{id}")
}

func toBookingsList(bookings []db.Booking) entities.BookingsList {
	list := entities.BookingsList{Total: int64(len(bookings))}
	for i := range bookings {
		list.Bookings = append(list.Bookings, entities.BookingToResponse(&bookings[i]))
	}
	return list
}
