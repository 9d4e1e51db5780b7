package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"garagerent/internal/repository"
	"garagerent/internal/service"
)

// AdminHandler is the operator surface: booking listings, the stale-pending
// sweep, and the bulk cancellation hook the listing collaborator calls when
// a space is deleted.
type AdminHandler struct {
	Bookings    *service.BookingService
	BookingRepo *repository.BookingRepository
	Jobs        *service.JobService
}

func NewAdminHandler(bookings *service.BookingService, bookingRepo *repository.BookingRepository, jobs *service.JobService) *AdminHandler {
	return &AdminHandler{Bookings: bookings, BookingRepo: bookingRepo, Jobs: jobs}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	date := r.URL.Query().Get("date")
	var spaceID int64
	if raw := r.URL.Query().Get("space_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid space_id", http.StatusBadRequest)
			return
		}
		spaceID = id
	}
	bookings, err := h.BookingRepo.AdminList(r.Context(), status, date, spaceID)
	if err != nil {
		respondError(w, err, "GET", "/admin/bookings")
		return
	}
	respondOK(w, http.StatusOK, toBookingsList(bookings), "GET", "/admin/bookings")
}

// CancelSpaceBookings bulk-cancels every active booking on a space. No
// settlement reversal happens here.
func (h *AdminHandler) CancelSpaceBookings(w http.ResponseWriter, r *http.Request) {
	spaceID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid space ID", http.StatusBadRequest)
		return
	}
	affected, err := h.Bookings.CancelAllForSpace(r.Context(), spaceID)
	if err != nil {
		respondError(w, err, "DELETE", "/admin/spaces/{id}/bookings")
		return
	}
	respondOK(w, http.StatusOK, map[string]int64{"cancelled": affected}, "DELETE", "/admin/spaces/{id}/bookings")
}

func (h *AdminHandler) RunExpireSweep(w http.ResponseWriter, r *http.Request) {
	if err := h.Jobs.ExpireStalePendingBookings(r.Context()); err != nil {
		respondError(w, err, "POST", "/admin/jobs/expire-pending")
		return
	}
	respondOK(w, http.StatusOK, map[string]string{"status": "done"}, "POST", "/admin/jobs/expire-pending")
}
