package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"petsitter/internal/scheduling/service"
	httputil "petsitter/pkg/http"
	"petsitter/pkg/logger"
)

// SitterHandler exposes read-only calendar views for a sitter. All
// endpoints take a start/end window as query parameters.
type SitterHandler struct {
	service service.SchedulingService
	log     *logger.Logger
}

func NewSitterHandler(service service.SchedulingService, log *logger.Logger) *SitterHandler {
	return &SitterHandler{
		service: service,
		log:     log,
	}
}

func (h *SitterHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, end, err := httputil.ExtractDateRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	available, err := h.service.IsAvailable(r.Context(), ps.ByName("id"), start, end)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]bool{"available": available})
}

func (h *SitterHandler) AvailableDates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, end, err := httputil.ExtractDateRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	dates, err := h.service.AvailableDates(r.Context(), ps.ByName("id"), start, end)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format("2006-01-02"))
	}

	httputil.WriteSuccess(w, formatted)
}

func (h *SitterHandler) BookingCounts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, end, err := httputil.ExtractDateRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	counts, err := h.service.BookingCountsByDate(r.Context(), ps.ByName("id"), start, end)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	formatted := make(map[string]int, len(counts))
	for day, count := range counts {
		formatted[day.Format("2006-01-02")] = count
	}

	httputil.WriteSuccess(w, formatted)
}

func (h *SitterHandler) Conflicts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, end, err := httputil.ExtractDateRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	conflicts, err := h.service.ConflictingBookings(r.Context(), ps.ByName("id"), start, end)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, conflicts)
}

func (h *SitterHandler) Upcoming(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.service.UpcomingBookings(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, bookings)
}

func (h *SitterHandler) ForDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Query parameter 'date' must be formatted as YYYY-MM-DD",
		})
		return
	}

	bookings, err := h.service.BookingsForDate(r.Context(), ps.ByName("id"), date)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, bookings)
}

func (h *SitterHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/sitters/:id/availability", h.Availability)
	router.GET("/api/v1/sitters/:id/available-dates", h.AvailableDates)
	router.GET("/api/v1/sitters/:id/booking-counts", h.BookingCounts)
	router.GET("/api/v1/sitters/:id/conflicts", h.Conflicts)
	router.GET("/api/v1/users/:id/upcoming", h.Upcoming)
	router.GET("/api/v1/users/:id/calendar", h.ForDate)
}
