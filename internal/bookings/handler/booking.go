package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"petsitter/internal/bookings/service"
	apperrors "petsitter/pkg/errors"
	httputil "petsitter/pkg/http"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// commandBody carries the acting user for lifecycle commands. Reason is
// only meaningful for reject and cancel.
type commandBody struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason,omitempty"`
}

func (h *BookingHandler) Apply(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in model.ApplyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	booking, err := h.service.Apply(r.Context(), &in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, booking)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, total, limit, offset)
}

func (h *BookingHandler) GetBySitter(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, total, err := h.service.GetBySitter(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, total, limit, offset)
}

func (h *BookingHandler) GetByOwner(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, total, err := h.service.GetByOwner(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, total, limit, offset)
}

func (h *BookingHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	query := r.URL.Query()
	filter := &model.BookingFilter{
		RequestID: query.Get("request_id"),
		SitterID:  query.Get("sitter_id"),
		OwnerID:   query.Get("owner_id"),
	}
	if status := query.Get("status"); status != "" {
		s := model.BookingStatus(status)
		if !s.IsValid() {
			httputil.WriteError(w, apperrors.InvalidInput("Unknown booking status: "+status))
			return
		}
		filter.Status = s
	}
	if query.Get("start") != "" || query.Get("end") != "" {
		start, end, err := httputil.ExtractDateRange(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.StartTime = &start
		filter.EndTime = &end
	}

	bookings, total, err := h.service.Search(r.Context(), filter, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, total, limit, offset)
}

func (h *BookingHandler) ActiveForUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.service.ActiveForUser(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, bookings)
}

func (h *BookingHandler) HistoryForUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.service.HistoryForUser(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, bookings)
}

func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.command(w, r, ps, "Accept", func(r *http.Request, id string, body commandBody) (*model.Booking, error) {
		return h.service.Accept(r.Context(), id, body.ActorID)
	})
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.command(w, r, ps, "Reject", func(r *http.Request, id string, body commandBody) (*model.Booking, error) {
		return h.service.Reject(r.Context(), id, body.ActorID, body.Reason)
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.command(w, r, ps, "Cancel", func(r *http.Request, id string, body commandBody) (*model.Booking, error) {
		return h.service.Cancel(r.Context(), id, body.ActorID, body.Reason)
	})
}

func (h *BookingHandler) Start(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.command(w, r, ps, "Start", func(r *http.Request, id string, body commandBody) (*model.Booking, error) {
		return h.service.Start(r.Context(), id, body.ActorID)
	})
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.command(w, r, ps, "Complete", func(r *http.Request, id string, body commandBody) (*model.Booking, error) {
		return h.service.Complete(r.Context(), id, body.ActorID)
	})
}

func (h *BookingHandler) command(
	w http.ResponseWriter,
	r *http.Request,
	ps httprouter.Params,
	name string,
	run func(r *http.Request, id string, body commandBody) (*model.Booking, error),
) {
	var body commandBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}
	if body.ActorID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("actor_id is required"))
		return
	}

	booking, err := run(r, ps.ByName("id"), body)
	if err != nil {
		h.log.Warn("Booking command failed", "command", name, "id", ps.ByName("id"), "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Apply)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/search", h.Search)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.GET("/api/v1/bookings/sitter/:id", h.GetBySitter)
	router.GET("/api/v1/bookings/owner/:id", h.GetByOwner)
	router.GET("/api/v1/bookings/user/:id/active", h.ActiveForUser)
	router.GET("/api/v1/bookings/user/:id/history", h.HistoryForUser)
	router.POST("/api/v1/bookings/id/:id/accept", h.Accept)
	router.POST("/api/v1/bookings/id/:id/reject", h.Reject)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/id/:id/start", h.Start)
	router.POST("/api/v1/bookings/id/:id/complete", h.Complete)
}
