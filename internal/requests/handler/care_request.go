package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"petsitter/internal/requests/repository"
	"petsitter/internal/requests/service"
	apperrors "petsitter/pkg/errors"
	httputil "petsitter/pkg/http"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"
)

type CareRequestHandler struct {
	service service.CareRequestService
	log     *logger.Logger
}

func NewCareRequestHandler(service service.CareRequestService, log *logger.Logger) *CareRequestHandler {
	return &CareRequestHandler{
		service: service,
		log:     log,
	}
}

func (h *CareRequestHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request model.CareRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Create(r.Context(), &request); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, request)
}

func (h *CareRequestHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	request, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, request)
}

func (h *CareRequestHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	requests, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, requests, total, limit, offset)
}

func (h *CareRequestHandler) GetByOwner(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	requests, total, err := h.service.GetByOwner(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, requests, total, limit, offset)
}

func (h *CareRequestHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	filter, err := parseSearchFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	requests, total, err := h.service.SearchOpen(r.Context(), filter, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, requests, total, limit, offset)
}

func (h *CareRequestHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actorID := r.URL.Query().Get("actor_id")
	if actorID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("actor_id query parameter is required"))
		return
	}

	var updates model.CareRequestUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	request, err := h.service.Update(r.Context(), ps.ByName("id"), actorID, &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, request)
}

func (h *CareRequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status model.RequestStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), body.Status); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CareRequestHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actorID := r.URL.Query().Get("actor_id")
	if actorID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("actor_id query parameter is required"))
		return
	}

	if err := h.service.Delete(r.Context(), ps.ByName("id"), actorID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func parseSearchFilter(r *http.Request) (*repository.SearchFilter, error) {
	query := r.URL.Query()
	filter := &repository.SearchFilter{
		Term: query.Get("term"),
	}
	if careType := query.Get("care_type"); careType != "" {
		filter.CareType = model.CareType(careType)
	}

	bounds := map[string]**float64{
		"min_lat": &filter.MinLat,
		"max_lat": &filter.MaxLat,
		"min_lng": &filter.MinLng,
		"max_lng": &filter.MaxLng,
	}
	for param, target := range bounds {
		raw := query.Get(param)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperrors.InvalidInput("Query parameter '" + param + "' must be a number")
		}
		*target = &value
	}

	return filter, nil
}

func (h *CareRequestHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/requests", h.Create)
	router.GET("/api/v1/requests", h.GetAll)
	router.GET("/api/v1/requests/search", h.Search)
	router.GET("/api/v1/requests/id/:id", h.GetByID)
	router.GET("/api/v1/requests/owner/:id", h.GetByOwner)
	router.PATCH("/api/v1/requests/id/:id", h.Update)
	router.PATCH("/api/v1/requests/id/:id/status", h.UpdateStatus)
	router.DELETE("/api/v1/requests/id/:id", h.Delete)
}
