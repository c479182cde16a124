package handlers

import (
	"encoding/json"
	"net/http"

	"petsitter/internal/coordinator/service"
	"petsitter/pkg/logger"
)

// FlowHandler exposes the coordinator's flows over HTTP: list what is
// registered, and run one by name with a free-form input map.
type FlowHandler struct {
	service *service.CoordinatorService
	log     *logger.Logger
}

func NewFlowHandler(service *service.CoordinatorService, log *logger.Logger) *FlowHandler {
	return &FlowHandler{service: service, log: log}
}

type ExecuteFlowRequest struct {
	Flow  string         `json:"flow"`
	Input map[string]any `json:"input"`
}

type ExecuteFlowResponse struct {
	Success bool           `json:"success"`
	Output  map[string]any `json:"output,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type ListFlowsResponse struct {
	Flows []string `json:"flows"`
}

func (h *FlowHandler) ExecuteFlow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.fail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ExecuteFlowRequest
	switch err := json.NewDecoder(r.Body).Decode(&req); {
	case err != nil:
		h.log.Error("failed to decode request", "error", err)
		h.fail(w, http.StatusBadRequest, "invalid request payload")
		return
	case req.Flow == "":
		h.fail(w, http.StatusBadRequest, "flow name is required")
		return
	}
	if req.Input == nil {
		req.Input = map[string]any{}
	}

	h.log.Info("executing flow", "flow", req.Flow)
	output, err := h.service.ExecuteFlow(req.Flow, req.Input)
	if err != nil {
		h.log.Error("flow execution failed", "flow", req.Flow, "error", err)
		h.fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respond(w, http.StatusOK, ExecuteFlowResponse{Success: true, Output: output})
}

func (h *FlowHandler) ListFlows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.fail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.respond(w, http.StatusOK, ListFlowsResponse{Flows: h.service.AvailableFlows()})
}

func (h *FlowHandler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

func (h *FlowHandler) fail(w http.ResponseWriter, status int, message string) {
	h.respond(w, status, ExecuteFlowResponse{Success: false, Error: message})
}
