package api

import (
	"net/http"

	"petsitter/internal/coordinator/handlers"
	"petsitter/internal/coordinator/service"
	"petsitter/pkg/client"
	"petsitter/pkg/logger"
)

func SetupRouter(client *client.Client, log *logger.Logger) *http.ServeMux {
	coordinatorService := service.NewCoordinatorService(client, log)
	flowHandler := handlers.NewFlowHandler(coordinatorService, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/flows/execute", flowHandler.ExecuteFlow)
	mux.HandleFunc("/api/v1/flows", flowHandler.ListFlows)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	return mux
}
