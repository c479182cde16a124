package main

import (
	"net/http"
	"os"

	"petsitter/internal/coordinator/api"
	"petsitter/pkg/client"
	"petsitter/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{
		Level:   "info",
		Format:  logger.JSON,
		Service: "coordinator",
	})

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	requestsBaseURL := os.Getenv("REQUESTS_BASE_URL")
	if requestsBaseURL == "" {
		requestsBaseURL = "http://localhost:8081"
	}

	port := os.Getenv("COORDINATOR_PORT")
	if port == "" {
		port = "8090"
	}

	apiClient := client.NewClient()
	apiClient.SetBookings(baseURL)
	apiClient.SetRequests(requestsBaseURL)

	router := api.SetupRouter(apiClient, log)

	addr := ":" + port
	log.Info("Starting Coordinator API server", "address", addr, "base_url", baseURL)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
