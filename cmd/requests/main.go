package main

import (
	bookingrepo "petsitter/internal/bookings/repository"
	"petsitter/internal/requests/handler"
	"petsitter/internal/requests/repository"
	"petsitter/internal/requests/service"
	"petsitter/internal/requests/validator"
	"petsitter/pkg/app"
	"petsitter/pkg/config"
)

const ServiceName = "requests"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Care Requests service")
	requestService := initServices(cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewCareRequestHandler(requestService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.CareRequestService {
	requestRepo := repository.NewMongoCareRequestRepository(cfg)
	// Deletion needs to see bookings to refuse removing a request with an
	// active booking.
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)

	requestService := service.NewCareRequestService(
		requestRepo,
		bookingRepo,
		validator.NewCareRequestValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Care request service initialized", "database", cfg.MongoDatabaseName)
	return requestService
}
