package main

import (
	bookinghandler "petsitter/internal/bookings/handler"
	bookingrepo "petsitter/internal/bookings/repository"
	bookingservice "petsitter/internal/bookings/service"
	bookingvalidator "petsitter/internal/bookings/validator"
	requestsrepo "petsitter/internal/requests/repository"
	schedhandler "petsitter/internal/scheduling/handler"
	schedservice "petsitter/internal/scheduling/service"
	"petsitter/pkg/app"
	"petsitter/pkg/config"
	"petsitter/pkg/kafka"
	kafka_config "petsitter/pkg/kafka/config"
	kafka_middleware "petsitter/pkg/kafka/middleware"
	"petsitter/pkg/model"
	"petsitter/pkg/notify"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")
	bookingService, schedulingService := initServices(cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		schedhandler.NewSitterHandler(schedulingService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) (bookingservice.BookingService, schedservice.SchedulingService) {
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewSitterLockRepository(cfg)
	requestRepo := requestsrepo.NewMongoCareRequestRepository(cfg)

	schedulingService := schedservice.NewSchedulingService(bookingRepo, cfg)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		lockRepo,
		requestRepo,
		schedulingService,
		bookingvalidator.NewBookingValidator(cfg.Log),
		initNotifier(cfg),
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService, schedulingService
}

// initNotifier wires the Kafka producer for booking events. Publishing is
// best-effort, so a broker that is down at startup degrades to the noop
// notifier instead of blocking the service.
func initNotifier(cfg *config.Config) notify.Notifier {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return notify.NewNoopNotifier()
	}

	producer, err := kafka.NewProducer(kafka_config.Load(), model.TopicBookingEvents, model.TopicBookingEventsDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Failed to create Kafka producer, booking events will not be published", "error", err)
		return notify.NewNoopNotifier()
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware())

	return notify.NewKafkaNotifier(producer, ServiceName, cfg.Log)
}
