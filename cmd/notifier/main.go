package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"petsitter/internal/notifications"
	kafka_config "petsitter/pkg/kafka/config"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"
)

func main() {
	log := logger.New(logger.Config{
		Level:   "info",
		Format:  logger.JSON,
		Service: "notifier",
	})

	worker, err := notifications.NewWorker(
		kafka_config.Load(),
		model.TopicBookingEvents,
		model.TopicBookingEventsDLQ,
		log,
	)
	if err != nil {
		log.Error("Failed to create notification worker", "error", err)
		os.Exit(1)
	}
	defer worker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		log.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	log.Info("Starting notification worker", "topic", model.TopicBookingEvents)
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		log.Error("Notification worker stopped", "error", err)
		os.Exit(1)
	}
	log.Info("Notification worker stopped")
}
