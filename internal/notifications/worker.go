package notifications

import (
	"context"

	"petsitter/pkg/kafka"
	kafka_config "petsitter/pkg/kafka/config"
	kafka_middleware "petsitter/pkg/kafka/middleware"
	"petsitter/pkg/logger"
)

const (
	ConsumerGroup = "notifier"
)

// Worker consumes the booking events topic and hands each event to the
// dispatcher. Consumption is at-least-once; poisoned events end up on
// the DLQ topic.
type Worker struct {
	consumer *kafka.Consumer
	log      *logger.Logger
}

func NewWorker(cfg *kafka_config.Config, topic, dlqTopic string, log *logger.Logger) (*Worker, error) {
	dispatcher := NewDispatcher(log)

	consumer, err := kafka.NewConsumer(cfg, topic, ConsumerGroup, dlqTopic, dispatcher.Handle, log)
	if err != nil {
		return nil, err
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware())

	return &Worker{
		consumer: consumer,
		log:      log,
	}, nil
}

func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Notification worker started", "group", ConsumerGroup)
	return w.consumer.Start(ctx)
}

func (w *Worker) Close() error {
	return w.consumer.Close()
}
