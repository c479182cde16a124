package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"petsitter/pkg/kafka"
)

// Metrics counts publish/consume outcomes process-wide. Durations are
// summed in nanoseconds; divide by the success count for the average.
type Metrics struct {
	MessagesPublished       int64
	MessagesPublishedFailed int64
	PublishDurationTotal    int64

	MessagesConsumed       int64
	MessagesConsumedFailed int64
	ConsumeDurationTotal   int64
}

var globalMetrics = &Metrics{}

func GetMetrics() *Metrics {
	return globalMetrics
}

// Reset zeroes all counters. Test helper.
func (m *Metrics) Reset() {
	for _, counter := range []*int64{
		&m.MessagesPublished, &m.MessagesPublishedFailed, &m.PublishDurationTotal,
		&m.MessagesConsumed, &m.MessagesConsumedFailed, &m.ConsumeDurationTotal,
	} {
		atomic.StoreInt64(counter, 0)
	}
}

func (m *Metrics) GetAvgPublishDuration() time.Duration {
	return avgDuration(&m.PublishDurationTotal, &m.MessagesPublished)
}

func (m *Metrics) GetAvgConsumeDuration() time.Duration {
	return avgDuration(&m.ConsumeDurationTotal, &m.MessagesConsumed)
}

func avgDuration(total, count *int64) time.Duration {
	n := atomic.LoadInt64(count)
	if n == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(total) / n)
}

func record(durationTotal, success, failure *int64, elapsed time.Duration, err error) {
	atomic.AddInt64(durationTotal, int64(elapsed))
	if err != nil {
		atomic.AddInt64(failure, 1)
	} else {
		atomic.AddInt64(success, 1)
	}
}

// MetricsProducerMiddleware counts publish outcomes and latency.
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		record(&globalMetrics.PublishDurationTotal,
			&globalMetrics.MessagesPublished,
			&globalMetrics.MessagesPublishedFailed,
			time.Since(start), err)
		return err
	}
}

// MetricsConsumerMiddleware counts handler outcomes and latency.
func MetricsConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		record(&globalMetrics.ConsumeDurationTotal,
			&globalMetrics.MessagesConsumed,
			&globalMetrics.MessagesConsumedFailed,
			time.Since(start), err)
		return err
	}
}
