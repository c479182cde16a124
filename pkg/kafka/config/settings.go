package kafka_config

import "time"

// Environment variables and their fallbacks, grouped per setting so a
// reader can see at a glance what each knob controls and where it lands
// without the broker.

const (
	EnvKafkaBrokers     = "KAFKA_BROKERS"
	DefaultKafkaBrokers = "localhost:9092"
)

// Producer tuning.
const (
	EnvKafkaProducerMaxAttempts = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	DefaultProducerMaxAttempts  = 3

	EnvKafkaProducerBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	DefaultProducerBatchTimeout  = 10 * time.Millisecond

	EnvKafkaProducerRequireAcks = "KAFKA_PRODUCER_REQUIRE_ACKS"
	DefaultProducerRequireAcks  = -1 // wait for all in-sync replicas

	EnvKafkaProducerCompression = "KAFKA_PRODUCER_COMPRESSION"
	DefaultProducerCompression  = "snappy"

	EnvKafkaProducerAsync = "KAFKA_PRODUCER_ASYNC"
	DefaultProducerAsync  = false
)

// Consumer tuning.
const (
	EnvKafkaConsumerStartOffset = "KAFKA_CONSUMER_START_OFFSET"
	DefaultConsumerStartOffset  = -1 // start at newest

	EnvKafkaConsumerMinBytes = "KAFKA_CONSUMER_MIN_BYTES"
	DefaultConsumerMinBytes  = 1

	EnvKafkaConsumerMaxBytes = "KAFKA_CONSUMER_MAX_BYTES"
	DefaultConsumerMaxBytes  = 10 * 1024 * 1024

	EnvKafkaConsumerMaxWait = "KAFKA_CONSUMER_MAX_WAIT"
	DefaultConsumerMaxWait  = 500 * time.Millisecond

	EnvKafkaConsumerCommitInterval = "KAFKA_CONSUMER_COMMIT_INTERVAL"
	DefaultConsumerCommitInterval  = 1 * time.Second

	EnvKafkaConsumerHeartbeatInterval = "KAFKA_CONSUMER_HEARTBEAT_INTERVAL"
	DefaultConsumerHeartbeatInterval  = 3 * time.Second

	EnvKafkaConsumerSessionTimeout = "KAFKA_CONSUMER_SESSION_TIMEOUT"
	DefaultConsumerSessionTimeout  = 10 * time.Second

	EnvKafkaConsumerRebalanceTimeout = "KAFKA_CONSUMER_REBALANCE_TIMEOUT"
	DefaultConsumerRebalanceTimeout  = 60 * time.Second

	EnvKafkaConsumerMaxRetries = "KAFKA_CONSUMER_MAX_RETRIES"
	DefaultConsumerMaxRetries  = 3
)
