package types

type RunMode string

const (
	// ModeLocal runs the worker with in-memory pub/sub
	ModeLocal RunMode = "local"
	// ModeWorker runs the temporal worker against external infrastructure
	ModeWorker RunMode = "worker"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// PubSubType selects the transport behind webhook and analytics publishing
type PubSubType string

const (
	PubSubTypeMemory PubSubType = "memory"
	PubSubTypeKafka  PubSubType = "kafka"
)
