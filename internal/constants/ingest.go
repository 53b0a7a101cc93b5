package constants

import "time"

const (
	// ServiceName is attached to every log line.
	ServiceName = "gps-ingestor"

	// DefaultConfigFile is read when no -config flag is given.
	DefaultConfigFile = "configs/config.yaml"

	// MaxBodyBytes caps request bodies at 100 KiB.
	MaxBodyBytes = 100 << 10

	// HealthCheckTimeout bounds the store ping behind /healthz.
	HealthCheckTimeout = 2 * time.Second

	// MQTTDisconnectQuiesce is how long, in milliseconds, paho may spend finishing work on disconnect.
	MQTTDisconnectQuiesce = 250

	// SerialIdleBackoff is the pause before reading again after a receiver read times out empty.
	SerialIdleBackoff = 100 * time.Millisecond
)

// Client facing messages
const (
	MessageSaved         = "GPS data saved"
	MessageDatabaseError = "Database error"
	MessageInvalidBody   = "Invalid input: request body must be a JSON object"
	MessageBodyTooLarge  = "Request body too large"
	MessageInvalidNMEA   = "Invalid input: sentence must be a GGA, RMC or GLL sentence with a position fix"
)

// Transports a reading can arrive on
const (
	TransportHTTP   = "http"
	TransportMQTT   = "mqtt"
	TransportSerial = "serial"
)

// Health statuses
const (
	HealthStatusOK          = "ok"
	HealthStatusUnavailable = "unavailable"
)
