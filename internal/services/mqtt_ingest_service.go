package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benmeehan/gps-ingestor/internal/constants"
	"github.com/benmeehan/gps-ingestor/internal/metrics_collectors"
	"github.com/benmeehan/gps-ingestor/internal/models"
	"github.com/benmeehan/gps-ingestor/internal/utils"
	"github.com/benmeehan/gps-ingestor/pkg/mqtt"
	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// MQTTIngestService subscribes to device readings published over MQTT and
// submits each one like a POST /location body.
type MQTTIngestService struct {
	// Configuration fields
	topic     string
	qos       int
	workers   int
	queueSize int

	// Dependencies
	mqttClient mqtt.MQTTClient
	locations  *LocationService
	metrics    *metrics_collectors.MetricsRegistry
	logger     zerolog.Logger

	// Internal state management
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	pool   *utils.WorkerPool
}

// NewMQTTIngestService creates a new MQTTIngestService instance. metrics may be nil.
func NewMQTTIngestService(topic string, qos, workers, queueSize int, mqttClient mqtt.MQTTClient,
	locations *LocationService, metrics *metrics_collectors.MetricsRegistry, logger zerolog.Logger) *MQTTIngestService {
	return &MQTTIngestService{
		topic:      topic,
		qos:        qos,
		workers:    workers,
		queueSize:  queueSize,
		mqttClient: mqttClient,
		locations:  locations,
		metrics:    metrics,
		logger:     logger,
	}
}

// Start subscribes to the readings topic.
func (m *MQTTIngestService) Start() error {
	m.mu.Lock()
	if m.ctx != nil {
		m.mu.Unlock()
		m.logger.Warn().Msg("MQTTIngestService is already running")
		return errors.New("mqtt ingest service is already running")
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.pool = utils.NewWorkerPool(m.workers, m.queueSize, m.logger)
	m.mu.Unlock()

	token := m.mqttClient.Subscribe(m.topic, byte(m.qos), m.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		m.reset()
		return fmt.Errorf("failed to subscribe to %s: %w", m.topic, err)
	}

	m.logger.Info().Str("topic", m.topic).Msg("MQTTIngestService started successfully")
	return nil
}

// Stop unsubscribes and waits for readings already received to be stored.
func (m *MQTTIngestService) Stop() error {
	m.mu.RLock()
	running := m.ctx != nil
	m.mu.RUnlock()
	if !running {
		m.logger.Warn().Msg("MQTTIngestService is not running")
		return errors.New("mqtt ingest service is not running")
	}

	token := m.mqttClient.Unsubscribe(m.topic)
	token.Wait()
	if err := token.Error(); err != nil {
		m.logger.Error().Err(err).Str("topic", m.topic).Msg("Failed to unsubscribe")
	}

	m.reset()

	m.logger.Info().Msg("MQTTIngestService stopped successfully")
	return nil
}

func (m *MQTTIngestService) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pool.Shutdown()
	m.cancel()

	m.pool = nil
	m.ctx = nil
	m.cancel = nil
}

// handleMessage runs on the paho router goroutine and only queues work.
func (m *MQTTIngestService) handleMessage(_ mqttLib.Client, msg mqttLib.Message) {
	topic := msg.Topic()
	payload := append([]byte(nil), msg.Payload()...)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.pool == nil {
		m.logger.Warn().Str("topic", topic).Msg("Dropping reading received while stopped")
		return
	}
	ctx := m.ctx
	m.pool.Submit(func() {
		m.process(ctx, topic, payload)
	})
}

func (m *MQTTIngestService) process(ctx context.Context, topic string, payload []byte) {
	var req models.LocationRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		m.metrics.ObserveSubmission(constants.TransportMQTT, metrics_collectors.OutcomeInvalid)
		m.logger.Warn().Err(err).Str("topic", topic).Msg("Discarding malformed reading")
		return
	}

	record, err := m.locations.Submit(ctx, req)
	m.metrics.ObserveSubmission(constants.TransportMQTT, outcome(err))
	if err != nil {
		if IsValidation(err) {
			m.logger.Warn().Err(err).Str("topic", topic).Msg("Discarding invalid reading")
		}
		return
	}

	m.logger.Debug().
		Str("topic", topic).
		Str("record_id", record.ID).
		Msg("Reading stored from MQTT")
}
