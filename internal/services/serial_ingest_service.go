package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/benmeehan/gps-ingestor/internal/constants"
	"github.com/benmeehan/gps-ingestor/internal/metrics_collectors"
	"github.com/benmeehan/gps-ingestor/internal/models"
	"github.com/benmeehan/gps-ingestor/pkg/location"
	"github.com/rs/zerolog"
)

// PortOpener opens the stream a GPS receiver writes NMEA sentences to.
type PortOpener func() (io.ReadCloser, error)

// SerialIngestService stores fixes from a GPS receiver attached to the host,
// under a single configured device name.
type SerialIngestService struct {
	// Configuration fields
	deviceName string
	interval   time.Duration // Minimum spacing between stored fixes, zero stores every fix

	// Dependencies
	open      PortOpener
	locations *LocationService
	metrics   *metrics_collectors.MetricsRegistry
	logger    zerolog.Logger

	// Internal state management
	ctx    context.Context
	cancel context.CancelFunc
	port   io.ReadCloser
	wg     sync.WaitGroup
}

// NewSerialIngestService creates a new SerialIngestService instance. metrics may be nil.
func NewSerialIngestService(deviceName string, interval time.Duration, open PortOpener,
	locations *LocationService, metrics *metrics_collectors.MetricsRegistry, logger zerolog.Logger) *SerialIngestService {
	return &SerialIngestService{
		deviceName: deviceName,
		interval:   interval,
		open:       open,
		locations:  locations,
		metrics:    metrics,
		logger:     logger,
	}
}

// Start opens the port and reads fixes in a separate goroutine.
func (s *SerialIngestService) Start() error {
	if s.ctx != nil {
		s.logger.Warn().Msg("SerialIngestService is already running")
		return errors.New("serial ingest service is already running")
	}

	port, err := s.open()
	if err != nil {
		return fmt.Errorf("failed to open gps receiver: %w", err)
	}

	s.port = port
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.readLoop(s.ctx, port)
	}()

	s.logger.Info().Str("device_name", s.deviceName).Msg("SerialIngestService started successfully")
	return nil
}

// Stop closes the port and waits for the reader to exit.
func (s *SerialIngestService) Stop() error {
	if s.ctx == nil {
		s.logger.Warn().Msg("SerialIngestService is not running")
		return errors.New("serial ingest service is not running")
	}

	s.cancel()
	if err := s.port.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to close gps receiver")
	}
	s.wg.Wait()

	s.ctx = nil
	s.cancel = nil
	s.port = nil

	s.logger.Info().Msg("SerialIngestService stopped successfully")
	return nil
}

// readLoop scans until Stop. A port opened with a read timeout reports an idle receiver
// as end of stream, so scanning restarts after a short pause instead of ending.
func (s *SerialIngestService) readLoop(ctx context.Context, port io.Reader) {
	var last time.Time

	store := func(line string, _ location.Location) bool {
		if ctx.Err() != nil {
			return false
		}
		if !last.IsZero() && time.Since(last) < s.interval {
			return true
		}

		record, err := s.locations.SubmitNMEA(ctx, models.NMEARequest{DeviceName: s.deviceName, Sentence: line})
		s.metrics.ObserveSubmission(constants.TransportSerial, outcome(err))
		if err != nil {
			if IsValidation(err) {
				s.logger.Warn().Err(err).Msg("Discarding receiver fix")
			}
			return true
		}

		last = time.Now()
		s.logger.Debug().Str("record_id", record.ID).Msg("Receiver fix stored")
		return true
	}

	for {
		err := location.ScanFixes(port, store)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("GPS receiver read failed, serial ingestion stopped")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(constants.SerialIdleBackoff):
		}
	}
}
