package services

import (
	"context"
	"fmt"
	"time"

	"github.com/benmeehan/gps-ingestor/internal/constants"
	"github.com/benmeehan/gps-ingestor/internal/metrics_collectors"
	"github.com/benmeehan/gps-ingestor/internal/models"
	"github.com/benmeehan/gps-ingestor/internal/storage"
	"github.com/benmeehan/gps-ingestor/pkg/identity"
	"github.com/benmeehan/gps-ingestor/pkg/location"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocationService validates device readings and persists them.
// It holds no mutable state and is safe for concurrent use.
type LocationService struct {
	format     *identity.Format
	repository storage.LocationRepository
	metrics    *metrics_collectors.MetricsRegistry
	logger     zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewLocationService creates a LocationService. metrics may be nil.
func NewLocationService(format *identity.Format, repository storage.LocationRepository,
	metrics *metrics_collectors.MetricsRegistry, logger zerolog.Logger) *LocationService {
	return &LocationService{
		format:     format,
		repository: repository,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

// Format returns the identifier format device names are checked against.
func (l *LocationService) Format() *identity.Format {
	return l.format
}

// Submit validates a reading, stamps it with a fresh id and the server clock, and stores it.
// Identical readings submitted twice produce two records.
func (l *LocationService) Submit(ctx context.Context, req models.LocationRequest) (*models.LocationRecord, error) {
	deviceName, err := l.validateDeviceName(req.DeviceName)
	if err != nil {
		return nil, err
	}
	latitude, err := validateCoordinate("latitude", req.Latitude)
	if err != nil {
		return nil, err
	}
	longitude, err := validateCoordinate("longitude", req.Longitude)
	if err != nil {
		return nil, err
	}

	return l.store(ctx, deviceName, location.Location{Latitude: latitude, Longitude: longitude})
}

// SubmitNMEA stores the position carried by a single GGA, RMC or GLL sentence.
func (l *LocationService) SubmitNMEA(ctx context.Context, req models.NMEARequest) (*models.LocationRecord, error) {
	deviceName, err := l.validateDeviceName(req.DeviceName)
	if err != nil {
		return nil, err
	}

	sentence, ok := req.Sentence.(string)
	if !ok {
		return nil, validationError("sentence", constants.MessageInvalidNMEA, fmt.Errorf("sentence is %s", describe(req.Sentence)))
	}

	position, err := location.ParseSentence(sentence)
	if err != nil {
		return nil, validationError("sentence", constants.MessageInvalidNMEA, err)
	}

	return l.store(ctx, deviceName, position)
}

func (l *LocationService) validateDeviceName(v any) (string, error) {
	message := "Invalid input: deviceName must be " + l.format.Description

	deviceName, ok := v.(string)
	if !ok {
		return "", validationError("deviceName", message, fmt.Errorf("deviceName is %s", describe(v)))
	}
	if !l.format.Matches(deviceName) {
		return "", validationError("deviceName", message, fmt.Errorf("%q does not match %s", deviceName, l.format))
	}
	return deviceName, nil
}

// validateCoordinate accepts JSON numbers only. No range check is applied.
func validateCoordinate(field string, v any) (float64, error) {
	value, ok := v.(float64)
	if !ok {
		return 0, validationError(field, fmt.Sprintf("Invalid input: %s must be a number", field),
			fmt.Errorf("%s is %s", field, describe(v)))
	}
	return value, nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "missing or null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case float64:
		return "a number"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("of type %T", v)
	}
}

func (l *LocationService) store(ctx context.Context, deviceName string, position location.Location) (*models.LocationRecord, error) {
	record := &models.LocationRecord{
		ID:         l.newID(),
		DeviceName: deviceName,
		Latitude:   position.Latitude,
		Longitude:  position.Longitude,
		Timestamp:  l.now(),
	}

	started := time.Now()
	err := l.repository.Insert(ctx, record)
	l.metrics.ObserveStore(time.Since(started))
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("device_name", deviceName).
			Str("record_id", record.ID).
			Msg("Failed to store location record")
		return nil, &IngestError{Kind: KindStorage, Message: constants.MessageDatabaseError, Err: err}
	}

	l.logger.Debug().
		Str("device_name", deviceName).
		Str("record_id", record.ID).
		Msg("Location record stored")
	return record, nil
}
