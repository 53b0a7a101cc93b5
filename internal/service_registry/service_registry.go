package service_registry

import (
	"errors"
	"fmt"

	"github.com/benmeehan/gps-ingestor/internal/metrics_collectors"
	"github.com/benmeehan/gps-ingestor/internal/services"
	"github.com/benmeehan/gps-ingestor/internal/storage"
	"github.com/benmeehan/gps-ingestor/internal/utils"
	"github.com/benmeehan/gps-ingestor/pkg/location"
	"github.com/benmeehan/gps-ingestor/pkg/mqtt"
	"github.com/rs/zerolog"
)

// Service is implemented by every component with a start/stop lifecycle.
type Service interface {
	Start() error
	Stop() error
}

// Dependencies are the shared components handed to the services.
type Dependencies struct {
	Locations  *services.LocationService
	Repository storage.LocationRepository
	Metrics    *metrics_collectors.MetricsRegistry // nil when metrics are disabled
	MQTTClient mqtt.MQTTClient                     // nil when MQTT ingestion is disabled
}

// ServiceRegistry manages the lifecycle of various services in the system.
type ServiceRegistry struct {
	services    map[string]Service // Stores registered services
	serviceKeys []string           // Maintains order of service registration
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes a new, empty service registry.
func NewServiceRegistry(logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[string]Service),
		Logger:   logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// Get returns a registered service by name.
func (sr *ServiceRegistry) Get(name string) (Service, bool) {
	svc, ok := sr.services[name]
	return svc, ok
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			// Stop already started services before returning
			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices initializes and registers enabled services based on configuration.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, deps Dependencies) error {
	if deps.Locations == nil || deps.Repository == nil {
		return errors.New("location service and repository are required")
	}

	// Ordered service definitions with inline constructors
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (Service, error)
	}{
		{
			name:    "mqtt_ingest",
			enabled: config.MQTT.Enabled,
			constructor: func() (Service, error) {
				if deps.MQTTClient == nil {
					return nil, errors.New("mqtt ingestion is enabled but no mqtt client was provided")
				}
				return services.NewMQTTIngestService(
					config.MQTT.Topic,
					config.MQTT.QOS,
					config.MQTT.Workers,
					config.MQTT.QueueSize,
					deps.MQTTClient,
					deps.Locations,
					deps.Metrics,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "serial_ingest",
			enabled: config.Serial.Enabled,
			constructor: func() (Service, error) {
				port := location.NewSerialPort(config.Serial.Port, config.Serial.BaudRate, config.Serial.ReadTimeout)
				return services.NewSerialIngestService(
					config.Serial.DeviceName,
					config.Serial.Interval,
					port.Open,
					deps.Locations,
					deps.Metrics,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "http",
			enabled: true,
			constructor: func() (Service, error) {
				opts := services.HTTPOptions{
					Addr:            config.Addr(),
					HomeMessage:     config.Server.HomeMessage,
					ReadTimeout:     config.Server.ReadTimeout,
					WriteTimeout:    config.Server.WriteTimeout,
					IdleTimeout:     config.Server.IdleTimeout,
					ShutdownTimeout: config.Server.ShutdownTimeout,
				}
				if config.Metrics.Enabled {
					opts.MetricsPath = config.Metrics.Path
				}
				return services.NewHTTPService(
					opts,
					deps.Locations,
					deps.Repository,
					deps.Metrics,
					sr.InitializeMiddlewares(config),
					sr.Logger,
				), nil
			},
		},
	}

	// Register services in the predefined order
	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if svc.enabled {
			serviceInstance, err := svc.constructor()
			if err != nil {
				sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
				return err
			}
			sr.RegisterService(svc.name, serviceInstance)
			registeredServices = append(registeredServices, svc.name)
		}
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}
