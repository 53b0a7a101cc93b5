package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/benmeehan/gps-ingestor/internal/constants"
	"github.com/benmeehan/gps-ingestor/internal/metrics_collectors"
	"github.com/benmeehan/gps-ingestor/internal/service_registry"
	"github.com/benmeehan/gps-ingestor/internal/services"
	"github.com/benmeehan/gps-ingestor/internal/storage"
	"github.com/benmeehan/gps-ingestor/internal/utils"
	"github.com/benmeehan/gps-ingestor/pkg/file"
	"github.com/benmeehan/gps-ingestor/pkg/mqtt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	configFile := flag.String("config", constants.DefaultConfigFile, "path to the YAML configuration file")
	flag.Parse()

	// Bootstrap logger until the configured one is available
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", constants.ServiceName).Logger()

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file and environment
	config, err := utils.LoadConfig(*configFile, fileClient)
	if err != nil {
		log.Fatal().Err(err).Str("file", *configFile).Msg("Failed to load configuration")
	}

	configured, err := utils.NewLogger(os.Stdout, config.Log.Level, config.Log.Pretty)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create logger")
	}
	log = configured

	format, err := config.DeviceNameFormat()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid device name format")
	}
	log.Info().
		Str("format", format.Name).
		Str("pattern", format.Pattern).
		Msg("Validating device names")

	repository := openRepository(config, log)

	var metrics *metrics_collectors.MetricsRegistry
	if config.Metrics.Enabled {
		metrics = metrics_collectors.NewMetricsRegistry()
	}

	locations := services.NewLocationService(format, repository, metrics, log)

	// Initialize the shared MQTT connection
	var mqttClient *mqtt.MqttService
	if config.MQTT.Enabled {
		// Generate a unique MQTT Client ID by appending a UUID
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		log.Info().Str("client_id", clientID).Msg("Using MQTT Client ID")

		mqttClient = mqtt.NewMqttService(fileClient)
		err = mqttClient.Initialize(mqtt.ConnectOptions{
			Broker:         config.MQTT.Broker,
			ClientID:       clientID,
			Username:       config.MQTT.Username,
			Password:       config.MQTT.Password,
			CACertificate:  config.MQTT.CACertificate,
			ConnectTimeout: config.MQTT.ConnectTimeout,
		})
		if err != nil {
			log.Fatal().Err(err).Str("broker", config.MQTT.Broker).Msg("Failed to initialize MQTT connection")
		}
	}

	deps := service_registry.Dependencies{
		Locations:  locations,
		Repository: repository,
		Metrics:    metrics,
	}
	if mqttClient != nil {
		deps.MQTTClient = mqttClient
	}

	// Create a new service registry to manage services
	serviceRegistry := service_registry.NewServiceRegistry(log)

	// Register all services based on the configuration
	if err := serviceRegistry.RegisterServices(config, deps); err != nil {
		log.Fatal().Err(err).Msg("Failed to register services")
	}

	// Start all registered services in the registry
	if err := serviceRegistry.StartServices(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start services")
	}
	log.Info().Str("addr", config.Addr()).Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stopCh

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")
	if err := serviceRegistry.StopServices(); err != nil {
		log.Error().Err(err).Msg("Failed to stop services cleanly")
	}
	if mqttClient != nil {
		mqttClient.Disconnect(constants.MQTTDisconnectQuiesce)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Database.ConnectTimeout)
	defer cancel()
	if err := repository.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close location store")
	}
}

// openRepository connects the configured store. A store that cannot be opened or
// pinged is logged and the server still starts; submissions then fail with storage errors.
func openRepository(config *utils.Config, log zerolog.Logger) storage.LocationRepository {
	storeLog := log.With().
		Str("driver", config.Database.Driver).
		Str("uri", utils.RedactURI(config.Database.URI)).
		Logger()

	ctx, cancel := context.WithTimeout(context.Background(), config.Database.ConnectTimeout)
	defer cancel()

	repository, err := storage.Open(ctx, config.StorageOptions())
	if err != nil {
		storeLog.Error().Err(err).Msg("Failed to open location store")
		return storage.NewUnavailableRepository(err)
	}

	if err := repository.Ping(ctx); err != nil {
		storeLog.Error().Err(err).Msg("Location store is not reachable")
		return repository
	}

	storeLog.Info().Msg("Connected to location store")
	return repository
}
