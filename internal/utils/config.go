package utils

import (
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/benmeehan/gps-ingestor/internal/storage"
	"github.com/benmeehan/gps-ingestor/pkg/file"
	"github.com/benmeehan/gps-ingestor/pkg/identity"
)

// Environment variables that override the configuration file.
const (
	EnvMongoURI         = "MONGO_URI"
	EnvPort             = "PORT"
	EnvDeviceNameFormat = "DEVICE_NAME_FORMAT"
	EnvLogLevel         = "LOG_LEVEL"
)

// Routes served by the HTTP service regardless of configuration.
var reservedPaths = []string{"/", "/location", "/location/nmea", "/healthz"}

// Config represents the structure of the configuration file.
type Config struct {
	Server struct {
		Host            string        `yaml:"host"`             // Interface to bind, empty for all
		Port            int           `yaml:"port"`             // Listening port
		HomeMessage     string        `yaml:"home_message"`     // Plain text served on GET /, route disabled when empty
		ReadTimeout     time.Duration `yaml:"read_timeout"`     // Maximum duration for reading a request
		WriteTimeout    time.Duration `yaml:"write_timeout"`    // Maximum duration before timing out a response write
		IdleTimeout     time.Duration `yaml:"idle_timeout"`     // Keep-alive idle timeout
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // Grace period for in-flight requests on stop
		AccessLog       bool          `yaml:"access_log"`       // Log one line per request
	} `yaml:"server"`

	Database struct {
		Driver         string        `yaml:"driver"`          // mongodb, dynamodb, s3 or memory
		URI            string        `yaml:"uri"`             // MongoDB connection string
		Name           string        `yaml:"name"`            // MongoDB database name
		Collection     string        `yaml:"collection"`      // MongoDB collection name, S3 key prefix
		Table          string        `yaml:"table"`           // DynamoDB table name
		Region         string        `yaml:"region"`          // AWS region for DynamoDB and S3
		Endpoint       string        `yaml:"endpoint"`        // DynamoDB endpoint override, S3 host:port
		Bucket         string        `yaml:"bucket"`          // S3 bucket name
		AccessKey      string        `yaml:"access_key"`      // S3 access key id
		SecretKey      string        `yaml:"secret_key"`      // S3 secret access key
		UseSSL         bool          `yaml:"use_ssl"`         // Connect to S3 over https
		ConnectTimeout time.Duration `yaml:"connect_timeout"` // Bound on the startup connect and ping
	} `yaml:"database"`

	Validation struct {
		DeviceNameFormat      string `yaml:"device_name_format"`      // Built-in identifier format
		DeviceNamePattern     string `yaml:"device_name_pattern"`     // Custom pattern, overrides the built-in format
		DeviceNameDescription string `yaml:"device_name_description"` // Human readable rule for the custom pattern
	} `yaml:"validation"`

	MQTT struct {
		Enabled        bool          `yaml:"enabled"`         // Enable/disable MQTT ingestion
		Broker         string        `yaml:"broker"`          // MQTT broker address
		ClientID       string        `yaml:"client_id"`       // MQTT client ID
		Username       string        `yaml:"username"`        // Optional broker username
		Password       string        `yaml:"password"`        // Optional broker password
		CACertificate  string        `yaml:"ca_certificate"`  // Path to the CA certificate, enables TLS
		Topic          string        `yaml:"topic"`           // Topic filter readings are published on
		QOS            int           `yaml:"qos"`             // MQTT QoS level for the subscription
		Workers        int           `yaml:"workers"`         // Concurrent message handlers
		QueueSize      int           `yaml:"queue_size"`      // Messages buffered ahead of the workers
		ConnectTimeout time.Duration `yaml:"connect_timeout"` // Broker connect timeout
	} `yaml:"mqtt"`

	Serial struct {
		Enabled     bool          `yaml:"enabled"`      // Read fixes from a locally attached GPS receiver
		Port        string        `yaml:"port"`         // Serial device, e.g. /dev/ttyUSB0
		BaudRate    int           `yaml:"baud_rate"`    // Receiver baud rate
		ReadTimeout time.Duration `yaml:"read_timeout"` // Zero blocks until data arrives
		DeviceName  string        `yaml:"device_name"`  // Identifier the fixes are stored under
		Interval    time.Duration `yaml:"interval"`     // Minimum spacing between stored fixes
	} `yaml:"serial"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"` // Expose Prometheus metrics
		Path    string `yaml:"path"`    // HTTP path of the metrics endpoint
	} `yaml:"metrics"`

	Log struct {
		Level  string `yaml:"level"`  // zerolog level name
		Pretty bool   `yaml:"pretty"` // Human readable console output instead of JSON
	} `yaml:"log"`
}

// DefaultConfig returns the configuration used for keys absent from the file.
func DefaultConfig() *Config {
	var config Config

	config.Server.Port = 3000
	config.Server.ReadTimeout = 15 * time.Second
	config.Server.WriteTimeout = 15 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.ShutdownTimeout = 10 * time.Second
	config.Server.AccessLog = true

	config.Database.Driver = storage.DriverMongoDB
	config.Database.Name = "gps"
	config.Database.Collection = "gpslocations"
	config.Database.Table = "gps_locations"
	config.Database.ConnectTimeout = 10 * time.Second

	config.Validation.DeviceNameFormat = identity.FormatDigitsLetters

	config.MQTT.ClientID = "gps-ingestor"
	config.MQTT.Topic = "devices/+/location"
	config.MQTT.QOS = 1
	config.MQTT.Workers = 4
	config.MQTT.QueueSize = 64
	config.MQTT.ConnectTimeout = 10 * time.Second

	config.Serial.BaudRate = 9600
	config.Serial.Interval = 5 * time.Second

	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"

	config.Log.Level = "info"

	return &config
}

// LoadConfig loads the YAML configuration from the specified file on top of the defaults,
// then applies environment overrides. A missing file is not an error.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	config := DefaultConfig()

	exists, err := fileClient.IsFileExists(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", filename, err)
	}
	if exists {
		if err := fileClient.ReadYamlFile(filename, config); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
		}
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnv overrides configuration keys from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvMongoURI); ok {
		c.Database.URI = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvPort); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvDeviceNameFormat); ok && strings.TrimSpace(v) != "" {
		c.Validation.DeviceNameFormat = strings.TrimSpace(v)
		c.Validation.DeviceNamePattern = ""
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.Log.Level = strings.TrimSpace(v)
	}
	return nil
}

// Validate checks the configuration for values the services cannot start with.
// An empty or malformed database URI passes; it surfaces as storage errors at runtime.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	switch c.Database.Driver {
	case storage.DriverMongoDB, storage.DriverDynamoDB, storage.DriverMemory:
	case storage.DriverS3:
		if c.Database.Bucket == "" {
			errs = append(errs, errors.New("database.bucket is required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not one of mongodb, dynamodb, s3, memory", c.Database.Driver))
	}

	format, err := c.DeviceNameFormat()
	if err != nil {
		errs = append(errs, err)
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, errors.New("mqtt.broker is required when mqtt is enabled"))
		}
		if c.MQTT.Topic == "" {
			errs = append(errs, errors.New("mqtt.topic is required when mqtt is enabled"))
		}
		if c.MQTT.QOS < 0 || c.MQTT.QOS > 2 {
			errs = append(errs, fmt.Errorf("mqtt.qos %d must be 0, 1 or 2", c.MQTT.QOS))
		}
		if c.MQTT.Workers < 1 {
			errs = append(errs, fmt.Errorf("mqtt.workers %d must be at least 1", c.MQTT.Workers))
		}
	}

	if c.Serial.Enabled {
		if c.Serial.Port == "" {
			errs = append(errs, errors.New("serial.port is required when serial is enabled"))
		}
		if c.Serial.BaudRate <= 0 {
			errs = append(errs, fmt.Errorf("serial.baud_rate %d must be positive", c.Serial.BaudRate))
		}
		if format != nil && !format.Matches(c.Serial.DeviceName) {
			errs = append(errs, fmt.Errorf("serial.device_name %q does not match %s", c.Serial.DeviceName, format))
		}
	}

	if c.Metrics.Enabled {
		switch {
		case !strings.HasPrefix(c.Metrics.Path, "/"):
			errs = append(errs, fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path))
		case slices.Contains(reservedPaths, c.Metrics.Path):
			errs = append(errs, fmt.Errorf("metrics.path %q collides with an ingest route", c.Metrics.Path))
		}
	}

	return errors.Join(errs...)
}

// DeviceNameFormat resolves the configured identifier format.
func (c *Config) DeviceNameFormat() (*identity.Format, error) {
	if c.Validation.DeviceNamePattern != "" {
		return identity.NewFormat(identity.FormatCustom, c.Validation.DeviceNamePattern, c.Validation.DeviceNameDescription)
	}
	return identity.LookupFormat(c.Validation.DeviceNameFormat)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// StorageOptions maps the database section onto repository options.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:     c.Database.Driver,
		URI:        c.Database.URI,
		Database:   c.Database.Name,
		Collection: c.Database.Collection,
		Table:      c.Database.Table,
		Region:     c.Database.Region,
		Endpoint:   c.Database.Endpoint,
		Bucket:     c.Database.Bucket,
		AccessKey:  c.Database.AccessKey,
		SecretKey:  c.Database.SecretKey,
		UseSSL:     c.Database.UseSSL,
	}
}
