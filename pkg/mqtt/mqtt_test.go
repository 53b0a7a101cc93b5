package mqtt_test

import (
	"errors"
	"testing"

	"github.com/benmeehan/gps-ingestor/internal/mocks"
	"github.com/benmeehan/gps-ingestor/pkg/mqtt"
	"github.com/stretchr/testify/assert"
)

func TestMqttService_Initialize_EmptyBroker(t *testing.T) {
	mockFileClient := new(mocks.FileOperations)
	s := mqtt.NewMqttService(mockFileClient)

	err := s.Initialize(mqtt.ConnectOptions{ClientID: "ingestor"})

	assert.EqualError(t, err, "mqtt broker address is empty")
	mockFileClient.AssertNotCalled(t, "ReadFileRaw")
}

func TestMqttService_Initialize_CACertificateReadFails(t *testing.T) {
	mockFileClient := new(mocks.FileOperations)
	mockFileClient.On("ReadFileRaw", "/etc/ingestor/ca.pem").Return(nil, errors.New("permission denied"))

	s := mqtt.NewMqttService(mockFileClient)
	err := s.Initialize(mqtt.ConnectOptions{
		Broker:        "ssl://broker.local:8883",
		ClientID:      "ingestor",
		CACertificate: "/etc/ingestor/ca.pem",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read CA certificate")
	mockFileClient.AssertExpectations(t)
}

func TestMqttService_Initialize_InvalidCACertificate(t *testing.T) {
	mockFileClient := new(mocks.FileOperations)
	mockFileClient.On("ReadFileRaw", "ca.pem").Return([]byte("not a certificate"), nil)

	s := mqtt.NewMqttService(mockFileClient)
	err := s.Initialize(mqtt.ConnectOptions{
		Broker:        "ssl://broker.local:8883",
		ClientID:      "ingestor",
		CACertificate: "ca.pem",
	})

	assert.EqualError(t, err, "failed to append CA certificate")
	mockFileClient.AssertExpectations(t)
}
