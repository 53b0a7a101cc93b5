package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/benmeehan/gps-ingestor/internal/mocks"
	"github.com/benmeehan/gps-ingestor/internal/models"
	"github.com/benmeehan/gps-ingestor/internal/storage"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var noSuchKey = minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}

func TestObjectStoreRepository_Insert(t *testing.T) {
	mockClient := new(mocks.ObjectStoreAPI)
	mockClient.On("StatObject", mock.Anything, "gps", "gpslocations/123456ABC/a.json").
		Return(minio.ObjectInfo{}, noSuchKey)
	mockClient.On("PutObject", mock.Anything, "gps", "gpslocations/123456ABC/a.json",
		mock.MatchedBy(func(body []byte) bool {
			var rec models.LocationRecord
			return json.Unmarshal(body, &rec) == nil && rec.ID == "a" && rec.DeviceName == "123456ABC"
		}), mock.AnythingOfType("int64"), "application/json").
		Return(minio.UploadInfo{}, nil)

	repo := storage.NewObjectStoreRepository(mockClient, "gps", "gpslocations")
	err := repo.Insert(context.Background(), newRecord("a"))

	require.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestObjectStoreRepository_Insert_Duplicate(t *testing.T) {
	mockClient := new(mocks.ObjectStoreAPI)
	mockClient.On("StatObject", mock.Anything, "gps", "gpslocations/123456ABC/a.json").
		Return(minio.ObjectInfo{Key: "gpslocations/123456ABC/a.json"}, nil)

	repo := storage.NewObjectStoreRepository(mockClient, "gps", "gpslocations")
	err := repo.Insert(context.Background(), newRecord("a"))

	assert.True(t, errors.Is(err, storage.ErrDuplicateID))
	mockClient.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestObjectStoreRepository_Insert_StatFails(t *testing.T) {
	mockClient := new(mocks.ObjectStoreAPI)
	mockClient.On("StatObject", mock.Anything, "gps", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden})

	repo := storage.NewObjectStoreRepository(mockClient, "gps", "gpslocations")
	err := repo.Insert(context.Background(), newRecord("a"))

	assert.Error(t, err)
	assert.False(t, errors.Is(err, storage.ErrDuplicateID))
}

func TestObjectStoreRepository_Insert_PutFails(t *testing.T) {
	mockClient := new(mocks.ObjectStoreAPI)
	mockClient.On("StatObject", mock.Anything, "gps", mock.Anything).Return(minio.ObjectInfo{}, noSuchKey)
	mockClient.On("PutObject", mock.Anything, "gps", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("connection reset"))

	repo := storage.NewObjectStoreRepository(mockClient, "gps", "gpslocations")
	err := repo.Insert(context.Background(), newRecord("a"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestObjectStoreRepository_Ping(t *testing.T) {
	mockClient := new(mocks.ObjectStoreAPI)
	mockClient.On("BucketExists", mock.Anything, "gps").Return(true, nil).Once()
	mockClient.On("BucketExists", mock.Anything, "gps").Return(false, nil).Once()
	mockClient.On("BucketExists", mock.Anything, "gps").Return(false, errors.New("dial tcp: refused")).Once()

	repo := storage.NewObjectStoreRepository(mockClient, "gps", "gpslocations")

	assert.NoError(t, repo.Ping(context.Background()))
	assert.EqualError(t, repo.Ping(context.Background()), "bucket gps does not exist")
	assert.Contains(t, repo.Ping(context.Background()).Error(), "refused")
}

func TestOpen_S3WithoutEndpoint(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Options{Driver: storage.DriverS3, Bucket: "gps"})

	assert.EqualError(t, err, "object store endpoint is empty")
}

func TestOpen_S3(t *testing.T) {
	repo, err := storage.Open(context.Background(), storage.Options{
		Driver:     storage.DriverS3,
		Endpoint:   "localhost:9000",
		Bucket:     "gps",
		Collection: "gpslocations",
	})

	require.NoError(t, err)
	assert.IsType(t, &storage.ObjectStoreRepository{}, repo)
}
