package mocks

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/benmeehan/gps-ingestor/internal/models"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
)

// LocationRepository is a mock implementation of the storage.LocationRepository interface
type LocationRepository struct {
	mock.Mock
}

func (m *LocationRepository) Insert(ctx context.Context, record *models.LocationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *LocationRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *LocationRepository) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// DynamoDBAPI is a mock implementation of the storage.DynamoDBAPI interface
type DynamoDBAPI struct {
	mock.Mock
}

func (m *DynamoDBAPI) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*dynamodb.PutItemOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DynamoDBAPI) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*dynamodb.DescribeTableOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

// ObjectStoreAPI is a mock implementation of the storage.ObjectStoreAPI interface
type ObjectStoreAPI struct {
	mock.Mock
}

func (m *ObjectStoreAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *ObjectStoreAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *ObjectStoreAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
	opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	body, _ := io.ReadAll(reader)
	args := m.Called(ctx, bucketName, objectName, body, objectSize, opts.ContentType)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

// FileOperations is a mock implementation of the file.FileOperations interface
type FileOperations struct {
	mock.Mock
}

func (m *FileOperations) IsFileExists(filePath string) (bool, error) {
	args := m.Called(filePath)
	return args.Bool(0), args.Error(1)
}

func (m *FileOperations) ReadFileRaw(filePath string) ([]byte, error) {
	args := m.Called(filePath)
	if data := args.Get(0); data != nil {
		return data.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FileOperations) ReadYamlFile(filePath string, v any) error {
	args := m.Called(filePath, v)
	return args.Error(0)
}
