package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/benmeehan/gps-ingestor/internal/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStoreAPI is the subset of the minio client the repository uses.
type ObjectStoreAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// ObjectStoreRepository stores each record as a JSON object in an S3 compatible bucket,
// under <prefix>/<deviceName>/<id>.json.
type ObjectStoreRepository struct {
	client ObjectStoreAPI
	bucket string
	prefix string
}

// NewObjectStoreRepository creates a new object store location repository.
func NewObjectStoreRepository(client ObjectStoreAPI, bucket, prefix string) *ObjectStoreRepository {
	return &ObjectStoreRepository{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// NewObjectStoreClient creates a minio client with static credentials.
func NewObjectStoreClient(endpoint, region, accessKeyID, secretAccessKey string, useSSL bool) (*minio.Client, error) {
	if endpoint == "" {
		return nil, errors.New("object store endpoint is empty")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

func (r *ObjectStoreRepository) objectName(record *models.LocationRecord) string {
	return path.Join(r.prefix, record.DeviceName, record.ID+".json")
}

// Insert writes the record unless an object with the same key already exists.
// The existence check and the write are two requests, so two concurrent inserts of
// one id can both succeed. Ids are random UUIDs, which keeps that from happening in practice.
func (r *ObjectStoreRepository) Insert(ctx context.Context, record *models.LocationRecord) error {
	name := r.objectName(record)

	_, err := r.client.StatObject(ctx, r.bucket, name, minio.StatObjectOptions{})
	if err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("failed to check object %s: %w", name, err)
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal location: %w", err)
	}

	_, err = r.client.PutObject(ctx, r.bucket, name, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to save location to bucket %s: %w", r.bucket, err)
	}
	return nil
}

// Ping checks that the bucket exists and the credentials can see it.
func (r *ObjectStoreRepository) Ping(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", r.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", r.bucket)
	}
	return nil
}

func (r *ObjectStoreRepository) Close(ctx context.Context) error {
	return nil
}
