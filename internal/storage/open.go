package storage

import (
	"context"
	"fmt"
)

// Supported drivers
const (
	DriverMongoDB  = "mongodb"
	DriverDynamoDB = "dynamodb"
	DriverMemory   = "memory"
	DriverS3       = "s3"
)

// Options selects and configures a repository backend.
type Options struct {
	Driver     string
	URI        string // mongodb connection string
	Database   string // mongodb database
	Collection string // mongodb collection, s3 key prefix
	Table      string // dynamodb table
	Region     string // dynamodb and s3 region, empty for the default
	Endpoint   string // dynamodb endpoint override, s3 host:port
	Bucket     string // s3 bucket
	AccessKey  string // s3 access key id
	SecretKey  string // s3 secret access key
	UseSSL     bool   // s3 over https
}

// Open builds the repository for opts.Driver. It does not check reachability; call Ping for that.
func Open(ctx context.Context, opts Options) (LocationRepository, error) {
	switch opts.Driver {
	case DriverMongoDB:
		return NewMongoRepository(ctx, opts.URI, opts.Database, opts.Collection)
	case DriverDynamoDB:
		client, err := NewDynamoDBClient(ctx, opts.Region, opts.Endpoint)
		if err != nil {
			return nil, err
		}
		return NewDynamoDBRepository(client, opts.Table), nil
	case DriverS3:
		client, err := NewObjectStoreClient(opts.Endpoint, opts.Region, opts.AccessKey, opts.SecretKey, opts.UseSSL)
		if err != nil {
			return nil, err
		}
		return NewObjectStoreRepository(client, opts.Bucket, opts.Collection), nil
	case DriverMemory:
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
