package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/benmeehan/gps-ingestor/internal/models"
)

// DynamoDBAPI is the subset of the DynamoDB client the repository uses.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoDBRepository stores records as items of a DynamoDB table keyed by "id".
type DynamoDBRepository struct {
	client    DynamoDBAPI
	tableName string
}

// NewDynamoDBRepository creates a new DynamoDB location repository
func NewDynamoDBRepository(client DynamoDBAPI, tableName string) *DynamoDBRepository {
	return &DynamoDBRepository{
		client:    client,
		tableName: tableName,
	}
}

// NewDynamoDBClient loads the default AWS configuration chain.
// endpoint overrides the service URL, e.g. for DynamoDB Local.
func NewDynamoDBClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// Insert stores a location in DynamoDB
func (r *DynamoDBRepository) Insert(ctx context.Context, record *models.LocationRecord) error {
	if r.client == nil {
		return fmt.Errorf("DynamoDB client not initialized")
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal location: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var conditionFailed *dynamodbtypes.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
		}
		return fmt.Errorf("failed to save location to DynamoDB: %w", err)
	}

	return nil
}

// Ping describes the table, which fails when it is missing or the credentials are wrong.
func (r *DynamoDBRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("DynamoDB client not initialized")
	}

	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return fmt.Errorf("failed to describe DynamoDB table %s: %w", r.tableName, err)
	}
	return nil
}

func (r *DynamoDBRepository) Close(ctx context.Context) error {
	return nil
}
