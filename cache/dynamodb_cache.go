package cache

import (
	"context"
	"errors"
	"time"

	"github.com/ammiranda/feed_service/logger"
	"github.com/ammiranda/feed_service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// DefaultTableName is the DynamoDB table used when none is configured
	DefaultTableName = "FeedTreeCache"
	dynamoTreeKey    = "tree"
)

// DynamoDBAPI defines the interface for DynamoDB operations
type DynamoDBAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// CacheItem is the stored form of a cached snapshot
type CacheItem struct {
	Key       string           `dynamodbav:"key"`
	Data      *models.NodeView `dynamodbav:"data"`
	Timestamp int64            `dynamodbav:"timestamp"`
	TTL       int64            `dynamodbav:"ttl"`
}

// DynamoDBCache implements CacheProvider using DynamoDB
type DynamoDBCache struct {
	client    DynamoDBAPI
	tableName string
	cacheTTL  time.Duration
	log       *logger.Logger
}

// NewDynamoDBCache creates a new DynamoDB cache provider using the default AWS configuration
func NewDynamoDBCache(tableName string) (*DynamoDBCache, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, err
	}
	return NewDynamoDBCacheWithClient(dynamodb.NewFromConfig(cfg), tableName), nil
}

// NewDynamoDBCacheWithClient creates a new DynamoDB cache provider with a custom client
func NewDynamoDBCacheWithClient(client DynamoDBAPI, tableName string) *DynamoDBCache {
	if tableName == "" {
		tableName = DefaultTableName
	}
	return &DynamoDBCache{
		client:    client,
		tableName: tableName,
		cacheTTL:  DefaultTTL,
		log:       logger.New().WithComponent("dynamodb_cache"),
	}
}

// Initialize creates the DynamoDB table if it doesn't exist
func (c *DynamoDBCache) Initialize() error {
	ctx := context.TODO()

	_, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.tableName),
	})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return err
	}

	_, err = c.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(c.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("key"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("key"),
				KeyType:       types.KeyTypeHash,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	return err
}

func (c *DynamoDBCache) itemKey() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: dynamoTreeKey},
	}
}

// GetTree retrieves the snapshot from DynamoDB if available
func (c *DynamoDBCache) GetTree() (*models.NodeView, bool) {
	ctx := context.TODO()

	result, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.itemKey(),
	})
	if err != nil {
		c.log.Error(err, "error reading tree from dynamodb")
		return nil, false
	}
	if result.Item == nil {
		return nil, false
	}

	var item CacheItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		c.log.Error(err, "error decoding cached tree")
		return nil, false
	}

	// Expired items are removed eagerly, DynamoDB TTL deletion is not immediate
	if time.Now().Unix() > item.TTL {
		c.InvalidateCache()
		return nil, false
	}
	return item.Data, item.Data != nil
}

// SetTree stores the snapshot in DynamoDB
func (c *DynamoDBCache) SetTree(tree *models.NodeView) {
	ctx := context.TODO()
	now := time.Now()

	av, err := attributevalue.MarshalMap(CacheItem{
		Key:       dynamoTreeKey,
		Data:      tree,
		Timestamp: now.Unix(),
		TTL:       now.Add(c.cacheTTL).Unix(),
	})
	if err != nil {
		c.log.Error(err, "error encoding tree for dynamodb")
		c.InvalidateCache()
		return
	}

	if _, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      av,
	}); err != nil {
		c.log.Error(err, "error writing tree to dynamodb")
		c.InvalidateCache()
	}
}

// InvalidateCache removes the snapshot from DynamoDB
func (c *DynamoDBCache) InvalidateCache() {
	_, err := c.client.DeleteItem(context.Background(), &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.itemKey(),
	})
	if err != nil {
		c.log.Error(err, "error invalidating dynamodb cache")
	}
}

// SetCacheTTL sets the cache time-to-live duration
func (c *DynamoDBCache) SetCacheTTL(ttl time.Duration) {
	c.cacheTTL = ttl
}
