package cloud

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// IndexMirror mirrors the opaque index.bin envelope (the JSON-marshaled
// outer envelope the vaultindex package already produces) into DynamoDB,
// so a second device can pull the latest index and merge. The mirror
// never decrypts anything; it moves bytes and enforces optimistic
// concurrency on a monotonic version counter.
type IndexMirror struct {
	client    *dynamodb.Client
	tableName string
	vaultID   string
}

type indexMirrorItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	IndexBlob  string `dynamodbav:"index_blob"`
	Version    int64  `dynamodbav:"version"`
	ModifiedAt string `dynamodbav:"modified_at"`
	DeviceID   string `dynamodbav:"device_id"`
}

// NewIndexMirror creates a mirror client for the given table and vault
// identifier, loading AWS config the standard way (environment, shared
// config, or instance role).
func NewIndexMirror(ctx context.Context, tableName, vaultID string) (*IndexMirror, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("cloud: loading aws config: %w", err)
	}
	return &IndexMirror{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
		vaultID:   vaultID,
	}, nil
}

// deviceID identifies which device last wrote the mirror, purely for
// observability; it plays no role in conflict resolution.
func deviceID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

// Push writes indexBlob (the raw bytes that would otherwise be written
// to index.bin) under a conditional PutItem so a concurrent writer's
// newer version can never be silently overwritten (§4.6 Conflict).
func (m *IndexMirror) Push(ctx context.Context, indexBlob []byte, expectedVersion, newVersion int64, modifiedAt string) error {
	item := indexMirrorItem{
		PK:         fmt.Sprintf("VAULT#%s", m.vaultID),
		SK:         "INDEX",
		IndexBlob:  string(indexBlob),
		Version:    newVersion,
		ModifiedAt: modifiedAt,
		DeviceID:   deviceID(),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("cloud: marshaling index mirror item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(m.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(version) OR version = :expected"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectedVersion)},
		},
	}

	_, err = m.client.PutItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConflict
		}
		return fmt.Errorf("cloud: pushing index mirror: %w", err)
	}
	return nil
}

// Pull fetches the mirrored index blob and its version.
func (m *IndexMirror) Pull(ctx context.Context) ([]byte, int64, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(m.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("VAULT#%s", m.vaultID)},
			"SK": &types.AttributeValueMemberS{Value: "INDEX"},
		},
	}
	result, err := m.client.GetItem(ctx, input)
	if err != nil {
		return nil, 0, fmt.Errorf("cloud: pulling index mirror: %w", err)
	}
	if result.Item == nil {
		return nil, 0, ErrNotFound
	}

	var item indexMirrorItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, 0, fmt.Errorf("cloud: unmarshaling index mirror item: %w", err)
	}
	return []byte(item.IndexBlob), item.Version, nil
}
