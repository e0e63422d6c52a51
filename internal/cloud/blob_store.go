package cloud

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// BlobStore stores PNG carrier fragments by opaque handle in DynamoDB.
// It implements the narrow upload/download/delete contract the Vault
// Index needs from a cloud storage collaborator (§6); it never sees
// anything but already-encrypted, already-stego-embedded bytes.
type BlobStore struct {
	client    *dynamodb.Client
	tableName string
	vaultID   string
}

type blobItem struct {
	PK   string `dynamodbav:"PK"`
	SK   string `dynamodbav:"SK"`
	Name string `dynamodbav:"name"`
	Mime string `dynamodbav:"mime"`
	Data string `dynamodbav:"data"` // base64
}

// NewBlobStore creates a blob store for the given table and vault id.
func NewBlobStore(ctx context.Context, tableName, vaultID string) (*BlobStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("cloud: loading aws config: %w", err)
	}
	return &BlobStore{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
		vaultID:   vaultID,
	}, nil
}

// Upload stores data under a freshly generated handle and returns it.
func (b *BlobStore) Upload(data []byte, name, mime string) (string, error) {
	handle := uuid.NewString()
	item := blobItem{
		PK:   fmt.Sprintf("VAULT#%s", b.vaultID),
		SK:   fmt.Sprintf("BLOB#%s", handle),
		Name: name,
		Mime: mime,
		Data: base64.StdEncoding.EncodeToString(data),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return "", fmt.Errorf("cloud: marshaling blob item: %w", err)
	}
	_, err = b.client.PutItem(context.Background(), &dynamodb.PutItemInput{
		TableName: aws.String(b.tableName),
		Item:      av,
	})
	if err != nil {
		return "", fmt.Errorf("cloud: uploading blob: %w", err)
	}
	return handle, nil
}

// Download retrieves the blob stored under handle.
func (b *BlobStore) Download(handle string) ([]byte, error) {
	result, err := b.client.GetItem(context.Background(), &dynamodb.GetItemInput{
		TableName: aws.String(b.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("VAULT#%s", b.vaultID)},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("BLOB#%s", handle)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cloud: downloading blob: %w", err)
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}
	var item blobItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("cloud: unmarshaling blob item: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(item.Data)
	if err != nil {
		return nil, fmt.Errorf("cloud: decoding blob data: %w", err)
	}
	return data, nil
}

// Delete removes the blob stored under handle.
func (b *BlobStore) Delete(handle string) error {
	_, err := b.client.DeleteItem(context.Background(), &dynamodb.DeleteItemInput{
		TableName: aws.String(b.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("VAULT#%s", b.vaultID)},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("BLOB#%s", handle)},
		},
	})
	if err != nil {
		return fmt.Errorf("cloud: deleting blob: %w", err)
	}
	return nil
}
