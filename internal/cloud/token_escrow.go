package cloud

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// TokenEscrow stores the opaque tokens.bin blob (second-factor recovery
// material, cloud OAuth refresh tokens — whatever the caller decides
// belongs there) in AWS Secrets Manager. The escrow never interprets the
// blob; it is handed bytes and returns the same bytes.
type TokenEscrow struct {
	client     *secretsmanager.Client
	secretName string
}

// NewTokenEscrow creates an escrow client for the given secret name.
func NewTokenEscrow(ctx context.Context, secretName, region string) (*TokenEscrow, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("cloud: loading aws config: %w", err)
	}
	return &TokenEscrow{
		client:     secretsmanager.NewFromConfig(cfg),
		secretName: secretName,
	}, nil
}

// Put escrows blob, creating the secret if it does not yet exist.
func (e *TokenEscrow) Put(ctx context.Context, blob []byte) error {
	encoded := base64.StdEncoding.EncodeToString(blob)

	_, err := e.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(e.secretName),
		SecretString: aws.String(encoded),
	})
	if err == nil {
		return nil
	}

	if !isResourceNotFound(err) {
		return fmt.Errorf("cloud: putting escrowed tokens: %w", err)
	}

	_, err = e.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(e.secretName),
		SecretString: aws.String(encoded),
		Description:  aws.String("slasshy opaque token escrow blob"),
	})
	if err != nil {
		return fmt.Errorf("cloud: creating escrowed tokens secret: %w", err)
	}
	return nil
}

// Get retrieves the escrowed blob.
func (e *TokenEscrow) Get(ctx context.Context) ([]byte, error) {
	result, err := e.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(e.secretName),
	})
	if err != nil {
		if isResourceNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cloud: getting escrowed tokens: %w", err)
	}
	blob, err := base64.StdEncoding.DecodeString(aws.ToString(result.SecretString))
	if err != nil {
		return nil, fmt.Errorf("cloud: decoding escrowed tokens: %w", err)
	}
	return blob, nil
}

// IsAvailable reports whether Secrets Manager is reachable for this
// escrow, tolerating a not-yet-created secret as "available".
func (e *TokenEscrow) IsAvailable(ctx context.Context) bool {
	_, err := e.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(e.secretName),
	})
	if err == nil {
		return true
	}
	return isResourceNotFound(err)
}

func isResourceNotFound(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(*types.ResourceNotFoundException); ok {
		return true
	}
	if coded, ok := err.(interface{ ErrorCode() string }); ok {
		return coded.ErrorCode() == "ResourceNotFoundException"
	}
	return false
}
