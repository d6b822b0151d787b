package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/brnno-tech/brnno-api/internal/domain"
)

// UserRepo provides the slice of the users table this service touches:
// the per-user push token attribute.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetFCMToken resolves the user's current push token.
// Returns domain.ErrNotFound when the user has no registered token.
func (r *UserRepo) GetFCMToken(ctx context.Context, userID string) (string, error) {
	u, err := r.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.FCMToken == "" {
		return "", fmt.Errorf("no push token for user %s: %w", userID, domain.ErrNotFound)
	}
	return u.FCMToken, nil
}

// SetFCMToken stores the user's push token, last-write-wins. A concurrent
// registration from a second device simply overwrites the attribute; only
// the most recent token is ever reachable.
func (r *UserRepo) SetFCMToken(ctx context.Context, userID, token string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"fcm_token":            token,
		"fcm_token_updated_at": time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
