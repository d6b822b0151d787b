package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/brnno-tech/brnno-api/internal/domain"
)

const userCreatedIndex = "user_id-created_at-index"

// NotificationRepo provides typed DynamoDB operations for the notifications table.
//
// The *Indexed methods use the user_id-created_at GSI and return
// domain.ErrIndexMissing when the index does not exist; the *Scan methods are
// the unindexed equivalents (equality filter only, no ordering guarantee).
type NotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("notification_id", notificationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByUserIndexed queries the GSI newest-first.
func (r *NotificationRepo) ListByUserIndexed(ctx context.Context, userID string, limit int32) ([]domain.Notification, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(userCreatedIndex),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, classifyIndexErr(err)
	}
	return unmarshalList(out.Items)
}

// ListByUserScan is the unindexed fallback: a filtered scan with no ordering
// guarantee. Callers sort client-side.
func (r *NotificationRepo) ListByUserScan(ctx context.Context, userID string, limit int32) ([]domain.Notification, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		Limit: aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	return unmarshalList(out.Items)
}

// CountUnreadIndexed counts read=false records for the user via the GSI.
func (r *NotificationRepo) CountUnreadIndexed(ctx context.Context, userID string) (int, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(userCreatedIndex),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("#r = :f"),
		ExpressionAttributeNames: map[string]string{
			"#r": "read",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
		},
		Select: types.SelectCount,
	})
	if err != nil {
		return 0, classifyIndexErr(err)
	}
	return int(out.Count), nil
}

// CountUnreadScan is the unindexed fallback for CountUnreadIndexed.
func (r *NotificationRepo) CountUnreadScan(ctx context.Context, userID string) (int, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("user_id = :uid AND #r = :f"),
		ExpressionAttributeNames: map[string]string{
			"#r": "read",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
		},
		Select: types.SelectCount,
	})
	if err != nil {
		return 0, err
	}
	return int(out.Count), nil
}

// ListUnreadIndexed returns all unread records for the user via the GSI.
func (r *NotificationRepo) ListUnreadIndexed(ctx context.Context, userID string) ([]domain.Notification, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(userCreatedIndex),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("#r = :f"),
		ExpressionAttributeNames: map[string]string{
			"#r": "read",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		return nil, classifyIndexErr(err)
	}
	return unmarshalList(out.Items)
}

// MarkRead flips read to true and stamps read_at, once. The conditional
// update makes the second call a no-op that leaves read_at untouched, so a
// record can never transition back to unread and the timestamp of the first
// read is preserved. Returns false when the record was already read.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID string, readAt time.Time) (bool, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"read":    true,
		"read_at": readAt,
	})
	if err != nil {
		return false, err
	}
	ue.Names["#r"] = "read"
	ue.Values[":f"] = &types.AttributeValueMemberBOOL{Value: false}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("notification_id", notificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(notification_id) AND #r = :f"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func unmarshalList(items []map[string]types.AttributeValue) ([]domain.Notification, error) {
	var notifications []domain.Notification
	if err := attributevalue.UnmarshalListOfMaps(items, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}
