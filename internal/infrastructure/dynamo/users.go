package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-confirm-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
// PK: email.
type UserRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName, now: time.Now}
}

// GetByEmail returns domain.ErrNotFound when no record exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create stores u unless a record with the same email exists (domain.ErrConflict).
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#e)"),
		ExpressionAttributeNames: map[string]string{"#e": fieldEmail},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user %s already exists: %w", u.Email, domain.ErrConflict)
	}
	return err
}

// UpdateBalance sets the balance to next only while it still equals expected.
// A concurrent change by another writer yields domain.ErrConflict.
func (r *UserRepo) UpdateBalance(ctx context.Context, email string, expected, next int64) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldBalance:   next,
		fieldUpdatedAt: r.now().UTC(),
	})
	if err != nil {
		return err
	}
	ue.Names["#bal"] = fieldBalance
	ue.Values[":expected"] = &types.AttributeValueMemberN{Value: fmt.Sprint(expected)}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmail, email),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("#bal = :expected"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("balance of %s changed concurrently: %w", email, domain.ErrConflict)
	}
	return err
}

// UpdateName sets the display name of an existing user and returns the updated record.
func (r *UserRepo) UpdateName(ctx context.Context, email, name string) (*domain.User, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldName:      name,
		fieldUpdatedAt: r.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	ue.Names["#pk"] = fieldEmail
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmail, email),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Attributes, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
