package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-confirm-api/internal/domain"
)

// ReviewRepo stores product reviews.
// PK: review_id, GSI product_id-created_at-index for listing by product.
type ReviewRepo struct {
	client    API
	tableName string
}

func NewReviewRepo(client API, tableName string) *ReviewRepo {
	return &ReviewRepo{client: client, tableName: tableName}
}

func (r *ReviewRepo) Put(ctx context.Context, rv *domain.Review) error {
	item, err := attributevalue.MarshalMap(rv)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByProduct returns up to limit reviews of productID, newest first.
func (r *ReviewRepo) ListByProduct(ctx context.Context, productID string, limit int32) ([]domain.Review, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(indexProductCreated),
		KeyConditionExpression:   aws.String("#p = :p"),
		ExpressionAttributeNames: map[string]string{"#p": fieldProductID},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: productID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	reviews := make([]domain.Review, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
