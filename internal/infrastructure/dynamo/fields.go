package dynamo

// DynamoDB attribute names used in key, condition and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmail     = "email"
	fieldName      = "name"
	fieldBalance   = "balance"
	fieldUpdatedAt = "updated_at"
	fieldReviewID  = "review_id"
	fieldProductID = "product_id"
	fieldCreatedAt = "created_at"

	indexProductCreated = "product_id-created_at-index"
)
