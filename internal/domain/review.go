package domain

import "time"

type Review struct {
	ReviewID    string    `json:"id" dynamodbav:"review_id"`
	ProductID   string    `json:"product_id" dynamodbav:"product_id"`
	AuthorEmail string    `json:"author_email" dynamodbav:"author_email"`
	Text        string    `json:"text" dynamodbav:"text"`
	Rating      int       `json:"rating" dynamodbav:"rating"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateReviewRequest struct {
	Text   string `json:"text" validate:"required,max=2000"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}
