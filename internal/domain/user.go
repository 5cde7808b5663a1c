package domain

import "time"

// User is the account record keyed by email. It is created on the first
// successful code verification for that email.
type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Name      string    `json:"name" dynamodbav:"name"`
	Balance   int64     `json:"balance" dynamodbav:"balance"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type UpdateNameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type AdjustBalanceRequest struct {
	Sum *int64 `json:"sum" validate:"required"`
}
