package domain

// PendingConfirmation is an issued but not yet verified code for one email.
type PendingConfirmation struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Session binds an email to the token produced by a successful code verification.
// Only the most recently issued token for an email is valid.
type Session struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type InitEmailConfirmRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ConfirmByCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type LoginByTokenRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}
