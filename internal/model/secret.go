package model

import (
	"encoding/json"
	"time"
)

// CreateSecretRequest is the payload accepted by the remote POST /pwd endpoint.
// Either SendedPassword is set, or the generation fields are, never both.
type CreateSecretRequest struct {
	SendedPassword      string `json:"sended_password,omitempty"`
	UseLetters          *bool  `json:"use_letters,omitempty"`
	UseDigits           *bool  `json:"use_digits,omitempty"`
	UsePunctuation      *bool  `json:"use_punctuation,omitempty"`
	PassLength          int    `json:"pass_length,omitempty"`
	PassViewLimit       int    `json:"pass_view_limit"`
	ExpirationInSeconds int64  `json:"expiration_in_seconds"`
}

// CreateSecretResponse is returned by the remote POST /pwd endpoint.
type CreateSecretResponse struct {
	PwdID string `json:"pwdId"`
}

// GetSecretResponse is returned by the remote GET /pwd/{pwdId} endpoint.
// ViewCount is the number of views remaining after this one.
type GetSecretResponse struct {
	PwdID          string `json:"pwdId,omitempty"`
	Pwd            string `json:"pwd"`
	ExpirationDate int64  `json:"expiration_date"` // epoch seconds
	ViewCount      int    `json:"view_count"`
	PassViewLimit  *int   `json:"pass_view_limit,omitempty"`
}

// CreateSecretForm represents the secret form as submitted by a user.
// A non-blank Password takes precedence over the generation settings.
// Nil numeric fields take their defaults; explicit values are validated as given.
type CreateSecretForm struct {
	Password     string      `json:"password"`
	UseLetters   *bool       `json:"use_letters"`
	UseDigits    *bool       `json:"use_digits"`
	UseSymbols   *bool       `json:"use_symbols"`
	Length       json.Number `json:"length"`
	ExpiresValue *int        `json:"expires_value"`
	ExpiresUnit  string      `json:"expires_unit"`
	ViewLimit    *int        `json:"view_limit"`
}

// CreatedSecret is returned to the user after a secret was stored.
type CreatedSecret struct {
	PwdID string `json:"pwdId"`
	URL   string `json:"url"`
}

// RevealedSecret is a secret as shown to its recipient.
type RevealedSecret struct {
	PwdID          string    `json:"pwdId"`
	Secret         string    `json:"secret"`
	ViewsRemaining int       `json:"views_remaining"`
	ExpiresAt      time.Time `json:"expires_at"`
	Remaining      string    `json:"remaining"`
}

// LookupRequest carries a token or share URL typed by a recipient.
type LookupRequest struct {
	Input string `json:"input"`
}

// LookupResponse points to the reveal path of the extracted token.
type LookupResponse struct {
	Token string `json:"token"`
	Path  string `json:"path"`
}
