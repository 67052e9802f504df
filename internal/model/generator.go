package model

import "encoding/json"

// GenerateRequest represents a password preview request.
// Pointer bools allow distinguishing between missing (nil -> default true) and explicit false.
// Length is kept as a raw JSON number so fractional or out-of-range values can be
// reported as an invalid length rather than a malformed body.
type GenerateRequest struct {
	Length     json.Number `json:"length"`
	UseLetters *bool       `json:"use_letters"`
	UseDigits  *bool       `json:"use_digits"`
	UseSymbols *bool       `json:"use_symbols"`
	Strategy   string      `json:"strategy,omitempty"`
}

// GenerateResponse represents a password preview response.
type GenerateResponse struct {
	Password string `json:"password"`
	Length   int    `json:"length"`
	Strategy string `json:"strategy"`
}
