package service

import (
	"fmt"

	"github.com/vaultpass/sharepass-go/internal/crypto"
	"github.com/vaultpass/sharepass-go/internal/model"
)

const (
	MinLength     = 8
	MaxLength     = 128
	DefaultLength = 12
)

var (
	ErrLengthTooShort = fmt.Errorf("%w: must be at least %d", crypto.ErrInvalidLength, MinLength)
	ErrLengthTooLong  = fmt.Errorf("%w: must be at most %d", crypto.ErrInvalidLength, MaxLength)
)

// GeneratorService handles password preview business logic.
type GeneratorService struct {
	gen *crypto.Generator
}

// NewGeneratorService creates a new GeneratorService. A nil generator reads from crypto/rand.
func NewGeneratorService(gen *crypto.Generator) *GeneratorService {
	if gen == nil {
		gen = crypto.NewGenerator(nil)
	}
	return &GeneratorService{gen: gen}
}

// Preview produces a password for the secret form based on the given request.
func (s *GeneratorService) Preview(req model.GenerateRequest) (model.GenerateResponse, error) {
	strategy, err := crypto.ParseStrategy(req.Strategy)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	policy := crypto.Policy{
		UseLetters: boolOrDefault(req.UseLetters, true),
		UseDigits:  boolOrDefault(req.UseDigits, true),
		UseSymbols: boolOrDefault(req.UseSymbols, true),
		Strategy:   strategy,
	}
	if policy.Categories() == 0 {
		return model.GenerateResponse{}, crypto.ErrInvalidPolicy
	}

	policy.Length, err = formLength(req.Length.String())
	if err != nil {
		return model.GenerateResponse{}, err
	}

	password, err := s.gen.Generate(policy)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	return model.GenerateResponse{
		Password: password,
		Length:   len(password),
		Strategy: strategy.String(),
	}, nil
}

// formLength parses a length from the form and checks it against the bounds
// the form allows. An empty value selects DefaultLength.
func formLength(raw string) (int, error) {
	if raw == "" {
		return DefaultLength, nil
	}
	n, err := crypto.ParseLength(raw)
	if err != nil {
		return 0, err
	}
	if n < MinLength {
		return 0, ErrLengthTooShort
	}
	if n > MaxLength {
		return 0, ErrLengthTooLong
	}
	return n, nil
}

// boolOrDefault returns the dereferenced pointer value, or the fallback if nil.
func boolOrDefault(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
