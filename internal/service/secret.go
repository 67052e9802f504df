package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vaultpass/sharepass-go/internal/client"
	"github.com/vaultpass/sharepass-go/internal/crypto"
	"github.com/vaultpass/sharepass-go/internal/expiry"
	"github.com/vaultpass/sharepass-go/internal/model"
	"github.com/vaultpass/sharepass-go/internal/sharelink"
)

const (
	MinViewLimit     = 1
	MaxViewLimit     = 100
	DefaultViewLimit = 1

	MinExpires     = 1
	MaxExpires     = 999
	DefaultExpires = 10
)

var (
	ErrExpirationTooShort = errors.New("expiration must be at least 1")
	ErrExpirationTooLong  = errors.New("expiration is too long")
	ErrViewLimitTooLow    = errors.New("view limit must be at least 1")
	ErrViewLimitTooHigh   = fmt.Errorf("view limit must be at most %d", MaxViewLimit)
	ErrInvalidToken       = errors.New("invalid token")
	ErrSecretNotFound     = errors.New("invalid link")
	ErrSecretGone         = errors.New("link expired or reached its view limit")
)

// SecretAPI is the remote API the secret service stores and reveals secrets through.
type SecretAPI interface {
	CreateSecret(ctx context.Context, req model.CreateSecretRequest) (model.CreateSecretResponse, error)
	GetSecret(ctx context.Context, pwdID string) (model.GetSecretResponse, error)
}

// SecretService handles the secret form and the reveal flow.
type SecretService struct {
	api        SecretAPI
	publicBase string
	now        func() time.Time
}

// NewSecretService creates a new SecretService. Share links are built under publicBase.
func NewSecretService(api SecretAPI, publicBase string) *SecretService {
	return &SecretService{
		api:        api,
		publicBase: publicBase,
		now:        time.Now,
	}
}

// Create validates the form and stores the secret. A typed password is sent as
// is; otherwise the generation settings are sent and the API generates the secret.
func (s *SecretService) Create(ctx context.Context, form model.CreateSecretForm) (model.CreatedSecret, error) {
	req, err := buildCreateRequest(form)
	if err != nil {
		return model.CreatedSecret{}, err
	}

	resp, err := s.api.CreateSecret(ctx, req)
	if err != nil {
		return model.CreatedSecret{}, fmt.Errorf("creating secret: %w", err)
	}

	slog.Info("secret created",
		"expires_in_seconds", req.ExpirationInSeconds,
		"view_limit", req.PassViewLimit,
		"generated", req.SendedPassword == "",
	)

	return model.CreatedSecret{
		PwdID: resp.PwdID,
		URL:   sharelink.BuildURL(s.publicBase, resp.PwdID),
	}, nil
}

// Reveal fetches the secret behind a token or share URL, consuming one view.
func (s *SecretService) Reveal(ctx context.Context, input string) (model.RevealedSecret, error) {
	token, ok := sharelink.ExtractToken(input)
	if !ok {
		return model.RevealedSecret{}, ErrInvalidToken
	}

	resp, err := s.api.GetSecret(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, client.ErrNotFound):
			return model.RevealedSecret{}, ErrSecretNotFound
		case errors.Is(err, client.ErrGone):
			return model.RevealedSecret{}, ErrSecretGone
		}
		return model.RevealedSecret{}, fmt.Errorf("revealing secret: %w", err)
	}

	expiresAt := time.Unix(resp.ExpirationDate, 0).UTC()
	return model.RevealedSecret{
		PwdID:          token,
		Secret:         resp.Pwd,
		ViewsRemaining: resp.ViewCount,
		ExpiresAt:      expiresAt,
		Remaining:      expiry.FormatRemaining(expiresAt, s.now()),
	}, nil
}

// Lookup resolves a token or share URL typed by a recipient to its reveal path.
func (s *SecretService) Lookup(input string) (model.LookupResponse, error) {
	token, ok := sharelink.ExtractToken(input)
	if !ok {
		return model.LookupResponse{}, ErrInvalidToken
	}
	return model.LookupResponse{Token: token, Path: sharelink.Path(token)}, nil
}

func buildCreateRequest(form model.CreateSecretForm) (model.CreateSecretRequest, error) {
	var req model.CreateSecretRequest

	exp := intOrDefault(form.ExpiresValue, DefaultExpires)
	if exp < MinExpires {
		return req, ErrExpirationTooShort
	}
	if exp > MaxExpires {
		return req, ErrExpirationTooLong
	}

	unit := expiry.Minutes
	if form.ExpiresUnit != "" {
		u, err := expiry.ParseUnit(form.ExpiresUnit)
		if err != nil {
			return req, err
		}
		unit = u
	}

	limit := intOrDefault(form.ViewLimit, DefaultViewLimit)
	if limit < MinViewLimit {
		return req, ErrViewLimitTooLow
	}
	if limit > MaxViewLimit {
		return req, ErrViewLimitTooHigh
	}

	req.PassViewLimit = limit
	req.ExpirationInSeconds = expiry.ToSeconds(exp, unit)

	if password := strings.TrimSpace(form.Password); password != "" {
		req.SendedPassword = password
		return req, nil
	}

	letters := boolOrDefault(form.UseLetters, true)
	digits := boolOrDefault(form.UseDigits, true)
	symbols := boolOrDefault(form.UseSymbols, true)
	if !letters && !digits && !symbols {
		return req, crypto.ErrInvalidPolicy
	}

	length, err := formLength(form.Length.String())
	if err != nil {
		return req, err
	}

	req.UseLetters = &letters
	req.UseDigits = &digits
	req.UsePunctuation = &symbols
	req.PassLength = length
	return req, nil
}

func intOrDefault(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}
