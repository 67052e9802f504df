package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vaultpass/sharepass-go/internal/client"
	"github.com/vaultpass/sharepass-go/internal/crypto"
	"github.com/vaultpass/sharepass-go/internal/expiry"
	"github.com/vaultpass/sharepass-go/internal/model"
)

type fakeAPI struct {
	created   []model.CreateSecretRequest
	createErr error
	get       model.GetSecretResponse
	getErr    error
	gotID     string
}

func (f *fakeAPI) CreateSecret(_ context.Context, req model.CreateSecretRequest) (model.CreateSecretResponse, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return model.CreateSecretResponse{}, f.createErr
	}
	return model.CreateSecretResponse{PwdID: "tok_abc-123"}, nil
}

func (f *fakeAPI) GetSecret(_ context.Context, pwdID string) (model.GetSecretResponse, error) {
	f.gotID = pwdID
	return f.get, f.getErr
}

func intPtr(n int) *int { return &n }

func newTestSecretService(api *fakeAPI) *SecretService {
	return NewSecretService(api, "https://share.example.com/")
}

func TestCreate_TypedPassword(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestSecretService(api)

	created, err := svc.Create(context.Background(), model.CreateSecretForm{
		Password:     "  correct horse  ",
		UseLetters:   boolPtr(false),
		UseDigits:    boolPtr(false),
		UseSymbols:   boolPtr(false),
		ExpiresValue: intPtr(2),
		ExpiresUnit:  string(expiry.Days),
		ViewLimit:    intPtr(3),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.PwdID != "tok_abc-123" {
		t.Errorf("expected pwdId tok_abc-123, got %q", created.PwdID)
	}
	if created.URL != "https://share.example.com/visualizar/tok_abc-123" {
		t.Errorf("unexpected url %q", created.URL)
	}

	req := api.created[0]
	if req.SendedPassword != "correct horse" {
		t.Errorf("expected trimmed password, got %q", req.SendedPassword)
	}
	if req.UseLetters != nil || req.PassLength != 0 {
		t.Error("generation settings should not be sent with a typed password")
	}
	if req.ExpirationInSeconds != 2*86400 {
		t.Errorf("expected 172800 seconds, got %d", req.ExpirationInSeconds)
	}
	if req.PassViewLimit != 3 {
		t.Errorf("expected view limit 3, got %d", req.PassViewLimit)
	}
}

func TestCreate_GeneratedDefaults(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestSecretService(api)

	_, err := svc.Create(context.Background(), model.CreateSecretForm{UseSymbols: boolPtr(false)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := api.created[0]
	if req.SendedPassword != "" {
		t.Errorf("expected no password, got %q", req.SendedPassword)
	}
	if req.UseLetters == nil || !*req.UseLetters {
		t.Error("expected use_letters true")
	}
	if req.UseDigits == nil || !*req.UseDigits {
		t.Error("expected use_digits true")
	}
	if req.UsePunctuation == nil || *req.UsePunctuation {
		t.Error("expected use_punctuation false")
	}
	if req.PassLength != DefaultLength {
		t.Errorf("expected length %d, got %d", DefaultLength, req.PassLength)
	}
	if req.ExpirationInSeconds != DefaultExpires*60 {
		t.Errorf("expected %d seconds, got %d", DefaultExpires*60, req.ExpirationInSeconds)
	}
	if req.PassViewLimit != DefaultViewLimit {
		t.Errorf("expected view limit %d, got %d", DefaultViewLimit, req.PassViewLimit)
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		form    model.CreateSecretForm
		wantErr error
	}{
		{"zero expiration", model.CreateSecretForm{ExpiresValue: intPtr(0)}, ErrExpirationTooShort},
		{"negative expiration", model.CreateSecretForm{ExpiresValue: intPtr(-1)}, ErrExpirationTooShort},
		{"expiration too long", model.CreateSecretForm{ExpiresValue: intPtr(1000)}, ErrExpirationTooLong},
		{"unknown unit", model.CreateSecretForm{ExpiresUnit: "weeks"}, expiry.ErrUnknownUnit},
		{"zero view limit", model.CreateSecretForm{ViewLimit: intPtr(0)}, ErrViewLimitTooLow},
		{"negative view limit", model.CreateSecretForm{ViewLimit: intPtr(-2)}, ErrViewLimitTooLow},
		{"view limit too high", model.CreateSecretForm{ViewLimit: intPtr(101)}, ErrViewLimitTooHigh},
		{"length too short", model.CreateSecretForm{Length: "4"}, ErrLengthTooShort},
		{"length too long", model.CreateSecretForm{Length: "129"}, ErrLengthTooLong},
		{"fractional length", model.CreateSecretForm{Length: "8.5"}, crypto.ErrInvalidLength},
		{
			name: "nothing to send",
			form: model.CreateSecretForm{
				Password:   "   ",
				UseLetters: boolPtr(false),
				UseDigits:  boolPtr(false),
				UseSymbols: boolPtr(false),
			},
			wantErr: crypto.ErrInvalidPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			_, err := newTestSecretService(api).Create(context.Background(), tt.form)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if len(api.created) != 0 {
				t.Error("invalid form should not reach the api")
			}
		})
	}
}

func TestCreate_TypedPasswordSkipsLengthCheck(t *testing.T) {
	api := &fakeAPI{}
	_, err := newTestSecretService(api).Create(context.Background(), model.CreateSecretForm{
		Password: "short",
		Length:   "2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_APIError(t *testing.T) {
	apiErr := &client.APIError{StatusCode: 400, Message: "pass_length deve estar entre 8 e 128"}
	svc := newTestSecretService(&fakeAPI{createErr: apiErr})

	_, err := svc.Create(context.Background(), model.CreateSecretForm{})
	var got *client.APIError
	if !errors.As(err, &got) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if got.Message != apiErr.Message {
		t.Errorf("expected message %q, got %q", apiErr.Message, got.Message)
	}
}

func TestReveal(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	api := &fakeAPI{get: model.GetSecretResponse{
		Pwd:            "s3cret!",
		ExpirationDate: now.Add(5 * time.Minute).Unix(),
		ViewCount:      2,
	}}
	svc := newTestSecretService(api)
	svc.now = func() time.Time { return now }

	got, err := svc.Reveal(context.Background(), "https://share.example.com/visualizar/tok_abc-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.gotID != "tok_abc-123" {
		t.Errorf("expected token tok_abc-123, got %q", api.gotID)
	}
	if got.Secret != "s3cret!" {
		t.Errorf("expected secret, got %q", got.Secret)
	}
	if got.ViewsRemaining != 2 {
		t.Errorf("expected 2 views remaining, got %d", got.ViewsRemaining)
	}
	if got.Remaining != "5 minutes" {
		t.Errorf("expected remaining %q, got %q", "5 minutes", got.Remaining)
	}
	if !got.ExpiresAt.Equal(now.Add(5 * time.Minute)) {
		t.Errorf("unexpected expiry %v", got.ExpiresAt)
	}
}

func TestReveal_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		getErr  error
		wantErr error
	}{
		{"invalid token", "not a token!", nil, ErrInvalidToken},
		{"empty input", "   ", nil, ErrInvalidToken},
		{"not found", "abc", &client.APIError{StatusCode: 404, Message: "Link inválido"}, ErrSecretNotFound},
		{"gone", "abc", &client.APIError{StatusCode: 410, Message: "Link expirou"}, ErrSecretGone},
		{"timeout", "abc", client.ErrTimeout, client.ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestSecretService(&fakeAPI{getErr: tt.getErr})
			_, err := svc.Reveal(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	svc := newTestSecretService(&fakeAPI{})

	got, err := svc.Lookup("https://share.example.com/visualizar/abc_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Token != "abc_1" || got.Path != "/visualizar/abc_1" {
		t.Errorf("unexpected lookup %+v", got)
	}

	if _, err := svc.Lookup(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
