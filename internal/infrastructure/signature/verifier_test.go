package signature

import (
	"context"
	"errors"
	"testing"

	"archie-core-auth-gateway/internal/domain"
)

type staticEnvironments struct {
	env *domain.Environment
	err error
}

func (s staticEnvironments) GetByID(context.Context, string) (*domain.Environment, error) {
	return s.env, s.err
}

func (s staticEnvironments) GetByUUID(context.Context, string) (*domain.Environment, error) {
	return s.env, s.err
}

func (s staticEnvironments) GetBySecretKey(context.Context, string) (*domain.Environment, error) {
	return s.env, s.err
}

func (s staticEnvironments) GetByPublicKey(context.Context, string) (*domain.Environment, error) {
	return s.env, s.err
}

func TestVerifierIsEnabled(t *testing.T) {
	tests := []struct {
		name string
		env  *domain.Environment
		want bool
	}{
		{"unknown environment", nil, false},
		{"disabled", &domain.Environment{HMACKey: "k"}, false},
		{"enabled without key", &domain.Environment{HMACEnabled: true}, false},
		{"enabled", &domain.Environment{HMACEnabled: true, HMACKey: "k"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewVerifier(staticEnvironments{env: tt.env}).IsEnabled(context.Background(), "env-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestVerifierVerify(t *testing.T) {
	verifier := NewVerifier(staticEnvironments{env: &domain.Environment{HMACEnabled: true, HMACKey: "secret"}})
	ctx := context.Background()

	valid := Sign("secret", "stripe-prod", "user-42")
	ok, err := verifier.Verify(ctx, valid, "env-1", "stripe-prod", "user-42")
	if err != nil || !ok {
		t.Fatalf("expected valid signature, got %v, %v", ok, err)
	}

	ok, _ = verifier.Verify(ctx, valid, "env-1", "stripe-prod", "user-43")
	if ok {
		t.Fatal("expected signature for another connection to fail")
	}

	ok, _ = verifier.Verify(ctx, Sign("other", "stripe-prod", "user-42"), "env-1", "stripe-prod", "user-42")
	if ok {
		t.Fatal("expected signature with another key to fail")
	}
}

func TestVerifierSurfacesStoreErrors(t *testing.T) {
	verifier := NewVerifier(staticEnvironments{err: errors.New("mongo down")})
	if _, err := verifier.IsEnabled(context.Background(), "env-1"); err == nil {
		t.Fatal("expected store error")
	}
	if _, err := verifier.Verify(context.Background(), "sig", "env-1", "k", "c"); err == nil {
		t.Fatal("expected store error")
	}
}
