package signature

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"archie-core-auth-gateway/internal/ports"
)

// Verifier checks the hmac query parameter against the environment's HMAC key.
// The signed message is "<providerConfigKey>:<connectionId>", hex encoded.
type Verifier struct {
	environments ports.EnvironmentRepository
}

// NewVerifier creates a signature verifier backed by the environment store
func NewVerifier(environments ports.EnvironmentRepository) *Verifier {
	return &Verifier{environments: environments}
}

// IsEnabled reports whether the environment requires signed requests
func (v *Verifier) IsEnabled(ctx context.Context, environmentID string) (bool, error) {
	env, err := v.environments.GetByID(ctx, environmentID)
	if err != nil {
		return false, fmt.Errorf("failed to load environment: %w", err)
	}
	if env == nil {
		return false, nil
	}
	return env.HMACEnabled && env.HMACKey != "", nil
}

// Verify compares the signature in constant time
func (v *Verifier) Verify(ctx context.Context, signature, environmentID, providerConfigKey, connectionID string) (bool, error) {
	env, err := v.environments.GetByID(ctx, environmentID)
	if err != nil {
		return false, fmt.Errorf("failed to load environment: %w", err)
	}
	if env == nil || env.HMACKey == "" {
		return false, nil
	}

	expected := Sign(env.HMACKey, providerConfigKey, connectionID)
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// Sign produces the signature a caller must send for a connection
func Sign(key, providerConfigKey, connectionID string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(providerConfigKey + ":" + connectionID))
	return hex.EncodeToString(mac.Sum(nil))
}
