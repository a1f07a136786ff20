package application

import (
	"context"
	"strings"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/ports"
)

// SecurityGate enforces the optional per-environment request signature
type SecurityGate struct {
	verifier ports.SignatureVerifier
}

// NewSecurityGate creates a new security gate
func NewSecurityGate(verifier ports.SignatureVerifier) *SecurityGate {
	return &SecurityGate{verifier: verifier}
}

// IsRequired reports whether the environment demands a signature
func (g *SecurityGate) IsRequired(ctx context.Context, environmentID string) (bool, error) {
	if g == nil || g.verifier == nil {
		return false, nil
	}
	return g.verifier.IsEnabled(ctx, environmentID)
}

// Verify checks a signature against the connection identity
func (g *SecurityGate) Verify(ctx context.Context, signature, environmentID, providerConfigKey, connectionID string) (bool, error) {
	return g.verifier.Verify(ctx, signature, environmentID, providerConfigKey, connectionID)
}

// Check runs the full gate. It returns nil when the gate is not required or
// passes, a missing_signature or invalid_signature error when it fails, and
// any collaborator error unchanged.
func (g *SecurityGate) Check(ctx context.Context, signature, environmentID, providerConfigKey, connectionID string) error {
	required, err := g.IsRequired(ctx, environmentID)
	if err != nil {
		return err
	}
	if !required {
		return nil
	}

	if strings.TrimSpace(signature) == "" {
		return domain.NewAuthError(domain.CodeMissingSignature, nil)
	}

	ok, err := g.Verify(ctx, signature, environmentID, providerConfigKey, connectionID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewAuthError(domain.CodeInvalidSignature, nil)
	}
	return nil
}
