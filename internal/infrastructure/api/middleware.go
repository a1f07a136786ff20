package api

import (
	"context"
	"net/http"
	"strings"

	"archie-core-auth-gateway/internal/domain"

	"github.com/rs/zerolog"
)

// AccountAuthenticator resolves request keys to environments
type AccountAuthenticator interface {
	AuthenticateSecretKey(ctx context.Context, secretKey string) (*domain.Environment, error)
	AuthenticatePublicKey(ctx context.Context, publicKey string) (*domain.Environment, error)
}

// environmentAuth authenticates the caller with a secret key bearer token or a
// public_key query parameter and stores the environment and account in the context
func environmentAuth(accounts AccountAuthenticator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var (
				env *domain.Environment
				err error
			)
			if secretKey, ok := bearerToken(r); ok {
				env, err = accounts.AuthenticateSecretKey(ctx, secretKey)
			} else {
				env, err = accounts.AuthenticatePublicKey(ctx, r.URL.Query().Get("public_key"))
			}
			if err != nil {
				handleError(w, r, err)
				return
			}

			logger.Debug().
				Str("environmentId", env.ID).
				Str("accountId", env.AccountID).
				Msg("Authenticated request")

			ctx = domain.WithEnvironmentID(ctx, env.ID)
			ctx = domain.WithAccountID(ctx, env.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
