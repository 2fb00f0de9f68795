package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/finsight/analysis-router/config"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Auth validates HS256 bearer tokens on protected routes. When no secret
// is configured the middleware passes every request through, so local
// deployments can run without token plumbing.
type Auth struct {
	secret   []byte
	issuer   string
	audience string
	logger   *zap.Logger
}

// NewAuth creates the auth middleware from configuration.
func NewAuth(cfg config.AuthConfig, logger *zap.Logger) *Auth {
	return &Auth{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		logger:   logger,
	}
}

// Enabled reports whether token validation is active.
func (a *Auth) Enabled() bool {
	return len(a.secret) > 0
}

// RequireAuth rejects requests without a valid bearer token. No-op when
// auth is disabled.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token, msg := extractBearerToken(r)
		if msg != "" {
			a.unauthorized(w, r, msg)
			return
		}

		if _, parseErr := a.parse(token); parseErr != nil {
			a.logger.Warn("token validation failed",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.Error(parseErr))
			a.unauthorized(w, r, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *Auth) parse(token string) (*jwt.Token, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	return jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
}

func (a *Auth) unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":      message,
		"request_id": GetRequestID(r.Context()),
	})
}

// extractBearerToken returns the token or an error message for the caller.
func extractBearerToken(r *http.Request) (token, errMsg string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing authorization header"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "invalid authorization header format"
	}
	return parts[1], ""
}
