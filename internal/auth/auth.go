// Package auth verifies the bearer credential on API requests. A static
// API token and HS256 JWTs are both accepted when configured.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vanta/internal/core"
)

// Principal identifies the caller of an authenticated request.
type Principal struct {
	Subject string
	Role    string
	// Static is true for the shared API token.
	Static bool
}

type ctxKey struct{}

// FromContext returns the principal stored by Middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

type Config struct {
	// APIToken is compared in constant time. Empty disables static tokens.
	APIToken string
	// JWTSecret signs and verifies HS256 tokens. Empty disables JWTs.
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

// Enabled reports whether any credential is configured.
func (c Config) Enabled() bool { return c.APIToken != "" || c.JWTSecret != "" }

type Authenticator struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) *Authenticator {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "vanta"
	}
	return &Authenticator{cfg: cfg, now: time.Now}
}

// Verify checks a raw bearer token.
func (a *Authenticator) Verify(token string) (Principal, error) {
	if token == "" {
		return Principal{}, fmt.Errorf("missing bearer token: %w", core.ErrAuth)
	}
	if a.cfg.APIToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(a.cfg.APIToken)) == 1 {
		return Principal{Subject: "api-token", Role: "admin", Static: true}, nil
	}
	if a.cfg.JWTSecret == "" {
		return Principal{}, fmt.Errorf("invalid token: %w", core.ErrAuth)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return []byte(a.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return Principal{}, fmt.Errorf("invalid token: %w", core.ErrAuth)
	}
	sub, _ := claims.GetSubject()
	if sub == "" {
		return Principal{}, fmt.Errorf("token has no subject: %w", core.ErrAuth)
	}
	role, _ := claims["role"].(string)
	return Principal{Subject: sub, Role: role}, nil
}

// Mint issues an HS256 token for subject.
func (a *Authenticator) Mint(subject, role string) (string, error) {
	if a.cfg.JWTSecret == "" {
		return "", errors.New("jwt secret not configured")
	}
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iss":  a.cfg.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(a.cfg.TokenTTL).Unix(),
		"jti":  uuid.NewString(),
	})
	return token.SignedString([]byte(a.cfg.JWTSecret))
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware rejects requests without a valid credential. onFail writes
// the error response.
func (a *Authenticator) Middleware(onFail func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Verify(BearerToken(r))
			if err != nil {
				onFail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
