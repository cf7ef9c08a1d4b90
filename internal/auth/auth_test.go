package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/core"
)

func TestStaticToken(t *testing.T) {
	a := New(Config{APIToken: "s3cret"})

	p, err := a.Verify("s3cret")
	require.NoError(t, err)
	assert.True(t, p.Static)

	_, err = a.Verify("wrong")
	assert.ErrorIs(t, err, core.ErrAuth)
	_, err = a.Verify("")
	assert.ErrorIs(t, err, core.ErrAuth)
}

func TestMintAndVerify(t *testing.T) {
	a := New(Config{JWTSecret: "k", TokenTTL: time.Hour})
	tok, err := a.Mint("alice", "bookkeeper")
	require.NoError(t, err)

	p, err := a.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Subject)
	assert.Equal(t, "bookkeeper", p.Role)
	assert.False(t, p.Static)
}

func TestExpiredToken(t *testing.T) {
	a := New(Config{JWTSecret: "k", TokenTTL: time.Minute})
	a.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := a.Mint("alice", "")
	require.NoError(t, err)

	a.now = time.Now
	_, err = a.Verify(tok)
	assert.ErrorIs(t, err, core.ErrAuth)
}

func TestRejectsForeignTokens(t *testing.T) {
	a := New(Config{JWTSecret: "k"})

	other, err := New(Config{JWTSecret: "other"}).Mint("bob", "")
	require.NoError(t, err)
	_, err = a.Verify(other)
	assert.ErrorIs(t, err, core.ErrAuth)

	wrongIssuer, err := New(Config{JWTSecret: "k", Issuer: "elsewhere"}).Mint("bob", "")
	require.NoError(t, err)
	_, err = a.Verify(wrongIssuer)
	assert.ErrorIs(t, err, core.ErrAuth)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "eve", "iss": "vanta", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.Verify(unsigned)
	assert.ErrorIs(t, err, core.ErrAuth)
}

func TestMintWithoutSecret(t *testing.T) {
	_, err := New(Config{APIToken: "x"}).Mint("a", "")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	a := New(Config{APIToken: "s3cret"})
	var failed error
	h := a.Middleware(func(w http.ResponseWriter, _ *http.Request, err error) {
		failed = err
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := FromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "api-token", p.Subject)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, errors.Is(failed, core.ErrAuth))
}
