package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	r, err := NewIPResolver("100.64.0.0/10")
	require.NoError(t, err)

	cases := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct public", "203.0.113.5:4000", "1.2.3.4", "", "203.0.113.5"},
		{"trusted proxy xff", "10.0.0.2:80", "198.51.100.7, 10.0.0.2", "", "198.51.100.7"},
		{"trusted proxy real ip", "192.168.1.1:80", "", "198.51.100.8", "198.51.100.8"},
		{"extra cidr", "100.64.1.1:80", "198.51.100.9", "", "198.51.100.9"},
		{"garbage xff", "10.0.0.2:80", "nonsense", "", "10.0.0.2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				req.Header.Set("X-Real-IP", tc.xri)
			}
			assert.Equal(t, tc.want, r.ClientIP(req))
		})
	}

	_, err = NewIPResolver("not-a-cidr")
	assert.Error(t, err)
}

func TestHeaders(t *testing.T) {
	h := Headers(DefaultHeadersConfig())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
}
