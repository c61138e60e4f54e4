package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAuthenticatorExposesCaller(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{HMACSecret: testSecret, Issuer: "nfi", Audience: "api"}, nil)
	caller := [20]byte{0xaa, 0x01}
	token, err := auth.IssueToken(caller, time.Minute)
	require.NoError(t, err)

	var seen [20]byte
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		seen, ok = CallerFrom(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/registries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, caller, seen)
}

func TestAuthenticatorRejectsBadTokens(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{HMACSecret: testSecret, Issuer: "nfi"}, nil)
	other := NewAuthenticator(AuthConfig{HMACSecret: "another-secret-another-secret-xx", Issuer: "nfi"}, nil)
	wrongIssuer := NewAuthenticator(AuthConfig{HMACSecret: testSecret, Issuer: "someone-else"}, nil)

	forged, err := other.IssueToken([20]byte{0x01}, time.Minute)
	require.NoError(t, err)
	misissued, err := wrongIssuer.IssueToken([20]byte{0x01}, time.Minute)
	require.NoError(t, err)
	expired, err := auth.IssueToken([20]byte{0x01}, -time.Hour)
	require.NoError(t, err)
	zero, err := auth.IssueToken([20]byte{}, time.Minute)
	require.NoError(t, err)

	handler := auth.Middleware(okHandler())
	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"forged":       "Bearer " + forged,
		"wrong issuer": "Bearer " + misissued,
		"expired":      "Bearer " + expired,
		"zero subject": "Bearer " + zero,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/registries", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)
			require.Equal(t, http.StatusUnauthorized, res.Code)
		})
	}
}
