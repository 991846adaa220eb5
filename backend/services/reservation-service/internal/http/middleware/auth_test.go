package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	testSecret = "test-secret"
	testIssuer = "smartcharge-auth"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestAuthenticatorMiddleware(t *testing.T) {
	auth := NewAuthenticator(testSecret, testIssuer)
	var seen Identity
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	valid := signed(t, testSecret, jwt.MapClaims{"user_id": 7, "role": "OPERATOR", "iss": testIssuer, "exp": time.Now().Add(time.Hour).Unix()})
	expired := signed(t, testSecret, jwt.MapClaims{"user_id": 7, "iss": testIssuer, "exp": time.Now().Add(-time.Hour).Unix()})
	foreign := signed(t, "other-secret", jwt.MapClaims{"user_id": 7, "iss": testIssuer})
	noUser := signed(t, testSecret, jwt.MapClaims{"role": "DRIVER", "iss": testIssuer})
	otherIssuer := signed(t, testSecret, jwt.MapClaims{"user_id": 7, "role": "OPERATOR", "iss": "someone-else"})
	noIssuer := signed(t, testSecret, jwt.MapClaims{"user_id": 7, "role": "OPERATOR"})

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer header", "Bearer " + valid, "", http.StatusNoContent},
		{"query token", "", "?access_token=" + valid, http.StatusNoContent},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized},
		{"foreign secret", "Bearer " + foreign, "", http.StatusUnauthorized},
		{"no user id", "Bearer " + noUser, "", http.StatusUnauthorized},
		{"other issuer", "Bearer " + otherIssuer, "", http.StatusUnauthorized},
		{"no issuer", "Bearer " + noIssuer, "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = Identity{}
			req := httptest.NewRequest(http.MethodGet, "/ws"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, rec.Code, rec.Body.String())
			}
			if tc.status == http.StatusNoContent && (seen.UserID != 7 || seen.Role != "OPERATOR") {
				t.Fatalf("unexpected identity: %+v", seen)
			}
		})
	}
}

func TestRequestIDAndRecovery(t *testing.T) {
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RequestIDFromContext(r.Context()) == "" {
			t.Errorf("expected request id in context")
		}
		panic("boom")
	}), RequestID, Recovery(zap.NewNop()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "abc" {
		t.Fatalf("expected incoming request id to be kept")
	}
}
