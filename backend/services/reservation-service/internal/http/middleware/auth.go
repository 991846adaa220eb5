package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller taken from the token claims.
type Identity struct {
	UserID int64
	Role   string
}

// Authenticator validates HS256 tokens issued by auth-service.
type Authenticator struct {
	secret []byte
	issuer string
}

// NewAuthenticator returns authenticator. Tokens must carry issuer as their iss claim.
func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer}
}

// Middleware rejects requests without a valid token. The token comes from the Authorization
// header or, for websocket upgrades, from the access_token query parameter.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.Authenticate(r)
		if err != nil {
			writeUnauthorized(w, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate extracts and validates the caller identity.
func (a *Authenticator) Authenticate(r *http.Request) (Identity, error) {
	tokenStr, err := bearerToken(r)
	if err != nil {
		return Identity{}, err
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenInvalidClaims
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(a.issuer))
	if err != nil || !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid token claims")
	}
	userID, err := extractUserID(claims)
	if err != nil || userID <= 0 {
		return Identity{}, errors.New("user id not found")
	}
	role, _ := claims["role"].(string)
	return Identity{UserID: userID, Role: role}, nil
}

func bearerToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", errors.New("invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if token := strings.TrimSpace(r.URL.Query().Get("access_token")); token != "" {
		return token, nil
	}
	return "", errors.New("missing authorization header")
}

func extractUserID(claims jwt.MapClaims) (int64, error) {
	switch v := claims["user_id"].(type) {
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, errors.New("user_id not present")
	}
}

// IdentityFromContext retrieves the caller from request context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
