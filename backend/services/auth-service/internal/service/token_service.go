package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload reservation-service reads: user_id and role.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret    []byte
	issuer    string
	expiresIn time.Duration
	now       func() time.Time
}

// NewTokenService returns configured token service. issuer must match the issuer
// reservation-service expects.
func NewTokenService(secret, issuer string, expiresIn time.Duration) *TokenService {
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	return &TokenService{secret: []byte(secret), issuer: issuer, expiresIn: expiresIn, now: time.Now}
}

// GenerateToken issues JWT for given user.
func (t *TokenService) GenerateToken(userID int64, role string) (string, error) {
	if userID == 0 {
		return "", errors.New("token: user id is required")
	}

	now := t.now().UTC()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}
