package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTManager mints and validates session tokens. Tokens are stateless: there
// is no server-side session table, so a minted token stays valid until its
// expiration regardless of logout.
type JWTManager struct {
	secretKey   string
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

func NewJWTManager(secretKey string, sessionTTL, rememberTTL time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:   secretKey,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
	}
}

// GenerateToken signs a token carrying the user's id. The remember flag is a
// binary choice between the short session lifetime and the extended one.
func (m *JWTManager) GenerateToken(userID string, remember bool) (string, time.Time, error) {
	ttl := m.sessionTTL
	if remember {
		ttl = m.rememberTTL
	}
	expiresAt := time.Now().Add(ttl)

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateToken checks signature and expiration and returns the claims.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
