package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const accessTokenType = "access"

var (
	ErrWrongTokenType = errors.New("token is not an access token")
	ErrNoSubject      = errors.New("token carries no user id")
)

// Claims carried by access tokens issued by the identity service.
// The hub only reads them; UserID keys the uploads folder and dataset owner.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// Manager verifies HS256 access tokens. It can also mint them, which the
// tests and local tooling use.
type Manager struct {
	secret []byte
	expiry time.Duration
	parser *jwt.Parser
}

func NewManager(secret string, expiry time.Duration) *Manager {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		expiry: expiry,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithLeeway(5*time.Second),
		),
	}
}

func (m *Manager) GenerateAccessToken(userID int64, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Type:   accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ValidateAccessToken checks signature, expiry, token type and subject.
// Expiry failures wrap jwt.ErrTokenExpired.
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, err := m.parser.ParseWithClaims(tokenString, claims, m.key); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	switch {
	case claims.Type != accessTokenType:
		return nil, fmt.Errorf("%w: got %q", ErrWrongTokenType, claims.Type)
	case claims.UserID <= 0:
		return nil, ErrNoSubject
	}
	return claims, nil
}

func (m *Manager) key(*jwt.Token) (interface{}, error) {
	return m.secret, nil
}
