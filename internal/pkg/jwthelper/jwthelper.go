package jwthelper

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
)

const (
	issuer          = "pharmacy-ledger"
	DefaultTokenTTL = 12 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingRole  = errors.New("token carries no role")
)

type Claims struct {
	jwt.RegisteredClaims
	UserID    uint        `json:"user_id"`
	Role      domain.Role `json:"role"`
	UserAgent string      `json:"user_agent,omitempty"`
}

// GenerateToken signs an HS256 token for the user. Tokens are issued by the
// pharmacy's account system; this helper exists for tooling and tests.
func GenerateToken(key []byte, userID uint, role domain.Role, userAgent string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		Role:      role,
		UserAgent: userAgent,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("token.SignedString -> %w", err)
	}

	return signed, nil
}

func ParseToken(key []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role == "" {
		return nil, ErrMissingRole
	}

	return claims, nil
}
