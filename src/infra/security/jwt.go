package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes access from refresh tokens so a refresh token can
// never be replayed as an access credential.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

type UserClaims struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	Kind     TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

type JWTProvider struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	issuer        string
}

func NewJWTProvider(secret string, accessExpiry, refreshExpiry time.Duration) (*JWTProvider, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}

	return &JWTProvider{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		issuer:        "socialgraph",
	}, nil
}

// GenerateTokens creates the access + refresh pair for a user.
func (j *JWTProvider) GenerateTokens(userID int64, username string) (string, string, error) {
	access, err := j.sign(userID, username, TokenKindAccess, j.accessExpiry)
	if err != nil {
		return "", "", err
	}

	refresh, err := j.sign(userID, username, TokenKindRefresh, j.refreshExpiry)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

func (j *JWTProvider) sign(userID int64, username string, kind TokenKind, expiry time.Duration) (string, error) {
	now := time.Now()

	claims := UserClaims{
		UserID:   userID,
		Username: username,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// Validate checks the signature and returns the claims. The signing method
// is pinned to HMAC; tokens carrying "none" or an RSA alg are rejected
// before key lookup.
func (j *JWTProvider) Validate(tokenString string, kind TokenKind) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	if claims.Kind != kind {
		return nil, fmt.Errorf("token is a %s token, expected %s", claims.Kind, kind)
	}

	return claims, nil
}
