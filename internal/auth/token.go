package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(cfg internal.SecurityConfig) *JWTTokenGenerator {
	gen := &JWTTokenGenerator{
		AccessTokenSecret:  []byte(cfg.AccessTokenSecret),
		RefreshTokenSecret: []byte(cfg.RefreshTokenSecret),
		AccessTokenTTL:     cfg.AccessTokenDuration,
		RefreshTokenTTL:    cfg.RefreshTokenDuration,
		VerifyTokenTTL:     cfg.VerifyTokenDuration,
	}
	if gen.AccessTokenTTL <= 0 {
		gen.AccessTokenTTL = 7 * 24 * time.Hour
	}
	if gen.RefreshTokenTTL <= 0 {
		gen.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if gen.VerifyTokenTTL <= 0 {
		gen.VerifyTokenTTL = 7 * 24 * time.Hour
	}
	return gen
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, email string) (string, error) {
	return j.sign(userID, email, TokenPurposeAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64, email string) (string, error) {
	return j.sign(userID, email, TokenPurposeRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

// GenerateVerifyToken creates the token embedded in email verification links.
func (j *JWTTokenGenerator) GenerateVerifyToken(userID int64, email string) (string, error) {
	return j.sign(userID, email, TokenPurposeVerify, j.VerifyTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) sign(userID int64, email string, purpose TokenPurpose, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:  userID,
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken checks signature, expiry and that the token was issued for purpose.
func (j *JWTTokenGenerator) ValidateToken(tokenString string, purpose TokenPurpose) (*Claims, error) {
	secret := j.AccessTokenSecret
	if purpose == TokenPurposeRefresh {
		secret = j.RefreshTokenSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Purpose != purpose || claims.UserID <= 0 {
		return nil, internal.ErrInvalidToken
	}

	return claims, nil
}
