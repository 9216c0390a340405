package utils

import (
	"errors"
	"strconv"
	"time"

	"estudio/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the issuer claim of portal tokens.
const Issuer = "estudio-api"

// SignToken signs an access token for claims. Tokens are issued by the
// session service; the portal only signs them for tooling and tests.
func SignToken(claims *models.StudioClaims, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not configured")
	}

	now := time.Now()
	access := *claims
	access.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    Issuer,
		Subject:   strconv.FormatUint(uint64(claims.UserID), 10),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString([]byte(secret))
}

// ParseToken parses and validates a JWT token string.
// It returns the claims if valid, or an error if something is wrong.
func ParseToken(tokenStr, secret string) (*models.StudioClaims, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.StudioClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.StudioClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
