package security

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainErrors "github.com/shoplite/auth-service/internal/domain/errors"
	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/service"
)

type sessionJWTClaims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// hmacTokenVerifier validates bearer tokens minted by the external session
// provider. This service never issues primary credentials.
type hmacTokenVerifier struct {
	secret []byte
}

func NewHMACTokenVerifier(secret string) (service.TokenVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("access token secret must be configured")
	}
	return &hmacTokenVerifier{secret: []byte(secret)}, nil
}

func (v *hmacTokenVerifier) ValidateAccessToken(tokenString string) (*service.SessionClaims, error) {
	var claims sessionJWTClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domainErrors.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domainErrors.ErrUnauthorized
	}
	return &service.SessionClaims{
		UserID:    userID,
		SessionID: claims.SessionID,
		Role:      models.Role(claims.Role),
	}, nil
}

var _ service.TokenVerifier = (*hmacTokenVerifier)(nil)
