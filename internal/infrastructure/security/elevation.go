package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainErrors "github.com/shoplite/auth-service/internal/domain/errors"
	"github.com/shoplite/auth-service/internal/domain/service"
)

const elevationTokenType = "mfa_elevation"

type elevationJWTClaims struct {
	SessionID string `json:"sid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// jwtElevationService implements service.ElevationService with HS256-signed
// tokens. Expiry is absolute from issuance.
type jwtElevationService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewJWTElevationService(secret string, issuer string, ttl time.Duration) (service.ElevationService, error) {
	if secret == "" {
		return nil, fmt.Errorf("elevation secret must be configured")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &jwtElevationService{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

func (s *jwtElevationService) Issue(userID uuid.UUID, sessionID string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := elevationJWTClaims{
		SessionID: sessionID,
		TokenType: elevationTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign elevation token: %w", err)
	}
	return token, expiresAt, nil
}

func (s *jwtElevationService) Validate(tokenString string) (*service.ElevationClaims, error) {
	var claims elevationJWTClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domainErrors.ErrElevationInvalid
	}
	if claims.TokenType != elevationTokenType {
		return nil, domainErrors.ErrElevationInvalid
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domainErrors.ErrElevationInvalid
	}
	return &service.ElevationClaims{
		UserID:    userID,
		SessionID: claims.SessionID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

var _ service.ElevationService = (*jwtElevationService)(nil)
