package auth

import (
	"errors"
	"fmt"

	"pricehive_backend/internal/config"
	"pricehive_backend/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWTService verifies HS256 access tokens minted by the identity service.
// Issuing tokens is not this service's job.
type JWTService struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewJWTService creates a new JWTService.
func NewJWTService(cfg *config.Config, logger *zap.Logger) *JWTService {
	return &JWTService{cfg: cfg, logger: logger.Named("JWTService")}
}

// ValidateToken validates a JWT token and returns its claims.
func (s *JWTService) ValidateToken(tokenString string) (*shared.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.JWTIssuer))
	}

	claims := &shared.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecretKey), nil
	}, opts...)
	if err != nil {
		s.logger.Debug("Failed to validate token", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("token carries no user_id")
	}
	return claims, nil
}
