package services

import (
	"errors"

	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/security"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/tenant"
	"github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// ErrBadCredentials is returned for any failed login attempt.
var ErrBadCredentials = errors.New("invalid credentials")

// AuthService issues and validates dashboard session tokens. Secrets come
// from the tenant config when present, falling back to the process-level
// config.
type AuthService struct {
	logger *logging.ChanneledLogger
}

// NewAuthService creates the auth service
func NewAuthService(logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{logger: logger}
}

// Login checks the admin password for a tenant and mints a session token
func (s *AuthService) Login(tenantCtx *tenant.Context, password string) (string, error) {
	hash := config.AdminPasswordHash
	if tenantCtx.Config != nil && tenantCtx.Config.AdminPassword != "" {
		hash = tenantCtx.Config.AdminPassword
	}

	if hash == "" || !security.CheckPassword(hash, password) {
		if s.logger != nil {
			s.logger.Auth().Warn("Failed login attempt", "tenantId", tenantCtx.TenantID)
		}
		return "", ErrBadCredentials
	}

	token, err := security.GenerateToken(s.secretFor(tenantCtx), tenantCtx.TenantID, "admin")
	if err != nil {
		return "", err
	}

	if s.logger != nil {
		s.logger.Auth().Info("Dashboard session issued", "tenantId", tenantCtx.TenantID)
	}
	return token, nil
}

// Validate verifies a session token and confirms it belongs to the tenant
func (s *AuthService) Validate(tenantCtx *tenant.Context, token string) (*security.Claims, error) {
	claims, err := security.ValidateToken(s.secretFor(tenantCtx), token)
	if err != nil {
		return nil, err
	}
	if claims.TenantID != tenantCtx.TenantID {
		return nil, security.ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) secretFor(tenantCtx *tenant.Context) string {
	if tenantCtx.Config != nil && tenantCtx.Config.JWTSecret != "" {
		return tenantCtx.Config.JWTSecret
	}
	return config.JWTSecret
}
