package service

import (
	"context"

	"talon/internal/models"

	"go.uber.org/zap"
)

// Authorize re-authenticates every request from scratch. A bad token or a
// vanished user ends in ErrInvalidCredentials (401); a valid user with the
// wrong role ends in ErrForbidden (403).
func (s *authService) Authorize(ctx context.Context, tokenString string, required ...models.Role) (*models.User, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.ResolveCurrent(ctx, claims)
	if err != nil {
		return nil, err
	}

	if err := CheckRole(user, required...); err != nil {
		s.logger.Debug("Role check failed",
			zap.String("login", user.Login),
			zap.String("role", string(user.Role)))
		return nil, err
	}

	return user, nil
}

// CheckRole passes when no role is required or the user holds one of them.
func CheckRole(user *models.User, required ...models.Role) error {
	if len(required) == 0 {
		return nil
	}
	for _, role := range required {
		if user.Role == role {
			return nil
		}
	}
	return newError(ErrForbidden, "%s role required", required[0])
}
