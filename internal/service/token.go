package service

import (
	"errors"
	"fmt"
	"time"

	"talon/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTokenTTL is used when the configuration does not set one.
const DefaultTokenTTL = time.Hour

type TokenService interface {
	// Issue signs a token for subject with the default time-to-live.
	Issue(subject string, role models.Role) (string, time.Time, error)
	IssueWithTTL(subject string, role models.Role, ttl time.Duration) (string, time.Time, error)
	// Validate returns the claims of a well-formed, correctly signed and
	// unexpired token. Every failure is reported as ErrInvalidCredentials.
	Validate(tokenString string) (*models.Claims, error)
}

type TokenOption func(*tokenService)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *tokenService) {
		s.now = now
	}
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewTokenService builds the HS256 signer. The secret is read once from the
// configuration at startup and never rotated while the process runs.
func NewTokenService(secret []byte, ttl time.Duration, logger *zap.Logger, opts ...TokenOption) (TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &tokenService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *tokenService) Issue(subject string, role models.Role) (string, time.Time, error) {
	return s.IssueWithTTL(subject, role, s.ttl)
}

func (s *tokenService) IssueWithTTL(subject string, role models.Role, ttl time.Duration) (string, time.Time, error) {
	if subject == "" || !role.Valid() {
		return "", time.Time{}, fmt.Errorf("cannot issue token for subject %q with role %q", subject, role)
	}

	now := s.now().UTC()
	expirationTime := now.Add(ttl)
	claims := &models.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, claims.ExpiresAt.Time, nil
}

func (s *tokenService) Validate(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		// the cause stays in the logs; callers only learn that the token is unusable
		s.logger.Debug("Rejected token", zap.Error(err))
		return nil, errInvalidCredentials
	}
	if !token.Valid || claims.Subject == "" || !claims.Role.Valid() {
		s.logger.Debug("Rejected token with incomplete claims",
			zap.String("subject", claims.Subject), zap.String("role", string(claims.Role)))
		return nil, errInvalidCredentials
	}

	return claims, nil
}
