package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"talon/internal/models"
	"talon/internal/repository"

	"go.uber.org/zap"
)

// PasswordHasher is satisfied by *crypto.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

type AuthService interface {
	RegisterCanteen(ctx context.Context, input models.RegisterCanteenInput) (*models.User, error)
	RegisterTeacher(ctx context.Context, input models.RegisterTeacherInput) (*models.User, error)
	Login(ctx context.Context, login, password string) (*models.TokenResponse, error)
	// ResolveCurrent loads the user named by already validated claims.
	ResolveCurrent(ctx context.Context, claims *models.Claims) (*models.User, error)
	// Authorize runs the full per-request gate: token, user, then role.
	Authorize(ctx context.Context, tokenString string, required ...models.Role) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User, input models.ProfileUpdateInput) (*models.User, error)
	ListCanteens(ctx context.Context) ([]models.CanteenSummary, error)
}

type authService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenService
	logger *zap.Logger

	// verified against when the login is unknown, so both failure paths cost one hash
	dummyHash string
}

func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens TokenService, logger *zap.Logger) (AuthService, error) {
	dummyHash, err := hasher.Hash("talon-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &authService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		dummyHash: dummyHash,
	}, nil
}

func (s *authService) RegisterCanteen(ctx context.Context, input models.RegisterCanteenInput) (*models.User, error) {
	user := &models.User{
		Login:                  input.Login,
		EducationalInstitution: input.EducationalInstitution,
		Role:                   models.RoleCanteen,
	}
	if err := s.register(ctx, user, input.Password); err != nil {
		return nil, err
	}

	s.logger.Info("Canteen registered", zap.String("login", user.Login), zap.Int64("id", user.ID))
	return user, nil
}

func (s *authService) RegisterTeacher(ctx context.Context, input models.RegisterTeacherInput) (*models.User, error) {
	className := strings.TrimSpace(input.ClassName)
	if className == "" {
		return nil, newError(ErrValidation, "Class name must not be empty")
	}

	canteen, err := s.users.GetCanteen(ctx, input.CanteenID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up canteen: %w", err)
	}
	if canteen == nil {
		return nil, newError(ErrNotFound, "Canteen not found")
	}

	canteenID := canteen.ID
	user := &models.User{
		Login:                  input.Login,
		EducationalInstitution: input.EducationalInstitution,
		Role:                   models.RoleTeacher,
		ClassName:              &className,
		CanteenID:              &canteenID,
	}
	if err := s.register(ctx, user, input.Password); err != nil {
		return nil, err
	}

	s.logger.Info("Teacher registered",
		zap.String("login", user.Login),
		zap.Int64("id", user.ID),
		zap.Int64("canteen_id", canteenID))
	return user, nil
}

// register checks the login, hashes the password and inserts the user in one
// statement; the unique index on login settles concurrent registrations.
func (s *authService) register(ctx context.Context, user *models.User, password string) error {
	if user.Login == "" || password == "" {
		return newError(ErrValidation, "Login and password are required")
	}

	existing, err := s.users.GetByLogin(ctx, user.Login)
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if existing != nil {
		return newError(ErrConflict, "Login already exists")
	}

	user.PasswordHash, err = s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return newError(ErrConflict, "Login already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, login, password string) (*models.TokenResponse, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if user == nil {
		s.hasher.Verify(password, s.dummyHash)
		return nil, errInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}

	tokenString, expiresAt, err := s.tokens.Issue(user.Login, user.Role)
	if err != nil {
		s.logger.Error("Failed to generate JWT token", zap.Error(err))
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("User logged in successfully.", zap.String("login", user.Login), zap.String("role", string(user.Role)))

	return &models.TokenResponse{
		AccessToken: tokenString,
		TokenType:   "bearer",
		Role:        user.Role,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *authService) ResolveCurrent(ctx context.Context, claims *models.Claims) (*models.User, error) {
	if claims == nil || claims.Subject == "" {
		return nil, errInvalidCredentials
	}

	user, err := s.users.GetByLogin(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}
	if user == nil {
		// deleted or renamed since the token was issued
		return nil, errInvalidCredentials
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, user *models.User, input models.ProfileUpdateInput) (*models.User, error) {
	updated := *user

	if input.EducationalInstitution != nil {
		updated.EducationalInstitution = *input.EducationalInstitution
	}

	if input.Password != nil && *input.Password != "" {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			s.logger.Error("Failed to hash password", zap.Error(err))
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updated.PasswordHash = hash
	}

	// class and canteen link are teacher-only; canteens silently keep theirs empty
	if updated.Role == models.RoleTeacher {
		if input.ClassName != nil {
			className := strings.TrimSpace(*input.ClassName)
			updated.ClassName = &className
		}
		if input.CanteenID != nil {
			canteen, err := s.users.GetCanteen(ctx, *input.CanteenID)
			if err != nil {
				return nil, fmt.Errorf("failed to look up canteen: %w", err)
			}
			if canteen == nil {
				return nil, newError(ErrNotFound, "Canteen not found")
			}
			canteenID := canteen.ID
			updated.CanteenID = &canteenID
		}
	}

	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("Profile updated", zap.String("login", updated.Login))
	return &updated, nil
}

func (s *authService) ListCanteens(ctx context.Context) ([]models.CanteenSummary, error) {
	return s.users.ListCanteens(ctx)
}
