package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"talon/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// GetByLogin is an exact, case-sensitive match. A missing user is (nil, nil).
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// GetCanteen returns the user with the given id only if it has the canteen role.
	GetCanteen(ctx context.Context, id int64) (*models.User, error)
	ListCanteens(ctx context.Context) ([]models.CanteenSummary, error)
	// Update persists the mutable profile fields. Role and login never change.
	Update(ctx context.Context, user *models.User) error
	TeacherIDsByCanteen(ctx context.Context, canteenID int64) ([]int64, error)
}

type userRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUserRepository(db *sqlx.DB, logger *zap.Logger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

const userColumns = `id, login, password_hash, educational_institution, role, class_name, canteen_id`

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`
		INSERT INTO users (login, password_hash, educational_institution, role, class_name, canteen_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.QueryRowxContext(ctx, query,
		user.Login,
		user.PasswordHash,
		user.EducationalInstitution,
		string(user.Role),
		user.ClassName,
		user.CanteenID,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error("Failed to create user", zap.String("login", user.Login), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE login = ?`, login)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) GetCanteen(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? AND role = ?`, id, string(models.RoleCanteen))
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) ListCanteens(ctx context.Context) ([]models.CanteenSummary, error) {
	canteens := []models.CanteenSummary{}
	query := r.db.Rebind(`
		SELECT id, login, educational_institution
		FROM users
		WHERE role = ?
		ORDER BY id
	`)

	if err := r.db.SelectContext(ctx, &canteens, query, string(models.RoleCanteen)); err != nil {
		r.logger.Error("Failed to list canteens", zap.Error(err))
		return nil, fmt.Errorf("failed to list canteens: %w", err)
	}
	return canteens, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`
		UPDATE users
		SET educational_institution = ?, password_hash = ?, class_name = ?, canteen_id = ?
		WHERE id = ?
	`)

	result, err := r.db.ExecContext(ctx, query,
		user.EducationalInstitution,
		user.PasswordHash,
		user.ClassName,
		user.CanteenID,
		user.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update user", zap.Int64("id", user.ID), zap.Error(err))
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *userRepository) TeacherIDsByCanteen(ctx context.Context, canteenID int64) ([]int64, error) {
	ids := []int64{}
	query := r.db.Rebind(`SELECT id FROM users WHERE role = ? AND canteen_id = ? ORDER BY id`)

	if err := r.db.SelectContext(ctx, &ids, query, string(models.RoleTeacher), canteenID); err != nil {
		r.logger.Error("Failed to list teachers of canteen", zap.Int64("canteen_id", canteenID), zap.Error(err))
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	return ids, nil
}
