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

type VoucherRepository interface {
	// Create inserts a voucher. A second voucher for the same teacher and day
	// fails with ErrDuplicate; the unique index is the authoritative check.
	Create(ctx context.Context, voucher *models.Voucher) error
	GetByTeacherAndDate(ctx context.Context, teacherID int64, date models.Date) (*models.Voucher, error)
	// ListByTeacher returns the teacher's vouchers in [from, to], newest first.
	ListByTeacher(ctx context.Context, teacherID int64, from, to models.Date) ([]models.Voucher, error)
	SumByClass(ctx context.Context, teacherIDs []int64, date models.Date) ([]models.ClassTotals, error)
	SumByDay(ctx context.Context, teacherIDs []int64, from, to models.Date) ([]models.DayTotals, error)
}

type voucherRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewVoucherRepository(db *sqlx.DB, logger *zap.Logger) VoucherRepository {
	return &voucherRepository{db: db, logger: logger}
}

func (r *voucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	query := r.db.Rebind(`
		INSERT INTO vouchers (voucher_date, paid_count, free_count, class_name, teacher_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.QueryRowxContext(ctx, query,
		voucher.Date,
		voucher.PaidCount,
		voucher.FreeCount,
		voucher.ClassName,
		voucher.TeacherID,
	).Scan(&voucher.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error("Failed to create voucher",
			zap.Int64("teacher_id", voucher.TeacherID),
			zap.Stringer("date", voucher.Date),
			zap.Error(err))
		return fmt.Errorf("failed to create voucher: %w", err)
	}

	return nil
}

func (r *voucherRepository) GetByTeacherAndDate(ctx context.Context, teacherID int64, date models.Date) (*models.Voucher, error) {
	var voucher models.Voucher
	query := r.db.Rebind(`
		SELECT id, voucher_date, paid_count, free_count, class_name, teacher_id
		FROM vouchers
		WHERE teacher_id = ? AND voucher_date = ?
	`)

	err := r.db.GetContext(ctx, &voucher, query, teacherID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get voucher", zap.Int64("teacher_id", teacherID), zap.Stringer("date", date), zap.Error(err))
		return nil, fmt.Errorf("failed to get voucher: %w", err)
	}

	return &voucher, nil
}

func (r *voucherRepository) ListByTeacher(ctx context.Context, teacherID int64, from, to models.Date) ([]models.Voucher, error) {
	vouchers := []models.Voucher{}
	query := r.db.Rebind(`
		SELECT id, voucher_date, paid_count, free_count, class_name, teacher_id
		FROM vouchers
		WHERE teacher_id = ? AND voucher_date BETWEEN ? AND ?
		ORDER BY voucher_date DESC
	`)

	if err := r.db.SelectContext(ctx, &vouchers, query, teacherID, from, to); err != nil {
		r.logger.Error("Failed to list vouchers", zap.Int64("teacher_id", teacherID), zap.Error(err))
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}

	return vouchers, nil
}

func (r *voucherRepository) SumByClass(ctx context.Context, teacherIDs []int64, date models.Date) ([]models.ClassTotals, error) {
	rows := []models.ClassTotals{}
	if len(teacherIDs) == 0 {
		return rows, nil
	}

	query, args, err := sqlx.In(`
		SELECT class_name, COALESCE(SUM(paid_count), 0) AS paid, COALESCE(SUM(free_count), 0) AS free
		FROM vouchers
		WHERE teacher_id IN (?) AND voucher_date = ?
		GROUP BY class_name
	`, teacherIDs, date)
	if err != nil {
		return nil, fmt.Errorf("failed to build class totals query: %w", err)
	}

	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to sum vouchers by class", zap.Stringer("date", date), zap.Error(err))
		return nil, fmt.Errorf("failed to sum vouchers by class: %w", err)
	}

	return rows, nil
}

func (r *voucherRepository) SumByDay(ctx context.Context, teacherIDs []int64, from, to models.Date) ([]models.DayTotals, error) {
	rows := []models.DayTotals{}
	if len(teacherIDs) == 0 {
		return rows, nil
	}

	query, args, err := sqlx.In(`
		SELECT voucher_date, COALESCE(SUM(paid_count), 0) AS paid, COALESCE(SUM(free_count), 0) AS free
		FROM vouchers
		WHERE teacher_id IN (?) AND voucher_date BETWEEN ? AND ?
		GROUP BY voucher_date
		ORDER BY voucher_date
	`, teacherIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build day totals query: %w", err)
	}

	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to sum vouchers by day",
			zap.Stringer("from", from), zap.Stringer("to", to), zap.Error(err))
		return nil, fmt.Errorf("failed to sum vouchers by day: %w", err)
	}

	return rows, nil
}
