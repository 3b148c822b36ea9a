package service

import (
	"context"
	"errors"
	"fmt"

	"talon/internal/models"
	"talon/internal/repository"

	"go.uber.org/zap"
)

type VoucherService interface {
	// Submit files the teacher's voucher for the given day, or today when the
	// date is missing. Only one voucher per teacher and day is accepted.
	Submit(ctx context.Context, teacher *models.User, input models.SubmitVoucherInput) (*models.Voucher, error)
	// ListRecent returns the teacher's vouchers for the last seven days, newest first.
	ListRecent(ctx context.Context, teacher *models.User) ([]models.Voucher, error)
}

type voucherService struct {
	vouchers repository.VoucherRepository
	clock    Clock
	logger   *zap.Logger
}

func NewVoucherService(vouchers repository.VoucherRepository, clock Clock, logger *zap.Logger) VoucherService {
	return &voucherService{
		vouchers: vouchers,
		clock:    clock,
		logger:   logger,
	}
}

func (s *voucherService) Submit(ctx context.Context, teacher *models.User, input models.SubmitVoucherInput) (*models.Voucher, error) {
	if err := CheckRole(teacher, models.RoleTeacher); err != nil {
		return nil, err
	}
	if input.PaidCount == nil || input.FreeCount == nil {
		return nil, newError(ErrValidation, "paid_count and free_count are required")
	}
	paid, free := *input.PaidCount, *input.FreeCount
	if paid < 0 || free < 0 {
		return nil, newError(ErrValidation, "Voucher counts must not be negative")
	}

	date := s.clock.Today()
	if input.Date != nil {
		date = *input.Date
	}

	// fast path only; the unique index decides under concurrent submissions
	existing, err := s.vouchers.GetByTeacherAndDate(ctx, teacher.ID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing voucher: %w", err)
	}
	if existing != nil {
		return nil, errVoucherExists
	}

	// the class is copied so later profile edits leave history untouched
	className := models.NoClassName
	if teacher.ClassName != nil && *teacher.ClassName != "" {
		className = *teacher.ClassName
	}

	voucher := &models.Voucher{
		Date:      date,
		PaidCount: paid,
		FreeCount: free,
		ClassName: className,
		TeacherID: teacher.ID,
	}
	if err := s.vouchers.Create(ctx, voucher); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errVoucherExists
		}
		return nil, fmt.Errorf("failed to save voucher: %w", err)
	}

	s.logger.Info("Voucher submitted",
		zap.Int64("teacher_id", teacher.ID),
		zap.Stringer("date", date),
		zap.Int64("paid", voucher.PaidCount),
		zap.Int64("free", voucher.FreeCount))
	return voucher, nil
}

var errVoucherExists = &Error{Kind: ErrConflict, Detail: "Voucher for this date already submitted"}

func (s *voucherService) ListRecent(ctx context.Context, teacher *models.User) ([]models.Voucher, error) {
	if err := CheckRole(teacher, models.RoleTeacher); err != nil {
		return nil, err
	}

	today := s.clock.Today()
	return s.vouchers.ListByTeacher(ctx, teacher.ID, today.AddDays(-6), today)
}
