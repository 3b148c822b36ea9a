package service

import (
	"context"
	"fmt"
	"sort"

	"talon/internal/models"
	"talon/internal/repository"

	"go.uber.org/zap"
)

// weekLength is the number of days in a weekly report, start day included.
const weekLength = 7

type ReportService interface {
	// Daily groups the day's vouchers of the canteen's teachers by class.
	Daily(ctx context.Context, canteen *models.User, date *models.Date) (*models.DailyReport, error)
	// Weekly sums the canteen's vouchers per day over [start, start+6]. A nil
	// start means the seven days ending today.
	Weekly(ctx context.Context, canteen *models.User, start *models.Date) (*models.WeeklyReport, error)
}

type reportService struct {
	users    repository.UserRepository
	vouchers repository.VoucherRepository
	clock    Clock
	logger   *zap.Logger
}

func NewReportService(users repository.UserRepository, vouchers repository.VoucherRepository, clock Clock, logger *zap.Logger) ReportService {
	return &reportService{
		users:    users,
		vouchers: vouchers,
		clock:    clock,
		logger:   logger,
	}
}

func (s *reportService) Daily(ctx context.Context, canteen *models.User, date *models.Date) (*models.DailyReport, error) {
	if err := CheckRole(canteen, models.RoleCanteen); err != nil {
		return nil, err
	}

	day := s.clock.Today()
	if date != nil {
		day = *date
	}

	teacherIDs, err := s.users.TeacherIDsByCanteen(ctx, canteen.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load canteen teachers: %w", err)
	}

	totals, err := s.vouchers.SumByClass(ctx, teacherIDs, day)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily vouchers: %w", err)
	}

	report := buildDailyReport(day, totals)
	s.logger.Debug("Daily report built",
		zap.Int64("canteen_id", canteen.ID),
		zap.Stringer("date", day),
		zap.Int("rows", len(report.Rows)))
	return report, nil
}

func (s *reportService) Weekly(ctx context.Context, canteen *models.User, start *models.Date) (*models.WeeklyReport, error) {
	if err := CheckRole(canteen, models.RoleCanteen); err != nil {
		return nil, err
	}

	first := s.clock.Today().AddDays(-(weekLength - 1))
	if start != nil {
		first = *start
	}
	last := first.AddDays(weekLength - 1)

	teacherIDs, err := s.users.TeacherIDsByCanteen(ctx, canteen.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load canteen teachers: %w", err)
	}

	totals, err := s.vouchers.SumByDay(ctx, teacherIDs, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate weekly vouchers: %w", err)
	}

	report := buildWeeklyReport(first, totals)
	s.logger.Debug("Weekly report built",
		zap.Int64("canteen_id", canteen.ID),
		zap.Stringer("start", first),
		zap.Int64("total", report.GrandTotalAll))
	return report, nil
}

// buildDailyReport orders rows by class name byte-wise so the output does not
// depend on database collation. Classes without vouchers produce no row.
func buildDailyReport(date models.Date, totals []models.ClassTotals) *models.DailyReport {
	sorted := make([]models.ClassTotals, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ClassName < sorted[j].ClassName
	})

	report := &models.DailyReport{
		Date: date,
		Rows: make([]models.DailyRow, 0, len(sorted)),
	}
	for _, t := range sorted {
		report.Rows = append(report.Rows, models.DailyRow{
			ClassName: t.ClassName,
			PaidCount: t.Paid,
			FreeCount: t.Free,
			Total:     t.Paid + t.Free,
		})
		report.Summary.TotalPaid += t.Paid
		report.Summary.TotalFree += t.Free
	}
	report.Summary.TotalAll = report.Summary.TotalPaid + report.Summary.TotalFree
	return report
}

// buildWeeklyReport always emits seven days; days without data are zero.
func buildWeeklyReport(start models.Date, totals []models.DayTotals) *models.WeeklyReport {
	byDay := make(map[string]models.DayTotals, len(totals))
	for _, t := range totals {
		key := t.Date.String()
		acc := byDay[key]
		acc.Paid += t.Paid
		acc.Free += t.Free
		byDay[key] = acc
	}

	report := &models.WeeklyReport{
		StartDate: start,
		EndDate:   start.AddDays(weekLength - 1),
		Days:      make([]models.WeekDay, 0, weekLength),
	}
	for i := 0; i < weekLength; i++ {
		day := start.AddDays(i)
		t := byDay[day.String()]
		report.Days = append(report.Days, models.WeekDay{
			Date:      day,
			TotalPaid: t.Paid,
			TotalFree: t.Free,
			TotalAll:  t.Paid + t.Free,
		})
		report.GrandTotalPaid += t.Paid
		report.GrandTotalFree += t.Free
	}
	report.GrandTotalAll = report.GrandTotalPaid + report.GrandTotalFree
	return report
}
