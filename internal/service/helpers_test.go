package service

import (
	"context"
	"testing"
	"time"

	"talon/internal/crypto"
	"talon/internal/models"
	"talon/internal/repository"
	"talon/internal/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSecret = []byte("test-secret-with-enough-length-123")

// fakeClock can be moved by tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type env struct {
	clock    *fakeClock
	users    repository.UserRepository
	vouchers repository.VoucherRepository
	tokens   TokenService
	auth     AuthService
	voucher  VoucherService
	reports  ReportService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewDB(t)
	logger := zap.NewNop()
	clock := &fakeClock{now: time.Date(2025, time.May, 14, 9, 30, 0, 0, time.UTC)}

	e := &env{
		clock:    clock,
		users:    repository.NewUserRepository(db, logger),
		vouchers: repository.NewVoucherRepository(db, logger),
	}

	var err error
	e.tokens, err = NewTokenService(testSecret, time.Hour, logger, WithClock(clock.Now))
	require.NoError(t, err)

	hasher := crypto.NewHasher(crypto.Argon2Params{Time: 1, MemoryKiB: 1024, Threads: 1})
	e.auth, err = NewAuthService(e.users, hasher, e.tokens, logger)
	require.NoError(t, err)

	c := Clock{Now: clock.Now, Location: time.UTC}
	e.voucher = NewVoucherService(e.vouchers, c, logger)
	e.reports = NewReportService(e.users, e.vouchers, c, logger)
	return e
}

func (e *env) canteen(t *testing.T, login string) *models.User {
	t.Helper()
	u, err := e.auth.RegisterCanteen(context.Background(), models.RegisterCanteenInput{
		Login: login, Password: "password", EducationalInstitution: "School 1",
	})
	require.NoError(t, err)
	return u
}

func (e *env) teacher(t *testing.T, login, class string, canteenID int64) *models.User {
	t.Helper()
	u, err := e.auth.RegisterTeacher(context.Background(), models.RegisterTeacherInput{
		Login: login, Password: "password", EducationalInstitution: "School 1",
		CanteenID: canteenID, ClassName: class,
	})
	require.NoError(t, err)
	return u
}

func (e *env) submit(t *testing.T, teacher *models.User, date models.Date, paid, free int64) *models.Voucher {
	t.Helper()
	v, err := e.voucher.Submit(context.Background(), teacher, models.SubmitVoucherInput{
		Date: &date, PaidCount: &paid, FreeCount: &free,
	})
	require.NoError(t, err)
	return v
}

func count(n int64) *int64 { return &n }
