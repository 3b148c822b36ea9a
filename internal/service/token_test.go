package service

import (
	"strings"
	"testing"
	"time"

	"talon/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTokens(t *testing.T, clock *fakeClock) TokenService {
	t.Helper()
	s, err := NewTokenService(testSecret, 30*time.Minute, zap.NewNop(), WithClock(clock.Now))
	require.NoError(t, err)
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokens(t, clock)

	for _, role := range []models.Role{models.RoleTeacher, models.RoleCanteen} {
		tok, exp, err := tokens.Issue("user-"+string(role), role)
		require.NoError(t, err)
		assert.True(t, exp.Equal(clock.now.Add(30*time.Minute)))

		claims, err := tokens.Validate(tok)
		require.NoError(t, err)
		assert.Equal(t, "user-"+string(role), claims.Subject)
		assert.Equal(t, role, claims.Role)
		assert.NotEmpty(t, claims.ID)
	}
}

func TestTokenExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokens(t, clock)

	tok, _, err := tokens.IssueWithTTL("alice", models.RoleTeacher, 10*time.Minute)
	require.NoError(t, err)

	clock.Advance(10*time.Minute - time.Second)
	_, err = tokens.Validate(tok)
	require.NoError(t, err)

	// exactly at exp the token is no longer valid
	clock.Advance(time.Second)
	_, err = tokens.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	clock.Advance(time.Hour)
	_, err = tokens.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenExpiryIgnoresLocalZone(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*60*60)
	clock := &fakeClock{now: time.Date(2025, time.January, 10, 17, 0, 0, 0, zone)}
	tokens := newTestTokens(t, clock)

	tok, exp, err := tokens.Issue("alice", models.RoleCanteen)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, exp.Location())
	assert.True(t, exp.Equal(clock.now.Add(30*time.Minute)))

	clock.now = clock.now.In(time.UTC).Add(29 * time.Minute)
	_, err = tokens.Validate(tok)
	assert.NoError(t, err)
}

func TestTokenTamperingRejected(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tokens := newTestTokens(t, clock)

	tok, _, err := tokens.Issue("alice", models.RoleTeacher)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	// swap in a payload claiming the canteen role, keep the old signature
	forged, _, err := tokens.Issue("alice", models.RoleCanteen)
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-jwt",
		"tampered":       tampered,
		"truncated sig":  tok[:len(tok)-4],
		"wrong secret":   signWith(t, []byte("another-secret"), jwt.SigningMethodHS256, validClaims(clock)),
		"alg none":       signWith(t, jwt.UnsafeAllowNoneSignatureType, jwt.SigningMethodNone, validClaims(clock)),
		"hs512":          signWith(t, testSecret, jwt.SigningMethodHS512, validClaims(clock)),
		"missing sub":    signWith(t, testSecret, jwt.SigningMethodHS256, withClaims(clock, "", models.RoleTeacher)),
		"unknown role":   signWith(t, testSecret, jwt.SigningMethodHS256, withClaims(clock, "alice", "admin")),
		"missing role":   signWith(t, testSecret, jwt.SigningMethodHS256, withClaims(clock, "alice", "")),
		"missing expiry": signWith(t, testSecret, jwt.SigningMethodHS256, &models.Claims{Role: models.RoleTeacher, RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}}),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			claims, err := tokens.Validate(raw)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			// one message for every cause
			assert.Equal(t, "Could not validate credentials", err.Error())
		})
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService(nil, time.Hour, zap.NewNop())
	assert.Error(t, err)
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	tokens := newTestTokens(t, &fakeClock{now: time.Now()})
	_, _, err := tokens.Issue("alice", "admin")
	assert.Error(t, err)
	_, _, err = tokens.Issue("", models.RoleTeacher)
	assert.Error(t, err)
}

func validClaims(clock *fakeClock) *models.Claims {
	return withClaims(clock, "alice", models.RoleTeacher)
}

func withClaims(clock *fakeClock, subject string, role models.Role) *models.Claims {
	return &models.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}
}

func signWith(t *testing.T, key interface{}, method jwt.SigningMethod, claims *models.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}
