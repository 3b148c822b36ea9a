package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast
var testParams = Argon2Params{Time: 1, MemoryKiB: 1024, Threads: 1}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := NewHasher(testParams)

	for _, pw := range []string{"secret", "пароль-123", " spaced ", strings.Repeat("x", 200)} {
		encoded, err := h.Hash(pw)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))
		assert.True(t, h.Verify(pw, encoded), "password %q should verify", pw)
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	h := NewHasher(testParams)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same-password", a))
	assert.True(t, h.Verify("same-password", b))
}

func TestVerifyRejectsWrongPassword(t *testing.T) {
	h := NewHasher(testParams)

	encoded, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.False(t, h.Verify("correct horsE", encoded))
	assert.False(t, h.Verify("", encoded))
}

func TestVerifyReadsParamsFromHash(t *testing.T) {
	old := NewHasher(testParams)
	encoded, err := old.Hash("pw")
	require.NoError(t, err)

	current := NewHasher(Argon2Params{Time: 2, MemoryKiB: 2048, Threads: 2})
	assert.True(t, current.Verify("pw", encoded))
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewHasher(testParams)

	cases := []string{
		"",
		"plaintext",
		"$2b$12$abcdefghijklmnopqrstuv",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$",
	}
	for _, c := range cases {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("pw", c), "hash %q", c)
		})
	}
}

func TestNewHasherFillsDefaults(t *testing.T) {
	h := NewHasher(Argon2Params{})
	assert.Equal(t, DefaultArgon2Params, h.params)
}
