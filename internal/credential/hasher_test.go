package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fastConfig() Config {
	return Config{MemoryKiB: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(fastConfig())
	require.NoError(t, err)
	return h
}

func TestHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher(t)

	encoded, err := h.Hash("password123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$"), encoded)

	ok, err := h.Verify("password123", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("password124", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_FreshSaltPerCall(t *testing.T) {
	h := newTestHasher(t)

	first, err := h.Hash("same-input")
	require.NoError(t, err)
	second, err := h.Hash("same-input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHasher_VerifyLegacyBcrypt(t *testing.T) {
	h := newTestHasher(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := h.Verify("password123", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong-password", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, h.NeedsUpgrade(string(legacy)))
}

func TestHasher_NeedsUpgrade(t *testing.T) {
	weak := newTestHasher(t)
	encoded, err := weak.Hash("password123")
	require.NoError(t, err)

	assert.False(t, weak.NeedsUpgrade(encoded))

	strongCfg := fastConfig()
	strongCfg.Time = 2
	strong, err := NewHasher(strongCfg)
	require.NoError(t, err)
	assert.True(t, strong.NeedsUpgrade(encoded))

	assert.False(t, strong.NeedsUpgrade("garbage"))
}

func TestHasher_VerifyMalformed(t *testing.T) {
	h := newTestHasher(t)

	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{"empty", "", ErrUnsupported},
		{"plain text", "password123", ErrUnsupported},
		{"truncated argon", "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA", ErrMalformedHash},
		{"bad version", "$argon2id$v=1$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5", ErrMalformedHash},
		{"unknown param", "$argon2id$v=19$m=8192,t=1,x=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5", ErrMalformedHash},
		{"memory too low", "$argon2id$v=19$m=16,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5", ErrMalformedHash},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify("password123", tt.encoded)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewHasher_RejectsWeakConfig(t *testing.T) {
	cfg := fastConfig()
	cfg.MemoryKiB = 1024
	_, err := NewHasher(cfg)
	assert.Error(t, err)

	cfg = fastConfig()
	cfg.SaltLength = 8
	_, err = NewHasher(cfg)
	assert.Error(t, err)
}
