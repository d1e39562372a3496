package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{"simple", "secret1"},
		{"unicode", "contraseña-ñandú"},
		{"spaces", "  padded  "},
		{"max length", strings.Repeat("x", 72)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := hasher.Hash(tt.password)
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, digest)

			assert.True(t, hasher.Verify(tt.password, digest))
			assert.False(t, hasher.Verify(tt.password+"!", digest))
			assert.False(t, hasher.Verify("", digest))
		})
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("secret1")
	require.NoError(t, err)
	second, err := hasher.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptHasher_VerifyMalformedDigest(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	assert.False(t, hasher.Verify("secret1", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Verify("secret1", ""))
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"default", 0, DefaultBcryptCost},
		{"too low", 1, bcrypt.MinCost},
		{"too high", 99, bcrypt.MaxCost},
		{"in range", 12, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewBcryptHasher(tt.cost).cost)
		})
	}
}

func TestBcryptHasher_DigestCarriesCost(t *testing.T) {
	digest, err := NewBcryptHasher(bcrypt.MinCost).Hash("secret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}
