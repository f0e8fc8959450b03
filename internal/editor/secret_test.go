package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rileyhilliard/procdash/internal/errors"
)

func TestNewVerifier(t *testing.T) {
	hash, err := HashSecret("art3d", bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		plain    string
		hash     string
		wantCode string
	}{
		{name: "plain", plain: "art3d"},
		{name: "hash", hash: hash},
		{name: "neither", wantCode: errors.ErrAuth},
		{name: "both", plain: "art3d", hash: hash, wantCode: errors.ErrConfig},
		{name: "bad hash", hash: "$2a$nope", wantCode: errors.ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVerifier(tt.plain, tt.hash)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, tt.wantCode), err.Error())
				return
			}
			require.NoError(t, err)
			assert.True(t, v.Verify("art3d"))
			assert.False(t, v.Verify("art3"))
			assert.False(t, v.Verify(""))
		})
	}
}

func TestHashSecret(t *testing.T) {
	hash, err := HashSecret("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, len(hash) > 4 && hash[:2] == "$2")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	_, err = HashSecret("", bcrypt.MinCost)
	assert.Error(t, err)
}
