package resettoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndValidate(t *testing.T) {
	plain, hash, err := New()
	require.NoError(t, err)
	require.NotEmpty(t, plain)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, plain, hash)

	assert.True(t, Validate(hash, plain, time.Now().Add(TTL)))
}

func TestValidate_WrongToken(t *testing.T) {
	_, hash, err := New()
	require.NoError(t, err)

	assert.False(t, Validate(hash, "another-token", time.Now().Add(TTL)))
}

func TestValidate_Expired(t *testing.T) {
	plain, hash, err := New()
	require.NoError(t, err)

	// совпадающий токен с истекшим сроком не проходит
	assert.False(t, Validate(hash, plain, time.Now().Add(-time.Second)))
}
