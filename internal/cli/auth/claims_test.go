package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return tok
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := sign(t, jwt.MapClaims{"sub": "42", "role": "admin", "exp": exp.Unix()})

	c, err := Inspect("  " + tok + "\n")
	require.NoError(t, err)
	assert.Equal(t, "42", c.Subject)
	assert.Equal(t, "admin", c.Role)
	assert.True(t, exp.Equal(c.ExpiresAt))
	assert.False(t, c.Expired(time.Now()))
	assert.True(t, c.Expired(exp.Add(time.Second)))
}

func TestInspect_NoExpiry(t *testing.T) {
	c, err := Inspect(sign(t, jwt.MapClaims{"sub": "7"}))
	require.NoError(t, err)
	assert.Equal(t, "7", c.Subject)
	assert.Empty(t, c.Role)
	assert.False(t, c.Expired(time.Now()))
}

func TestInspect_Errors(t *testing.T) {
	_, err := Inspect(" ")
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = Inspect("not-a-jwt")
	assert.Error(t, err)
}
