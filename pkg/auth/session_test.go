package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestNewSessionExtractsHandle(t *testing.T) {
	token := signedToken(t, &Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	sess, err := NewSession(token)
	require.NoError(t, err)

	handle, ok := sess.CurrentHandle()
	assert.True(t, ok)
	assert.Equal(t, "alice", handle)
	assert.Equal(t, token, sess.Token())
}

func TestNewSessionFallsBackToSubject(t *testing.T) {
	token := signedToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "bob"},
	})

	sess, err := NewSession(token)
	require.NoError(t, err)

	handle, _ := sess.CurrentHandle()
	assert.Equal(t, "bob", handle)
}

func TestNewSessionRejectsGarbage(t *testing.T) {
	_, err := NewSession("not-a-token")
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	sess, err := NewSession(signedToken(t, &Claims{Username: "alice"}))
	require.NoError(t, err)

	sess.Clear()

	_, ok := sess.CurrentHandle()
	assert.False(t, ok)
	assert.Empty(t, sess.Token())
}
