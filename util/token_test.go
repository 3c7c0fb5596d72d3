package util

import (
	"testing"

	"solarops/dao/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 1)

	msg := &JWTMessage{UserID: 42, Username: "pm.chen", Role: model.RoleAdmin}
	token, err := tm.CreateToken(msg)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := tm.CheckToken(token)
	require.NoError(t, err)
	assert.Equal(t, *msg, got)
}

func TestCheckTokenWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", 1).CreateToken(&JWTMessage{UserID: 1})
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 1).CheckToken(token)
	assert.Error(t, err)
}

func TestCheckTokenGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", 1).CheckToken("not.a.token")
	assert.Error(t, err)
}

func TestCheckTokenExpired(t *testing.T) {
	tm := NewTokenManager("secret", -1) // issued already expired
	token, err := tm.CreateToken(&JWTMessage{UserID: 1})
	require.NoError(t, err)

	_, err = tm.CheckToken(token)
	assert.Error(t, err)
}
