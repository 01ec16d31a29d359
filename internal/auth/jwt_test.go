package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, "codingevents")

	token, err := manager.Generate("auth0|abc", "Sam", "sam@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "auth0|abc", claims.Subject)
	assert.Equal(t, "Sam", claims.Name)
	assert.Equal(t, "sam@example.com", claims.Email)
	assert.Equal(t, "codingevents", claims.Issuer)
}

func TestGenerate_EmptySubject(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, "")
	_, err := manager.Generate("", "Sam", "sam@example.com")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Hour, "").Generate("auth0|abc", "Sam", "")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Hour, "").Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute, "")
	token, err := manager.Generate("auth0|abc", "Sam", "")
	require.NoError(t, err)

	_, err = manager.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, "")

	_, err := manager.Validate("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = manager.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromHeader(t *testing.T) {
	token, err := TokenFromHeader("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	token, err = TokenFromHeader("bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = TokenFromHeader("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = TokenFromHeader("abc123")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = TokenFromHeader("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, ErrMissingToken)
}
