package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus-tracker-backend/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &model.User{ID: 42, Name: "Parent", Role: model.RoleParent}

	raw, err := NewToken("test-secret", user, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("test-secret", raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, model.RoleParent, claims.Role)
	assert.Equal(t, "Parent", claims.Name)
}

func TestParseTokenRejectsMissing(t *testing.T) {
	_, err := ParseToken("test-secret", "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsMalformed(t *testing.T) {
	_, err := ParseToken("test-secret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	user := &model.User{ID: 1, Role: model.RoleDriver}
	raw, err := NewToken("secret-a", user, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("secret-b", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	user := &model.User{ID: 1, Role: model.RoleDriver}
	raw, err := NewToken("test-secret", user, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("test-secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsUnknownRole(t *testing.T) {
	user := &model.User{ID: 1, Role: model.Role("superuser")}
	raw, err := NewToken("test-secret", user, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("test-secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
