package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueAndValidate(t *testing.T) {
	m, err := NewManager(testSecret, time.Hour)
	require.NoError(t, err)

	raw, err := m.Issue()
	require.NoError(t, err)

	claims, err := m.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestShortSecretRejected(t *testing.T) {
	_, err := NewManager([]byte("short"), time.Hour)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	m, err := NewManager(testSecret, time.Minute)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	raw, err := m.Issue()
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	other, err := NewManager([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	require.NoError(t, err)
	raw, err := other.Issue()
	require.NoError(t, err)

	m, err := NewManager(testSecret, time.Hour)
	require.NoError(t, err)
	_, err = m.Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsNonAdminRole(t *testing.T) {
	m, err := NewManager(testSecret, time.Hour)
	require.NoError(t, err)

	claims := Claims{
		Role: "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = m.Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsEmpty(t *testing.T) {
	m, err := NewManager(testSecret, time.Hour)
	require.NoError(t, err)
	_, err = m.Validate("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
