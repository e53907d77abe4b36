package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *Issuer {
	return NewIssuer("test-secret-0123456789", time.Hour, 24*time.Hour)
}

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := newTestIssuer()

	pair, err := issuer.Issue(42, true)
	require.NoError(t, err)

	claims, err := issuer.Parse(pair.Access, TokenTypeAccess)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.True(t, claims.IsStaff)
	assert.NotEmpty(t, claims.ID)
}

func TestIssuer_RejectsWrongType(t *testing.T) {
	issuer := newTestIssuer()

	pair, err := issuer.Issue(7, false)
	require.NoError(t, err)

	_, err = issuer.Parse(pair.Refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse(pair.Refresh, TokenTypeRefresh)
	assert.NoError(t, err)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	issuer := newTestIssuer()
	issued := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	pair, err := issuer.Issue(7, false)
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = issuer.Parse(pair.Access, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsForeignSecret(t *testing.T) {
	pair, err := NewIssuer("another-secret-0123456789", time.Hour, time.Hour).Issue(1, false)
	require.NoError(t, err)

	_, err = newTestIssuer().Parse(pair.Access, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
}
