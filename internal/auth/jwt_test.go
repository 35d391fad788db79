package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickoffhq/clubpush/internal/domain/member"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue(42, member.RolePlayer)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.MemberID)
	assert.Equal(t, member.RolePlayer, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Issue(1, member.RolePlayer)
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Expired(t *testing.T) {
	token, err := NewManager("secret", -time.Minute).Issue(1, member.RolePlayer)
	require.NoError(t, err)

	_, err = NewManager("secret", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminClaim(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, err := m.Issue(7, member.RoleAdmin)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}
