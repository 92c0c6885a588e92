package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference-management-api/models"
)

func TestResolveRoleNewAccount(t *testing.T) {
	for _, role := range []string{
		models.RoleOrganizer, models.RoleAuthor, models.RoleReviewer, models.RoleParticipant,
	} {
		got, err := ResolveRole("", role)
		require.NoError(t, err)
		assert.Equal(t, role, got)
	}
}

func TestResolveRoleOrganizerExclusivity(t *testing.T) {
	// Organizer account, organizer login: reuse.
	got, err := ResolveRole(models.RoleOrganizer, models.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrganizer, got)

	// Organizer account, non-organizer login: rejected, never merged.
	_, err = ResolveRole(models.RoleOrganizer, models.RoleReviewer)
	assert.ErrorIs(t, err, ErrEmailReservedForOrganizer)

	// Non-organizer account, organizer login: rejected the other way.
	_, err = ResolveRole(models.RoleAuthor, models.RoleOrganizer)
	assert.ErrorIs(t, err, ErrEmailNotOrganizer)
}

func TestResolveRoleSwitchingBetweenNonOrganizerRoles(t *testing.T) {
	got, err := ResolveRole(models.RoleAuthor, models.RoleReviewer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleReviewer, got)

	got, err = ResolveRole(models.RoleParticipant, models.RoleAuthor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAuthor, got)

	got, err = ResolveRole(models.RoleReviewer, models.RoleReviewer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleReviewer, got)
}

func TestResolveRoleRejectsUnknownRole(t *testing.T) {
	_, err := ResolveRole("", "admin")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
