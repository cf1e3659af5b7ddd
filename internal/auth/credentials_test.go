package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizeWithActionSecret(t *testing.T) {
	creds := Credentials{AdminReset: "reset-secret", MenuUpdate: "menu-secret"}

	assert.NoError(t, creds.Authorize(ActionAdminReset, "reset-secret"))
	assert.NoError(t, creds.Authorize(ActionMenuUpdate, "menu-secret"))
}

func TestAuthorizeIncorrectPassword(t *testing.T) {
	creds := Credentials{AdminReset: "reset-secret"}

	err := creds.Authorize(ActionAdminReset, "wrong")
	assert.ErrorIs(t, err, ErrIncorrectCredential)
}

func TestAuthorizeFallsBackToAdminSecret(t *testing.T) {
	creds := Credentials{Admin: "shared"}

	assert.NoError(t, creds.Authorize(ActionAdminReset, "shared"))
	assert.NoError(t, creds.Authorize(ActionMenuUpdate, "shared"))
}

func TestActionSecretTakesPrecedenceOverAdmin(t *testing.T) {
	creds := Credentials{AdminReset: "specific", Admin: "shared"}

	assert.NoError(t, creds.Authorize(ActionAdminReset, "specific"))
	assert.ErrorIs(t, creds.Authorize(ActionAdminReset, "shared"), ErrIncorrectCredential)
}

func TestAuthorizeUnconfiguredActionIsBlocked(t *testing.T) {
	creds := Credentials{}

	err := creds.Authorize(ActionAdminReset, "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	// An empty password never matches an unset secret.
	err = creds.Authorize(ActionMenuUpdate, "anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAuthorizeUnknownAction(t *testing.T) {
	creds := Credentials{Admin: "shared"}

	err := creds.Authorize("unknown_action", "shared")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
