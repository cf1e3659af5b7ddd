package auth

import (
	"errors"
	"fmt"
)

// Guarded actions. Each has its own secret, falling back to the shared admin
// secret when unset. An action with neither configured is blocked outright:
// an empty password is never an open door.
const (
	ActionAdminReset = "admin_reset"
	ActionMenuUpdate = "menu_update"
)

var (
	ErrNotConfigured       = errors.New("credential not configured")
	ErrIncorrectCredential = errors.New("incorrect credential")
)

// Credentials holds the configured action secrets.
type Credentials struct {
	AdminReset string
	MenuUpdate string
	Admin      string
}

func (c Credentials) secretFor(action string) string {
	switch action {
	case ActionAdminReset:
		if c.AdminReset != "" {
			return c.AdminReset
		}
	case ActionMenuUpdate:
		if c.MenuUpdate != "" {
			return c.MenuUpdate
		}
	default:
		return ""
	}
	return c.Admin
}

// Authorize checks the supplied password for an action with exact string
// comparison.
func (c Credentials) Authorize(action, password string) error {
	secret := c.secretFor(action)
	if secret == "" {
		return fmt.Errorf("%s: %w", action, ErrNotConfigured)
	}
	if password != secret {
		return fmt.Errorf("%s: %w", action, ErrIncorrectCredential)
	}
	return nil
}
