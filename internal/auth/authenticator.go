// Package auth holds account credentials and session tokens.
//
// Accounts are created and checked through an Authenticator; a successful
// signup or login is turned into a session by JWTManager.
package auth

import (
	"context"

	"github.com/mmynk/hisab/internal/models"
)

// Authenticator creates accounts and checks sign-in credentials.
type Authenticator interface {
	// Register creates an account. Username and email must both be unused.
	Register(ctx context.Context, username, email, credential string) (*models.User, error)

	// Authenticate returns the account owning email when credential matches it.
	// It returns ErrInvalidCredentials for an unknown email or a wrong credential.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
}
