package ports

import "context"

// AccountPort updates the profile of a player account.
type AccountPort interface {
	// UpdateProfile sets the username and display name shown to other players.
	// Returns an error if the account backend rejects the update (for example
	// because the username is taken).
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
