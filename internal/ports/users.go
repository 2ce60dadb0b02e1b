package ports

import "context"

// UserDirectory resolves display names for authenticated users.
type UserDirectory interface {
	// Usernames returns userID -> username for the ids it knows. Unknown ids
	// are simply absent from the result.
	Usernames(ctx context.Context, userIDs []string) (map[string]string, error)
}
