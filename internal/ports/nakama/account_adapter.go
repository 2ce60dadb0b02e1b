package nakama

import (
	"context"

	"durak/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaAccountAdapter implements ports.AccountPort and ports.UserDirectory
// on Nakama's account and user APIs.
type NakamaAccountAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk runtime.NakamaModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// UpdateProfile updates the account username and display name in Nakama.
func (a *NakamaAccountAdapter) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	return a.nk.AccountUpdateId(ctx, userID, username, nil, displayName, "", "", "", "")
}

// Usernames resolves user ids in one UsersGetId call. Ids Nakama does not
// know are left out of the result.
func (a *NakamaAccountAdapter) Usernames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := a.nk.UsersGetId(ctx, ids, nil)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		name := u.GetUsername()
		if name == "" {
			name = u.GetDisplayName()
		}
		if name != "" {
			out[u.GetId()] = name
		}
	}
	return out, nil
}

var (
	_ ports.AccountPort   = (*NakamaAccountAdapter)(nil)
	_ ports.UserDirectory = (*NakamaAccountAdapter)(nil)
)
