package domain

import "time"

// LobbyStatus is the lifecycle stage of a lobby. It only moves forward:
// open -> in-game -> closed, or open -> closed.
type LobbyStatus string

const (
	LobbyOpen   LobbyStatus = "open"
	LobbyInGame LobbyStatus = "in-game"
	LobbyClosed LobbyStatus = "closed"
)

// LobbySeat is a member of a lobby and their 0-based seat.
type LobbySeat struct {
	UserID string `json:"userId"`
	Seat   int    `json:"seat"`
}

// Lobby is a pre-game room.
type Lobby struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	OwnerID       string      `json:"ownerId"`
	Status        LobbyStatus `json:"status"`
	Players       []LobbySeat `json:"players"`
	CurrentGameID string      `json:"currentGameId,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`

	// Version is the storage version the aggregate was loaded at.
	Version string `json:"-"`
}

// NewLobby creates an open lobby with the owner in seat 0.
func NewLobby(id, name, ownerID string, now time.Time) *Lobby {
	return &Lobby{
		ID:        id,
		Name:      name,
		OwnerID:   ownerID,
		Status:    LobbyOpen,
		Players:   []LobbySeat{{UserID: ownerID, Seat: 0}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsMember reports whether userID holds a seat.
func (l *Lobby) IsMember(userID string) bool {
	for _, p := range l.Players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// AddMember seats userID at the next free seat. It returns false if the user
// was already seated.
func (l *Lobby) AddMember(userID string) bool {
	if l.IsMember(userID) {
		return false
	}
	l.Players = append(l.Players, LobbySeat{UserID: userID, Seat: len(l.Players)})
	return true
}

// RemoveMember drops userID and renumbers the remaining seats densely from 0.
// It returns how many seats were removed.
func (l *Lobby) RemoveMember(userID string) int {
	kept := make([]LobbySeat, 0, len(l.Players))
	for _, p := range l.Players {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	removed := len(l.Players) - len(kept)
	for i := range kept {
		kept[i].Seat = i
	}
	l.Players = kept
	return removed
}

// MemberIDs returns the seated user ids in seat order.
func (l *Lobby) MemberIDs() []string {
	ids := make([]string, len(l.Players))
	for i, p := range l.Players {
		ids[i] = p.UserID
	}
	return ids
}

// Clone returns a copy that shares no slices with l.
func (l *Lobby) Clone() *Lobby {
	out := *l
	out.Players = append([]LobbySeat{}, l.Players...)
	return &out
}
