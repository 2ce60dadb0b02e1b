package app

import "durak/internal/domain"

// MinPlayersToStartGame defines the minimum number of seated members required to start a game.
const MinPlayersToStartGame = 2

// MaxPlayersPerGame is bounded by the deck: every player is dealt three
// batches of three cards at setup.
const MaxPlayersPerGame = domain.DeckSize / (3 * setupBatchSize)

// setupBatchSize is the size of the open and hidden batches dealt at setup.
const setupBatchSize = 3

// DefaultConflictRetries is how often an action is re-applied after a
// version conflict before the conflict is reported to the caller.
const DefaultConflictRetries = 3

// DefaultLobbyListLimit caps ListLobbies results.
const DefaultLobbyListLimit = 100

// Rules carries the tunable game and lobby limits.
type Rules struct {
	HandSize        int
	MinPlayers      int
	MaxPlayers      int
	ConflictRetries int
	LobbyListLimit  int
}

// DefaultRules returns the standard three-card game for 2 to 5 players.
func DefaultRules() Rules {
	return Rules{
		HandSize:        domain.DefaultHandSize,
		MinPlayers:      MinPlayersToStartGame,
		MaxPlayers:      MaxPlayersPerGame,
		ConflictRetries: DefaultConflictRetries,
		LobbyListLimit:  DefaultLobbyListLimit,
	}
}
