package nakama

// RPC ids clients call through the Nakama RPC API.
const (
	RpcLobbyCreate = "lobby_create"
	RpcLobbyList   = "lobby_list"
	RpcLobbyGet    = "lobby_get"
	RpcLobbyJoin   = "lobby_join"
	RpcLobbyLeave  = "lobby_leave"
	RpcLobbyClose  = "lobby_close"
	RpcLobbyStart  = "lobby_start"

	RpcGameGet     = "game_get"
	RpcGameByLobby = "game_by_lobby"
	RpcGamePlay    = "game_play"
	RpcGameTake    = "game_take"
	RpcGameReveal  = "game_reveal"
)

// Storage collections. Objects are owned by the system user and not
// readable by clients directly; views go through the game RPCs.
const (
	lobbyCollection = "durak_lobbies"
	gameCollection  = "durak_games"

	// storageListPageSize is the page size used when scanning lobbies.
	storageListPageSize = 100
)

// gRPC status codes used in runtime.NewError.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeFailedPrecondition = 9
	codeAborted            = 10
	codeInternal           = 13
	codeUnauthenticated    = 16
)
