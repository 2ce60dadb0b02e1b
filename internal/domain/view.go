package domain

// ZoneCounts exposes how many cards an opponent holds without revealing them.
type ZoneCounts struct {
	Hand   int `json:"hand"`
	Hidden int `json:"hidden"`
}

// OpponentView is what a player may see of another participant.
type OpponentView struct {
	Username string     `json:"username"`
	Open     []Card     `json:"open"`
	Counts   ZoneCounts `json:"counts"`
	Finished bool       `json:"finished"`
}

// SelfView is the requesting player's own zones, shown in full.
type SelfView struct {
	Username       string `json:"username"`
	Hand           []Card `json:"hand"`
	Open           []Card `json:"open"`
	Hidden         []Card `json:"hidden"`
	RevealedHidden *Card  `json:"revealedHidden"`
	Finished       bool   `json:"finished"`
}

// GameView is a player-scoped, information-hiding projection of a game.
type GameView struct {
	ID                  string         `json:"id"`
	LobbyID             string         `json:"lobbyId"`
	Status              GameStatus     `json:"status"`
	DrawCount           int            `json:"drawCount"`
	BurnedCount         int            `json:"burnedCount"`
	DiscardTop          *Card          `json:"discardTop"`
	TurnIndex           int            `json:"turnIndex"`
	PhaseForYou         Phase          `json:"phaseForYou"`
	CurrentTurnUsername string         `json:"currentTurnUsername"`
	LastEventMessage    string         `json:"lastEventMessage"`
	You                 SelfView       `json:"you"`
	Others              []OpponentView `json:"others"`
}

// ProjectView renders g for userID. ok is false when userID does not play in g.
// The view never aliases the game's slices.
func ProjectView(g *Game, userID string) (view *GameView, ok bool) {
	meIdx := g.PlayerIndex(userID)
	if meIdx < 0 {
		return nil, false
	}
	me := g.Players[meIdx]

	view = &GameView{
		ID:                  g.ID,
		LobbyID:             g.LobbyID,
		Status:              g.Status,
		DrawCount:           len(g.DrawPile),
		BurnedCount:         len(g.BurnedPile),
		DiscardTop:          g.Top(),
		TurnIndex:           g.TurnIndex,
		PhaseForYou:         me.Phase(),
		CurrentTurnUsername: g.CurrentTurnUsername(),
		LastEventMessage:    g.LastEventMessage,
		You: SelfView{
			Username: me.Username,
			Hand:     cloneCards(me.Hand),
			Open:     cloneCards(me.Open),
			Hidden:   cloneCards(me.Hidden),
			Finished: me.Finished,
		},
		Others: make([]OpponentView, 0, len(g.Players)-1),
	}
	if me.RevealedHidden != nil {
		c := *me.RevealedHidden
		view.You.RevealedHidden = &c
	}

	for i, p := range g.Players {
		if i == meIdx {
			continue
		}
		username := p.Username
		if username == "" {
			username = UnknownUsername
		}
		view.Others = append(view.Others, OpponentView{
			Username: username,
			Open:     cloneCards(p.Open),
			Counts:   ZoneCounts{Hand: len(p.Hand), Hidden: len(p.Hidden)},
			Finished: p.Finished,
		})
	}
	return view, true
}
