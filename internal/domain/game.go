package domain

import (
	"fmt"
	"time"
)

// Phase names the zone a player is currently required to play from.
type Phase string

const (
	PhaseHand   Phase = "hand"
	PhaseOpen   Phase = "open"
	PhaseHidden Phase = "hidden"
)

// Valid reports whether p names one of the three zones.
func (p Phase) Valid() bool {
	return p == PhaseHand || p == PhaseOpen || p == PhaseHidden
}

// GameStatus is the lifecycle stage of a game.
type GameStatus string

const (
	GameActive GameStatus = "active"
	GameEnded  GameStatus = "ended"
)

// DefaultHandSize is how many cards a player draws back up to.
const DefaultHandSize = 3

// UnknownUsername is shown for members whose name could not be resolved.
const UnknownUsername = "Unknown"

// PlayerState holds one participant's zones. Only the game aggregate mutates it.
type PlayerState struct {
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	Hand           []Card `json:"hand"`
	Open           []Card `json:"open"`
	Hidden         []Card `json:"hidden"`
	RevealedHidden *Card  `json:"revealedHidden"`
	Finished       bool   `json:"finished"`
}

// Phase derives the current zone from zone sizes. It is never stored.
func (p *PlayerState) Phase() Phase {
	if len(p.Hand) > 0 {
		return PhaseHand
	}
	if len(p.Open) > 0 {
		return PhaseOpen
	}
	return PhaseHidden
}

// Empty reports whether all three zones are empty.
func (p *PlayerState) Empty() bool {
	return len(p.Hand)+len(p.Open)+len(p.Hidden) == 0
}

// Zone returns the cards in the named zone.
func (p *PlayerState) Zone(phase Phase) []Card {
	switch phase {
	case PhaseHand:
		return p.Hand
	case PhaseOpen:
		return p.Open
	case PhaseHidden:
		return p.Hidden
	}
	return nil
}

// SetZone replaces the cards in the named zone.
func (p *PlayerState) SetZone(phase Phase, cards []Card) {
	switch phase {
	case PhaseHand:
		p.Hand = cards
	case PhaseOpen:
		p.Open = cards
	case PhaseHidden:
		p.Hidden = cards
	}
}

// Game is the aggregate for one running game.
type Game struct {
	ID               string         `json:"id"`
	LobbyID          string         `json:"lobbyId"`
	DrawPile         []Card         `json:"drawPile"`
	DiscardPile      []Card         `json:"discardPile"`
	BurnedPile       []Card         `json:"burnedPile"`
	Players          []*PlayerState `json:"players"`
	TurnIndex        int            `json:"turnIndex"`
	HandSize         int            `json:"handSize"`
	Status           GameStatus     `json:"status"`
	LastEventMessage string         `json:"lastEventMessage"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`

	// Version is the storage version the aggregate was loaded at.
	Version string `json:"-"`
}

// Top returns the top of the discard pile, or nil when it is empty.
func (g *Game) Top() *Card {
	if len(g.DiscardPile) == 0 {
		return nil
	}
	c := g.DiscardPile[len(g.DiscardPile)-1]
	return &c
}

// PlayerIndex returns the seat of userID in the game, or -1.
func (g *Game) PlayerIndex(userID string) int {
	for i, p := range g.Players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *PlayerState {
	if g.TurnIndex < 0 || g.TurnIndex >= len(g.Players) {
		return nil
	}
	return g.Players[g.TurnIndex]
}

// CurrentTurnUsername resolves the name of the player on turn, falling back
// to a positional label.
func (g *Game) CurrentTurnUsername() string {
	if p := g.CurrentPlayer(); p != nil && p.Username != "" {
		return p.Username
	}
	return fmt.Sprintf("Player #%d", g.TurnIndex)
}

// DrawUp refills the player's hand from the top of the draw pile until it
// holds HandSize cards or the pile runs out.
func (g *Game) DrawUp(p *PlayerState) int {
	drawn := 0
	for len(p.Hand) < g.HandSize && len(g.DrawPile) > 0 {
		last := len(g.DrawPile) - 1
		p.Hand = append(p.Hand, g.DrawPile[last])
		g.DrawPile = g.DrawPile[:last]
		drawn++
	}
	return drawn
}

// BurnDiscard moves the discard pile, in order, onto the burned pile.
func (g *Game) BurnDiscard() int {
	n := len(g.DiscardPile)
	g.BurnedPile = append(g.BurnedPile, g.DiscardPile...)
	g.DiscardPile = []Card{}
	return n
}

// MarkFinished flags every player with no cards left. Finished never reverts.
// It returns the user ids that finished in this call.
func (g *Game) MarkFinished() []string {
	var newly []string
	for _, p := range g.Players {
		if !p.Finished && p.Empty() {
			p.Finished = true
			newly = append(newly, p.UserID)
		}
	}
	return newly
}

// Unfinished returns the players still holding cards.
func (g *Game) Unfinished() []*PlayerState {
	out := make([]*PlayerState, 0, len(g.Players))
	for _, p := range g.Players {
		if !p.Finished {
			out = append(out, p)
		}
	}
	return out
}

// AdvanceTurn moves the turn to the next unfinished player. When nobody else
// is unfinished the turn index is left where the search ends.
func (g *Game) AdvanceTurn() {
	n := len(g.Players)
	if n == 0 {
		return
	}
	for step := 1; step <= n; step++ {
		next := (g.TurnIndex + step) % n
		if !g.Players[next].Finished {
			g.TurnIndex = next
			return
		}
	}
	g.TurnIndex = (g.TurnIndex + 1) % n
}

// CardCount returns the number of cards across every pile and zone. A
// consistent game always holds DeckSize cards.
func (g *Game) CardCount() int {
	n := len(g.DrawPile) + len(g.DiscardPile) + len(g.BurnedPile)
	for _, p := range g.Players {
		n += len(p.Hand) + len(p.Open) + len(p.Hidden)
	}
	return n
}

// Clone returns a deep copy of the game.
func (g *Game) Clone() *Game {
	out := *g
	out.DrawPile = cloneCards(g.DrawPile)
	out.DiscardPile = cloneCards(g.DiscardPile)
	out.BurnedPile = cloneCards(g.BurnedPile)
	out.Players = make([]*PlayerState, len(g.Players))
	for i, p := range g.Players {
		cp := *p
		cp.Hand = cloneCards(p.Hand)
		cp.Open = cloneCards(p.Open)
		cp.Hidden = cloneCards(p.Hidden)
		if p.RevealedHidden != nil {
			c := *p.RevealedHidden
			cp.RevealedHidden = &c
		}
		out.Players[i] = &cp
	}
	return &out
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return []Card{}
	}
	return append([]Card{}, cards...)
}
