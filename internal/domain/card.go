package domain

import "strconv"

// Suits in canonical deck order.
var Suits = []string{"C", "D", "H", "S"}

const (
	// RankTwo may be played onto anything.
	RankTwo = 2
	// RankTen burns the discard pile.
	RankTen = 10
	// RankAce is the highest rank.
	RankAce = 14
)

// Card is a single playing card. ID is the stable rank token + suit letter
// ("10H", "AS") that clients use to look up card assets.
type Card struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"` // 2..14 (11=J, 12=Q, 13=K, 14=A)
	Suit string `json:"suit"` // "C","D","H","S"
}

// NewCard builds a card with its canonical ID.
func NewCard(rank int, suit string) Card {
	return Card{ID: RankToken(rank) + suit, Rank: rank, Suit: suit}
}

// RankToken returns the id prefix for a rank: "2".."10", "J", "Q", "K", "A".
func RankToken(rank int) string {
	switch rank {
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	case 14:
		return "A"
	default:
		return strconv.Itoa(rank)
	}
}

func (c Card) String() string {
	return c.ID
}

// IndexOfCard returns the position of the card with the given id, or -1.
func IndexOfCard(cards []Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// RemoveCards removes the specified cards from a zone and returns the updated zone.
func RemoveCards(zone []Card, toRemove []Card) []Card {
	if len(toRemove) == 0 || len(zone) == 0 {
		return zone
	}

	remove := make(map[string]struct{}, len(toRemove))
	for _, card := range toRemove {
		remove[card.ID] = struct{}{}
	}

	updated := make([]Card, 0, len(zone))
	for _, card := range zone {
		if _, ok := remove[card.ID]; ok {
			continue
		}
		updated = append(updated, card)
	}

	return updated
}
