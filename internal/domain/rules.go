package domain

// BurnReason describes why the discard pile was burned.
type BurnReason int

const (
	NoBurn BurnReason = iota
	BurnByTen
	BurnByFourOfAKind
)

// burnRunLength is how many equal-rank cards on top of the pile burn it.
const burnRunLength = 4

// CanBeat reports whether card may be laid on top of the discard pile.
// A two is always legal, anything is legal on an empty pile, otherwise the
// card must be at least as high as the top card.
func CanBeat(top *Card, card Card) bool {
	if top == nil {
		return true
	}
	if card.Rank == RankTwo {
		return true
	}
	return card.Rank >= top.Rank
}

// CanBeatAll reports whether every card is legal against top.
func CanBeatAll(top *Card, cards []Card) bool {
	for _, c := range cards {
		if !CanBeat(top, c) {
			return false
		}
	}
	return true
}

// AllSameRank reports whether the cards share one rank. Empty input is false.
func AllSameRank(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	r := cards[0].Rank
	for _, c := range cards {
		if c.Rank != r {
			return false
		}
	}
	return true
}

// BurnTrigger inspects the discard pile and reports whether it burns.
func BurnTrigger(pile []Card) BurnReason {
	if len(pile) == 0 {
		return NoBurn
	}
	if pile[len(pile)-1].Rank == RankTen {
		return BurnByTen
	}
	if len(pile) >= burnRunLength && AllSameRank(pile[len(pile)-burnRunLength:]) {
		return BurnByFourOfAKind
	}
	return NoBurn
}

// Message returns the event line shown to players after a burn.
func (r BurnReason) Message() string {
	switch r {
	case BurnByTen:
		return "The 10 burned the pile."
	case BurnByFourOfAKind:
		return "Four of a kind: the pile is burned."
	default:
		return ""
	}
}
