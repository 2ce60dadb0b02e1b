package domain

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// Rand is the randomness source used for shuffling and picking the start
// player. *math/rand.Rand satisfies it, so tests can pass a seeded source.
type Rand interface {
	Intn(n int) int
}

// NewDeck returns an ordered 52-card deck, suit-major (C, D, H, S) and
// ascending rank within each suit.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for r := RankTwo; r <= RankAce; r++ {
			deck = append(deck, NewCard(r, s))
		}
	}
	return deck
}

// ShuffleDeck permutes the deck in place with Fisher–Yates.
func ShuffleDeck(deck []Card, rng Rand) {
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// DealBatch takes the top n cards (the end of the slice) off the deck.
// It returns the dealt cards and the remaining deck. When fewer than n cards
// are left, every remaining card is dealt.
func DealBatch(deck []Card, n int) (dealt []Card, rest []Card) {
	if n <= 0 {
		return []Card{}, deck
	}
	if n > len(deck) {
		n = len(deck)
	}
	cut := len(deck) - n
	dealt = append([]Card{}, deck[cut:]...)
	return dealt, deck[:cut]
}
