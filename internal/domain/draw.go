package domain

import "errors"

var (
	ErrInvalidDrawCount = errors.New("draw count must be at least 1")
	ErrDeckExhausted    = errors.New("not enough undealt cards in deck")
)

// uprightThreshold encodes the 0.7 upright probability as Intn(10) < 7.
const uprightThreshold = 7

// DrawCards deals n pairwise-distinct cards from the deck using the provided
// RNG. Each card is independently upright with probability 0.7.
func DrawCards(deck Deck, n int, rng RNG) ([]DrawnCard, error) {
	if n < 1 {
		return nil, ErrInvalidDrawCount
	}
	if n > len(deck.Cards) {
		return nil, ErrDeckExhausted
	}

	// Fisher-Yates partial shuffle: only the first n elements matter.
	indices := make([]int, len(deck.Cards))
	for i := range indices {
		indices[i] = i
	}
	for i := len(indices) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}

	cards := make([]DrawnCard, n)
	for i := range n {
		cards[i] = DrawnCard{
			Card:    deck.Cards[indices[i]],
			Upright: rng.Intn(10) < uprightThreshold,
		}
	}
	return cards, nil
}

// AuxCardCount samples the number of auxiliary cards for one follow-up round:
// 0 with probability 0.4, 1 with probability 0.4, 2 with probability 0.2.
func AuxCardCount(rng RNG) int {
	switch v := rng.Intn(10); {
	case v < 4:
		return 0
	case v < 8:
		return 1
	default:
		return 2
	}
}

// DrawAux deals n auxiliary cards from the undealt remainder of the deck,
// excluding every card name in dealt. The returned cards are pairwise
// distinct and never collide with the dealt set.
func DrawAux(deck Deck, dealt map[string]bool, n int, rng RNG) ([]DrawnCard, error) {
	if n == 0 {
		return nil, nil
	}

	remaining := make([]Card, 0, len(deck.Cards))
	for _, c := range deck.Cards {
		if !dealt[c.Name] {
			remaining = append(remaining, c)
		}
	}
	if n > len(remaining) {
		return nil, ErrDeckExhausted
	}

	cards := make([]DrawnCard, 0, n)
	for range n {
		idx := rng.Intn(len(remaining))
		cards = append(cards, DrawnCard{
			Card:    remaining[idx],
			Upright: rng.Intn(10) < uprightThreshold,
		})
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return cards, nil
}
