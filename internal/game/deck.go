// internal/game/deck.go
package game

import (
	"math/rand"
	"sort"

	"github.com/mhollis/bridge/internal/models"
)

// NewDeck returns the 52 distinct cards in suit-major order. The deck only
// exists transiently during a deal; it is discarded after distribution.
func NewDeck() []models.Card {
	deck := make([]models.Card, 0, 52)
	for _, suit := range models.Suits {
		for _, rank := range models.Ranks {
			deck = append(deck, models.NewCard(suit, rank))
		}
	}
	return deck
}

// Shuffle permutes the deck in place with a Fisher-Yates pass over r.
func Shuffle(r *rand.Rand, deck []models.Card) {
	for i := len(deck) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// dealHands distributes the deck round-robin in seat rotation order, 13 cards
// per seat, then sorts each hand for display. Sorting is a display
// convenience only; rule checks never depend on hand order.
func dealHands(deck []models.Card) map[models.Seat][]models.Card {
	hands := make(map[models.Seat][]models.Card, len(models.SeatOrder))
	for _, seat := range models.SeatOrder {
		hands[seat] = make([]models.Card, 0, 13)
	}
	for i, card := range deck {
		seat := models.SeatOrder[i%len(models.SeatOrder)]
		hands[seat] = append(hands[seat], card)
	}
	for _, hand := range hands {
		sortHand(hand)
	}
	return hands
}

// sortHand orders a hand by suit precedence (♠ ♥ ♦ ♣) and descending rank.
func sortHand(hand []models.Card) {
	sort.Slice(hand, func(i, j int) bool {
		pi, pj := models.SuitPrecedence(hand[i].Suit), models.SuitPrecedence(hand[j].Suit)
		if pi != pj {
			return pi < pj
		}
		return hand[i].Value > hand[j].Value
	})
}
