// internal/game/deck_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/mhollis/bridge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckHas52DistinctCards(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, 52)

	seen := make(map[string]bool, 52)
	for _, c := range deck {
		key := c.Suit + c.Rank
		assert.False(t, seen[key], "duplicate card %s", key)
		seen[key] = true
		assert.Equal(t, c.Value, models.NewCard(c.Suit, c.Rank).Value)
	}
	assert.Len(t, seen, 52)
}

func TestShufflePreservesMultiset(t *testing.T) {
	deck := NewDeck()
	Shuffle(rand.New(rand.NewSource(42)), deck)

	require.Len(t, deck, 52)
	seen := make(map[string]bool, 52)
	for _, c := range deck {
		seen[c.Suit+c.Rank] = true
	}
	assert.Len(t, seen, 52, "shuffle must not duplicate or drop cards")
}

func TestDealHandsPartitionsDeck(t *testing.T) {
	deck := NewDeck()
	Shuffle(rand.New(rand.NewSource(7)), deck)
	hands := dealHands(deck)

	require.Len(t, hands, 4)
	seen := make(map[string]bool, 52)
	for _, seat := range models.SeatOrder {
		require.Len(t, hands[seat], 13, "seat %s", seat)
		for _, c := range hands[seat] {
			key := c.Suit + c.Rank
			assert.False(t, seen[key], "card %s dealt twice", key)
			seen[key] = true
		}
	}
	assert.Len(t, seen, 52)
}

func TestDealHandsSortedForDisplay(t *testing.T) {
	deck := NewDeck()
	Shuffle(rand.New(rand.NewSource(99)), deck)
	hands := dealHands(deck)

	for seat, hand := range hands {
		for i := 1; i < len(hand); i++ {
			prev, cur := hand[i-1], hand[i]
			pp, pc := models.SuitPrecedence(prev.Suit), models.SuitPrecedence(cur.Suit)
			if pp == pc {
				assert.Greater(t, prev.Value, cur.Value, "seat %s: %s before %s", seat, prev, cur)
			} else {
				assert.Less(t, pp, pc, "seat %s: suit order broken at %s", seat, cur)
			}
		}
	}
}
