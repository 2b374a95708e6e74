// internal/models/card.go
package models

// Suit symbols match what the clients render directly.
const (
	SuitSpades   = "♠"
	SuitHearts   = "♥"
	SuitDiamonds = "♦"
	SuitClubs    = "♣"
)

// Suits lists all four suits in display precedence order (♠ > ♥ > ♦ > ♣).
var Suits = [4]string{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

// Ranks in descending trick strength.
var Ranks = [13]string{"A", "K", "Q", "J", "10", "9", "8", "7", "6", "5", "4", "3", "2"}

// rankValues maps a rank to its trick-comparison strength.
var rankValues = map[string]int{
	"A": 14, "K": 13, "Q": 12, "J": 11, "10": 10,
	"9": 9, "8": 8, "7": 7, "6": 6, "5": 5, "4": 4, "3": 3, "2": 2,
}

// Card is an immutable playing card. Value duplicates the rank's strength so
// clients never need their own lookup table; Color is a display hint.
type Card struct {
	Suit  string `json:"suit"`
	Rank  string `json:"rank"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// NewCard builds a card for the given suit and rank. Zero Value means the
// rank was not recognized.
func NewCard(suit, rank string) Card {
	color := "black"
	if suit == SuitHearts || suit == SuitDiamonds {
		color = "red"
	}
	return Card{
		Suit:  suit,
		Rank:  rank,
		Value: rankValues[rank],
		Color: color,
	}
}

// Same reports whether two cards name the same suit and rank. Plays coming
// off the wire carry only suit+rank, so identity checks ignore Value/Color.
func (c Card) Same(other Card) bool {
	return c.Suit == other.Suit && c.Rank == other.Rank
}

// SuitPrecedence returns the sort precedence of a suit for hand display,
// lower sorting first (♠ before ♥ before ♦ before ♣).
func SuitPrecedence(suit string) int {
	for i, s := range Suits {
		if s == suit {
			return i
		}
	}
	return len(Suits)
}

func (c Card) String() string {
	return c.Rank + c.Suit
}
