// internal/models/bid.go
package models

import (
	"fmt"
	"strconv"
)

// Strain names for the three calls that never set a contract.
const (
	StrainPass     = "pass"
	StrainDouble   = "double"
	StrainRedouble = "redouble"
)

// strainRanks orders the five contract strains within a level. Notrump
// outranks spades, so 1nt beats 1s but loses to 2c.
var strainRanks = map[string]int{
	"c": 1, "d": 2, "h": 3, "s": 4, "nt": 5,
}

// Bid is one entry in the auction log. Level and Strain are parsed from the
// raw token; Value is the comparable ordinal (0 for pass/double/redouble).
// Entries are append-only and never mutated.
type Bid struct {
	Seat   Seat   `json:"player"`
	Token  string `json:"bid"`
	Level  int    `json:"level"`
	Strain string `json:"suit"`
	Value  int    `json:"-"`
}

// ParseBid validates a bid token and returns its parsed form. Accepted
// tokens: "pass", "double", "redouble", or a level 1..7 followed by a strain
// (c, d, h, s, nt), e.g. "1c", "4h", "7nt".
func ParseBid(seat Seat, token string) (Bid, error) {
	switch token {
	case StrainPass, StrainDouble, StrainRedouble:
		return Bid{Seat: seat, Token: token, Strain: token}, nil
	}
	if len(token) < 2 {
		return Bid{}, fmt.Errorf("invalid bid %q", token)
	}
	level, err := strconv.Atoi(token[:1])
	if err != nil || level < 1 || level > 7 {
		return Bid{}, fmt.Errorf("invalid bid level in %q", token)
	}
	strain := token[1:]
	rank, ok := strainRanks[strain]
	if !ok {
		return Bid{}, fmt.Errorf("invalid bid strain in %q", token)
	}
	return Bid{
		Seat:   seat,
		Token:  token,
		Level:  level,
		Strain: strain,
		Value:  level*5 + rank,
	}, nil
}

// IsCall reports whether the bid is a real contract call rather than a
// pass, double, or redouble.
func (b Bid) IsCall() bool {
	return b.Level > 0
}

// TrumpSuit maps the bid's strain to the card suit symbol it names, or ""
// for notrump and the special calls.
func (b Bid) TrumpSuit() string {
	switch b.Strain {
	case "c":
		return SuitClubs
	case "d":
		return SuitDiamonds
	case "h":
		return SuitHearts
	case "s":
		return SuitSpades
	}
	return ""
}
