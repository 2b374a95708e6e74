// internal/models/seat.go
package models

// Seat is one of the four fixed table positions.
type Seat string

const (
	SeatNorth Seat = "north"
	SeatEast  Seat = "east"
	SeatSouth Seat = "south"
	SeatWest  Seat = "west"

	// SeatNone marks "no seat": an unresolved turn or a vacated slot.
	SeatNone Seat = ""
)

// SeatOrder is the rotation order used for dealing and turn advancement.
var SeatOrder = [4]Seat{SeatNorth, SeatEast, SeatSouth, SeatWest}

// Partnership identifies one of the two sides at the table.
type Partnership string

const (
	PartnershipNS Partnership = "ns"
	PartnershipEW Partnership = "ew"
)

// Opponent returns the other partnership.
func (p Partnership) Opponent() Partnership {
	if p == PartnershipNS {
		return PartnershipEW
	}
	return PartnershipNS
}

// ParseSeat converts a wire string into a Seat. ok is false for anything
// outside the four fixed positions.
func ParseSeat(s string) (Seat, bool) {
	switch Seat(s) {
	case SeatNorth, SeatEast, SeatSouth, SeatWest:
		return Seat(s), true
	}
	return SeatNone, false
}

// Next returns the seat following s in rotation order.
func (s Seat) Next() Seat {
	for i, cur := range SeatOrder {
		if cur == s {
			return SeatOrder[(i+1)%4]
		}
	}
	return SeatNone
}

// Partner returns the seat sitting opposite s.
func (s Seat) Partner() Seat {
	switch s {
	case SeatNorth:
		return SeatSouth
	case SeatSouth:
		return SeatNorth
	case SeatEast:
		return SeatWest
	case SeatWest:
		return SeatEast
	}
	return SeatNone
}

// Partnership returns the side s belongs to.
func (s Seat) Partnership() Partnership {
	if s == SeatNorth || s == SeatSouth {
		return PartnershipNS
	}
	return PartnershipEW
}
