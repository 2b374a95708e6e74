// internal/game/result.go
package game

import (
	"fmt"

	"github.com/mhollis/bridge/internal/models"
)

// trickWinner picks the winning seat of a completed trick. Trump cards beat
// everything else; among trumps, or among cards of the led suit when no trump
// appeared, the highest rank value wins. Off-suit non-trump cards never win.
func trickWinner(trick Trick, trump string) models.Seat {
	best := trick[0]
	lead := trick[0].Card.Suit
	for _, p := range trick[1:] {
		if beats(p.Card, best.Card, lead, trump) {
			best = p
		}
	}
	return best.Seat
}

func beats(c, best models.Card, lead, trump string) bool {
	if trump != "" {
		if c.Suit == trump && best.Suit != trump {
			return true
		}
		if c.Suit != trump && best.Suit == trump {
			return false
		}
		if c.Suit == trump && best.Suit == trump {
			return c.Value > best.Value
		}
	}
	if c.Suit == lead && best.Suit == lead {
		return c.Value > best.Value
	}
	return false
}

// Result describes the outcome of a finished deal relative to its contract.
type Result struct {
	Contract    *models.Bid        `json:"contract,omitempty"`
	Declarer    models.Seat        `json:"declarer,omitempty"`
	Made        bool               `json:"made"`
	Overtricks  int                `json:"overtricks"`
	Undertricks int                `json:"undertricks"`
	Winner      models.Partnership `json:"winner"`
	Summary     string             `json:"summary"`
}

// Result scores the finished match. The declaring side needs six tricks plus
// the contract level; everything beyond is overtricks, every trick short an
// undertrick. Absent a contract the side with more tricks simply wins.
func (m *Match) Result() Result {
	ns := m.TricksWon[models.PartnershipNS]
	ew := m.TricksWon[models.PartnershipEW]

	if m.Contract == nil {
		r := Result{Winner: models.PartnershipNS, Summary: "North-South win"}
		if ew > ns {
			r.Winner = models.PartnershipEW
			r.Summary = "East-West win"
		}
		return r
	}

	declaring := m.Declarer.Partnership()
	won := ns
	if declaring == models.PartnershipEW {
		won = ew
	}
	needed := 6 + m.Contract.Level

	r := Result{Contract: m.Contract, Declarer: m.Declarer}
	if won >= needed {
		r.Made = true
		r.Overtricks = won - needed
		r.Winner = declaring
		r.Summary = fmt.Sprintf("%s made %s+%d", string(m.Declarer), m.Contract.Token, r.Overtricks)
		if r.Overtricks == 0 {
			r.Summary = fmt.Sprintf("%s made %s", string(m.Declarer), m.Contract.Token)
		}
	} else {
		r.Undertricks = needed - won
		r.Winner = declaring.Opponent()
		r.Summary = fmt.Sprintf("%s down %d in %s", string(m.Declarer), r.Undertricks, m.Contract.Token)
	}
	return r
}
