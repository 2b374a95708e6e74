// internal/room/snapshot.go
package room

import (
	"github.com/mhollis/bridge/internal/game"
	"github.com/mhollis/bridge/internal/models"
)

// Snapshot is the per-seat view of the match. The receiving seat sees its own
// hand in full; every other hand is reduced to a card count, so a modified
// client can never learn cards it should not hold.
type Snapshot struct {
	Phase         game.Phase                 `json:"phase"`
	CurrentPlayer models.Seat                `json:"currentPlayer"`
	Bids          []models.Bid               `json:"bids"`
	Contract      *models.Bid                `json:"contract"`
	Declarer      models.Seat                `json:"declarer,omitempty"`
	Dummy         models.Seat                `json:"dummy,omitempty"`
	Tricks        []game.Trick               `json:"tricks"`
	CurrentTrick  game.Trick                 `json:"currentTrick"`
	TrickLeader   models.Seat                `json:"trickLeader,omitempty"`
	TricksWon     map[models.Partnership]int `json:"tricksWon"`
	PlayerNames   map[models.Seat]string     `json:"playerNames"`
	PlayerHand    []models.Card              `json:"playerHand"`
	HandCounts    map[models.Seat]int        `json:"handCounts"`
	Result        *game.Result               `json:"result,omitempty"`
}

// snapshotForLocked builds seat's view of the match. Assumes lock is held.
func (r *Room) snapshotForLocked(seat models.Seat) Snapshot {
	m := r.Match

	snap := Snapshot{
		Phase:         m.Phase,
		CurrentPlayer: m.Turn,
		Bids:          append([]models.Bid{}, m.Bids...),
		Contract:      m.Contract,
		Declarer:      m.Declarer,
		Dummy:         m.Dummy,
		Tricks:        append([]game.Trick{}, m.Tricks...),
		CurrentTrick:  append(game.Trick{}, m.CurrentTrick...),
		TrickLeader:   m.TrickLeader,
		TricksWon: map[models.Partnership]int{
			models.PartnershipNS: m.TricksWon[models.PartnershipNS],
			models.PartnershipEW: m.TricksWon[models.PartnershipEW],
		},
		PlayerNames: r.namesLocked(),
		PlayerHand:  append([]models.Card{}, m.Hands[seat]...),
		HandCounts:  make(map[models.Seat]int, 4),
	}
	for _, s := range models.SeatOrder {
		snap.HandCounts[s] = len(m.Hands[s])
	}
	if m.Phase == game.PhaseFinished {
		result := m.Result()
		snap.Result = &result
	}
	return snap
}
