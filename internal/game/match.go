// internal/game/match.go
package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mhollis/bridge/internal/models"
)

// Phase is the match lifecycle stage.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseBidding  Phase = "bidding"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// TrickDisplayDelay is how long a completed trick stays face up before it is
// sealed and the next turn assigned.
const TrickDisplayDelay = 1500 * time.Millisecond

// Play is a single card played into a trick by a seat.
type Play struct {
	Card models.Card `json:"card"`
	Seat models.Seat `json:"player"`
}

// Trick is an ordered sequence of plays. A sealed trick always holds exactly
// four; the open trick holds fewer until the moment it completes.
type Trick []Play

// Match is the turn-by-turn rules engine for a single deal: seating and deal,
// the auction, trick play, and completion. All methods assume the owning
// room's lock is held; the match itself does no locking.
type Match struct {
	ID uuid.UUID

	Phase Phase
	Hands map[models.Seat][]models.Card
	Turn  models.Seat

	Bids     []models.Bid
	Contract *models.Bid
	Declarer models.Seat
	Dummy    models.Seat

	Tricks       []Trick
	CurrentTrick Trick
	TrickLeader  models.Seat
	TricksWon    map[models.Partnership]int

	// ScheduleFn runs fn after d. The default uses time.AfterFunc; the owning
	// room wraps it to re-acquire its lock, and tests substitute a synchronous
	// fake so deferred transitions are deterministic.
	ScheduleFn func(d time.Duration, fn func())

	// dealSeq guards scheduled callbacks against firing into a later deal.
	dealSeq int
	rng     *rand.Rand
}

// NewMatch returns a match in the waiting phase with no cards dealt.
func NewMatch() *Match {
	id, _ := uuid.NewRandom()
	m := &Match{
		ID:        id,
		Phase:     PhaseWaiting,
		Hands:     make(map[models.Seat][]models.Card),
		TricksWon: map[models.Partnership]int{models.PartnershipNS: 0, models.PartnershipEW: 0},
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	m.ScheduleFn = func(d time.Duration, fn func()) {
		time.AfterFunc(d, fn)
	}
	return m
}

// Deal shuffles a fresh deck, distributes 13 cards to every seat, clears any
// prior auction and trick state, and opens the bidding with north to call.
func (m *Match) Deal() {
	deck := NewDeck()
	Shuffle(m.rng, deck)
	m.Hands = dealHands(deck)

	m.Bids = nil
	m.Contract = nil
	m.Declarer = models.SeatNone
	m.Dummy = models.SeatNone
	m.Tricks = nil
	m.CurrentTrick = nil
	m.TrickLeader = models.SeatNone
	m.TricksWon = map[models.Partnership]int{models.PartnershipNS: 0, models.PartnershipEW: 0}

	m.Phase = PhaseBidding
	m.Turn = models.SeatNorth
	m.dealSeq++
}

// HandleBid validates and applies one auction call from seat. On any error
// the match state is unchanged.
func (m *Match) HandleBid(seat models.Seat, token string) error {
	if m.Phase != PhaseBidding {
		return ErrWrongPhase
	}
	if seat != m.Turn {
		return ErrNotYourTurn
	}

	bid, err := models.ParseBid(seat, token)
	if err != nil {
		return ruleErrorf(fmt.Sprintf("Invalid bid %q.", token))
	}
	// Doubles and redoubles are accepted without checking the auction state;
	// only real calls must beat the standing contract.
	if bid.IsCall() && m.Contract != nil && bid.Value <= m.Contract.Value {
		return ruleErrorf("Invalid bid. Bid must be higher than the last bid.")
	}

	m.Bids = append(m.Bids, bid)
	if bid.IsCall() {
		contract := bid
		m.Contract = &contract
		m.Declarer = seat
		m.Dummy = seat.Partner()
	}

	switch {
	case m.auctionComplete():
		m.Phase = PhasePlaying
		m.Turn = m.Declarer.Next()
	case m.auctionPassedOut():
		// Four opening passes would otherwise leave the table stuck with no
		// contract to play; redeal and restart the auction instead.
		m.Deal()
	default:
		m.Turn = m.Turn.Next()
	}
	return nil
}

// auctionComplete reports whether bidding has ended: a contract exists and
// the last three calls were all passes.
func (m *Match) auctionComplete() bool {
	if len(m.Bids) < 4 || m.Contract == nil {
		return false
	}
	for _, b := range m.Bids[len(m.Bids)-3:] {
		if b.Token != models.StrainPass {
			return false
		}
	}
	return true
}

// auctionPassedOut reports whether the auction opened with four passes and no
// contract was ever set.
func (m *Match) auctionPassedOut() bool {
	if m.Contract != nil || len(m.Bids) < 4 {
		return false
	}
	for _, b := range m.Bids[len(m.Bids)-4:] {
		if b.Token != models.StrainPass {
			return false
		}
	}
	return true
}

// HandlePlay validates and applies one card play from seat. When it
// completes the fourth play of a trick, resolution is deferred through
// ScheduleFn; no seat may act until the trick seals and the turn reassigns.
func (m *Match) HandlePlay(seat models.Seat, card models.Card) error {
	if m.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	if seat != m.Turn {
		return ErrNotYourTurn
	}

	hand := m.Hands[seat]
	idx := -1
	for i, c := range hand {
		if c.Same(card) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ruleErrorf(fmt.Sprintf("You do not hold %s%s.", card.Rank, card.Suit))
	}

	if len(m.CurrentTrick) > 0 {
		lead := m.CurrentTrick[0].Card.Suit
		if card.Suit != lead && m.holdsSuit(seat, lead) {
			return ruleErrorf(fmt.Sprintf("Invalid card play. You must follow suit %s.", lead))
		}
	}

	// Play the canonical card from the hand, not the client's copy, so value
	// and color always come from the server's deal.
	played := hand[idx]
	m.Hands[seat] = append(hand[:idx], hand[idx+1:]...)
	m.CurrentTrick = append(m.CurrentTrick, Play{Card: played, Seat: seat})
	if len(m.CurrentTrick) == 1 {
		m.TrickLeader = seat
	}

	if len(m.CurrentTrick) == 4 {
		// Leave the trick face up briefly. No seat holds the turn during the
		// window, so any play attempt fails the turn check above.
		m.Turn = models.SeatNone
		seq := m.dealSeq
		m.ScheduleFn(TrickDisplayDelay, func() {
			m.SealTrick(seq)
		})
	} else {
		m.Turn = seat.Next()
	}
	return nil
}

// holdsSuit reports whether seat still holds at least one card of suit.
func (m *Match) holdsSuit(seat models.Seat, suit string) bool {
	for _, c := range m.Hands[seat] {
		if c.Suit == suit {
			return true
		}
	}
	return false
}

// SealTrick resolves a completed trick: credits the winning partnership,
// appends the trick to history, and hands the lead to the winner. Stale
// callbacks from a superseded deal are ignored.
func (m *Match) SealTrick(seq int) {
	if seq != m.dealSeq || m.Phase != PhasePlaying || len(m.CurrentTrick) != 4 {
		return
	}

	winner := trickWinner(m.CurrentTrick, m.trumpSuit())
	m.TricksWon[winner.Partnership()]++
	m.Tricks = append(m.Tricks, m.CurrentTrick)
	m.CurrentTrick = nil
	m.TrickLeader = models.SeatNone

	if len(m.Tricks) == 13 {
		m.Phase = PhaseFinished
		m.Turn = models.SeatNone
		return
	}
	m.Turn = winner
}

// trumpSuit returns the contract's trump suit symbol, or "" when the
// contract is notrump or absent.
func (m *Match) trumpSuit() string {
	if m.Contract == nil {
		return ""
	}
	return m.Contract.TrumpSuit()
}

// CardsInFlight counts cards played across sealed tricks and the open trick.
// With the remaining hand sizes it always sums to 52 during play.
func (m *Match) CardsInFlight() int {
	return len(m.Tricks)*4 + len(m.CurrentTrick)
}
