// internal/game/match_test.go
package game

import (
	"testing"
	"time"

	"github.com/mhollis/bridge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScheduler captures deferred callbacks so tests can fire them
// synchronously instead of waiting on real timers.
type fakeScheduler struct {
	pending []func()
	delays  []time.Duration
}

func (fs *fakeScheduler) schedule(d time.Duration, fn func()) {
	fs.delays = append(fs.delays, d)
	fs.pending = append(fs.pending, fn)
}

func (fs *fakeScheduler) fire(t *testing.T) {
	require.NotEmpty(t, fs.pending, "no scheduled callback to fire")
	fn := fs.pending[0]
	fs.pending = fs.pending[1:]
	fn()
}

// setupBiddingMatch deals a deterministic match ready for the auction.
func setupBiddingMatch(t *testing.T) (*Match, *fakeScheduler) {
	t.Helper()
	m := NewMatch()
	fs := &fakeScheduler{}
	m.ScheduleFn = fs.schedule
	m.Deal()
	require.Equal(t, PhaseBidding, m.Phase)
	require.Equal(t, models.SeatNorth, m.Turn)
	return m, fs
}

// setupPlayingMatch rigs a match in the play phase with fixed four-card hands
// so trick outcomes are fully deterministic. North declared 1nt, so east
// leads; no trump is in effect.
func setupPlayingMatch(t *testing.T) (*Match, *fakeScheduler) {
	t.Helper()
	m := NewMatch()
	fs := &fakeScheduler{}
	m.ScheduleFn = fs.schedule

	contract, err := models.ParseBid(models.SeatNorth, "1nt")
	require.NoError(t, err)
	m.Phase = PhasePlaying
	m.Contract = &contract
	m.Declarer = models.SeatNorth
	m.Dummy = models.SeatSouth
	m.Turn = models.SeatEast
	m.Hands = map[models.Seat][]models.Card{
		models.SeatNorth: {
			models.NewCard(models.SuitSpades, "A"),
			models.NewCard(models.SuitHearts, "K"),
			models.NewCard(models.SuitDiamonds, "3"),
			models.NewCard(models.SuitClubs, "9"),
		},
		models.SeatEast: {
			models.NewCard(models.SuitSpades, "K"),
			models.NewCard(models.SuitHearts, "2"),
			models.NewCard(models.SuitDiamonds, "A"),
			models.NewCard(models.SuitClubs, "4"),
		},
		models.SeatSouth: {
			models.NewCard(models.SuitSpades, "Q"),
			models.NewCard(models.SuitHearts, "7"),
			models.NewCard(models.SuitDiamonds, "8"),
			models.NewCard(models.SuitClubs, "A"),
		},
		models.SeatWest: {
			models.NewCard(models.SuitSpades, "2"),
			models.NewCard(models.SuitHearts, "A"),
			models.NewCard(models.SuitDiamonds, "K"),
			models.NewCard(models.SuitClubs, "K"),
		},
	}
	return m, fs
}

func TestDealOpensBidding(t *testing.T) {
	m, _ := setupBiddingMatch(t)
	for _, seat := range models.SeatOrder {
		assert.Len(t, m.Hands[seat], 13)
	}
	assert.Nil(t, m.Contract)
	assert.Empty(t, m.Bids)
}

func TestBidOutOfPhase(t *testing.T) {
	m := NewMatch()
	err := m.HandleBid(models.SeatNorth, "1c")
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestBidOutOfTurn(t *testing.T) {
	m, _ := setupBiddingMatch(t)
	err := m.HandleBid(models.SeatSouth, "1c")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Empty(t, m.Bids, "rejected bid must not be recorded")
}

func TestBidMustBeatStandingContract(t *testing.T) {
	m, _ := setupBiddingMatch(t)
	require.NoError(t, m.HandleBid(models.SeatNorth, "1s"))

	err := m.HandleBid(models.SeatEast, "1h")
	assert.True(t, IsRuleError(err), "lower call must be a rule error, got %v", err)
	assert.Equal(t, models.SeatEast, m.Turn, "turn must not advance on a rejected bid")

	err = m.HandleBid(models.SeatEast, "1s")
	assert.True(t, IsRuleError(err), "equal call must also be rejected")

	require.NoError(t, m.HandleBid(models.SeatEast, "1nt"), "notrump outranks spades at the same level")
	require.NoError(t, m.HandleBid(models.SeatSouth, "2c"), "next level resets the strain ladder")
}

func TestBidMalformedToken(t *testing.T) {
	m, _ := setupBiddingMatch(t)
	for _, token := range []string{"", "8c", "0nt", "3x", "nt"} {
		err := m.HandleBid(models.SeatNorth, token)
		assert.True(t, IsRuleError(err), "token %q should be rejected", token)
	}
	assert.Equal(t, models.SeatNorth, m.Turn)
}

func TestAuctionEndsAfterThreePasses(t *testing.T) {
	m, _ := setupBiddingMatch(t)
	require.NoError(t, m.HandleBid(models.SeatNorth, "1h"))
	require.NoError(t, m.HandleBid(models.SeatEast, "pass"))
	require.NoError(t, m.HandleBid(models.SeatSouth, "pass"))
	assert.Equal(t, PhaseBidding, m.Phase, "two trailing passes do not end the auction")

	require.NoError(t, m.HandleBid(models.SeatWest, "pass"))
	assert.Equal(t, PhasePlaying, m.Phase)
	require.NotNil(t, m.Contract)
	assert.Equal(t, "1h", m.Contract.Token)
	assert.Equal(t, models.SeatNorth, m.Declarer)
	assert.Equal(t, models.SeatSouth, m.Dummy)
	assert.Equal(t, models.SeatEast, m.Turn, "the seat after declarer leads")
}

func TestCompetitiveAuctionKeepsLastCall(t *testing.T) {
	m, _ := setupBiddingMatch(t)
	require.NoError(t, m.HandleBid(models.SeatNorth, "1c"))
	require.NoError(t, m.HandleBid(models.SeatEast, "1d"))
	require.NoError(t, m.HandleBid(models.SeatSouth, "pass"))
	require.NoError(t, m.HandleBid(models.SeatWest, "2d"))
	require.NoError(t, m.HandleBid(models.SeatNorth, "pass"))
	require.NoError(t, m.HandleBid(models.SeatEast, "pass"))
	assert.Equal(t, PhaseBidding, m.Phase)

	require.NoError(t, m.HandleBid(models.SeatSouth, "pass"))
	assert.Equal(t, PhasePlaying, m.Phase)
	assert.Equal(t, "2d", m.Contract.Token)
	assert.Equal(t, models.SeatWest, m.Declarer)
	assert.Equal(t, models.SeatNorth, m.Turn)
}

func TestPassedOutAuctionRedeals(t *testing.T) {
	m, _ := setupBiddingMatch(t)
	for _, seat := range models.SeatOrder {
		require.NoError(t, m.HandleBid(seat, "pass"))
	}
	assert.Equal(t, PhaseBidding, m.Phase, "a passed-out deal restarts the auction")
	assert.Empty(t, m.Bids)
	assert.Equal(t, models.SeatNorth, m.Turn)
	assert.Len(t, m.Hands[models.SeatNorth], 13)
}

func TestDoubleDoesNotEndAuction(t *testing.T) {
	m, _ := setupBiddingMatch(t)
	require.NoError(t, m.HandleBid(models.SeatNorth, "1s"))
	require.NoError(t, m.HandleBid(models.SeatEast, "double"))
	require.NoError(t, m.HandleBid(models.SeatSouth, "redouble"))
	require.NoError(t, m.HandleBid(models.SeatWest, "pass"))
	require.NoError(t, m.HandleBid(models.SeatNorth, "pass"))
	assert.Equal(t, PhaseBidding, m.Phase, "passes after a double restart the three-pass count")

	require.NoError(t, m.HandleBid(models.SeatEast, "pass"))
	assert.Equal(t, PhasePlaying, m.Phase)
	assert.Equal(t, "1s", m.Contract.Token)
}

func TestPlayOutOfPhase(t *testing.T) {
	m, _ := setupBiddingMatch(t)
	err := m.HandlePlay(models.SeatNorth, models.NewCard(models.SuitSpades, "A"))
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestPlayOutOfTurn(t *testing.T) {
	m, _ := setupPlayingMatch(t)
	err := m.HandlePlay(models.SeatWest, models.NewCard(models.SuitHearts, "A"))
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestPlayCardNotHeld(t *testing.T) {
	m, _ := setupPlayingMatch(t)
	err := m.HandlePlay(models.SeatEast, models.NewCard(models.SuitSpades, "A"))
	assert.True(t, IsRuleError(err))
	assert.Len(t, m.Hands[models.SeatEast], 4, "hand must be untouched after a rejected play")
}

func TestPlayMustFollowSuit(t *testing.T) {
	m, _ := setupPlayingMatch(t)
	require.NoError(t, m.HandlePlay(models.SeatEast, models.NewCard(models.SuitDiamonds, "A")))

	err := m.HandlePlay(models.SeatSouth, models.NewCard(models.SuitClubs, "A"))
	assert.True(t, IsRuleError(err), "south holds a diamond and must follow")

	require.NoError(t, m.HandlePlay(models.SeatSouth, models.NewCard(models.SuitDiamonds, "8")))
}

func TestPlayOffSuitWhenVoid(t *testing.T) {
	m, _ := setupPlayingMatch(t)
	m.Hands[models.SeatSouth] = []models.Card{
		models.NewCard(models.SuitClubs, "A"),
		models.NewCard(models.SuitClubs, "2"),
	}
	require.NoError(t, m.HandlePlay(models.SeatEast, models.NewCard(models.SuitDiamonds, "A")))
	require.NoError(t, m.HandlePlay(models.SeatSouth, models.NewCard(models.SuitClubs, "A")),
		"a seat void in the led suit may discard anything")
}

func TestTrickSealIsDeferred(t *testing.T) {
	m, fs := setupPlayingMatch(t)
	require.NoError(t, m.HandlePlay(models.SeatEast, models.NewCard(models.SuitDiamonds, "A")))
	require.NoError(t, m.HandlePlay(models.SeatSouth, models.NewCard(models.SuitDiamonds, "8")))
	require.NoError(t, m.HandlePlay(models.SeatWest, models.NewCard(models.SuitDiamonds, "K")))
	require.NoError(t, m.HandlePlay(models.SeatNorth, models.NewCard(models.SuitDiamonds, "3")))

	assert.Equal(t, models.SeatNone, m.Turn, "no seat may act while the trick is face up")
	assert.Len(t, m.CurrentTrick, 4)
	assert.Empty(t, m.Tricks, "trick not yet credited")
	require.Len(t, fs.pending, 1)
	assert.Equal(t, TrickDisplayDelay, fs.delays[0])

	err := m.HandlePlay(models.SeatEast, models.NewCard(models.SuitHearts, "2"))
	assert.ErrorIs(t, err, ErrNotYourTurn, "play during the display window is rejected")

	fs.fire(t)
	assert.Empty(t, m.CurrentTrick)
	require.Len(t, m.Tricks, 1)
	assert.Equal(t, models.SeatEast, m.Turn, "diamond ace wins and leads next")
	assert.Equal(t, 1, m.TricksWon[models.PartnershipEW])
	assert.Equal(t, 0, m.TricksWon[models.PartnershipNS])
}

func TestTrumpWinsOverLedSuit(t *testing.T) {
	m, fs := setupPlayingMatch(t)
	contract, err := models.ParseBid(models.SeatNorth, "2h")
	require.NoError(t, err)
	m.Contract = &contract

	require.NoError(t, m.HandlePlay(models.SeatEast, models.NewCard(models.SuitDiamonds, "A")))
	require.NoError(t, m.HandlePlay(models.SeatSouth, models.NewCard(models.SuitDiamonds, "8")))
	m.Hands[models.SeatWest] = []models.Card{
		models.NewCard(models.SuitHearts, "2"),
		models.NewCard(models.SuitClubs, "K"),
	}
	require.NoError(t, m.HandlePlay(models.SeatWest, models.NewCard(models.SuitHearts, "2")),
		"west is void in diamonds and ruffs low")
	require.NoError(t, m.HandlePlay(models.SeatNorth, models.NewCard(models.SuitDiamonds, "3")))

	fs.fire(t)
	assert.Equal(t, models.SeatWest, m.Turn, "the lone trump takes the trick")
	assert.Equal(t, 1, m.TricksWon[models.PartnershipEW])
}

func TestStaleSealCallbackIgnored(t *testing.T) {
	m, fs := setupPlayingMatch(t)
	require.NoError(t, m.HandlePlay(models.SeatEast, models.NewCard(models.SuitDiamonds, "A")))
	require.NoError(t, m.HandlePlay(models.SeatSouth, models.NewCard(models.SuitDiamonds, "8")))
	require.NoError(t, m.HandlePlay(models.SeatWest, models.NewCard(models.SuitDiamonds, "K")))
	require.NoError(t, m.HandlePlay(models.SeatNorth, models.NewCard(models.SuitDiamonds, "3")))
	require.Len(t, fs.pending, 1)

	// The table redeals before the timer fires; the old callback must not
	// touch the new deal.
	m.Deal()
	fs.fire(t)
	assert.Equal(t, PhaseBidding, m.Phase)
	assert.Empty(t, m.Tricks)
	assert.Zero(t, m.TricksWon[models.PartnershipEW])
}

func TestMatchFinishesAfterThirteenTricks(t *testing.T) {
	m, fs := setupPlayingMatch(t)
	m.Tricks = make([]Trick, 12)
	m.TricksWon[models.PartnershipNS] = 7
	m.TricksWon[models.PartnershipEW] = 5

	require.NoError(t, m.HandlePlay(models.SeatEast, models.NewCard(models.SuitDiamonds, "A")))
	require.NoError(t, m.HandlePlay(models.SeatSouth, models.NewCard(models.SuitDiamonds, "8")))
	require.NoError(t, m.HandlePlay(models.SeatWest, models.NewCard(models.SuitDiamonds, "K")))
	require.NoError(t, m.HandlePlay(models.SeatNorth, models.NewCard(models.SuitDiamonds, "3")))
	fs.fire(t)

	assert.Equal(t, PhaseFinished, m.Phase)
	assert.Equal(t, models.SeatNone, m.Turn)
	assert.Len(t, m.Tricks, 13)
	assert.Equal(t, 13, m.TricksWon[models.PartnershipNS]+m.TricksWon[models.PartnershipEW])
}

func TestCardConservationDuringPlay(t *testing.T) {
	m, _ := setupBiddingMatch(t)
	require.NoError(t, m.HandleBid(models.SeatNorth, "1nt"))
	require.NoError(t, m.HandleBid(models.SeatEast, "pass"))
	require.NoError(t, m.HandleBid(models.SeatSouth, "pass"))
	require.NoError(t, m.HandleBid(models.SeatWest, "pass"))
	require.Equal(t, PhasePlaying, m.Phase)

	// East leads anything it holds.
	lead := m.Hands[models.SeatEast][0]
	require.NoError(t, m.HandlePlay(models.SeatEast, lead))

	inHands := 0
	for _, seat := range models.SeatOrder {
		inHands += len(m.Hands[seat])
	}
	assert.Equal(t, 52, inHands+m.CardsInFlight())
}
