// internal/room/room.go
package room

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mhollis/bridge/internal/auth"
	"github.com/mhollis/bridge/internal/game"
	"github.com/mhollis/bridge/internal/models"
)

// Join and table management failures. The messages go to the client verbatim.
var (
	ErrIncorrectPassword = errors.New("Incorrect password")
	ErrRoomFull          = errors.New("Room is full")
	ErrNeedFourPlayers   = errors.New("Cannot start game. Need 4 players to start.")
	ErrGameInProgress    = errors.New("Cannot change position after game has started")
	ErrSeatOccupied      = errors.New("Position is already occupied")
	ErrChatClosed        = errors.New("Chat is only available before the game starts and after the game ends")
)

const (
	maxPlayerNameLen  = 20
	maxChatMessageLen = 200
)

// Room is an ephemeral table: up to four seated players and the match they
// are playing. All mutation goes through its mutex; handlers call the
// exported methods and never touch the match directly.
type Room struct {
	Code      string
	ID        uuid.UUID
	CreatedAt time.Time

	// PasswordHash is an Argon2id encoding, or "" for an open table.
	PasswordHash string

	Match   *game.Match
	Players map[uuid.UUID]*models.Player

	// BroadcastFn sends a message to every connected player;
	// BroadcastToPlayerFn to a single one. Wired by the websocket layer,
	// replaced with collectors in tests.
	BroadcastFn         func(msg interface{})
	BroadcastToPlayerFn func(connID uuid.UUID, msg interface{})

	// OnEmpty fires after the last player leaves, typically to remove the
	// room from its store.
	OnEmpty func(code string)

	logger logrus.FieldLogger

	Mu sync.Mutex
}

// NewRoom builds an empty room around a fresh match. Deferred match
// transitions (the trick display window) re-acquire the room lock and push a
// state broadcast when they land.
func NewRoom(code, passwordHash string, logger logrus.FieldLogger) *Room {
	id, _ := uuid.NewRandom()
	r := &Room{
		Code:                code,
		ID:                  id,
		CreatedAt:           time.Now(),
		PasswordHash:        passwordHash,
		Match:               game.NewMatch(),
		Players:             make(map[uuid.UUID]*models.Player),
		BroadcastFn:         func(interface{}) {},
		BroadcastToPlayerFn: func(uuid.UUID, interface{}) {},
		logger:              logger.WithField("room", code),
	}
	r.Match.ScheduleFn = func(d time.Duration, fn func()) {
		time.AfterFunc(d, func() {
			r.Mu.Lock()
			defer r.Mu.Unlock()
			fn()
			r.broadcastStateLocked()
		})
	}
	return r
}

// HasPassword reports whether joining requires a password.
func (r *Room) HasPassword() bool {
	return r.PasswordHash != ""
}

// Join seats a player at the first free position in rotation order. The new
// player receives a joined_room message, everyone gets player_joined, and a
// room_full notice goes out when the fourth seat fills.
func (r *Room) Join(p *models.Player, password string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.PasswordHash != "" {
		ok, err := auth.VerifyRoomPassword(password, r.PasswordHash)
		if err != nil || !ok {
			return ErrIncorrectPassword
		}
	}
	if len(r.Players) >= 4 {
		return ErrRoomFull
	}
	if err := validateName(p.Name); err != nil {
		return err
	}
	if r.nameTakenLocked(p.Name, uuid.Nil) {
		return fmt.Errorf("Name %q is already taken in this room. Please choose a different name.", p.Name)
	}

	seat := r.freeSeatLocked()
	p.Seat = seat
	r.Players[p.ID] = p

	names := r.namesLocked()
	r.logger.WithFields(logrus.Fields{"player": p.Name, "seat": seat}).Info("player joined")

	r.BroadcastToPlayerFn(p.ID, map[string]interface{}{
		"type":         "joined_room",
		"roomCode":     r.Code,
		"position":     seat,
		"playersCount": len(r.Players),
		"playerNames":  names,
	})
	r.BroadcastFn(map[string]interface{}{
		"type":         "player_joined",
		"player":       map[string]interface{}{"name": p.Name, "position": seat},
		"playersCount": len(r.Players),
		"playerNames":  names,
	})
	if len(r.Players) == 4 {
		r.BroadcastFn(map[string]interface{}{
			"type":    "room_full",
			"message": "All players joined. Ready to start!",
		})
	}
	return nil
}

// Leave removes a player. Everyone remaining is notified; once the room is
// empty the OnEmpty callback runs so the store can drop it.
func (r *Room) Leave(connID uuid.UUID) {
	r.Mu.Lock()

	p, ok := r.Players[connID]
	if !ok {
		r.Mu.Unlock()
		return
	}
	delete(r.Players, connID)
	r.logger.WithFields(logrus.Fields{"player": p.Name, "seat": p.Seat}).Info("player left")

	r.BroadcastFn(map[string]interface{}{
		"type":         "player_left",
		"player":       map[string]interface{}{"name": p.Name, "position": p.Seat},
		"playersCount": len(r.Players),
		"playerNames":  r.namesLocked(),
	})

	empty := len(r.Players) == 0
	onEmpty := r.OnEmpty
	r.Mu.Unlock()

	if empty && onEmpty != nil {
		onEmpty(r.Code)
	}
}

// StartGame deals the first hand. Any seated player may start once the table
// is full.
func (r *Room) StartGame(connID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if _, ok := r.Players[connID]; !ok {
		return ErrNeedFourPlayers
	}
	if len(r.Players) < 4 {
		return ErrNeedFourPlayers
	}
	if r.Match.Phase != game.PhaseWaiting && r.Match.Phase != game.PhaseFinished {
		return game.ErrWrongPhase
	}

	r.Match.Deal()
	r.logger.Info("game started")
	r.broadcastStateLocked()
	return nil
}

// HandleBid applies an auction call from the player and pushes fresh
// snapshots on success.
func (r *Room) HandleBid(connID uuid.UUID, token string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat, err := r.seatOfLocked(connID)
	if err != nil {
		return err
	}
	if err := r.Match.HandleBid(seat, token); err != nil {
		return err
	}
	r.broadcastStateLocked()
	return nil
}

// HandlePlay applies a card play from the player and pushes fresh snapshots
// on success.
func (r *Room) HandlePlay(connID uuid.UUID, card models.Card) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat, err := r.seatOfLocked(connID)
	if err != nil {
		return err
	}
	if err := r.Match.HandlePlay(seat, card); err != nil {
		return err
	}
	r.broadcastStateLocked()
	return nil
}

// ChangePosition moves a player to a vacant seat. Only allowed before the
// first deal.
func (r *Room) ChangePosition(connID uuid.UUID, newSeat models.Seat) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.Players[connID]
	if !ok {
		return ErrGameInProgress
	}
	if r.Match.Phase != game.PhaseWaiting {
		return ErrGameInProgress
	}
	for _, other := range r.Players {
		if other.Seat == newSeat {
			return ErrSeatOccupied
		}
	}

	oldSeat := p.Seat
	p.Seat = newSeat
	r.BroadcastFn(map[string]interface{}{
		"type": "position_changed",
		"player": map[string]interface{}{
			"name":        p.Name,
			"oldPosition": oldSeat,
			"newPosition": newSeat,
		},
		"playerNames": r.namesLocked(),
	})
	return nil
}

// Chat relays a table message. The table talks only while waiting or after
// the deal is finished; blank and oversized messages are dropped silently.
func (r *Room) Chat(connID uuid.UUID, message string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.Players[connID]
	if !ok {
		return nil
	}
	if r.Match.Phase != game.PhaseWaiting && r.Match.Phase != game.PhaseFinished {
		return ErrChatClosed
	}
	message = strings.TrimSpace(message)
	if message == "" || len(message) > maxChatMessageLen {
		return nil
	}

	r.BroadcastFn(map[string]interface{}{
		"type":    "chat_message",
		"sender":  p.Name,
		"message": message,
	})
	return nil
}

// Rename changes a player's display name and announces it.
func (r *Room) Rename(connID uuid.UUID, newName string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.Players[connID]
	if !ok {
		return nil
	}
	newName = strings.TrimSpace(newName)
	if err := validateName(newName); err != nil {
		return err
	}
	if r.nameTakenLocked(newName, connID) {
		return fmt.Errorf("Name %q is already taken in this room. Please choose a different name.", newName)
	}

	oldName := p.Name
	p.Name = newName
	r.BroadcastFn(map[string]interface{}{
		"type":        "name_updated",
		"position":    p.Seat,
		"oldName":     oldName,
		"newName":     newName,
		"playerNames": r.namesLocked(),
	})
	return nil
}

// Summary is the public listing entry for a room.
type Summary struct {
	Code        string                 `json:"code"`
	Status      game.Phase             `json:"status"`
	PlayerCount int                    `json:"playerCount"`
	HasPassword bool                   `json:"hasPassword"`
	Players     map[models.Seat]string `json:"players"`
}

// Summary returns the room's listing entry.
func (r *Room) Summary() Summary {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return Summary{
		Code:        r.Code,
		Status:      r.Match.Phase,
		PlayerCount: len(r.Players),
		HasPassword: r.HasPassword(),
		Players:     r.namesLocked(),
	}
}

// BroadcastState pushes a fresh per-seat snapshot to every player.
func (r *Room) BroadcastState() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.broadcastStateLocked()
}

func (r *Room) broadcastStateLocked() {
	for connID, p := range r.Players {
		r.BroadcastToPlayerFn(connID, map[string]interface{}{
			"type":      "game_state",
			"gameState": r.snapshotForLocked(p.Seat),
		})
	}
}

// seatOfLocked resolves a connection to its seat. Assumes lock is held.
func (r *Room) seatOfLocked(connID uuid.UUID) (models.Seat, error) {
	p, ok := r.Players[connID]
	if !ok {
		return models.SeatNone, game.ErrNotYourTurn
	}
	return p.Seat, nil
}

// freeSeatLocked returns the first vacant seat in rotation order. Assumes
// lock is held and the room is not full.
func (r *Room) freeSeatLocked() models.Seat {
	for _, seat := range models.SeatOrder {
		taken := false
		for _, p := range r.Players {
			if p.Seat == seat {
				taken = true
				break
			}
		}
		if !taken {
			return seat
		}
	}
	return models.SeatNone
}

// namesLocked maps every seat to its player's name, "" for vacant seats.
// Assumes lock is held.
func (r *Room) namesLocked() map[models.Seat]string {
	names := map[models.Seat]string{
		models.SeatNorth: "",
		models.SeatEast:  "",
		models.SeatSouth: "",
		models.SeatWest:  "",
	}
	for _, p := range r.Players {
		names[p.Seat] = p.Name
	}
	return names
}

func (r *Room) nameTakenLocked(name string, except uuid.UUID) bool {
	for id, p := range r.Players {
		if id != except && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func validateName(name string) error {
	if name == "" {
		return errors.New("Name must not be empty")
	}
	if len(name) > maxPlayerNameLen {
		return fmt.Errorf("Name must be at most %d characters", maxPlayerNameLen)
	}
	return nil
}
