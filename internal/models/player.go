package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is one occupant of a room: a live connection bound to a seat.
// The record is removed from the room's player list on disconnect; the seat
// slot itself persists as vacant until reoccupied.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Seat Seat      `json:"position"`

	Conn *websocket.Conn `json:"-"`
}
