// internal/handlers/messages.go
package handlers

import "github.com/mhollis/bridge/internal/models"

// The closed set of message types a client may send. Anything else is
// answered with an error and otherwise ignored.
const (
	MsgCreateRoom     = "create_room"
	MsgJoinRoom       = "join_room"
	MsgStartGame      = "start_game"
	MsgBid            = "bid"
	MsgPlayCard       = "play_card"
	MsgChangePosition = "change_position"
	MsgChatMessage    = "chat_message"
	MsgUpdateName     = "update_name"
	MsgPing           = "ping"
)

// ClientMessage is the envelope for every inbound websocket message. Each
// type reads only its own fields; unknown fields are ignored by the decoder.
type ClientMessage struct {
	Type string `json:"type"`

	// create_room / join_room
	RoomCode   string `json:"roomCode,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	Password   string `json:"password,omitempty"`

	// bid carries the raw auction token ("1c".."7nt", "pass", "double",
	// "redouble").
	Bid string `json:"bid,omitempty"`

	// play_card
	Card *models.Card `json:"card,omitempty"`

	// change_position
	NewPosition string `json:"newPosition,omitempty"`

	// chat_message
	Message string `json:"message,omitempty"`

	// update_name
	NewName string `json:"newName,omitempty"`
}

// loggedTypes are the actions worth recording; pings and chat noise are not.
var loggedTypes = map[string]bool{
	MsgCreateRoom: true,
	MsgJoinRoom:   true,
	MsgStartGame:  true,
	MsgBid:        true,
	MsgPlayCard:   true,
}
