// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mhollis/bridge/internal/middleware"
	"github.com/mhollis/bridge/internal/models"
	"github.com/mhollis/bridge/internal/room"
)

// WSHandler upgrades the connection and runs the client's message loop. A
// connection carries at most one seated player; the session registry maps it
// back to its room on every message.
func (s *Server) WSHandler(w http.ResponseWriter, r *http.Request) {
	ip := getClientIP(r)

	// The guest cookie must be set before the upgrade writes the response
	// headers.
	connID, err := EnsureGuest(w, r)
	if err != nil {
		s.Logger.Warnf("Guest authentication failed: %v", err)
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"bridge"},
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.Logger.Warnf("WebSocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

	if c.Subprotocol() != "bridge" {
		s.Logger.Warnf("Client connected with invalid subprotocol: %s", c.Subprotocol())
		c.Close(websocket.StatusPolicyViolation, "Client must use the 'bridge' subprotocol.")
		return
	}
	middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s.readMessages(ctx, c, connID, ip)

	s.handleDisconnect(connID, ip)
	middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, nil)
}

// readMessages reads, decodes, and dispatches client messages until the
// connection drops or the context is canceled.
func (s *Server) readMessages(ctx context.Context, c *websocket.Conn, connID uuid.UUID, ip string) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				s.Logger.Infof("WebSocket closed normally for conn %s.", connID)
			} else if strings.Contains(err.Error(), "context canceled") {
				s.Logger.Infof("WebSocket context canceled for conn %s.", connID)
			} else {
				s.Logger.Warnf("Error reading from WebSocket for conn %s: %v", connID, err)
			}
			return
		}
		if msgType != websocket.MessageText {
			s.Logger.Warnf("Received non-text message type %d from conn %s. Ignoring.", msgType, connID)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.Logger.Warnf("Invalid JSON from conn %s: %v", connID, err)
			sendWsError(ctx, c, "Invalid JSON format.")
			continue
		}

		if loggedTypes[msg.Type] {
			roomCode := msg.RoomCode
			if roomCode == "" {
				roomCode, _ = s.Sessions.Resolve(connID)
			}
			s.Recorder.Record(ip, "websocket_"+msg.Type, "/ws", map[string]interface{}{
				"action":    msg.Type,
				"room_code": roomCode,
			})
		}

		switch msg.Type {
		case MsgCreateRoom:
			s.handleCreateRoom(ctx, c, connID, msg)
		case MsgJoinRoom:
			s.handleJoinRoom(ctx, c, connID, msg)
		case MsgStartGame:
			s.withRoom(ctx, c, connID, func(r *room.Room) error {
				return r.StartGame(connID)
			})
		case MsgBid:
			s.withRoom(ctx, c, connID, func(r *room.Room) error {
				return r.HandleBid(connID, msg.Bid)
			})
		case MsgPlayCard:
			s.withRoom(ctx, c, connID, func(r *room.Room) error {
				if msg.Card == nil {
					return fmt.Errorf("Missing card")
				}
				return r.HandlePlay(connID, *msg.Card)
			})
		case MsgChangePosition:
			s.withRoom(ctx, c, connID, func(r *room.Room) error {
				seat, ok := models.ParseSeat(msg.NewPosition)
				if !ok {
					return fmt.Errorf("Invalid position %q", msg.NewPosition)
				}
				return r.ChangePosition(connID, seat)
			})
		case MsgChatMessage:
			s.withRoom(ctx, c, connID, func(r *room.Room) error {
				return r.Chat(connID, msg.Message)
			})
		case MsgUpdateName:
			s.withRoom(ctx, c, connID, func(r *room.Room) error {
				return r.Rename(connID, msg.NewName)
			})
		case MsgPing:
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})
		default:
			s.Logger.Warnf("Unknown message type %q from conn %s.", msg.Type, connID)
			sendWsError(ctx, c, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (s *Server) handleCreateRoom(ctx context.Context, c *websocket.Conn, connID uuid.UUID, msg ClientMessage) {
	if _, bound := s.Sessions.Resolve(connID); bound {
		sendWsError(ctx, c, "Already in a room")
		return
	}

	r, err := s.Rooms.Create(msg.Password)
	if err != nil {
		s.Logger.Errorf("Failed to create room: %v", err)
		sendWsError(ctx, c, "Failed to create room")
		return
	}
	wireRoomBroadcasts(r, s.Logger)

	if err := s.joinRoom(ctx, c, connID, r, msg.PlayerName, msg.Password); err != nil {
		// The creator never seated, so the room would otherwise linger empty.
		s.Rooms.Delete(r.Code)
	}
}

func (s *Server) handleJoinRoom(ctx context.Context, c *websocket.Conn, connID uuid.UUID, msg ClientMessage) {
	if _, bound := s.Sessions.Resolve(connID); bound {
		sendWsError(ctx, c, "Already in a room")
		return
	}

	r, ok := s.Rooms.Get(msg.RoomCode)
	if !ok {
		sendWsError(ctx, c, "Room not found")
		return
	}
	s.joinRoom(ctx, c, connID, r, msg.PlayerName, msg.Password)
}

func (s *Server) joinRoom(ctx context.Context, c *websocket.Conn, connID uuid.UUID, r *room.Room, name, password string) error {
	p := &models.Player{
		ID:   connID,
		Name: strings.TrimSpace(name),
		Conn: c,
	}
	if err := r.Join(p, password); err != nil {
		sendWsError(ctx, c, err.Error())
		return err
	}
	s.Sessions.Bind(connID, r.Code)
	return nil
}

// withRoom resolves the connection's room and runs fn against it, surfacing
// any failure to the client as an error message.
func (s *Server) withRoom(ctx context.Context, c *websocket.Conn, connID uuid.UUID, fn func(r *room.Room) error) {
	code, ok := s.Sessions.Resolve(connID)
	if !ok {
		sendWsError(ctx, c, "You are not in a room")
		return
	}
	r, ok := s.Rooms.Get(code)
	if !ok {
		s.Sessions.Unbind(connID)
		sendWsError(ctx, c, "Room not found")
		return
	}
	if err := fn(r); err != nil {
		sendWsError(ctx, c, err.Error())
	}
}

func (s *Server) handleDisconnect(connID uuid.UUID, ip string) {
	code, ok := s.Sessions.Resolve(connID)
	if !ok {
		return
	}
	if r, found := s.Rooms.Get(code); found {
		r.Leave(connID)
	}
	s.Sessions.Unbind(connID)
	s.Recorder.Record(ip, "websocket_disconnect", "/ws", map[string]interface{}{"room_code": code})
}

// wireRoomBroadcasts installs the websocket fan-out on a freshly created
// room. Both functions are invoked with the room lock held, so they collect
// connections synchronously and push the writes onto goroutines with their
// own timeouts.
func wireRoomBroadcasts(r *room.Room, logger *logrus.Logger) {
	r.BroadcastFn = func(msg interface{}) {
		conns := make([]*websocket.Conn, 0, len(r.Players))
		for _, p := range r.Players {
			if p.Conn != nil {
				conns = append(conns, p.Conn)
			}
		}
		data, err := json.Marshal(msg)
		if err != nil {
			logger.Errorf("Failed to marshal broadcast for room %s: %v", r.Code, err)
			return
		}
		go func() {
			for _, conn := range conns {
				writeWithTimeout(conn, data, logger)
			}
		}()
	}
	r.BroadcastToPlayerFn = func(connID uuid.UUID, msg interface{}) {
		p, ok := r.Players[connID]
		if !ok || p.Conn == nil {
			return
		}
		data, err := json.Marshal(msg)
		if err != nil {
			logger.Errorf("Failed to marshal private message for room %s: %v", r.Code, err)
			return
		}
		go writeWithTimeout(p.Conn, data, logger)
	}
}

func writeWithTimeout(conn *websocket.Conn, data []byte, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		logger.Warnf("Failed to write websocket message: %v", err)
	}
}

// sendWsMessage marshals a message and writes it to the client with its own
// timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	if c == nil {
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.Write(writeCtx, websocket.MessageText, data)
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}

// getClientIP resolves the originating client address, honoring proxy
// headers.
func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}
