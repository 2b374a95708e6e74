// internal/room/store.go
package room

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mhollis/bridge/internal/auth"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// Store manages the active rooms in memory, keyed by their join code.
type Store struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	rng    *rand.Rand
	logger logrus.FieldLogger
}

// NewStore initializes an empty store.
func NewStore(logger logrus.FieldLogger) *Store {
	return &Store{
		rooms:  make(map[string]*Room),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

// Create builds a room under a fresh unique code. A non-empty password is
// hashed before it is stored; the plaintext never leaves this call. The
// room's OnEmpty is wired to remove it from the store.
func (s *Store) Create(password string) (*Room, error) {
	var passwordHash string
	if password != "" {
		h, err := auth.HashRoomPassword(password)
		if err != nil {
			return nil, err
		}
		passwordHash = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.newCodeLocked()
	r := NewRoom(code, passwordHash, s.logger)
	r.OnEmpty = func(code string) {
		s.Delete(code)
	}
	s.rooms[code] = r
	s.logger.WithField("room", code).Info("room created")
	return r, nil
}

// Get looks up a room by code, case-insensitively.
func (s *Store) Get(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[strings.ToUpper(code)]
	return r, ok
}

// Delete removes a room from the store.
func (s *Store) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; ok {
		delete(s.rooms, code)
		s.logger.WithField("room", code).Info("room deleted")
	}
}

// Summaries returns a listing entry for every active room.
func (s *Store) Summaries() []Summary {
	s.mu.Lock()
	roomsCopy := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		roomsCopy = append(roomsCopy, r)
	}
	s.mu.Unlock()

	// Each Summary call takes its room's own lock, so collect outside the
	// store lock.
	out := make([]Summary, 0, len(roomsCopy))
	for _, r := range roomsCopy {
		out = append(out, r.Summary())
	}
	return out
}

// newCodeLocked draws 6-character codes until one is unused. Assumes lock is
// held.
func (s *Store) newCodeLocked() string {
	for {
		b := make([]byte, codeLength)
		for i := range b {
			b[i] = codeAlphabet[s.rng.Intn(len(codeAlphabet))]
		}
		code := string(b)
		if _, exists := s.rooms[code]; !exists {
			return code
		}
	}
}
