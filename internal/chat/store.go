package chat

import (
	"sync"
	"time"

	"github.com/parlor-chat/parlor/internal/models"
)

// DefaultRoom is the fallback slug when a requested room does not exist.
const DefaultRoom = "general"

// MaxBodyBytes is the largest accepted message body, room or private.
const MaxBodyBytes = 4096

// seededRooms always exist and cannot collide with user-created rooms.
var seededRooms = []struct{ slug, name string }{
	{"general", "General"},
	{"random", "Random"},
}

// room pairs a Room's metadata with its message log. The log is owned
// exclusively by the Store; nothing outside this package touches it.
type room struct {
	mu        sync.Mutex
	name      string
	createdBy string
	createdAt time.Time
	msgs      []*models.Message
}

// Store holds all volatile chat state: the identity registry, the room set
// with their message logs, and the private message channel. Storage is
// reset-on-restart; the archive mirror is the durable variant.
//
// Locking: mu is the store-wide lock. Every operation holds it for reading;
// Rebind holds it for writing and is therefore exclusive against all other
// traffic while it rewrites historical authorship. Within a read hold,
// per-collection locks (usersMu, roomsMu, pmMu, room.mu) serialize writers on
// the same entity while leaving other entities concurrent.
type Store struct {
	mu sync.RWMutex

	usersMu sync.RWMutex
	users   map[string]*models.User

	roomsMu   sync.RWMutex
	rooms     map[string]*room
	roomOrder []string

	pmMu sync.RWMutex
	pms  []*models.PrivateMessage
}

// NewStore creates a store seeded with the default rooms.
func NewStore() *Store {
	s := &Store{
		users: make(map[string]*models.User),
		rooms: make(map[string]*room),
	}
	now := time.Now().UTC()
	for _, seed := range seededRooms {
		s.rooms[seed.slug] = &room{
			name:      seed.name,
			createdBy: "system",
			createdAt: now,
		}
		s.roomOrder = append(s.roomOrder, seed.slug)
	}
	return s
}

// Stats returns the counters exposed by the health endpoint.
func (s *Store) Stats() (users, rooms, messages int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.usersMu.RLock()
	users = len(s.users)
	s.usersMu.RUnlock()

	s.roomsMu.RLock()
	rooms = len(s.rooms)
	for _, rm := range s.rooms {
		rm.mu.Lock()
		messages += len(rm.msgs)
		rm.mu.Unlock()
	}
	s.roomsMu.RUnlock()

	return users, rooms, messages
}
