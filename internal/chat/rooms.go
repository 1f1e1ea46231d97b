package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/parlor-chat/parlor/internal/models"
)

// EnsureDefault returns slug if it names an existing room, otherwise the
// canonical fallback.
func (s *Store) EnsureDefault(slug string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()
	if _, ok := s.rooms[slug]; ok {
		return slug
	}
	return DefaultRoom
}

// CreateRoom derives the slug from name and creates the room.
func (s *Store) CreateRoom(name, creator string) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", ErrValidation)
	}
	slug := Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("%w: room name %q has no usable characters", ErrValidation, name)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	if _, ok := s.rooms[slug]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRoom, slug)
	}

	rm := &room{
		name:      name,
		createdBy: creator,
		createdAt: time.Now().UTC(),
	}
	s.rooms[slug] = rm
	s.roomOrder = append(s.roomOrder, slug)

	return &models.Room{
		Slug:      slug,
		Name:      name,
		CreatedBy: creator,
		CreatedAt: rm.createdAt,
	}, nil
}

// Rooms returns a snapshot of all rooms in creation order.
func (s *Store) Rooms() []models.RoomSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()

	out := make([]models.RoomSummary, 0, len(s.roomOrder))
	for _, slug := range s.roomOrder {
		rm := s.rooms[slug]
		rm.mu.Lock()
		count := len(rm.msgs)
		rm.mu.Unlock()
		out = append(out, models.RoomSummary{
			Slug:         slug,
			Name:         rm.name,
			MessageCount: count,
		})
	}
	return out
}

// Messages returns copies of the most recent limit messages in chronological
// order, plus the room's display name.
func (s *Store) Messages(slug string, limit int) ([]models.Message, string, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rm, err := s.roomBySlug(slug)
	if err != nil {
		return nil, "", err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	start := 0
	if len(rm.msgs) > limit {
		start = len(rm.msgs) - limit
	}
	out := make([]models.Message, 0, len(rm.msgs)-start)
	for _, m := range rm.msgs[start:] {
		out = append(out, *m)
	}
	return out, rm.name, nil
}

// Post appends a message to a room and refreshes the author's last-seen.
func (s *Store) Post(slug, authorKey, text string) (*models.Message, error) {
	text, err := validBody(text)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	s.usersMu.RLock()
	author, ok := s.users[authorKey]
	s.usersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown identity %q", ErrNotFound, authorKey)
	}

	rm, err := s.roomBySlug(slug)
	if err != nil {
		return nil, err
	}

	// The id and timestamp are stamped under the room lock so that append
	// order, id order, and time order always agree.
	rm.mu.Lock()
	now := time.Now().UTC()
	msg := &models.Message{
		ID:        ulid.Make().String(),
		Author:    author.Username,
		Nickname:  author.Label(),
		Body:      text,
		CreatedAt: now,
	}
	rm.msgs = append(rm.msgs, msg)
	out := *msg
	rm.mu.Unlock()

	s.usersMu.Lock()
	author.LastSeen = now
	s.usersMu.Unlock()

	return &out, nil
}

// Edit replaces the body of a message authored by authorKey. A message that
// exists but belongs to someone else is reported exactly like a missing id.
func (s *Store) Edit(slug, messageID, authorKey, text string) (*models.Message, error) {
	text, err := validBody(text)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rm, err := s.roomBySlug(slug)
	if err != nil {
		return nil, err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, m := range rm.msgs {
		if m.ID == messageID && m.Author == authorKey {
			now := time.Now().UTC()
			m.Body = text
			m.Edited = true
			m.EditedAt = &now
			out := *m
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: message not found or not authorized", ErrNotFound)
}

// Delete removes a message authored by authorKey, preserving the order of
// the remaining messages. Authorization is folded into the lookup like Edit.
func (s *Store) Delete(slug, messageID, authorKey string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rm, err := s.roomBySlug(slug)
	if err != nil {
		return err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	for i, m := range rm.msgs {
		if m.ID == messageID && m.Author == authorKey {
			rm.msgs = append(rm.msgs[:i], rm.msgs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: message not found or not authorized", ErrNotFound)
}

// validBody trims and bounds a message body.
func validBody(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: message body is empty", ErrValidation)
	}
	if len(text) > MaxBodyBytes {
		return "", fmt.Errorf("%w: message body exceeds %d bytes", ErrValidation, MaxBodyBytes)
	}
	return text, nil
}

// roomBySlug resolves a room under the caller's store read hold.
func (s *Store) roomBySlug(slug string) (*room, error) {
	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()
	rm, ok := s.rooms[slug]
	if !ok {
		return nil, fmt.Errorf("%w: room %q", ErrNotFound, slug)
	}
	return rm, nil
}
