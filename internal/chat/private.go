package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/parlor-chat/parlor/internal/models"
)

// SendPrivate appends a direct message to the private channel. The recipient
// must be a known identity at send time.
func (s *Store) SendPrivate(senderKey, recipientKey, text string) (*models.PrivateMessage, error) {
	recipientKey = strings.TrimSpace(recipientKey)
	if recipientKey == "" {
		return nil, fmt.Errorf("%w: recipient and message are required", ErrValidation)
	}
	text, err := validBody(text)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	s.usersMu.RLock()
	sender, senderOK := s.users[senderKey]
	recipient, recipientOK := s.users[recipientKey]
	s.usersMu.RUnlock()
	if !senderOK {
		return nil, fmt.Errorf("%w: unknown identity %q", ErrNotFound, senderKey)
	}
	if !recipientOK {
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, recipientKey)
	}

	// Stamped under the channel lock so append order matches id and time
	// order, same as room posts.
	s.pmMu.Lock()
	pm := &models.PrivateMessage{
		ID:           ulid.Make().String(),
		From:         sender.Username,
		FromNickname: sender.Label(),
		To:           recipient.Username,
		ToNickname:   recipient.Label(),
		Body:         text,
		CreatedAt:    time.Now().UTC(),
		IsPrivate:    true,
	}
	s.pms = append(s.pms, pm)
	out := *pm
	s.pmMu.Unlock()

	return &out, nil
}

// PrivateFor returns copies of the most recent limit private messages where
// key is the sender or the recipient, in chronological order.
func (s *Store) PrivateFor(key string, limit int) []models.PrivateMessage {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	s.pmMu.RLock()
	defer s.pmMu.RUnlock()

	// Ids and timestamps are stamped under pmMu at append time, so the
	// slice is chronological by construction; filter then keep the tail.
	matched := make([]models.PrivateMessage, 0, limit)
	for _, pm := range s.pms {
		if pm.From == key || pm.To == key {
			matched = append(matched, *pm)
		}
	}
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched
}
