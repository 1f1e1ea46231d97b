package chat

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/parlor-chat/parlor/internal/models"
)

// AuthContext is what the trusted identity layer hands the registry after a
// successful authentication. Provider and ProviderID are empty for bare
// username logins.
type AuthContext struct {
	Username         string
	Email            string
	DisplayName      string
	AvatarURL        string
	TelegramUsername string
	Provider         string
	ProviderID       string
}

// ResolveOrCreate finds the identity bound to the auth context, refreshing
// its last-seen timestamp, or creates one. Provider-bound contexts match on
// (provider, provider id) so a user keeps their identity across nickname
// changes; bare logins match on username. The returned bool reports whether a
// new identity was created. The returned User is a snapshot: the registry
// keeps the live record, so callers can read and encode it with no lock held.
func (s *Store) ResolveOrCreate(auth AuthContext) (*models.User, bool, error) {
	username := strings.TrimSpace(auth.Username)
	if username == "" {
		return nil, false, fmt.Errorf("%w: username is required", ErrValidation)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	now := time.Now().UTC()

	if auth.Provider != "" {
		for _, u := range s.users {
			if u.Provider == auth.Provider && u.ProviderID == auth.ProviderID {
				u.LastSeen = now
				out := *u
				return &out, false, nil
			}
		}
		// First login through this provider. If the requested username is
		// already held by someone else, disambiguate with a token derived
		// from the provider id so the same principal always gets the same
		// fallback.
		if _, taken := s.users[username]; taken {
			username = username + "_" + providerToken(auth.Provider, auth.ProviderID)
		}
		if _, taken := s.users[username]; taken {
			return nil, false, fmt.Errorf("%w: username %q is taken", ErrConflict, username)
		}
	} else if u, ok := s.users[username]; ok {
		u.LastSeen = now
		if auth.Email != "" {
			u.Email = auth.Email
		}
		if auth.TelegramUsername != "" {
			u.TelegramUsername = auth.TelegramUsername
		}
		out := *u
		return &out, false, nil
	}

	u := &models.User{
		Username:         username,
		DisplayName:      auth.DisplayName,
		Email:            auth.Email,
		Provider:         auth.Provider,
		ProviderID:       auth.ProviderID,
		AvatarURL:        auth.AvatarURL,
		TelegramUsername: auth.TelegramUsername,
		CreatedAt:        now,
		LastSeen:         now,
	}
	s.users[username] = u
	out := *u
	return &out, true, nil
}

// Lookup returns a snapshot of the identity for key, or nil.
func (s *Store) Lookup(key string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	u, ok := s.users[key]
	if !ok {
		return nil
	}
	out := *u
	return &out
}

// Rebind moves an identity to a new key and rewrites the author, sender, and
// recipient references on every historical message. It runs under the store's
// exclusive lock: no reader can observe a state where some messages carry the
// old key while the registry already reports the new one. Like the other
// registry operations it returns a snapshot, never the live record.
func (s *Store) Rebind(oldKey, newKey string) (*models.User, error) {
	newKey = strings.TrimSpace(newKey)
	if newKey == "" {
		return nil, fmt.Errorf("%w: nickname cannot be empty", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[oldKey]
	if !ok {
		return nil, fmt.Errorf("%w: unknown identity %q", ErrNotFound, oldKey)
	}
	if newKey == oldKey {
		out := *u
		return &out, nil
	}
	if _, taken := s.users[newKey]; taken {
		return nil, fmt.Errorf("%w: nickname %q is already taken", ErrConflict, newKey)
	}

	delete(s.users, oldKey)
	u.Username = newKey
	s.users[newKey] = u
	label := u.Label()

	for _, rm := range s.rooms {
		for _, m := range rm.msgs {
			if m.Author == oldKey {
				m.Author = newKey
				m.Nickname = label
			}
		}
	}
	for _, pm := range s.pms {
		if pm.From == oldKey {
			pm.From = newKey
			pm.FromNickname = label
		}
		if pm.To == oldKey {
			pm.To = newKey
			pm.ToNickname = label
		}
	}

	out := *u
	return &out, nil
}

// providerToken derives a short stable suffix from a provider identity.
func providerToken(provider, providerID string) string {
	sum := sha256.Sum256([]byte(provider + ":" + providerID))
	return hex.EncodeToString(sum[:3])
}
