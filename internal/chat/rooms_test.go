package chat

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func newTestStore(t *testing.T, usernames ...string) *Store {
	t.Helper()
	s := NewStore()
	for _, name := range usernames {
		if _, _, err := s.ResolveOrCreate(AuthContext{Username: name}); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestSeededRooms(t *testing.T) {
	s := NewStore()
	rooms := s.Rooms()
	if len(rooms) != 2 {
		t.Fatalf("expected 2 seeded rooms, got %d", len(rooms))
	}
	if rooms[0].Slug != "general" || rooms[1].Slug != "random" {
		t.Fatalf("unexpected seeded rooms: %+v", rooms)
	}
}

func TestEnsureDefault(t *testing.T) {
	s := NewStore()
	if got := s.EnsureDefault("random"); got != "random" {
		t.Errorf("EnsureDefault(random) = %q", got)
	}
	if got := s.EnsureDefault("no_such_room"); got != "general" {
		t.Errorf("EnsureDefault(no_such_room) = %q, want general", got)
	}
}

func TestCreateRoom(t *testing.T) {
	s := newTestStore(t, "alice")

	room, err := s.CreateRoom("Dev Team", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if room.Slug != "dev_team" {
		t.Fatalf("slug = %q, want dev_team", room.Slug)
	}

	// Same derived slug, different spelling.
	if _, err := s.CreateRoom("dev team!", "alice"); !errors.Is(err, ErrDuplicateRoom) {
		t.Fatalf("expected ErrDuplicateRoom, got %v", err)
	}
	if _, err := s.CreateRoom("   ", "alice"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank name, got %v", err)
	}
}

func TestPostAndMessages(t *testing.T) {
	s := newTestStore(t, "alice")

	msg, err := s.Post("general", "alice", "  hello  ")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Body != "hello" {
		t.Errorf("body = %q, want trimmed %q", msg.Body, "hello")
	}
	if msg.Edited {
		t.Error("fresh message should not be edited")
	}
	if msg.ID == "" {
		t.Error("message id not generated")
	}

	msgs, roomName, err := s.Messages("general", 50)
	if err != nil {
		t.Fatal(err)
	}
	if roomName != "General" {
		t.Errorf("room name = %q", roomName)
	}
	if len(msgs) != 1 || msgs[0].ID != msg.ID || msgs[0].Body != "hello" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}

	if _, err := s.Post("general", "alice", "   "); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty body, got %v", err)
	}
	if _, err := s.Post("nope", "alice", "hi"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown room, got %v", err)
	}
	if _, err := s.Post("general", "ghost", "hi"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown author, got %v", err)
	}
}

func TestPostBodyLimit(t *testing.T) {
	s := newTestStore(t, "alice")

	big := strings.Repeat("x", MaxBodyBytes+1)
	if _, err := s.Post("general", "alice", big); !errors.Is(err, ErrValidation) {
		t.Errorf("oversized body: expected ErrValidation, got %v", err)
	}
	if _, err := s.Post("general", "alice", strings.Repeat("x", MaxBodyBytes)); err != nil {
		t.Errorf("body at the limit should pass: %v", err)
	}
}

func TestMessagesWindow(t *testing.T) {
	s := newTestStore(t, "alice")
	for i := 0; i < 60; i++ {
		if _, err := s.Post("general", "alice", "msg"); err != nil {
			t.Fatal(err)
		}
	}

	msgs, _, err := s.Messages("general", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 50 {
		t.Fatalf("window size = %d, want 50", len(msgs))
	}
	// Chronological: ULIDs sort with time.
	for i := 1; i < len(msgs); i++ {
		if msgs[i].ID < msgs[i-1].ID {
			t.Fatalf("messages out of order at %d", i)
		}
	}

	if _, _, err := s.Messages("nope", 50); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEditAuthorization(t *testing.T) {
	s := newTestStore(t, "alice", "mallory")

	msg, err := s.Post("general", "alice", "hi")
	if err != nil {
		t.Fatal(err)
	}

	// Non-author sees the same signal as a missing id.
	if _, err := s.Edit("general", msg.ID, "mallory", "hacked"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-author edit, got %v", err)
	}
	msgs, _, _ := s.Messages("general", 50)
	if msgs[0].Body != "hi" || msgs[0].Edited {
		t.Fatalf("non-author edit mutated the message: %+v", msgs[0])
	}

	edited, err := s.Edit("general", msg.ID, "alice", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if edited.Body != "hello" || !edited.Edited || edited.EditedAt == nil {
		t.Fatalf("author edit not applied: %+v", edited)
	}

	if _, err := s.Edit("general", "no_such_id", "alice", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
	if _, err := s.Edit("general", msg.ID, "alice", "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty body, got %v", err)
	}
}

func TestDeletePreservesOrder(t *testing.T) {
	s := newTestStore(t, "alice", "mallory")

	var ids []string
	for _, body := range []string{"one", "two", "three"} {
		msg, err := s.Post("general", "alice", body)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, msg.ID)
	}

	if err := s.Delete("general", ids[1], "mallory"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-author delete, got %v", err)
	}
	if err := s.Delete("general", ids[1], "alice"); err != nil {
		t.Fatal(err)
	}

	msgs, _, _ := s.Messages("general", 50)
	if len(msgs) != 2 || msgs[0].Body != "one" || msgs[1].Body != "three" {
		t.Fatalf("delete broke ordering: %+v", msgs)
	}

	if err := s.Delete("general", "no_such_id", "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestEndToEnd(t *testing.T) {
	s := newTestStore(t, "alice", "mallory")

	room, err := s.CreateRoom("Dev Team", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if room.Slug != "dev_team" {
		t.Fatalf("slug = %q", room.Slug)
	}

	msg, err := s.Post("dev_team", "alice", "hi")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Edited {
		t.Fatal("new message marked edited")
	}

	edited, err := s.Edit("dev_team", msg.ID, "alice", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if !edited.Edited || edited.Body != "hello" {
		t.Fatalf("edit not applied: %+v", edited)
	}

	if _, err := s.Edit("dev_team", msg.ID, "mallory", "pwned"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Delete("dev_team", msg.ID, "alice"); err != nil {
		t.Fatal(err)
	}
	msgs, _, err := s.Messages("dev_team", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Fatalf("room should be empty, got %d messages", len(msgs))
	}
}

func TestConcurrentPosts(t *testing.T) {
	s := newTestStore(t, "alice", "bob")

	const perUser = 50
	var wg sync.WaitGroup
	for _, user := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for i := 0; i < perUser; i++ {
				if _, err := s.Post("general", user, "ping"); err != nil {
					t.Error(err)
					return
				}
			}
		}(user)
	}
	wg.Wait()

	msgs, _, err := s.Messages("general", 2*perUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2*perUser {
		t.Fatalf("lost messages under concurrency: %d", len(msgs))
	}
	seen := make(map[string]bool, len(msgs))
	for i, m := range msgs {
		if seen[m.ID] {
			t.Fatalf("duplicate message id %s", m.ID)
		}
		seen[m.ID] = true
		if i > 0 {
			if msgs[i-1].ID >= m.ID {
				t.Fatalf("ids out of order at %d: %s >= %s", i, msgs[i-1].ID, m.ID)
			}
			if msgs[i-1].CreatedAt.After(m.CreatedAt) {
				t.Fatalf("timestamps out of order at %d", i)
			}
		}
	}
}
