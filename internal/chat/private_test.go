package chat

import (
	"errors"
	"sync"
	"testing"
)

func TestSendPrivate(t *testing.T) {
	s := newTestStore(t, "alice", "bob")

	pm, err := s.SendPrivate("alice", "bob", "  hi bob  ")
	if err != nil {
		t.Fatal(err)
	}
	if pm.Body != "hi bob" || pm.From != "alice" || pm.To != "bob" {
		t.Fatalf("unexpected private message: %+v", pm)
	}
	if !pm.IsPrivate {
		t.Fatal("private marker not set")
	}

	if _, err := s.SendPrivate("alice", "bob", "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty body, got %v", err)
	}
	if _, err := s.SendPrivate("alice", "", "hi"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty recipient, got %v", err)
	}
	if _, err := s.SendPrivate("alice", "ghost", "hi"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown recipient, got %v", err)
	}
}

func TestPrivateForFiltersAndCaps(t *testing.T) {
	s := newTestStore(t, "alice", "bob", "carol")

	for i := 0; i < 30; i++ {
		if _, err := s.SendPrivate("alice", "bob", "a-to-b"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.SendPrivate("bob", "alice", "b-to-a"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.SendPrivate("bob", "carol", "not alice's"); err != nil {
		t.Fatal(err)
	}

	pms := s.PrivateFor("alice", 50)
	if len(pms) != 50 {
		t.Fatalf("cap not applied: %d", len(pms))
	}
	for i, pm := range pms {
		if pm.From != "alice" && pm.To != "alice" {
			t.Fatalf("foreign message leaked: %+v", pm)
		}
		if i > 0 && pm.CreatedAt.Before(pms[i-1].CreatedAt) {
			t.Fatalf("messages not ascending at %d", i)
		}
	}

	// The window keeps the most recent entries.
	all := s.PrivateFor("alice", 1000)
	if len(all) != 60 {
		t.Fatalf("expected 60 total, got %d", len(all))
	}
	if pms[len(pms)-1].ID != all[len(all)-1].ID {
		t.Fatal("window dropped the newest message")
	}

	if got := s.PrivateFor("carol", 50); len(got) != 1 {
		t.Fatalf("carol should see exactly her one message, got %d", len(got))
	}
	if got := s.PrivateFor("ghost", 50); len(got) != 0 {
		t.Fatalf("unknown identity should see nothing, got %d", len(got))
	}
}

func TestConcurrentPrivateSends(t *testing.T) {
	s := newTestStore(t, "alice", "bob")

	const perSender = 50
	var wg sync.WaitGroup
	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		wg.Add(1)
		go func(from, to string) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				if _, err := s.SendPrivate(from, to, "ping"); err != nil {
					t.Error(err)
					return
				}
			}
		}(pair[0], pair[1])
	}
	wg.Wait()

	pms := s.PrivateFor("alice", 2*perSender)
	if len(pms) != 2*perSender {
		t.Fatalf("lost messages under concurrency: %d", len(pms))
	}
	for i := 1; i < len(pms); i++ {
		if pms[i-1].ID >= pms[i].ID {
			t.Fatalf("ids out of order at %d: %s >= %s", i, pms[i-1].ID, pms[i].ID)
		}
		if pms[i-1].CreatedAt.After(pms[i].CreatedAt) {
			t.Fatalf("timestamps out of order at %d", i)
		}
	}
}
