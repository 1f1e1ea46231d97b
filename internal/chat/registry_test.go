package chat

import (
	"errors"
	"sync"
	"testing"
)

func TestResolveOrCreate(t *testing.T) {
	s := NewStore()

	u, created, err := s.ResolveOrCreate(AuthContext{Username: "alice", Email: "a@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if !created || u.Username != "alice" {
		t.Fatalf("unexpected first login result: created=%v user=%+v", created, u)
	}

	again, created, err := s.ResolveOrCreate(AuthContext{Username: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Fatal("second login should resolve, not create")
	}
	if again.Username != u.Username || !again.CreatedAt.Equal(u.CreatedAt) {
		t.Fatal("resolve returned a different record")
	}
	if again.LastSeen.Before(u.CreatedAt) {
		t.Fatal("last-seen not refreshed")
	}

	if _, _, err := s.ResolveOrCreate(AuthContext{Username: "   "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank username, got %v", err)
	}
}

func TestResolveOrCreateProviderBound(t *testing.T) {
	s := NewStore()

	u, _, err := s.ResolveOrCreate(AuthContext{Username: "alice", Provider: "github", ProviderID: "1001"})
	if err != nil {
		t.Fatal(err)
	}

	// Same provider identity resolves even after a nickname change.
	if _, err := s.Rebind("alice", "alicia"); err != nil {
		t.Fatal(err)
	}
	resolved, created, err := s.ResolveOrCreate(AuthContext{Username: "alice", Provider: "github", ProviderID: "1001"})
	if err != nil {
		t.Fatal(err)
	}
	if created || !resolved.CreatedAt.Equal(u.CreatedAt) || resolved.Username != "alicia" {
		t.Fatalf("provider-bound resolve failed: created=%v user=%+v", created, resolved)
	}

	// A different principal wanting the now-free name "alice" gets it; one
	// colliding with an existing name gets a suffixed fallback.
	if _, _, err := s.ResolveOrCreate(AuthContext{Username: "alice", Provider: "github", ProviderID: "2002"}); err != nil {
		t.Fatal(err)
	}
	u3, created, err := s.ResolveOrCreate(AuthContext{Username: "alice", Provider: "gitlab", ProviderID: "3003"})
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("expected a new identity")
	}
	if u3.Username == "alice" {
		t.Fatal("collision not disambiguated")
	}
	if got := u3.Username; got != "alice_"+providerToken("gitlab", "3003") {
		t.Fatalf("unexpected fallback username %q", got)
	}
}

func TestLookup(t *testing.T) {
	s := NewStore()
	if s.Lookup("nobody") != nil {
		t.Fatal("expected nil for unknown key")
	}
	if _, _, err := s.ResolveOrCreate(AuthContext{Username: "alice"}); err != nil {
		t.Fatal(err)
	}
	if u := s.Lookup("alice"); u == nil || u.Username != "alice" {
		t.Fatalf("lookup failed: %+v", u)
	}
}

func TestRegistryHandsOutSnapshots(t *testing.T) {
	s := newTestStore(t, "alice")

	// Mutating a returned record must not leak into the registry.
	u := s.Lookup("alice")
	u.Username = "mallory"
	if s.Lookup("mallory") != nil || s.Lookup("alice") == nil {
		t.Fatal("caller mutation reached the registry")
	}

	// A record handed out before a rebind keeps its old field values; the
	// rebind must not write into memory the caller is still reading.
	held := s.Lookup("alice")
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if held.Username != "alice" {
				t.Error("held snapshot changed under a concurrent rebind")
				return
			}
		}
	}()
	if _, err := s.Rebind("alice", "bob"); err != nil {
		t.Fatal(err)
	}
	close(stop)
	wg.Wait()

	if held.Username != "alice" {
		t.Fatalf("snapshot rewritten: %q", held.Username)
	}
	if got := s.Lookup("bob"); got == nil || got.Username != "bob" {
		t.Fatalf("registry state wrong after rebind: %+v", got)
	}
}

func TestRebindRewritesHistory(t *testing.T) {
	s := newTestStore(t, "alice", "carol", "dave")

	if _, err := s.Post("general", "alice", "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Post("random", "alice", "second"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Post("general", "carol", "not mine"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SendPrivate("alice", "carol", "psst"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SendPrivate("dave", "alice", "hey"); err != nil {
		t.Fatal(err)
	}

	u, err := s.Rebind("alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if u.Username != "bob" {
		t.Fatalf("username = %q", u.Username)
	}
	if s.Lookup("alice") != nil {
		t.Fatal("old key still resolves")
	}

	for _, slug := range []string{"general", "random"} {
		msgs, _, err := s.Messages(slug, 50)
		if err != nil {
			t.Fatal(err)
		}
		for _, m := range msgs {
			if m.Author == "alice" {
				t.Fatalf("message in %s still authored by alice", slug)
			}
		}
	}
	msgs, _, _ := s.Messages("general", 50)
	if msgs[0].Author != "bob" || msgs[0].Nickname != "bob" {
		t.Fatalf("authorship not rewritten: %+v", msgs[0])
	}
	if msgs[1].Author != "carol" {
		t.Fatalf("other author touched: %+v", msgs[1])
	}

	pms := s.PrivateFor("bob", 50)
	if len(pms) != 2 {
		t.Fatalf("private history lost: %+v", pms)
	}
	if pms[0].From != "bob" || pms[1].To != "bob" {
		t.Fatalf("private authorship not rewritten: %+v", pms)
	}
	if len(s.PrivateFor("alice", 50)) != 0 {
		t.Fatal("old key still matches private messages")
	}

	// The vacated name is reusable; the taken one conflicts.
	if _, err := s.Rebind("carol", "bob"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := s.Rebind("carol", "alice"); err != nil {
		t.Fatalf("rebinding to the vacated name should work: %v", err)
	}
}

func TestRebindEdgeCases(t *testing.T) {
	s := newTestStore(t, "alice")

	if _, err := s.Rebind("ghost", "anything"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Rebind("alice", "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	// Renaming to yourself is a no-op.
	u, err := s.Rebind("alice", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if u.Username != "alice" {
		t.Fatalf("no-op rebind changed the key: %q", u.Username)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t, "alice", "bob")
	if _, err := s.Post("general", "alice", "one"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Post("random", "bob", "two"); err != nil {
		t.Fatal(err)
	}

	users, rooms, messages := s.Stats()
	if users != 2 || rooms != 2 || messages != 2 {
		t.Fatalf("stats = %d users, %d rooms, %d messages", users, rooms, messages)
	}
}
