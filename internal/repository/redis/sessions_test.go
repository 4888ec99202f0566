package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Domis382/Redibo-back-wtt/internal/repository"
)

func newTestRepo(t *testing.T) (*miniredis.Miniredis, *SessionRepository) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return srv, NewSessionRepository(client, "identity:session")
}

func TestSessionRepository_SaveAndLookup(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, "ref-1", "ana@example.com", time.Hour); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	email, err := repo.Lookup(ctx, "ref-1")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if email != "ana@example.com" {
		t.Errorf("expected stored email, got %q", email)
	}
}

func TestSessionRepository_LookupUnknownRef(t *testing.T) {
	_, repo := newTestRepo(t)

	if _, err := repo.Lookup(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_Expiry(t *testing.T) {
	srv, repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, "ref-2", "ana@example.com", time.Minute); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	srv.FastForward(2 * time.Minute)

	if _, err := repo.Lookup(ctx, "ref-2"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, "ref-3", "ana@example.com", time.Hour); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := repo.Delete(ctx, "ref-3"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.Lookup(ctx, "ref-3"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op, not an error.
	if err := repo.Delete(ctx, "ref-3"); err != nil {
		t.Fatalf("second Delete returned error: %v", err)
	}
}
