package port

import (
	"context"
	"time"
)

// SessionStore persists the minimal session reference for the federated
// sign-in flow. Only the account email is stored; the full record is
// re-resolved on every request so revocation and edits take effect
// immediately.
type SessionStore interface {
	Save(ctx context.Context, ref string, email string, ttl time.Duration) error
	Lookup(ctx context.Context, ref string) (string, error)
	Delete(ctx context.Context, ref string) error
}
