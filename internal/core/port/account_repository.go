package port

import (
	"context"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts.
//
// ApplyFieldUpdate is the conditional primitive the mutation guard relies
// on: it must set the field's value and increment its edit counter in one
// atomic statement that only fires while the counter is still below
// domain.MaxFieldEdits, returning the counter after the increment. Two
// racing updates can therefore never push a counter past the cap or
// overwrite each other without consuming an edit.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPhone(ctx context.Context, phone int64) (*domain.Account, error)
	ApplyFieldUpdate(ctx context.Context, id int64, value domain.FieldValue) (int, error)
	UpdatePhotoPath(ctx context.Context, id int64, path *string) error
}
