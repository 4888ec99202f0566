package domain

import "time"

// Provenance records how an account was created. It determines which
// authentication paths are valid for the account.
type Provenance string

const (
	// ProvenanceLocal marks accounts registered with email and password.
	ProvenanceLocal Provenance = "email"
	// ProvenanceGoogle marks accounts created on first Google sign-in.
	ProvenanceGoogle Provenance = "google"
)

// Account mirrors the persisted representation in the usuarios table.
type Account struct {
	ID           int64
	Email        string
	DisplayName  string
	Phone        *int64
	BirthDate    *time.Time
	PhotoPath    *string
	PasswordHash *string
	Provenance   Provenance
	CreatedAt    time.Time

	// Per-field edit counters, each bounded in [0, MaxFieldEdits].
	DisplayNameEdits int
	PhoneEdits       int
	BirthDateEdits   int
}

// HasPassword reports whether the account holds a local credential.
// Accounts created purely via federation carry no password hash.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// EditCount returns the current edit counter for the given field.
func (a *Account) EditCount(field ProfileField) int {
	switch field {
	case FieldDisplayName:
		return a.DisplayNameEdits
	case FieldPhone:
		return a.PhoneEdits
	case FieldBirthDate:
		return a.BirthDateEdits
	}
	return 0
}

// Principal is the authenticated identity attached to a single request.
// It is reconstructed per request from a verified bearer token or a
// resolved session reference, never persisted.
type Principal struct {
	ID          int64
	Email       string
	DisplayName string
}

// PrincipalOf derives the request principal for an account.
func PrincipalOf(a *Account) Principal {
	return Principal{ID: a.ID, Email: a.Email, DisplayName: a.DisplayName}
}
