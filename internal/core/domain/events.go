package domain

import "time"

// AccountRegisteredEvent represents the payload for identity.account.registered messages.
type AccountRegisteredEvent struct {
	EventID            string
	AccountID          int64
	Email              string
	DisplayName        string
	RegisteredAt       time.Time
	RegistrationMethod string
	Metadata           map[string]any
}

// ProfileFieldUpdatedEvent represents the payload for identity.profile.field_updated messages.
type ProfileFieldUpdatedEvent struct {
	EventID        string
	AccountID      int64
	Field          ProfileField
	RemainingEdits int
	UpdatedAt      time.Time
	Metadata       map[string]any
}

// ProfilePhotoChangedEvent represents the payload for identity.profile.photo_changed messages.
type ProfilePhotoChangedEvent struct {
	EventID   string
	AccountID int64
	PhotoPath *string
	Deleted   bool
	ChangedAt time.Time
	Metadata  map[string]any
}
