package domain

import "time"

// Event types emitted after a contact change is committed.
const (
	EventContactSubmitted = "contact.submitted"
	EventContactDeleted   = "contact.deleted"
)

// ContactEvent is the payload published to downstream listeners (mail relays,
// CRM sync) when a submission is created or removed.
type ContactEvent struct {
	Type       string    `json:"type"`
	Contact    Contact   `json:"contact"`
	OccurredAt time.Time `json:"occurred_at"`
}
