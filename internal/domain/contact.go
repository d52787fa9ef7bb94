// Package domain defines the persistence models for contact submissions and
// the idempotency records that make submission retries safe. These types are
// mapped with GORM and form the core data layer of the contact backend.
package domain

import "time"

// TimestampLayout is the ISO-8601 form used for SubmittedAt. It is fixed-width
// and always UTC, so lexical order matches chronological order in the store.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Contact represents one contact-form submission.
//
// Fields:
//   - ID: integer primary key assigned by the store; strictly increasing and
//     never reused (AUTOINCREMENT on SQLite, identity on Postgres).
//   - Name, Email, Service, Message: required free text. Presence is enforced
//     at the API boundary; the schema only guarantees NOT NULL.
//   - SubmittedAt: server-side insertion time formatted with TimestampLayout.
//
// Rows are immutable once written; the only lifecycle event after creation is
// deletion by ID.
type Contact struct {
	ID          uint   `json:"id"           gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name"         gorm:"type:text;not null"`
	Email       string `json:"email"        gorm:"type:text;not null"`
	Service     string `json:"service"      gorm:"type:text;not null"`
	Message     string `json:"message"      gorm:"type:text;not null"`
	SubmittedAt string `json:"submitted_at" gorm:"type:text;not null;index:idx_contacts_submitted_at"`
}

// TableName returns the database table name for Contact.
func (Contact) TableName() string { return "contacts" }

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
