// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Contact model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no validation or business rules, only persistence and query
// composition.
//
// Error semantics:
//   - DB errors (missing table, connectivity, constraints) are propagated raw.
//   - DeleteContact reports how many rows matched rather than failing on a
//     missing id; callers decide whether that matters.
//
// Functions:
//
//   - CreateContact(ctx, db, c) -> error
//     Inserts a row, stamping SubmittedAt when empty, and fills c.ID.
//
//   - ListContacts(ctx, db) -> []domain.Contact, error
//     Returns every row, newest submission first.
//
//   - DeleteContact(ctx, db, id) -> (int64, error)
//     Deletes by primary key and returns the affected row count.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience.
var ErrNotFound = gorm.ErrRecordNotFound

// now is the clock used for SubmittedAt; tests may replace it.
var now = time.Now

// CreateContact inserts c. When c.SubmittedAt is empty it is set to the
// current time in domain.TimestampLayout. On success c.ID holds the id the
// store assigned.
func CreateContact(ctx context.Context, db *gorm.DB, c *domain.Contact) error {
	if c.SubmittedAt == "" {
		c.SubmittedAt = domain.FormatTimestamp(now())
	}
	return db.WithContext(ctx).Create(c).Error
}

// ListContacts returns all contacts ordered by submitted_at descending. Rows
// sharing a timestamp are ordered by id descending so the result is stable.
// The slice is never nil.
func ListContacts(ctx context.Context, db *gorm.DB) ([]domain.Contact, error) {
	out := make([]domain.Contact, 0)
	err := db.WithContext(ctx).
		Select("id", "name", "email", "service", "message", "submitted_at").
		Order("submitted_at DESC").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetContact loads a single contact by id, or ErrNotFound.
func GetContact(ctx context.Context, db *gorm.DB, id uint) (*domain.Contact, error) {
	var c domain.Contact
	if err := db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteContact removes the contact with the given id and returns the number
// of rows deleted (0 or 1). A missing id is not an error.
func DeleteContact(ctx context.Context, db *gorm.DB, id uint) (int64, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Contact{})
	return res.RowsAffected, res.Error
}
