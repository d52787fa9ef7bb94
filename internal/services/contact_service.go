// Package services – ContactService
//
// This file implements the ContactService, which owns the contact submission
// use-cases: validating and storing a submission (optionally guarded by an
// Idempotency-Key), listing all submissions, and deleting one by id.
//
// Deletion is deliberately idempotent: removing an id that does not exist is
// reported as success, matching the public API contract.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-contact-backend/internal/domain"
	"github.com/tbourn/go-contact-backend/internal/observability"
	"github.com/tbourn/go-contact-backend/internal/repo"
)

// Notifier receives contact events after the store commit. Implementations
// must not block for long; failures are logged and never fail the request.
type Notifier interface {
	Publish(ctx context.Context, ev domain.ContactEvent) error
}

// ContactInput is the typed submission accepted by Create.
type ContactInput struct {
	Name    string
	Email   string
	Service string
	Message string
}

// Validate reports every required field that is empty. Values are not
// trimmed: whitespace counts as present.
func (in ContactInput) Validate() error {
	var missing []string
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if in.Service == "" {
		missing = append(missing, "service")
	}
	if in.Message == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// IdempotencyKey scopes a client-supplied key. An empty Key disables the
// idempotency check.
type IdempotencyKey struct {
	Scope string
	Key   string
}

// CreateResult describes the outcome of Create.
type CreateResult struct {
	ID          uint
	SubmittedAt string
	// Replayed is true when the key matched an earlier submission and no new
	// row was written. SubmittedAt is empty in that case.
	Replayed bool
}

// ContactService implements the contact use-cases over a GORM handle.
type ContactService struct {
	// DB is the database handle used for all contact operations.
	DB *gorm.DB
	// Notifier is optional; nil disables event publishing.
	Notifier Notifier
	// IdempotencyTTL bounds how long a key is remembered. Defaults to 24h.
	IdempotencyTTL time.Duration
}

// NewContactService constructs a ContactService with default TTL.
func NewContactService(db *gorm.DB, n Notifier, ttl time.Duration) *ContactService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ContactService{DB: db, Notifier: n, IdempotencyTTL: ttl}
}

// Create validates in and stores it as a new submission.
//
// When idem.Key is set the lookup, insert, and key record run in one
// transaction; a key seen before (and not expired) returns the original id
// with Replayed=true instead of inserting again.
//
// Errors:
//   - *ValidationError (errors.Is ErrInvalidContact) when fields are missing;
//     the store is not touched.
//   - ErrIdempotencyConflict when a concurrent request won the key race and
//     its record cannot be read back.
//   - Raw DB errors otherwise.
func (s *ContactService) Create(ctx context.Context, in ContactInput, idem IdempotencyKey) (res *CreateResult, err error) {
	ctx, span := observability.Tracer().Start(ctx, "ContactService.Create")
	defer func() {
		if res != nil {
			span.SetAttributes(
				attribute.Int64("contact.id", int64(res.ID)),
				attribute.Bool("contact.replayed", res.Replayed),
			)
		}
		observability.EndSpan(span, err)
	}()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	c := &domain.Contact{
		Name:    in.Name,
		Email:   in.Email,
		Service: in.Service,
		Message: in.Message,
	}

	if idem.Key == "" {
		if err := repo.CreateContact(ctx, s.DB, c); err != nil {
			return nil, err
		}
		s.created(ctx, *c)
		return &CreateResult{ID: c.ID, SubmittedAt: c.SubmittedAt}, nil
	}

	var replay *domain.Idempotency
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := repo.GetIdempotency(ctx, tx, idem.Scope, idem.Key, time.Now().UTC())
		switch {
		case err == nil:
			replay = rec
			return nil
		case !errors.Is(err, repo.ErrNotFound):
			return err
		}

		if err := repo.CreateContact(ctx, tx, c); err != nil {
			return err
		}
		_, err = repo.CreateIdempotency(ctx, tx, idem.Scope, idem.Key, c.ID, 201, s.ttl())
		return err
	})

	if errors.Is(err, repo.ErrDuplicate) {
		// Lost the race to a concurrent request with the same key; its
		// transaction committed first, so answer with its outcome.
		rec, lookupErr := repo.GetIdempotency(ctx, s.DB, idem.Scope, idem.Key, time.Now().UTC())
		if lookupErr != nil {
			return nil, ErrIdempotencyConflict
		}
		replay, err = rec, nil
	}
	if err != nil {
		return nil, err
	}

	if replay != nil {
		submissionsTotal.WithLabelValues("replayed").Inc()
		return &CreateResult{ID: replay.ContactID, Replayed: true}, nil
	}
	s.created(ctx, *c)
	return &CreateResult{ID: c.ID, SubmittedAt: c.SubmittedAt}, nil
}

// List returns every submission, newest first. The slice is never nil.
func (s *ContactService) List(ctx context.Context) (out []domain.Contact, err error) {
	ctx, span := observability.Tracer().Start(ctx, "ContactService.List")
	defer func() {
		span.SetAttributes(attribute.Int("contact.count", len(out)))
		observability.EndSpan(span, err)
	}()
	return repo.ListContacts(ctx, s.DB)
}

// Stats returns the row count and highest id, used for list ETags.
func (s *ContactService) Stats(ctx context.Context) (int64, uint, error) {
	return repo.ContactsStats(ctx, s.DB)
}

// Delete removes the submission with the given id. A missing id is not an
// error. The removed row, if any, is published as a deletion event.
func (s *ContactService) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := observability.Tracer().Start(ctx, "ContactService.Delete")
	span.SetAttributes(attribute.Int64("contact.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	var removed *domain.Contact
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := repo.GetContact(ctx, tx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		n, err := repo.DeleteContact(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			removed = c
		}
		return nil
	})
	if err != nil {
		return err
	}

	if removed == nil {
		deletionsTotal.WithLabelValues("missing").Inc()
		return nil
	}
	deletionsTotal.WithLabelValues("deleted").Inc()
	s.publish(ctx, domain.EventContactDeleted, *removed)
	return nil
}

func (s *ContactService) created(ctx context.Context, c domain.Contact) {
	submissionsTotal.WithLabelValues("created").Inc()
	s.publish(ctx, domain.EventContactSubmitted, c)
}

// publish forwards ev to the notifier, logging (not returning) failures.
func (s *ContactService) publish(ctx context.Context, typ string, c domain.Contact) {
	if s.Notifier == nil {
		return
	}
	ev := domain.ContactEvent{Type: typ, Contact: c, OccurredAt: time.Now().UTC()}
	if err := s.Notifier.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("event", typ).
			Uint("contact_id", c.ID).
			Msg("contact event not published")
	}
}

func (s *ContactService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}
