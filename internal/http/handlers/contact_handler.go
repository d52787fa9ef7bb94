// Contact HTTP handlers.
//
// This file exposes the REST endpoints for contact submissions:
//   - POST   /contact        (submit)
//   - GET    /contacts       (list, ETag support)
//   - DELETE /contacts/{id}  (delete, idempotent)
//
// Handlers are transport-thin: they decode and validate input, call the
// contact service, and translate results into HTTP responses.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-contact-backend/internal/domain"
	"github.com/tbourn/go-contact-backend/internal/http/middleware"
	"github.com/tbourn/go-contact-backend/internal/services"
	"github.com/tbourn/go-contact-backend/internal/utils"
)

// ContactService defines the contact operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ContactService interface {
	// Create validates and stores a submission, replaying on a known key.
	Create(ctx context.Context, in services.ContactInput, idem services.IdempotencyKey) (*services.CreateResult, error)
	// List returns every submission, newest first.
	List(ctx context.Context) ([]domain.Contact, error)
	// Stats returns the row count and highest id.
	Stats(ctx context.Context) (count int64, maxID uint, err error)
	// Delete removes a submission; a missing id is not an error.
	Delete(ctx context.Context, id uint) error
}

// Handlers groups the API endpoints.
type Handlers struct {
	contacts ContactService
}

// New constructs Handlers bound to the given service.
func New(contacts ContactService) *Handlers {
	return &Handlers{contacts: contacts}
}

//
// DTOs
//

// CreateContactRequest is the JSON payload of a submission. All four fields
// are required and must be non-empty strings.
type CreateContactRequest struct {
	Name    string `json:"name" binding:"required" example:"Ann Example"`
	Email   string `json:"email" binding:"required" example:"ann@example.com"`
	Service string `json:"service" binding:"required" example:"web-design"`
	Message string `json:"message" binding:"required" example:"I'd like a quote."`
}

// CreateContactResponse is returned on 201.
type CreateContactResponse struct {
	Message string `json:"message" example:"Contact submitted successfully"`
	ID      uint   `json:"id" example:"1"`
}

// ListContactsResponse wraps all submissions.
type ListContactsResponse struct {
	Contacts []domain.Contact `json:"contacts"`
}

//
// Helpers
//

// requiredFields are the submission keys, matched case-sensitively.
var requiredFields = []string{"name", "email", "service", "message"}

// decodeObject decodes raw as a JSON object. null, arrays, scalars, empty
// objects, and malformed input all report false.
func decodeObject(raw []byte) (map[string]json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || len(m) == 0 {
		return nil, false
	}
	return m, true
}

// absentFields lists, in declaration order, required keys that are missing
// from obj by exact name or whose value is null or "". The struct binder
// matches keys case-insensitively, so {"NAME":...} would otherwise count as
// present.
func absentFields(obj map[string]json.RawMessage) []string {
	var out []string
	for _, f := range requiredFields {
		v, found := obj[f]
		if !found {
			out = append(out, f)
			continue
		}
		switch strings.TrimSpace(string(v)) {
		case "null", `""`:
			out = append(out, f)
		}
	}
	return out
}

// missingFields maps validator errors to lower-case JSON field names in
// struct order.
func missingFields(errs validator.ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		out = append(out, strings.ToLower(fe.Field()))
	}
	return out
}

//
// Handlers
//

// CreateContact godoc
// @ID          createContact
// @Summary     Submit a contact request
// @Description Stores a contact-form submission. Supply Idempotency-Key to make retries safe; a replay returns the original id with header Idempotent-Replay: true.
// @Tags        Contacts
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Client key for safe retries"  example(form-7f3a)
// @Param       body             body    handlers.CreateContactRequest  true  "Submission"
//
// @Success     201  {object}  handlers.CreateContactResponse
// @Header      201  {string}  Idempotent-Replay  "true when served from an earlier submission"
// @Failure     400  {object}  handlers.ErrorResponse  "No data, invalid JSON, or missing fields"
// @Failure     409  {object}  handlers.ErrorResponse  "Idempotency-Key in use"
// @Failure     413  {object}  handlers.ErrorResponse  "Body too large"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /contact [post]
func (h *Handlers) CreateContact(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, msgBodyTooLarge)
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgNoData)
		return
	}
	obj, isObj := decodeObject(raw)
	if !isObj {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgNoData)
		return
	}
	if absent := absentFields(obj); len(absent) > 0 {
		failFields(c, http.StatusBadRequest, ErrCodeBadRequest, msgMissingFields, absent)
		return
	}

	var req CreateContactRequest
	if err := binding.JSON.BindBody(raw, &req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			failFields(c, http.StatusBadRequest, ErrCodeBadRequest, msgMissingFields, missingFields(verrs))
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return
	}

	var idem services.IdempotencyKey
	if scope, key, found := middleware.GetIdempotencyKey(c); found {
		idem = services.IdempotencyKey{Scope: scope, Key: key}
	}

	res, err := h.contacts.Create(c.Request.Context(), services.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Service: req.Service,
		Message: req.Message,
	}, idem)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			failFields(c, http.StatusBadRequest, ErrCodeBadRequest, msgMissingFields, verr.Missing)
		case errors.Is(err, services.ErrIdempotencyConflict):
			fail(c, http.StatusConflict, ErrCodeConflict, msgIdempotencyBusy)
		default:
			_ = c.Error(err)
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "failed to store submission")
		}
		return
	}

	if res.Replayed {
		c.Header(middleware.HeaderIdempotentReplay, "true")
	}
	ok(c, http.StatusCreated, CreateContactResponse{Message: msgSubmitted, ID: res.ID})
}

// ListContacts godoc
// @ID          listContacts
// @Summary     List contact submissions
// @Description Returns every submission, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Contacts
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"contacts:3:7\")
//
// @Success     200  {object} handlers.ListContactsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /contacts [get]
func (h *Handlers) ListContacts(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if count, maxID, err := h.contacts.Stats(ctx); err == nil {
		etag := fmt.Sprintf(`W/"contacts:%d:%d"`, count, maxID)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.contacts.List(ctx)
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "failed to list submissions")
		return
	}
	ok(c, http.StatusOK, ListContactsResponse{Contacts: items})
}

// DeleteContact godoc
// @ID          deleteContact
// @Summary     Delete a contact submission
// @Description Removes the submission with the given id. Deleting an id that does not exist still succeeds.
// @Tags        Contacts
// @Produce     json
//
// @Param       id  path  int  true  "Submission ID"  minimum(0) example(7)
//
// @Success     200  {object} handlers.MessageResponse
// @Failure     404  {object} handlers.ErrorResponse "Id is not an unsigned integer"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /contacts/{id} [delete]
func (h *Handlers) DeleteContact(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
		return
	}

	if err := h.contacts.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, "failed to delete submission")
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: msgDeleted})
}
