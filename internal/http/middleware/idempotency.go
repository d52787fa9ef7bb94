// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file validates the optional Idempotency-Key request header on contact
// submissions. A valid key is stashed in the Gin context together with the
// scope it applies to (the client IP), and the handler passes both to the
// service, which performs the lookup and insert inside one transaction.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the client's key.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplay is set to "true" on responses served from an earlier
// submission with the same key.
const HeaderIdempotentReplay = "Idempotent-Replay"

const (
	ctxKeyIdemKey   = "idem.key"
	ctxKeyIdemScope = "idem.scope"
)

// defaultKeyPattern is an RFC 7230 token subset.
var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters; nil uses ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Scope derives the namespace a key belongs to. Defaults to the client IP,
	// so two clients choosing the same key do not collide.
	Scope func(c *gin.Context) string
}

// GetIdempotencyKey returns the validated key and its scope. ok is false when
// the request carried no key.
func GetIdempotencyKey(c *gin.Context) (scope, key string, ok bool) {
	key = c.GetString(ctxKeyIdemKey)
	if key == "" {
		return "", "", false
	}
	return c.GetString(ctxKeyIdemScope), key, true
}

// IdempotencyValidator checks the Idempotency-Key header when present.
//
//   - Absent header: no-op.
//   - Invalid header: 400 with the standard error envelope, chain aborted.
//   - Valid header: key and scope stored for GetIdempotencyKey.
func IdempotencyValidator(opts IdempotencyOptions) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}
	scope := opts.Scope
	if scope == nil {
		scope = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":      "invalid Idempotency-Key",
				"code":       "bad_request",
				"request_id": GetRequestID(c),
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)
		c.Set(ctxKeyIdemScope, scope(c))
		c.Next()
	}
}
