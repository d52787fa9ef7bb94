package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func lastLogLine(t *testing.T, out string) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("bad log line %q: %v", lines[len(lines)-1], err)
	}
	return m
}

func TestRedactingLogger_ScrubsQueryHeadersAndIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/api/contacts", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"contacts": []any{}}) })

	req := httptest.NewRequest(http.MethodGet,
		"/api/contacts?email=ann@example.com&phone=212-555-1212&ref=141add05-4415-4938-b5a1-17e0d3171aff", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Api-Key", "k-123")
	req.Header.Set("X-Note", "reach me at bob@example.org")
	req.RemoteAddr = "203.0.113.77:5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := buf.String()
	for _, leak := range []string{"ann@example.com", "212-555-1212", "141add05", "Bearer secret", "k-123", "bob@example.org", "203.0.113.77"} {
		if strings.Contains(out, leak) {
			t.Fatalf("log leaked %q:\n%s", leak, out)
		}
	}

	m := lastLogLine(t, out)
	if m["level"] != "info" || m["path"] != "/api/contacts" || m["client_ip"] != "203.0.113.0" {
		t.Fatalf("unexpected log fields: %v", m)
	}
	q, _ := m["query"].(string)
	if !strings.Contains(q, "[REDACTED:email]") || !strings.Contains(q, "[REDACTED:phone]") || !strings.Contains(q, "[REDACTED:id]") {
		t.Fatalf("query not scrubbed: %q", q)
	}
	headers, _ := m["headers"].(map[string]any)
	if headers["Authorization"] != "[REDACTED]" || headers["X-Api-Key"] != "[REDACTED]" {
		t.Fatalf("headers not masked: %v", headers)
	}
}

func TestRedactingLogger_LevelsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		status int
		level  string
	}{
		{http.StatusCreated, "info"},
		{http.StatusBadRequest, "warn"},
		{http.StatusInternalServerError, "error"},
	}
	for _, tc := range cases {
		buf := captureLogger(t)
		r := gin.New()
		r.Use(RedactingLogger(RedactOptions{KeepClientIP: true}))
		r.GET("/x", func(c *gin.Context) { c.Status(tc.status) })

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "198.51.100.9:1"
		r.ServeHTTP(httptest.NewRecorder(), req)

		m := lastLogLine(t, buf.String())
		if m["level"] != tc.level {
			t.Fatalf("status %d logged at %v; want %s", tc.status, m["level"], tc.level)
		}
		if m["client_ip"] != "198.51.100.9" {
			t.Fatalf("KeepClientIP ignored: %v", m["client_ip"])
		}
	}
}

func TestRedactingLogger_GinErrorsLogAtError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/err", func(c *gin.Context) {
		_ = c.Error(http.ErrBodyNotAllowed)
		c.Status(http.StatusBadRequest)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/err", nil))

	m := lastLogLine(t, buf.String())
	if m["level"] != "error" || m["errors"] == nil {
		t.Fatalf("expected error level with errors field, got %v", m)
	}
}

func TestRedactingLogger_UnmatchedPathScrubbed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/u/someone@example.com", nil))

	m := lastLogLine(t, buf.String())
	if m["path"] != "/u/[REDACTED:email]" || m["level"] != "warn" {
		t.Fatalf("unexpected: %v", m)
	}
}

func TestMaskIP(t *testing.T) {
	cases := map[string]string{
		"10.1.2.3":              "10.1.2.0",
		"2001:db8:abcd:12::1":   "2001:db8:abcd::",
		"not-an-ip":             "",
		"::ffff:192.168.10.200": "192.168.10.0",
	}
	for in, want := range cases {
		if got := maskIP(in); got != want {
			t.Errorf("maskIP(%q) = %q; want %q", in, got, want)
		}
	}
}
