package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newStaticRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	parent := t.TempDir()
	root := filepath.Join(parent, "web")
	mustWrite(t, filepath.Join(root, "index.html"), "<h1>Contact us</h1>")
	mustWrite(t, filepath.Join(root, "css", "site.css"), "body{}")
	mustWrite(t, filepath.Join(root, ".env"), "SECRET=1")
	mustWrite(t, filepath.Join(parent, "contacts.db"), "sqlite")
	if err := os.Symlink(filepath.Join(parent, "contacts.db"), filepath.Join(root, "db-link")); err != nil {
		t.Logf("symlink unsupported: %v", err)
	}

	s, err := NewStatic(root, "")
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}
	r := gin.New()
	r.GET("/", s.Index)
	r.POST("/api/contact", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.NoRoute(s.NoRoute)
	return r, root
}

func mustWrite(t *testing.T, p, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStatic_ServesIndexAndAssets(t *testing.T) {
	r, _ := newStaticRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Contact us") {
		t.Fatalf("GET / -> %d %q", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("index content-type = %q", ct)
	}

	// no redirect for the explicit index path
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /index.html -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/css/site.css", nil))
	if w.Code != http.StatusOK || w.Body.String() != "body{}" {
		t.Fatalf("GET css -> %d %q", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Fatalf("css content-type = %q", ct)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/css/site.css", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("HEAD css -> %d", w.Code)
	}
}

func TestStatic_RefusesEscapesDotfilesAndDirs(t *testing.T) {
	r, _ := newStaticRouter(t)

	for _, p := range []string{
		"/.env",
		"/css/../.env",
		"/../contacts.db",
		"/css",
		"/css/",
		"/missing.js",
		"/db-link",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.URL.Path = p // bypass client-side cleaning
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("GET %s -> %d; want 404", p, w.Code)
		}
		if strings.Contains(w.Body.String(), "SECRET") || strings.Contains(w.Body.String(), "sqlite") {
			t.Fatalf("GET %s leaked file contents", p)
		}
	}
}

func TestStatic_NonGetUnknownPathIs404JSON(t *testing.T) {
	r, _ := newStaticRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/index.html", nil))
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"code":"not_found"`) {
		t.Fatalf("POST /index.html -> %d %s", w.Code, w.Body.String())
	}
}

func TestStatic_MissingIndex(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s, err := NewStatic(t.TempDir(), "home.html")
	if err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	r.GET("/", s.Index)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET / without index -> %d", w.Code)
	}
}
