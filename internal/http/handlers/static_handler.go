// Static file handler.
//
// The contact page and its assets are plain files under a configured root
// directory. Any GET or HEAD that no API route claims is resolved against
// that root; everything else falls through to a JSON 404.
//
// Resolution rules:
//   - "/" serves the index file.
//   - Any path segment starting with "." is refused (dotfiles, "..").
//   - The resolved file, after following symlinks, must stay inside the root.
//   - Directories are refused; there are no listings.
package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// Static serves files from Root.
type Static struct {
	root  string
	index string
}

// NewStatic returns a Static rooted at dir. index is the file served for "/".
// dir is made absolute so later containment checks compare like with like.
func NewStatic(dir, index string) (*Static, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if index == "" {
		index = "index.html"
	}
	return &Static{root: abs, index: index}, nil
}

// Index serves the root HTML document, or 404 JSON when it is missing.
func (s *Static) Index(c *gin.Context) {
	s.serve(c, "/"+s.index)
}

// NoRoute serves a static file for unmatched GET/HEAD requests and answers
// 404 JSON otherwise.
func (s *Static) NoRoute(c *gin.Context) {
	m := c.Request.Method
	if m != http.MethodGet && m != http.MethodHead {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "route not found")
		return
	}
	if c.Request.URL.Path == "/" {
		s.Index(c)
		return
	}
	s.serve(c, c.Request.URL.Path)
}

func (s *Static) serve(c *gin.Context, urlPath string) {
	full, found := s.resolve(urlPath)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
		return
	}

	f, err := os.Open(full)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
		return
	}
	// ServeContent sets Content-Type from the extension, honours
	// If-Modified-Since and Range, and never redirects.
	http.ServeContent(c.Writer, c.Request, fi.Name(), fi.ModTime(), f)
}

// resolve maps urlPath to a file path under the root, or reports false when
// the path is refused.
func (s *Static) resolve(urlPath string) (string, bool) {
	for _, seg := range strings.Split(urlPath, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", false
		}
	}
	clean := path.Clean("/" + urlPath)
	full := filepath.Join(s.root, filepath.FromSlash(clean))

	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		return "", false
	}
	root, err := filepath.EvalSymlinks(s.root)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return resolved, true
}
