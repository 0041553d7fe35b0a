package testsupport

import (
	"bytes"
	"context"
	_ "embed"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/net/html"

	"github.com/goliatone/go-metaform/pkg/dom"
	"github.com/goliatone/go-metaform/pkg/meta"
)

//go:embed testdata/bookstore.yaml
var bookstore []byte

// Bookstore returns the raw bookstore metadata fixture.
func Bookstore() []byte {
	return append([]byte(nil), bookstore...)
}

// LoadBookstore parses the bookstore fixture.
func LoadBookstore(t *testing.T) *meta.Document {
	t.Helper()
	return MustParse(t, string(bookstore))
}

// MustParse parses inline JSON or YAML metadata.
func MustParse(t *testing.T, src string) *meta.Document {
	t.Helper()

	doc, err := meta.Parse([]byte(src), t.Name())
	if err != nil {
		t.Fatalf("parse metadata: %v", err)
	}
	return doc
}

// WriteBookstore writes the fixture into dir and returns its path, for tests
// that load metadata from disk.
func WriteBookstore(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "bookstore.yaml")
	if err := os.WriteFile(path, bookstore, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// NewPage returns an empty page located at rawURL.
func NewPage(t *testing.T, rawURL string) *dom.Document {
	t.Helper()

	location, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	return dom.NewDocument(location)
}

// Markup serializes the children of node.
func Markup(t *testing.T, node *html.Node) string {
	t.Helper()

	out, err := dom.InnerHTML(node)
	if err != nil {
		t.Fatalf("render markup: %v", err)
	}
	return out
}

// MustFind returns the element with id under root.
func MustFind(t *testing.T, root *html.Node, id string) *html.Node {
	t.Helper()

	node := dom.FindByID(root, id)
	if node == nil {
		var buf bytes.Buffer
		_ = dom.Render(&buf, root)
		t.Fatalf("element %q not found in %s", id, buf.String())
	}
	return node
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
