// Package file serves file:// URLs from the local filesystem.
package file

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"gembrowse/scheme"
)

// ErrEmptyPath reports a file URL with no usable path.
var ErrEmptyPath = errors.New("empty file path")

// Kind classifies what the caller should do with an opened file.
type Kind int

const (
	// KindContent is displayable content to load into the buffer.
	KindContent Kind = iota
	// KindExternal is content the browser cannot display; it should be
	// handed to the platform's default opener instead.
	KindExternal
)

// Result is the outcome of opening a local path.
type Result struct {
	Kind    Kind
	Content scheme.Content
}

// Open loads a file:// URL. Directories synthesize a Gemtext index page,
// text and image files load as content with their sniffed MIME type
// (a .gmi or .gemini extension promotes sniffed text to text/gemini),
// and anything else is classified for external opening.
func Open(u *url.URL) (Result, error) {
	if u.Scheme != "file" {
		return Result{}, &scheme.UnknownSchemeError{Scheme: u.Scheme}
	}
	path := u.Path
	if u.Host != "" {
		path = u.Host + path
	}
	if path == "" {
		return Result{}, ErrEmptyPath
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		page, err := indexPage(path)
		if err != nil {
			return Result{}, err
		}
		return Result{Content: scheme.Content{
			URL:   u.String(),
			Mime:  "text/gemini",
			Bytes: []byte(page),
		}}, nil
	}

	// Peek at the magic bytes before committing to a full read, so a
	// large binary we only hand off externally is never slurped in.
	mime := "application/octet-stream"
	if m, err := mimetype.DetectFile(path); err == nil {
		mime = m.String()
		if i := strings.IndexByte(mime, ';'); i >= 0 {
			mime = strings.TrimSpace(mime[:i])
		}
	}
	if !strings.HasPrefix(mime, "text/") && !strings.HasPrefix(mime, "image/") {
		return Result{Kind: KindExternal, Content: scheme.Content{URL: u.String(), Mime: mime}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.HasPrefix(mime, "text/") {
		switch filepath.Ext(path) {
		case ".gmi", ".gemini":
			mime = "text/gemini"
		}
	}
	return Result{Content: scheme.Content{URL: u.String(), Mime: mime, Bytes: data}}, nil
}

// indexPage builds a Gemtext listing for a directory: a heading, a link
// to the parent, and one link per entry.
func indexPage(path string) (string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("read directory %s: %w", path, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Index of %s\n", path)
	if parent := filepath.Dir(path); parent != path {
		fmt.Fprintf(&b, "=> file://%s parent directory\n\n", parent)
	}
	for _, entry := range entries {
		fmt.Fprintf(&b, "=> file://%s %s\n", filepath.Join(path, entry.Name()), entry.Name())
	}
	return b.String(), nil
}
