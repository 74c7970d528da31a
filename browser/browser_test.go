package browser

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gembrowse/scheme"
)

type fakeRenderer struct {
	mu        sync.Mutex
	gemtext   []string
	gopherMap []string
	text      []string
	images    []string
}

func (r *fakeRenderer) RenderGemtext(src string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gemtext = append(r.gemtext, src)
}

func (r *fakeRenderer) RenderGopherMap(src string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gopherMap = append(r.gopherMap, src)
}

func (r *fakeRenderer) RenderText(src string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text = append(r.text, src)
}

func (r *fakeRenderer) RenderImage(mime string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = append(r.images, mime)
}

func newTestBrowser(t *testing.T) (*Browser, *fakeRenderer) {
	t.Helper()
	r := &fakeRenderer{}
	b := New(Options{Renderer: r})
	t.Cleanup(b.Close)
	return b, r
}

func TestVisitDataURL(t *testing.T) {
	b, r := newTestBrowser(t)
	var loaded []string
	b.ConnectPageLoaded(func(uri string) { loaded = append(loaded, uri) })

	b.Visit("data:text/plain;base64,R05VIGlzIG5vdCBVbml4Cg==")

	if len(r.text) != 1 || r.text[0] != "GNU is not Unix\n" {
		t.Errorf("rendered text = %q", r.text)
	}
	if len(loaded) != 1 {
		t.Fatalf("page-loaded fired %d times, want 1", len(loaded))
	}
	if b.URI() != loaded[0] {
		t.Errorf("URI() = %q, loaded uri %q", b.URI(), loaded[0])
	}
	if b.BufferMime() != "text/plain" {
		t.Errorf("BufferMime() = %q, want text/plain", b.BufferMime())
	}
}

func TestVisitDataURLGemtext(t *testing.T) {
	b, r := newTestBrowser(t)
	b.Visit("data:text/gemini,%23%20Hello")
	if len(r.gemtext) != 1 || r.gemtext[0] != "# Hello" {
		t.Errorf("rendered gemtext = %q", r.gemtext)
	}
}

func TestVisitUnsupportedScheme(t *testing.T) {
	b, _ := newTestBrowser(t)
	var unsupported, failed []string
	b.ConnectRequestUnsupportedScheme(func(uri string) { unsupported = append(unsupported, uri) })
	b.ConnectPageLoadFailed(func(msg string) { failed = append(failed, msg) })

	b.Visit("https://example.com/")

	if len(unsupported) != 1 || unsupported[0] != "https://example.com/" {
		t.Errorf("request-unsupported-scheme = %q", unsupported)
	}
	if len(failed) != 1 {
		t.Errorf("page-load-failed fired %d times, want 1", len(failed))
	}
	if b.URI() != "about:blank" {
		t.Errorf("URI() = %q, failed visit should not move history", b.URI())
	}
}

func TestVisitFileAndRelativeResolution(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"a.gmi": "# Page A\n=> b.gmi next\n",
		"b.gmi": "# Page B\n",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	b, r := newTestBrowser(t)
	b.Visit("file://" + filepath.Join(dir, "a.gmi"))
	if len(r.gemtext) != 1 || !strings.HasPrefix(r.gemtext[0], "# Page A") {
		t.Fatalf("rendered = %q", r.gemtext)
	}

	// Relative address resolves against the current uri.
	b.Visit("b.gmi")
	if want := "file://" + filepath.Join(dir, "b.gmi"); b.URI() != want {
		t.Errorf("URI() = %q, want %q", b.URI(), want)
	}
	if !b.HasPrevious() {
		t.Error("HasPrevious() = false after two visits")
	}

	b.GoPrevious()
	if want := "file://" + filepath.Join(dir, "a.gmi"); b.URI() != want {
		t.Errorf("URI() after GoPrevious = %q, want %q", b.URI(), want)
	}
	if !b.HasNext() {
		t.Error("HasNext() = false after going back")
	}
}

func TestDeliverGopherMap(t *testing.T) {
	b, r := newTestBrowser(t)
	b.deliver(scheme.Response{Kind: scheme.Success, Content: scheme.Content{
		URL:   "gopher://gopher.floodgap.com/",
		Mime:  "text/plain",
		Bytes: []byte("1Floodgap\t/\tgopher.floodgap.com\t70\r\n.\r\n"),
	}})
	if len(r.gopherMap) != 1 {
		t.Errorf("gopher map rendered %d times (text %d), want 1", len(r.gopherMap), len(r.text))
	}
}

func TestDeliverGopherPlainText(t *testing.T) {
	b, r := newTestBrowser(t)
	b.deliver(scheme.Response{Kind: scheme.Success, Content: scheme.Content{
		URL:   "gopher://example.com/0/about.txt",
		Mime:  "text/plain",
		Bytes: []byte("just prose, no item types\n"),
	}})
	if len(r.text) != 1 || len(r.gopherMap) != 0 {
		t.Errorf("text %d gopherMap %d, want 1 and 0", len(r.text), len(r.gopherMap))
	}
}

func TestDeliverInputPrompt(t *testing.T) {
	b, _ := newTestBrowser(t)
	var plain, sensitive []string
	b.ConnectRequestInput(func(prompt, uri string) { plain = append(plain, prompt) })
	b.ConnectRequestInputSensitive(func(prompt, uri string) { sensitive = append(sensitive, prompt) })

	b.deliver(scheme.Response{Kind: scheme.RequestInput, Input: scheme.Input{
		Prompt: "Search query", URL: "gemini://example.com/search",
	}})
	b.deliver(scheme.Response{Kind: scheme.RequestInput, Input: scheme.Input{
		Prompt: "Password", URL: "gemini://example.com/login", Sensitive: true,
	}})

	if len(plain) != 1 || plain[0] != "Search query" {
		t.Errorf("request-input = %q", plain)
	}
	if len(sensitive) != 1 || sensitive[0] != "Password" {
		t.Errorf("request-input-sensitive = %q", sensitive)
	}
	if b.URI() != "gemini://example.com/login" {
		t.Errorf("URI() = %q, input prompts should join history", b.URI())
	}
}

func TestDeliverBinaryRequestsDownload(t *testing.T) {
	b, r := newTestBrowser(t)
	var mimes, names []string
	b.ConnectRequestDownload(func(mime, filename string) {
		mimes = append(mimes, mime)
		names = append(names, filename)
	})

	b.deliver(scheme.Response{Kind: scheme.Success, Content: scheme.Content{
		URL:   "gemini://example.com/files/archive.zip",
		Mime:  "application/zip",
		Bytes: []byte("PK\x03\x04rest of archive"),
	}})

	if len(mimes) != 1 || mimes[0] != "application/zip" {
		t.Errorf("download mimes = %q", mimes)
	}
	if len(names) != 1 || names[0] != "archive.zip" {
		t.Errorf("download names = %q", names)
	}
	if len(r.text)+len(r.images) != 0 {
		t.Error("binary content should not render")
	}
	if b.URI() != "about:blank" {
		t.Errorf("URI() = %q, download request should not join history", b.URI())
	}
}

func TestDeliverSniffsUndeclaredText(t *testing.T) {
	b, r := newTestBrowser(t)
	b.deliver(scheme.Response{Kind: scheme.Success, Content: scheme.Content{
		URL:   "gemini://example.com/notes",
		Mime:  "application/octet-stream",
		Bytes: []byte("plain readable prose\n"),
	}})
	if len(r.text) != 1 {
		t.Errorf("sniffed text rendered %d times, want 1", len(r.text))
	}
}

func TestStaleResponseDropped(t *testing.T) {
	b, _ := newTestBrowser(t)
	loaded := make(chan string, 2)
	b.ConnectPageLoaded(func(uri string) { loaded <- uri })

	gen := b.gen.Add(1)
	b.send(gen-1, scheme.Response{Kind: scheme.Success, Content: scheme.Content{
		URL: "gemini://stale.example/", Mime: "text/plain", Bytes: []byte("old"),
	}})
	b.send(gen, scheme.Response{Kind: scheme.Success, Content: scheme.Content{
		URL: "gemini://fresh.example/", Mime: "text/plain", Bytes: []byte("new"),
	}})

	select {
	case uri := <-loaded:
		if uri != "gemini://fresh.example/" {
			t.Errorf("loaded %q, stale response should have been dropped", uri)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for page-loaded")
	}
	if b.URI() != "gemini://fresh.example/" {
		t.Errorf("URI() = %q, want fresh page", b.URI())
	}
}

func TestDownloadName(t *testing.T) {
	cases := []struct{ raw, want string }{
		{"gemini://h/files/archive.zip", "archive.zip"},
		{"gemini://h/", "download"},
		{"gemini://h", "download"},
		{"spartan://h/a/b/c.bin", "c.bin"},
	}
	for _, c := range cases {
		if got := downloadName(c.raw); got != c.want {
			t.Errorf("downloadName(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}
