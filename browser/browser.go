// Package browser is the navigation engine: it resolves addresses,
// dispatches them to the scheme drivers, follows redirects, tracks the
// session history and document buffer, and reports outcomes through
// registered event handlers.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"path"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"gembrowse/dataurl"
	"gembrowse/file"
	"gembrowse/finger"
	"gembrowse/gemini"
	"gembrowse/gopher"
	"gembrowse/history"
	"gembrowse/scheme"
	"gembrowse/spartan"
)

// DefaultMaxRedirects caps how many redirect hops a single visit will
// follow before giving up.
const DefaultMaxRedirects = 5

// supportedSchemes is the navigation whitelist. Anything else raises
// the request-unsupported-scheme event for the frontend to hand off.
var supportedSchemes = map[string]bool{
	"gemini":  true,
	"mercury": true,
	"spartan": true,
	"gopher":  true,
	"finger":  true,
	"file":    true,
	"data":    true,
}

// Renderer displays classified page content. The engine classifies,
// the renderer draws; a nil renderer skips drawing but events still
// fire, which keeps headless use simple.
type Renderer interface {
	RenderGemtext(src string)
	RenderGopherMap(src string)
	RenderText(src string)
	RenderImage(mime string, data []byte)
}

// Options configure a Browser. The zero value works: no renderer, a
// no-op logger and the default redirect cap.
type Options struct {
	Renderer     Renderer
	Logger       *zap.Logger
	MaxRedirects int
}

// Buffer holds the current document's raw bytes and MIME type.
type Buffer struct {
	Mime    string
	Content []byte
}

// result pairs a driver response with the generation it was requested
// under, so late responses from abandoned visits can be dropped.
type result struct {
	gen  uint64
	resp scheme.Response
}

// Browser is a single browsing session. All exported methods are safe
// for concurrent use.
type Browser struct {
	mu     sync.Mutex
	hist   *history.History
	buffer Buffer

	rend         Renderer
	log          *zap.Logger
	maxRedirects int

	gen     atomic.Uint64
	results chan result
	done    chan struct{}
	closed  sync.Once

	events events
}

// New starts a session positioned at about:blank.
func New(opts Options) *Browser {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	max := opts.MaxRedirects
	if max <= 0 {
		max = DefaultMaxRedirects
	}
	b := &Browser{
		hist:         history.New(),
		rend:         opts.Renderer,
		log:          log,
		maxRedirects: max,
		results:      make(chan result, 1),
		done:         make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Close stops the session's dispatcher. In-flight requests finish on
// their own goroutines and their results are discarded.
func (b *Browser) Close() {
	b.closed.Do(func() { close(b.done) })
}

// URI returns the current history position.
func (b *Browser) URI() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hist.URI()
}

// BufferMime returns the MIME type of the current document.
func (b *Browser) BufferMime() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Mime
}

// BufferContent returns the raw bytes of the current document.
func (b *Browser) BufferContent() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Content
}

// HasPrevious reports whether GoPrevious has anywhere to go.
func (b *Browser) HasPrevious() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hist.HasPrevious()
}

// HasNext reports whether GoNext has anywhere to go.
func (b *Browser) HasNext() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hist.HasNext()
}

// Visit navigates to addr. Relative addresses resolve against the
// current uri. Network schemes load on a worker goroutine; file and
// data URLs load synchronously.
func (b *Browser) Visit(addr string) {
	b.events.pageLoadStarted(addr)
	u, err := b.absoluteURL(addr)
	if err != nil {
		b.fail(err)
		return
	}
	b.log.Debug("visiting", zap.String("url", u.String()))

	switch u.Scheme {
	case "data":
		b.gen.Add(1)
		b.deliver(loadData(u))
	case "file":
		b.gen.Add(1)
		b.loadFile(u)
	case "gemini", "mercury":
		go b.geminiWorker(u, b.gen.Add(1))
	case "spartan":
		go b.spartanWorker(u, nil, b.gen.Add(1))
	case "gopher":
		go b.contentWorker(u, gopher.Request, b.gen.Add(1))
	case "finger":
		go b.contentWorker(u, finger.Request, b.gen.Add(1))
	}
}

// Reload fetches the current uri again. History is unchanged because
// appending the current uri is a no-op.
func (b *Browser) Reload() {
	b.Visit(b.URI())
}

// GoPrevious steps back through history and reloads that page.
func (b *Browser) GoPrevious() {
	b.mu.Lock()
	uri, ok := b.hist.Previous()
	b.mu.Unlock()
	if !ok {
		return
	}
	b.Visit(uri)
}

// GoNext steps forward through history and reloads that page.
func (b *Browser) GoNext() {
	b.mu.Lock()
	uri, ok := b.hist.Next()
	b.mu.Unlock()
	if !ok {
		return
	}
	b.Visit(uri)
}

// PostSpartan uploads data to a Spartan prompt address and loads the
// response like a normal visit, following redirects.
func (b *Browser) PostSpartan(addr string, data []byte) {
	b.events.pageLoadStarted(addr)
	u, err := b.absoluteURL(addr)
	if err != nil {
		b.fail(err)
		return
	}
	if data == nil {
		data = []byte{}
	}
	go b.spartanWorker(u, data, b.gen.Add(1))
}

// RequestUpload points the session at a Spartan prompt address and asks
// the frontend for upload data via the request-upload event. The
// frontend answers by calling PostSpartan.
func (b *Browser) RequestUpload(addr string) {
	u, err := b.absoluteURL(addr)
	if err != nil {
		b.fail(err)
		return
	}
	b.mu.Lock()
	b.hist.SetURI(u.String())
	b.mu.Unlock()
	b.events.requestUpload(u.String())
}

// absoluteURL resolves addr against the current uri and enforces the
// scheme whitelist.
func (b *Browser) absoluteURL(addr string) (*url.URL, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", addr, err)
	}
	if u.Scheme == "" {
		base, err := url.Parse(b.URI())
		if err != nil {
			return nil, fmt.Errorf("parsing current uri: %w", err)
		}
		u = base.ResolveReference(u)
	}
	if !supportedSchemes[u.Scheme] {
		b.events.requestUnsupportedScheme(u.String())
		return nil, &scheme.UnsupportedSchemeError{URL: u.String()}
	}
	return u, nil
}

// dispatch drains worker results, dropping any from a superseded visit.
func (b *Browser) dispatch() {
	for {
		select {
		case r := <-b.results:
			if r.gen != b.gen.Load() {
				b.log.Debug("dropping stale response", zap.Uint64("gen", r.gen))
				continue
			}
			b.deliver(r.resp)
		case <-b.done:
			return
		}
	}
}

// send hands a worker result to the dispatcher, bailing out if the
// session has been closed.
func (b *Browser) send(gen uint64, resp scheme.Response) {
	select {
	case b.results <- result{gen: gen, resp: resp}:
	case <-b.done:
	}
}

func (b *Browser) geminiWorker(u *url.URL, gen uint64) {
	current := u
	for hops := 0; ; hops++ {
		if hops > b.maxRedirects {
			b.send(gen, scheme.Response{Kind: scheme.Failed, Err: scheme.ErrTooManyRedirects})
			return
		}
		resp, err := gemini.Request(current)
		if err != nil {
			b.send(gen, scheme.Response{Kind: scheme.Failed, Err: err})
			return
		}
		switch resp.Status.Class {
		case gemini.ClassSuccess:
			b.send(gen, scheme.Response{Kind: scheme.Success, Content: scheme.Content{
				URL:   current.String(),
				Mime:  resp.Mime(),
				Bytes: resp.Body,
			}})
			return
		case gemini.ClassRedirect:
			next, perr := current.Parse(resp.Meta)
			if perr != nil {
				b.send(gen, scheme.Response{Kind: scheme.Failed, Err: fmt.Errorf("bad redirect target %q: %w", resp.Meta, perr)})
				return
			}
			b.log.Debug("following redirect",
				zap.String("from", current.String()),
				zap.String("to", next.String()))
			b.events.pageLoadRedirect(next.String())
			current = next
		case gemini.ClassInput:
			b.send(gen, scheme.Response{Kind: scheme.RequestInput, Input: scheme.Input{
				Prompt:    resp.Meta,
				URL:       current.String(),
				Sensitive: resp.Status.Sub == 1,
			}})
			return
		default:
			b.send(gen, scheme.Response{Kind: scheme.Failed, Err: fmt.Errorf("%s: %s", resp.Status, resp.Meta)})
			return
		}
	}
}

// spartanWorker performs a GET when data is nil, otherwise an upload.
// Redirect metas are paths, resolved against the current url.
func (b *Browser) spartanWorker(u *url.URL, data []byte, gen uint64) {
	current := u
	for hops := 0; ; hops++ {
		if hops > b.maxRedirects {
			b.send(gen, scheme.Response{Kind: scheme.Failed, Err: scheme.ErrTooManyRedirects})
			return
		}
		var resp *spartan.Response
		var err error
		if data == nil {
			resp, err = spartan.Request(current)
		} else {
			resp, err = spartan.Post(current, data)
		}
		if err != nil {
			b.send(gen, scheme.Response{Kind: scheme.Failed, Err: err})
			return
		}
		switch resp.Status {
		case spartan.StatusSuccess:
			b.send(gen, scheme.Response{Kind: scheme.Success, Content: scheme.Content{
				URL:   current.String(),
				Mime:  resp.Mime(),
				Bytes: resp.Body,
			}})
			return
		case spartan.StatusRedirect:
			next, perr := current.Parse(resp.Meta)
			if perr != nil {
				b.send(gen, scheme.Response{Kind: scheme.Failed, Err: fmt.Errorf("bad redirect target %q: %w", resp.Meta, perr)})
				return
			}
			b.events.pageLoadRedirect(next.String())
			current = next
		default:
			b.send(gen, scheme.Response{Kind: scheme.Failed, Err: fmt.Errorf("%s: %s", resp.Status, resp.Meta)})
			return
		}
	}
}

// contentWorker runs the single-shot drivers: gopher and finger.
func (b *Browser) contentWorker(u *url.URL, fetch func(*url.URL) (scheme.Content, error), gen uint64) {
	content, err := fetch(u)
	if err != nil {
		b.send(gen, scheme.Response{Kind: scheme.Failed, Err: err})
		return
	}
	b.send(gen, scheme.Response{Kind: scheme.Success, Content: content})
}

// loadData decodes a data: url into displayable content.
func loadData(u *url.URL) scheme.Response {
	d, err := dataurl.Parse(u.String())
	if err != nil {
		return scheme.Response{Kind: scheme.Failed, Err: err}
	}
	p, err := d.Decode()
	if err != nil {
		return scheme.Response{Kind: scheme.Failed, Err: err}
	}
	content := scheme.Content{URL: u.String(), Mime: d.Mime.String()}
	if d.Mime.IsText() {
		content.Bytes = []byte(p.Text)
	} else {
		content.Bytes = p.Bytes
	}
	return scheme.Response{Kind: scheme.Success, Content: content}
}

// loadFile serves a file: url. Content the browser cannot display is
// handed to the platform opener instead of loading into the buffer.
func (b *Browser) loadFile(u *url.URL) {
	res, err := file.Open(u)
	if err != nil {
		b.fail(err)
		return
	}
	if res.Kind == file.KindExternal {
		b.openExternal(res.Content.URL)
		b.events.pageLoaded(res.Content.URL)
		return
	}
	b.deliver(scheme.Response{Kind: scheme.Success, Content: res.Content})
}

// openExternal launches the platform's default opener for a target the
// browser cannot display itself.
func (b *Browser) openExternal(target string) {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	if err := exec.Command(opener, target).Start(); err != nil {
		b.log.Warn("opening externally failed",
			zap.String("target", target),
			zap.Error(err))
	}
}

// deliver routes a driver response to the buffer, history and events.
func (b *Browser) deliver(r scheme.Response) {
	switch r.Kind {
	case scheme.Success:
		b.deliverSuccess(r.Content)
	case scheme.RequestInput:
		b.mu.Lock()
		b.hist.Append(r.Input.URL)
		b.mu.Unlock()
		if r.Input.Sensitive {
			b.events.requestInputSensitive(r.Input.Prompt, r.Input.URL)
		} else {
			b.events.requestInput(r.Input.Prompt, r.Input.URL)
		}
	case scheme.Failed:
		b.fail(r.Err)
	}
}

// deliverSuccess classifies content by MIME type and renders it. The
// buffer updates even when the content ends up as a download request,
// so the raw bytes stay inspectable.
func (b *Browser) deliverSuccess(c scheme.Content) {
	b.mu.Lock()
	b.buffer = Buffer{Mime: c.Mime, Content: c.Bytes}
	b.mu.Unlock()

	switch {
	case c.Mime == "text/gemini":
		b.finish(c, func() { b.rend.RenderGemtext(text(c.Bytes)) })
	case isGopherContent(c):
		if gopher.IsMap(c.Mime, c.Bytes) {
			b.finish(c, func() { b.rend.RenderGopherMap(text(c.Bytes)) })
		} else {
			b.finish(c, func() { b.rend.RenderText(text(c.Bytes)) })
		}
	case strings.HasPrefix(c.Mime, "text/"):
		b.finish(c, func() { b.rend.RenderText(text(c.Bytes)) })
	case strings.HasPrefix(c.Mime, "image/"):
		b.finish(c, func() { b.rend.RenderImage(c.Mime, c.Bytes) })
	default:
		b.deliverUnclassified(c)
	}
}

// deliverUnclassified sniffs the payload of an undisplayable declared
// type. If the bytes turn out to be text or an image they render after
// all; otherwise the frontend is asked to download.
func (b *Browser) deliverUnclassified(c scheme.Content) {
	sniffed := scheme.Sniff(c.Bytes)
	if strings.HasPrefix(sniffed, "text/") || strings.HasPrefix(sniffed, "image/") {
		b.log.Debug("sniffed buffer type",
			zap.String("declared", c.Mime),
			zap.String("sniffed", sniffed))
		c.Mime = sniffed
		b.deliverSuccess(c)
		return
	}
	b.events.requestDownload(c.Mime, downloadName(c.URL))
}

// finish appends the final url to history, renders and announces the
// load.
func (b *Browser) finish(c scheme.Content, render func()) {
	b.mu.Lock()
	b.hist.Append(c.URL)
	b.mu.Unlock()
	if b.rend != nil {
		render()
	}
	b.events.pageLoaded(c.URL)
}

func (b *Browser) fail(err error) {
	b.log.Warn("page load failed", zap.Error(err))
	b.events.pageLoadFailed(err.Error())
}

// isGopherContent reports text fetched over gopher, which needs the
// map-vs-plain-text check before rendering.
func isGopherContent(c scheme.Content) bool {
	if !strings.HasPrefix(c.Mime, "text/") {
		return false
	}
	u, err := url.Parse(c.URL)
	return err == nil && u.Scheme == "gopher"
}

// text decodes bytes for display, replacing invalid UTF-8 sequences.
func text(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// downloadName suggests a filename from the url's last path segment.
func downloadName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "download"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "download"
	}
	return name
}
