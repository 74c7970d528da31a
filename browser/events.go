package browser

import "sync"

// events is the observer registry for session lifecycle notifications.
// Handlers run on whichever goroutine delivers the result, so they
// should hand work off rather than block.
type events struct {
	mu             sync.Mutex
	loadStarted    []func(uri string)
	loaded         []func(uri string)
	redirect       []func(uri string)
	failed         []func(msg string)
	unsupported    []func(uri string)
	download       []func(mime, filename string)
	input          []func(prompt, uri string)
	inputSensitive []func(prompt, uri string)
	upload         []func(uri string)
}

func (e *events) add1(list *[]func(string), f func(string)) {
	e.mu.Lock()
	*list = append(*list, f)
	e.mu.Unlock()
}

func (e *events) add2(list *[]func(string, string), f func(string, string)) {
	e.mu.Lock()
	*list = append(*list, f)
	e.mu.Unlock()
}

func (e *events) fire1(list *[]func(string), arg string) {
	e.mu.Lock()
	hs := append(([]func(string))(nil), *list...)
	e.mu.Unlock()
	for _, h := range hs {
		h(arg)
	}
}

func (e *events) fire2(list *[]func(string, string), a, b string) {
	e.mu.Lock()
	hs := append(([]func(string, string))(nil), *list...)
	e.mu.Unlock()
	for _, h := range hs {
		h(a, b)
	}
}

func (e *events) pageLoadStarted(uri string)          { e.fire1(&e.loadStarted, uri) }
func (e *events) pageLoaded(uri string)               { e.fire1(&e.loaded, uri) }
func (e *events) pageLoadRedirect(uri string)         { e.fire1(&e.redirect, uri) }
func (e *events) pageLoadFailed(msg string)           { e.fire1(&e.failed, msg) }
func (e *events) requestUnsupportedScheme(uri string) { e.fire1(&e.unsupported, uri) }
func (e *events) requestDownload(mime, name string)   { e.fire2(&e.download, mime, name) }
func (e *events) requestInput(prompt, uri string)     { e.fire2(&e.input, prompt, uri) }
func (e *events) requestInputSensitive(prompt, uri string) {
	e.fire2(&e.inputSensitive, prompt, uri)
}
func (e *events) requestUpload(uri string) { e.fire1(&e.upload, uri) }

// ConnectPageLoadStarted registers f to run when a visit begins.
func (b *Browser) ConnectPageLoadStarted(f func(uri string)) {
	b.events.add1(&b.events.loadStarted, f)
}

// ConnectPageLoaded registers f to run after content has been rendered
// and history updated.
func (b *Browser) ConnectPageLoaded(f func(uri string)) {
	b.events.add1(&b.events.loaded, f)
}

// ConnectPageLoadRedirect registers f to run for each redirect hop.
func (b *Browser) ConnectPageLoadRedirect(f func(uri string)) {
	b.events.add1(&b.events.redirect, f)
}

// ConnectPageLoadFailed registers f to run with a human-readable
// message when a visit fails.
func (b *Browser) ConnectPageLoadFailed(f func(msg string)) {
	b.events.add1(&b.events.failed, f)
}

// ConnectRequestUnsupportedScheme registers f to run when an address
// outside the scheme whitelist is visited, so the frontend can hand it
// to another application.
func (b *Browser) ConnectRequestUnsupportedScheme(f func(uri string)) {
	b.events.add1(&b.events.unsupported, f)
}

// ConnectRequestDownload registers f to run when content cannot be
// displayed; filename is a suggestion from the url's last path segment.
func (b *Browser) ConnectRequestDownload(f func(mime, filename string)) {
	b.events.add2(&b.events.download, f)
}

// ConnectRequestInput registers f to run when a server asks for user
// input. Answer by visiting uri with the reply as its query.
func (b *Browser) ConnectRequestInput(f func(prompt, uri string)) {
	b.events.add2(&b.events.input, f)
}

// ConnectRequestInputSensitive is ConnectRequestInput for input that
// should not be echoed, such as passwords.
func (b *Browser) ConnectRequestInputSensitive(f func(prompt, uri string)) {
	b.events.add2(&b.events.inputSensitive, f)
}

// ConnectRequestUpload registers f to run when a Spartan prompt link
// wants upload data. Answer by calling PostSpartan.
func (b *Browser) ConnectRequestUpload(f func(uri string)) {
	b.events.add1(&b.events.upload, f)
}
