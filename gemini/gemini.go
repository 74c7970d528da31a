// Package gemini implements the Gemini protocol: status codes, response
// parsing and the TLS request driver, plus the plaintext mercury variant.
package gemini

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/url"
	"strings"

	"gembrowse/scheme"
)

// Default ports for the two wire variants.
const (
	DefaultPort        = 1965
	DefaultMercuryPort = 1963
)

// StatusClass is the tens digit of a Gemini status code.
type StatusClass int

const (
	ClassUnknown StatusClass = iota
	ClassInput
	ClassSuccess
	ClassRedirect
	ClassTemporaryFailure
	ClassPermanentFailure
	ClassCertRequired
)

func (c StatusClass) String() string {
	switch c {
	case ClassInput:
		return "input"
	case ClassSuccess:
		return "success"
	case ClassRedirect:
		return "redirect"
	case ClassTemporaryFailure:
		return "temporary failure"
	case ClassPermanentFailure:
		return "permanent failure"
	case ClassCertRequired:
		return "client certificate required"
	default:
		return "unknown"
	}
}

// Status is a two-digit response code split into its class (tens digit)
// and subcode (units digit). Codes outside the known classes keep the
// raw value in Sub with ClassUnknown.
type Status struct {
	Class StatusClass
	Sub   int
}

// StatusFromCode derives a Status from the numeric wire form.
func StatusFromCode(code int) Status {
	if code < 0 || code > 99 {
		return Status{Class: ClassUnknown, Sub: code}
	}
	switch code / 10 {
	case 1:
		return Status{Class: ClassInput, Sub: code % 10}
	case 2:
		return Status{Class: ClassSuccess, Sub: code % 10}
	case 3:
		return Status{Class: ClassRedirect, Sub: code % 10}
	case 4:
		return Status{Class: ClassTemporaryFailure, Sub: code % 10}
	case 5:
		return Status{Class: ClassPermanentFailure, Sub: code % 10}
	case 6:
		return Status{Class: ClassCertRequired, Sub: code % 10}
	default:
		return Status{Class: ClassUnknown, Sub: code}
	}
}

// Code converts the status back to its numeric wire form.
func (s Status) Code() int {
	switch s.Class {
	case ClassInput:
		return 10 + s.Sub
	case ClassSuccess:
		return 20 + s.Sub
	case ClassRedirect:
		return 30 + s.Sub
	case ClassTemporaryFailure:
		return 40 + s.Sub
	case ClassPermanentFailure:
		return 50 + s.Sub
	case ClassCertRequired:
		return 60 + s.Sub
	default:
		return s.Sub
	}
}

func (s Status) String() string {
	return fmt.Sprintf("%d %s", s.Code(), s.Class)
}

// Response is a parsed Gemini response: status, meta and raw body bytes.
type Response struct {
	Status Status
	Meta   string
	Body   []byte
}

// Mime derives the buffer MIME type from the meta of a success response.
// Parameters after ';' are dropped; any text/gemini variant collapses to
// the bare type.
func (r *Response) Mime() string {
	if strings.HasPrefix(r.Meta, "text/gemini") {
		return "text/gemini"
	}
	if m, _, found := strings.Cut(r.Meta, ";"); found {
		return strings.TrimSpace(m)
	}
	return r.Meta
}

// ParseResponse parses raw response bytes into status, meta and body.
func ParseResponse(raw []byte) (*Response, error) {
	code, meta, body, err := scheme.ParseHeader(raw)
	if err != nil {
		return nil, err
	}
	return &Response{Status: StatusFromCode(code), Meta: meta, Body: body}, nil
}

// Request fetches a single gemini:// or mercury:// URL and parses the
// response. Redirects are not followed here; the navigation engine owns
// that loop.
func Request(u *url.URL) (*Response, error) {
	switch u.Scheme {
	case "gemini":
		return request(u, true, DefaultPort)
	case "mercury":
		return request(u, false, DefaultMercuryPort)
	default:
		return nil, &scheme.UnknownSchemeError{Scheme: u.Scheme}
	}
}

func request(u *url.URL, useTLS bool, port int) (*Response, error) {
	conn, err := scheme.Dial(u, port)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var rw io.ReadWriter = conn
	if useTLS {
		// Certificate validation is disabled: much of geminispace runs on
		// self-signed certificates. TOFU pinning is not implemented yet.
		tconn := tls.Client(conn, &tls.Config{
			ServerName:         u.Hostname(),
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS12,
		})
		if err := tconn.Handshake(); err != nil {
			return nil, fmt.Errorf("tls handshake with %s: %w", u.Hostname(), err)
		}
		defer tconn.Close()
		rw = tconn
	}

	raw, err := scheme.Exchange(rw, []byte(u.String()+"\r\n"))
	if err != nil {
		return nil, err
	}
	return ParseResponse(raw)
}
