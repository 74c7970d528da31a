// Package spartan implements the Spartan protocol: response parsing and
// the request/upload drivers.
package spartan

import (
	"fmt"
	"net/url"
	"strings"

	"gembrowse/scheme"
)

// DefaultPort is the standard Spartan port.
const DefaultPort = 300

// Status is a one-digit Spartan response status.
type Status int

const (
	StatusSuccess     Status = 2
	StatusRedirect    Status = 3
	StatusClientError Status = 4
	StatusServerError Status = 5
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRedirect:
		return "redirect"
	case StatusClientError:
		return "client error"
	case StatusServerError:
		return "server error"
	default:
		return fmt.Sprintf("status %d", int(s))
	}
}

// Response is a parsed Spartan response.
type Response struct {
	Status Status
	Meta   string
	Body   []byte
}

// Mime derives the buffer MIME type from a success meta. Spartan servers
// sometimes append extra tokens after the type; everything past the first
// space is dropped, and text/gemini variants collapse to the bare type.
func (r *Response) Mime() string {
	if strings.HasPrefix(r.Meta, "text/gemini") {
		return "text/gemini"
	}
	if m, _, found := strings.Cut(r.Meta, " "); found {
		return m
	}
	return r.Meta
}

// ParseResponse parses raw response bytes. Any status digit outside
// {2,3,4,5} makes the header invalid.
func ParseResponse(raw []byte) (*Response, error) {
	code, meta, body, err := scheme.ParseHeader(raw)
	if err != nil {
		return nil, err
	}
	switch code {
	case 2, 3, 4, 5:
		return &Response{Status: Status(code), Meta: meta, Body: body}, nil
	default:
		return nil, scheme.ErrInvalidResponseHeader
	}
}

// Request performs a Spartan GET: a zero-length upload.
func Request(u *url.URL) (*Response, error) {
	return send(u, nil)
}

// Post uploads data to a Spartan prompt URL.
func Post(u *url.URL, data []byte) (*Response, error) {
	return send(u, data)
}

func send(u *url.URL, data []byte) (*Response, error) {
	if u.Scheme != "spartan" {
		return nil, &scheme.UnknownSchemeError{Scheme: u.Scheme}
	}
	conn, err := scheme.Dial(u, DefaultPort)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	path := u.Path
	if path == "" {
		path = "/"
	}
	if q := u.RawQuery; q != "" {
		path += "?" + q
	}
	if decoded, derr := url.PathUnescape(path); derr == nil {
		path = decoded
	}

	req := fmt.Sprintf("%s %s %d\r\n", u.Hostname(), path, len(data))
	raw, err := scheme.Exchange(conn, append([]byte(req), data...))
	if err != nil {
		return nil, err
	}
	return ParseResponse(raw)
}
