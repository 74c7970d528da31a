// Package scheme holds the plumbing shared by the protocol drivers: fetched
// content, the driver result union, the error taxonomy and TCP dialing.
package scheme

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/idna"
)

// DialTimeout is the TCP connect timeout used by every driver. It is
// set once at startup from configuration. Response reads have no
// deadline; a stalled server ties up its worker until EOF, which is a
// known limitation of the one-request-per-worker model.
var DialTimeout = 10 * time.Second

// Errors shared across the protocol parsers and drivers.
var (
	ErrEmptyResponse         = errors.New("empty response")
	ErrInvalidResponseHeader = errors.New("invalid response header")
	ErrTooManyRedirects      = errors.New("too many redirects")
	ErrMissingHost           = errors.New("missing host in url")
)

// UnknownSchemeError reports a URL handed to a driver that does not
// speak its scheme.
type UnknownSchemeError struct {
	Scheme string
}

func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("unknown scheme %q", e.Scheme)
}

// UnsupportedSchemeError reports a resolved URL whose scheme is outside
// the navigation whitelist.
type UnsupportedSchemeError struct {
	URL string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported scheme in %q", e.URL)
}

// Content is a successfully fetched document.
type Content struct {
	URL   string // final URL, after any redirects
	Mime  string
	Bytes []byte
}

// FromBytes builds Content by sniffing the MIME type from the payload.
func FromBytes(url string, data []byte) Content {
	return Content{URL: url, Mime: Sniff(data), Bytes: data}
}

// Sniff detects a MIME type from payload bytes, without parameters.
func Sniff(data []byte) string {
	m := mimetype.Detect(data).String()
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	return m
}

// ResponseKind discriminates the driver result union.
type ResponseKind int

const (
	Success ResponseKind = iota
	Redirect
	RequestInput
	Failed
)

// Input is a server-side request for user input (Gemini status 1x).
type Input struct {
	Prompt    string
	URL       string
	Sensitive bool
}

// Response is the outcome a driver or redirect loop reports back to the
// navigation engine.
type Response struct {
	Kind    ResponseKind
	Content Content // Success
	Target  string  // Redirect
	Input   Input   // RequestInput
	Err     error   // Failed
}

// Dial opens a TCP connection to the URL's host with the fixed connect
// timeout. Internationalized hostnames are mapped to punycode first and
// the default port applies when the URL carries none.
func Dial(u *url.URL, defaultPort int) (net.Conn, error) {
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingHost, u)
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	port := u.Port()
	if port == "" {
		port = strconv.Itoa(defaultPort)
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", host, err)
	}
	return conn, nil
}

// Exchange writes the request bytes and reads the full response until EOF.
func Exchange(conn io.ReadWriter, request []byte) ([]byte, error) {
	if _, err := conn.Write(request); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}
