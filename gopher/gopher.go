// Package gopher implements the Gopher protocol: directory map parsing
// and the request driver.
package gopher

import (
	"net/url"
	"strings"

	"gembrowse/scheme"
)

// DefaultPort is the standard Gopher port.
const DefaultPort = 70

// itemTypes are the leading characters a Gopher map line may carry.
const itemTypes = "0123456789+gIT:;<dhis"

// LineType identifies the kind of map line.
type LineType int

const (
	LineText LineType = iota
	LineLink
	LineQuery
	LineHTTPLink
)

// Line is one parsed Gopher map entry. Query lines (type 7) carry the
// same selector fields as links; HTTP links (type h with a URL: selector)
// carry the target in URL instead.
type Line struct {
	Type    LineType
	Display string
	Path    string
	Host    string
	Port    string
	URL     string
}

// Address builds the gopher:// URL a link or query line points at.
func (l Line) Address() string {
	if l.Type == LineHTTPLink {
		return l.URL
	}
	addr := "gopher://" + l.Host + ":" + l.Port + l.Path
	return strings.ReplaceAll(addr, " ", "%20")
}

// IsMap reports whether the content is a Gopher directory map: text whose
// every line, up to a lone "." terminator, starts with a known item type.
// It distinguishes listings from plain text served under the same MIME type.
func IsMap(mime string, body []byte) bool {
	if !strings.HasPrefix(mime, "text") {
		return false
	}
	for _, line := range splitLines(string(body)) {
		if line == "." {
			break
		}
		if line == "" || !strings.ContainsRune(itemTypes, rune(line[0])) {
			return false
		}
	}
	return true
}

// ParseMap parses a directory map. Lines with fewer than four
// tab-separated fields are dropped; a lone "." ends the map.
func ParseMap(src string) []Line {
	var lines []Line
	for _, raw := range splitLines(src) {
		if raw == "." {
			break
		}
		if raw == "" {
			continue
		}
		if line, ok := parseLine(raw); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseLine(raw string) (Line, bool) {
	if raw[0] == 'i' {
		display, _, _ := strings.Cut(raw[1:], "\t")
		return Line{Type: LineText, Display: display}, true
	}
	fields := strings.Split(raw, "\t")
	if len(fields) < 4 {
		return Line{}, false
	}
	line := Line{
		Type:    LineLink,
		Display: fields[0][1:],
		Path:    fields[1],
		Host:    fields[2],
		Port:    fields[3],
	}
	switch {
	case raw[0] == '7':
		line.Type = LineQuery
	case raw[0] == 'h' && strings.HasPrefix(fields[1], "URL:"):
		line.Type = LineHTTPLink
		line.URL = fields[1][4:]
		line.Path = ""
		line.Host = ""
		line.Port = ""
	}
	return line, true
}

// Request fetches a gopher:// URL, sniffing the MIME type from the
// response bytes. Item-type prefixes on the selector are stripped before
// sending, and any query is forwarded after a '?'.
func Request(u *url.URL) (scheme.Content, error) {
	if u.Scheme != "gopher" {
		return scheme.Content{}, &scheme.UnknownSchemeError{Scheme: u.Scheme}
	}
	conn, err := scheme.Dial(u, DefaultPort)
	if err != nil {
		return scheme.Content{}, err
	}
	defer conn.Close()

	selector := trimTypePrefix(u.Path)
	if q := u.RawQuery; q != "" {
		selector += "?" + q
	}
	if decoded, derr := url.PathUnescape(selector); derr == nil {
		selector = decoded
	}

	raw, err := scheme.Exchange(conn, []byte(selector+"\r\n"))
	if err != nil {
		return scheme.Content{}, err
	}
	return scheme.FromBytes(u.String(), raw), nil
}

// trimTypePrefix drops the item-type path prefix some clients embed in
// gopher URLs, e.g. /1/foo -> /foo.
func trimTypePrefix(path string) string {
	for _, p := range []string{"/0/", "/1/", "/g/", "/I/", "/9/"} {
		if strings.HasPrefix(path, p) {
			return path[2:]
		}
	}
	return path
}

func splitLines(src string) []string {
	lines := strings.Split(src, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
