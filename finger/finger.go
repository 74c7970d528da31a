// Package finger implements the Finger protocol driver.
package finger

import (
	"net/url"
	"strings"

	"gembrowse/scheme"
)

// DefaultPort is the standard Finger port.
const DefaultPort = 79

// Request queries a finger server and sniffs the MIME type of whatever
// comes back. The user is taken from the URL's userinfo part, or from
// the path when there is none; an empty user asks for the server's
// default listing.
func Request(u *url.URL) (scheme.Content, error) {
	if u.Scheme != "finger" {
		return scheme.Content{}, &scheme.UnknownSchemeError{Scheme: u.Scheme}
	}
	conn, err := scheme.Dial(u, DefaultPort)
	if err != nil {
		return scheme.Content{}, err
	}
	defer conn.Close()

	raw, err := scheme.Exchange(conn, []byte(username(u)+"\r\n"))
	if err != nil {
		return scheme.Content{}, err
	}
	return scheme.FromBytes(u.String(), raw), nil
}

func username(u *url.URL) string {
	if user := u.User.Username(); user != "" {
		return user
	}
	return strings.TrimPrefix(u.Path, "/")
}
