package finger

import (
	"net/url"
	"testing"
)

func TestUsername(t *testing.T) {
	cases := []struct{ raw, want string }{
		{"finger://user@example.com", "user"},
		{"finger://example.com/user", "user"},
		{"finger://example.com/", ""},
		{"finger://example.com", ""},
		{"finger://alice@example.com/bob", "alice"},
	}
	for _, c := range cases {
		u, err := url.Parse(c.raw)
		if err != nil {
			t.Fatalf("url.Parse(%q): %v", c.raw, err)
		}
		if got := username(u); got != c.want {
			t.Errorf("username(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}
