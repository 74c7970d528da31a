package spartan

import (
	"errors"
	"testing"

	"gembrowse/scheme"
)

func TestParseResponse(t *testing.T) {
	resp, err := ParseResponse([]byte("2 text/gemini\r\nLorem Ipsum"))
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if resp.Status != StatusSuccess {
		t.Errorf("status = %v, want success", resp.Status)
	}
	if resp.Meta != "text/gemini" {
		t.Errorf("meta = %q", resp.Meta)
	}
	if string(resp.Body) != "Lorem Ipsum" {
		t.Errorf("body = %q", resp.Body)
	}
}

func TestParseResponseRedirect(t *testing.T) {
	resp, err := ParseResponse([]byte("3 /new/path\n"))
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if resp.Status != StatusRedirect {
		t.Errorf("status = %v, want redirect", resp.Status)
	}
	if resp.Meta != "/new/path" {
		t.Errorf("meta = %q", resp.Meta)
	}
}

func TestParseResponseErrors(t *testing.T) {
	if _, err := ParseResponse(nil); !errors.Is(err, scheme.ErrEmptyResponse) {
		t.Errorf("empty input: err = %v", err)
	}
	if _, err := ParseResponse([]byte("2text/gemini\r\n#Hello!")); !errors.Is(err, scheme.ErrInvalidResponseHeader) {
		t.Errorf("missing space: err = %v", err)
	}
	// Status digits outside 2-5 are not valid Spartan.
	if _, err := ParseResponse([]byte("7 something\r\n")); !errors.Is(err, scheme.ErrInvalidResponseHeader) {
		t.Errorf("unknown status: err = %v", err)
	}
}

func TestResponseMime(t *testing.T) {
	cases := []struct {
		meta string
		want string
	}{
		{"text/gemini", "text/gemini"},
		{"text/gemini 0", "text/gemini"},
		{"text/plain trailing junk", "text/plain"},
		{"image/png", "image/png"},
	}
	for _, c := range cases {
		r := &Response{Meta: c.meta}
		if got := r.Mime(); got != c.want {
			t.Errorf("Mime(%q) = %q, want %q", c.meta, got, c.want)
		}
	}
}
