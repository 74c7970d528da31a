package render

import (
	"reflect"
	"testing"
)

func TestWrapText(t *testing.T) {
	got := WrapText("the quick brown fox jumps over the lazy dog", 15)
	want := []string{"the quick brown", "fox jumps over", "the lazy dog"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WrapText = %q, want %q", got, want)
	}
}

func TestWrapTextBreaksLongWords(t *testing.T) {
	got := WrapText("abcdefghij", 4)
	want := []string{"abcd", "efgh", "ij"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WrapText = %q, want %q", got, want)
	}
}

func TestWrapTextEmptyLine(t *testing.T) {
	got := WrapText("", 10)
	if !reflect.DeepEqual(got, []string{""}) {
		t.Errorf("WrapText(\"\") = %q", got)
	}
}

func TestStringWidth(t *testing.T) {
	cases := []struct {
		s    string
		want int
	}{
		{"hello", 5},
		{"", 0},
		{"日本語", 6},
		{"héllo", 5},
	}
	for _, c := range cases {
		if got := StringWidth(c.s); got != c.want {
			t.Errorf("StringWidth(%q) = %d, want %d", c.s, got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("a long headline", 10); got != "a long ..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
}

func TestStyleApply(t *testing.T) {
	if got := (Style{}).Apply("x"); got != "x" {
		t.Errorf("zero style changed text: %q", got)
	}
	if got := (Style{Bold: true, Underline: true}).Apply("x"); got != "\033[1;4mx\033[0m" {
		t.Errorf("bold+underline = %q", got)
	}
}
