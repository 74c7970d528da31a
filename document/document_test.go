package document

import (
	"strings"
	"testing"
)

func renderGemtext(src string) (string, *Document) {
	var b strings.Builder
	d := New(&b, 40)
	d.SetPlain(true)
	d.RenderGemtext(src)
	return b.String(), d
}

func TestRenderGemtextPage(t *testing.T) {
	out, d := renderGemtext("# Title\n\nSome prose here.\n=> gemini://example.com/ Example\n* item one\n> a quote\n```\nfixed width\n```\n")

	lines := strings.Split(out, "\n")
	if lines[0] != "Title" {
		t.Errorf("heading line = %q", lines[0])
	}
	if lines[1] != "═════" {
		t.Errorf("heading rule = %q", lines[1])
	}
	if !strings.Contains(out, "[1] Example") {
		t.Errorf("missing numbered link: %q", out)
	}
	if !strings.Contains(out, "• item one") {
		t.Errorf("missing list bullet: %q", out)
	}
	if !strings.Contains(out, "│ a quote") {
		t.Errorf("missing quote bar: %q", out)
	}
	if !strings.Contains(out, "fixed width") {
		t.Errorf("missing preformatted body: %q", out)
	}

	links := d.Links()
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	if links[0].URL != "gemini://example.com/" || links[0].Index != 1 {
		t.Errorf("link = %+v", links[0])
	}
}

func TestRenderGemtextPromptLink(t *testing.T) {
	_, d := renderGemtext("=: spartan://example.com/post Leave a message\n")
	links := d.Links()
	if len(links) != 1 || !links[0].Prompt {
		t.Fatalf("links = %+v, want one prompt link", links)
	}
}

func TestRenderGemtextWrapsProse(t *testing.T) {
	out, _ := renderGemtext("one two three four five six seven eight nine ten eleven twelve\n")
	for _, line := range strings.Split(out, "\n") {
		if len(line) > 40 {
			t.Errorf("line longer than width: %q", line)
		}
	}
}

func TestRenderGemtextLinkWithoutDisplay(t *testing.T) {
	out, d := renderGemtext("=> gemini://example.com/\n")
	if !strings.Contains(out, "[1] gemini://example.com/") {
		t.Errorf("bare link should display its url: %q", out)
	}
	if d.Links()[0].Display != "gemini://example.com/" {
		t.Errorf("link display = %q", d.Links()[0].Display)
	}
}

func TestRenderGopherMap(t *testing.T) {
	var b strings.Builder
	d := New(&b, 80)
	d.SetPlain(true)
	d.RenderGopherMap("iWelcome to the server\t\terror.host\t1\r\n" +
		"1About us\t/about\texample.com\t70\r\n" +
		"7Search\t/search\texample.com\t70\r\n" +
		".\r\n")

	out := b.String()
	if !strings.HasPrefix(out, "Welcome to the server\n") {
		t.Errorf("info line mangled: %q", out)
	}
	if !strings.Contains(out, "[1] About us") {
		t.Errorf("missing menu link: %q", out)
	}

	links := d.Links()
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}
	if links[0].URL != "gopher://example.com:70/about" {
		t.Errorf("link url = %q", links[0].URL)
	}
	if !links[1].Prompt {
		t.Error("search item should be a prompt link")
	}
}

func TestRenderText(t *testing.T) {
	var b strings.Builder
	d := New(&b, 80)
	d.RenderText("no trailing newline")
	if b.String() != "no trailing newline\n" {
		t.Errorf("output = %q", b.String())
	}
}

func TestRenderImagePlaceholder(t *testing.T) {
	var b strings.Builder
	d := New(&b, 80)
	d.SetPlain(true)
	d.RenderImage("image/png", make([]byte, 42))
	if b.String() != "[image/png, 42 bytes]\n" {
		t.Errorf("output = %q", b.String())
	}
}
