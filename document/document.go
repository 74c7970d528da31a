// Package document renders parsed small-web pages as styled terminal
// text, numbering the links it prints so a frontend can offer them for
// selection.
package document

import (
	"fmt"
	"io"
	"strings"

	"gembrowse/gemtext"
	"gembrowse/gopher"
	"gembrowse/render"
)

const defaultWidth = 80

// Link is a numbered link printed during the last render.
type Link struct {
	Index   int
	URL     string
	Display string
	Prompt  bool // an input prompt rather than a plain link
}

// Document writes rendered pages to out. It implements the renderer
// contract the navigation engine calls into.
type Document struct {
	out   io.Writer
	width int
	plain bool
	links []Link
}

// New returns a document renderer writing to out, wrapping prose at
// width cells. A non-positive width uses the default of 80.
func New(out io.Writer, width int) *Document {
	if width <= 0 {
		width = defaultWidth
	}
	return &Document{out: out, width: width}
}

// SetPlain disables ANSI styling, for pipes and dumb terminals.
func (d *Document) SetPlain(plain bool) {
	d.plain = plain
}

// Links returns the links printed by the last render, in print order.
func (d *Document) Links() []Link {
	return d.links
}

// RenderGemtext parses and prints a text/gemini page.
func (d *Document) RenderGemtext(src string) {
	d.links = nil
	for _, node := range gemtext.Parse(src) {
		switch node.Type {
		case gemtext.NodeH1:
			d.heading(node.Text, '═')
		case gemtext.NodeH2:
			d.heading(node.Text, '─')
		case gemtext.NodeH3:
			d.line(d.style(render.Style{Bold: true, Underline: true}, node.Text))
		case gemtext.NodeLink:
			d.link(node.URL, node.Display, false)
		case gemtext.NodePrompt:
			d.link(node.URL, node.Display, true)
		case gemtext.NodeListItem:
			d.wrapped("• ", "  ", node.Text, render.Style{})
		case gemtext.NodeBlockquote:
			for _, quoted := range strings.Split(node.Text, "\n") {
				d.wrapped("│ ", "│ ", quoted, render.Style{Dim: true})
			}
		case gemtext.NodePreformatted:
			for _, pre := range strings.Split(node.Text, "\n") {
				d.line(d.style(render.Style{Dim: true}, pre))
			}
		case gemtext.NodeEmptyLine:
			d.line("")
		default:
			d.wrapped("", "", node.Text, render.Style{})
		}
	}
}

// RenderGopherMap parses and prints a gopher menu. Info lines print
// verbatim; everything else becomes a numbered link.
func (d *Document) RenderGopherMap(src string) {
	d.links = nil
	for _, l := range gopher.ParseMap(src) {
		if l.Type == gopher.LineText {
			d.line(l.Display)
			continue
		}
		d.link(l.Address(), l.Display, l.Type == gopher.LineQuery)
	}
}

// RenderText prints plain text verbatim.
func (d *Document) RenderText(src string) {
	d.links = nil
	if src != "" && !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	io.WriteString(d.out, src)
}

// RenderImage prints a placeholder; pixels are out of reach here.
func (d *Document) RenderImage(mime string, data []byte) {
	d.links = nil
	d.line(d.style(render.Style{Dim: true}, fmt.Sprintf("[%s, %d bytes]", mime, len(data))))
}

func (d *Document) link(target, display string, prompt bool) {
	if display == "" {
		display = target
	}
	idx := len(d.links) + 1
	d.links = append(d.links, Link{Index: idx, URL: target, Display: display, Prompt: prompt})

	marker := fmt.Sprintf("[%d]", idx)
	st := render.Style{Underline: true}
	if prompt {
		st.Bold = true
	}
	d.line(marker + " " + d.style(st, render.Truncate(display, d.width-len(marker)-1)))
}

func (d *Document) heading(text string, rule rune) {
	d.line(d.style(render.Style{Bold: true}, text))
	w := render.StringWidth(text)
	if w > d.width {
		w = d.width
	}
	d.line(d.style(render.Style{Dim: true}, strings.Repeat(string(rule), w)))
}

// wrapped prints text word-wrapped, with prefix on the first line and
// cont on continuations.
func (d *Document) wrapped(prefix, cont, text string, st render.Style) {
	width := d.width - render.StringWidth(prefix)
	lines := render.WrapText(text, width)
	for i, l := range lines {
		p := prefix
		if i > 0 {
			p = cont
		}
		d.line(p + d.style(st, l))
	}
}

func (d *Document) line(s string) {
	fmt.Fprintln(d.out, s)
}

func (d *Document) style(st render.Style, s string) string {
	if d.plain {
		return s
	}
	return st.Apply(s)
}
