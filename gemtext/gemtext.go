// Package gemtext parses the text/gemini markup format into typed nodes.
package gemtext

import (
	"strings"
)

// NodeType identifies the kind of gemtext line.
type NodeType int

const (
	NodeText NodeType = iota
	NodeH1
	NodeH2
	NodeH3
	NodeListItem
	NodeLink
	NodePrompt
	NodeBlockquote
	NodePreformatted
	NodeEmptyLine
)

// Node is a single parsed gemtext element. Which fields are meaningful
// depends on Type: Text carries the body for text, headings, list items,
// blockquotes and preformatted blocks; URL and Display are set for links
// and prompts; Alt is the optional alt tag of a preformatted block.
type Node struct {
	Type    NodeType
	Text    string
	URL     string
	Display string
	Alt     string
}

// String formats the node back into syntactically valid gemtext.
// Multi-line blockquote bodies are re-prefixed per line.
func (n Node) String() string {
	switch n.Type {
	case NodeH1:
		return "# " + n.Text
	case NodeH2:
		return "## " + n.Text
	case NodeH3:
		return "### " + n.Text
	case NodeListItem:
		return "* " + n.Text
	case NodeLink:
		if n.Display == "" {
			return "=> " + n.URL
		}
		return "=> " + n.URL + " " + n.Display
	case NodePrompt:
		if n.Display == "" {
			return "=: " + n.URL
		}
		return "=: " + n.URL + " " + n.Display
	case NodeBlockquote:
		lines := strings.Split(n.Text, "\n")
		for i, line := range lines {
			lines[i] = "> " + line
		}
		return strings.Join(lines, "\n")
	case NodePreformatted:
		return "```" + n.Alt + "\n" + n.Text + "\n```"
	case NodeEmptyLine:
		return ""
	default:
		return n.Text
	}
}

// Parse converts gemtext source into a sequence of nodes. Parsing cannot
// fail; malformed markers degrade to plain text nodes. Consecutive quote
// lines merge into a single blockquote, and lines between ``` fences
// accumulate into a single preformatted node.
func Parse(src string) []Node {
	var nodes []Node

	inPre := false
	preAlt := ""
	var pre []string
	var quote []string

	flushQuote := func() {
		if quote == nil {
			return
		}
		nodes = append(nodes, Node{Type: NodeBlockquote, Text: strings.Join(quote, "\n")})
		quote = nil
	}

	for _, line := range splitLines(src) {
		if inPre {
			if strings.HasPrefix(line, "```") {
				nodes = append(nodes, Node{Type: NodePreformatted, Text: strings.Join(pre, "\n"), Alt: preAlt})
				inPre = false
				pre = nil
				continue
			}
			pre = append(pre, line)
			continue
		}

		if strings.HasPrefix(line, ">") {
			body := strings.TrimPrefix(line[1:], " ")
			quote = append(quote, body)
			continue
		}
		flushQuote()

		switch {
		case strings.HasPrefix(line, "```"):
			inPre = true
			preAlt = strings.TrimSpace(line[3:])
		case strings.HasPrefix(line, "=>"):
			nodes = append(nodes, parseLink(line, NodeLink))
		case strings.HasPrefix(line, "=:"):
			nodes = append(nodes, parseLink(line, NodePrompt))
		case strings.HasPrefix(line, "# "):
			nodes = append(nodes, Node{Type: NodeH1, Text: line[2:]})
		case strings.HasPrefix(line, "## "):
			nodes = append(nodes, Node{Type: NodeH2, Text: line[3:]})
		case strings.HasPrefix(line, "### "):
			nodes = append(nodes, Node{Type: NodeH3, Text: line[4:]})
		case strings.HasPrefix(line, "* "):
			nodes = append(nodes, Node{Type: NodeListItem, Text: line[2:]})
		case strings.TrimSpace(line) == "":
			nodes = append(nodes, Node{Type: NodeEmptyLine})
		default:
			nodes = append(nodes, Node{Type: NodeText, Text: line})
		}
	}
	flushQuote()
	if inPre {
		// Unterminated fence at EOF; emit what accumulated rather than drop it.
		nodes = append(nodes, Node{Type: NodePreformatted, Text: strings.Join(pre, "\n"), Alt: preAlt})
	}

	return nodes
}

// parseLink handles => and =: lines. The first whitespace-delimited token
// after the marker is the target, the trimmed remainder the display text.
// A marker with no target degrades to a text node.
func parseLink(line string, typ NodeType) Node {
	rest := line[2:]
	trimmed := strings.TrimLeft(rest, " \t")
	if trimmed == "" {
		return Node{Type: NodeText, Text: line}
	}
	url := trimmed
	display := ""
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		url = trimmed[:i]
		display = strings.TrimSpace(trimmed[i:])
	}
	return Node{Type: typ, URL: url, Display: display}
}

// splitLines splits on newlines, tolerating CRLF and ignoring a trailing
// newline at EOF.
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
