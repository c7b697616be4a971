// Package gemtext parses the text/gemini line format into typed
// display elements: link lines, heading lines and plain text.
package gemtext

import (
	"bufio"
	"io"
	"strings"

	"github.com/knowfox/comet/gemini"
)

// Line is one parsed gemtext line: a Link, a Heading or a Text.
type Line interface {
	line()
}

// Link is a "=>" line pointing at an absolute URL.
type Link struct {
	// URL is the link target, resolved against the page URL.
	URL string

	// Label is the human text after the target; it falls back to the
	// target itself when the line carries none.
	Label string
}

// Heading is a line opening with one to three '#' characters. Text
// keeps the raw line, hashes included.
type Heading struct {
	Level int
	Text  string
}

// Text is any other line, verbatim.
type Text struct {
	Raw string
}

func (Link) line()    {}
func (Heading) line() {}
func (Text) line()    {}

// Parser yields parsed lines one at a time from a body stream. It is
// a single pass over the bytes: once consumed it cannot be rewound,
// so re-rendering a page means re-fetching and re-parsing it.
type Parser struct {
	scanner *bufio.Scanner
	base    string
}

// NewParser reads gemtext from r, resolving relative link targets
// against base (the string form of the page URL).
func NewParser(r io.Reader, base string) *Parser {
	return &Parser{scanner: bufio.NewScanner(r), base: base}
}

// Next returns the next line, or io.EOF once the body is exhausted.
func (p *Parser) Next() (Line, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	raw := strings.TrimSuffix(p.scanner.Text(), "\r")
	return ParseLine(raw, p.base), nil
}

// ParseLine classifies a single line. Precedence: link line, then
// heading, then plain text.
func ParseLine(raw, base string) Line {
	if strings.HasPrefix(raw, "=>") {
		if link, ok := parseLink(raw, base); ok {
			return link
		}
	}
	if level := headingLevel(raw); level > 0 {
		return Heading{Level: level, Text: raw}
	}
	return Text{Raw: raw}
}

func parseLink(raw, base string) (Link, bool) {
	rest := strings.TrimSpace(raw[2:])
	if rest == "" {
		return Link{}, false
	}
	target := rest
	label := ""
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		target, label = rest[:i], strings.TrimSpace(rest[i+1:])
	}
	if label == "" {
		label = target
	}
	return Link{URL: Resolve(base, target), Label: label}, true
}

// headingLevel counts leading hashes. More than three means the line
// is not a heading at all.
func headingLevel(raw string) int {
	n := 0
	for n < len(raw) && raw[n] == '#' {
		n++
	}
	if n > 3 {
		return 0
	}
	return n
}

// Resolve implements the protocol's deliberately simple relative-link
// rule: a target already carrying the gemini scheme is absolute,
// anything else is glued onto the page URL by plain string
// concatenation. This is not RFC 3986 resolution and must stay that
// way; pages rely on the literal join.
func Resolve(base, target string) string {
	if strings.HasPrefix(target, gemini.Scheme+"://") {
		return target
	}
	return base + target
}
