// Package markup turns raw fixed-width interpreter output into structured
// markup for a chat client.
package markup

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// shortLine is the rendered width below which a line keeps its line break.
// Longer lines are assumed to be wrapped prose and are allowed to re-flow.
const shortLine = 50

var (
	statusGap = regexp.MustCompile(` {4,}`)
	inlineTag = regexp.MustCompile(`</?[bi]>`)

	// A closing marker immediately reopened is one run split by the interpreter.
	seamStitcher = strings.NewReplacer("</i><i>", "", "</b><b>", "")
)

// Status is the last rendered status line of a room. Both fields are always
// replaced together.
type Status struct {
	Location string
	Score    string
}

// Line is one line of a block. Break keeps an explicit line break after it.
type Line struct {
	Text  string
	Break bool
}

// Block is a paragraph of body text.
type Block struct {
	Title string
	Lines []Line
}

func (b *Block) empty() bool {
	return len(b.Lines) == 0 && b.Title == ""
}

// Document is a converted response. Location and Score are empty when they
// were suppressed or absent.
type Document struct {
	Title    string
	Location string
	Score    string
	Blocks   []*Block
}

// Empty reports whether the document has nothing to show.
func (d *Document) Empty() bool {
	return d.Title == "" && d.Location == "" && d.Score == "" && len(d.Blocks) == 0
}

// Convert renders raw interpreter output against the status last shown in
// the room. It returns the document and the status to remember. A response
// without a status line leaves prev unchanged.
func Convert(raw string, prev Status) (*Document, Status) {
	data := trimPrompt(raw)
	data = strings.ReplaceAll(data, "\r\n", "\n")
	data = seamStitcher.Replace(data)
	lines := strings.Split(data, "\n")

	doc := &Document{}
	next := prev

	var echo string
	if location, score, ok := splitStatus(lines[0]); ok {
		lines = lines[1:]
		echo = location

		// Some titles continue the location on the next line, "- in the car".
		if len(lines) > 0 {
			if cont := strings.TrimSpace(lines[0]); strings.HasPrefix(cont, "- ") {
				lines = lines[1:]
				location = location + " (" + cont[2:] + ")"
			}
		}

		if location != prev.Location {
			doc.Location = location
		}
		if score != prev.Score {
			doc.Score = score
		}
		next = Status{Location: location, Score: score}
	}

	base := baseIndent(lines)
	indent := strings.Repeat(" ", base)

	var cur *Block
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "." {
			line = ""
		}

		if echo != "" && strings.HasPrefix(inlineTag.ReplaceAllString(line, ""), echo) {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if cur == nil {
				doc.Title = line
			} else {
				cur.Title = line
			}
			continue
		}

		if line == "" {
			if cur != nil {
				cur = &Block{}
				doc.Blocks = append(doc.Blocks, cur)
			}
			continue
		}

		if cur == nil {
			cur = &Block{}
			doc.Blocks = append(doc.Blocks, cur)
		}

		text := strings.TrimPrefix(raw, indent)
		text = strings.ReplaceAll(text, "  ", "\u00a0 ")
		cur.Lines = append(cur.Lines, Line{
			Text:  text,
			Break: utf8.RuneCountInString(text) < shortLine,
		})
	}

	blocks := doc.Blocks[:0]
	for _, b := range doc.Blocks {
		if b.empty() {
			continue
		}
		if n := len(b.Lines); n > 0 {
			b.Lines[n-1].Break = false
		}
		blocks = append(blocks, b)
	}
	doc.Blocks = blocks

	return doc, next
}

// trimPrompt drops trailing whitespace and prompt characters. A '>' is only
// a prompt when it starts a line or follows whitespace or another prompt, so
// closing tags and arrows survive.
func trimPrompt(s string) string {
	for {
		s = strings.TrimRight(s, " \t\r\n")
		if !strings.HasSuffix(s, ">") {
			return s
		}
		rest := s[:len(s)-1]
		if rest != "" {
			switch rest[len(rest)-1] {
			case ' ', '\t', '\r', '\n', '>':
			default:
				return s
			}
		}
		s = rest
	}
}

// splitStatus splits a combined status line on its first run of four or
// more spaces.
func splitStatus(line string) (string, string, bool) {
	loc := statusGap.FindStringIndex(line)
	if loc == nil {
		return "", "", false
	}

	location := strings.TrimSpace(line[:loc[0]])
	if location == "" {
		return "", "", false
	}

	return location, strings.TrimSpace(line[loc[1]:]), true
}

// baseIndent is the smallest leading-space count over lines with content.
// Lines holding only dots and spaces do not count.
func baseIndent(lines []string) int {
	base := -1
	for _, l := range lines {
		if strings.Trim(l, ". ") == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " "))
		if base < 0 || n < base {
			base = n
		}
	}
	return max(base, 0)
}
