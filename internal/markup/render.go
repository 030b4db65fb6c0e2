package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pixil98/go-zbot/internal/display"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Interpreters may emit these literal tags; they survive escaping.
var inlineTagRestorer = strings.NewReplacer(
	"&lt;b&gt;", "<b>",
	"&lt;/b&gt;", "</b>",
	"&lt;i&gt;", "<i>",
	"&lt;/i&gt;", "</i>",
)

// Node builds the markup tree: a root div holding the optional location and
// score blocks followed by one paragraph per block.
func (d *Document) Node() *html.Node {
	root := element(atom.Div)
	if d.Title != "" {
		setAttr(root, "title", d.Title)
	}

	if d.Location != "" {
		root.AppendChild(classed(atom.Div, "location", d.Location))
	}
	if d.Score != "" {
		root.AppendChild(classed(atom.Div, "score", d.Score))
	}

	for _, b := range d.Blocks {
		p := element(atom.P)
		if b.Title != "" {
			setAttr(p, "title", b.Title)
		}

		var text strings.Builder
		flush := func() {
			if text.Len() > 0 {
				p.AppendChild(&html.Node{Type: html.TextNode, Data: text.String()})
				text.Reset()
			}
		}
		for i, l := range b.Lines {
			if i > 0 && !b.Lines[i-1].Break {
				text.WriteString("\n")
			}
			text.WriteString(l.Text)
			if l.Break {
				flush()
				p.AppendChild(element(atom.Br))
			}
		}
		flush()

		root.AppendChild(p)
	}

	return root
}

// HTML renders the document as an HTML fragment.
func (d *Document) HTML() (string, error) {
	return Render(d.Node())
}

// PlainText renders the document for clients without HTML support.
func (d *Document) PlainText() string {
	var sections []string

	if d.Location != "" || d.Score != "" {
		var head []string
		if d.Location != "" {
			head = append(head, "== "+plain(d.Location)+" ==")
		}
		if d.Score != "" {
			head = append(head, plain(d.Score))
		}
		sections = append(sections, strings.Join(head, "\n"))
	}

	for _, b := range d.Blocks {
		var sb strings.Builder
		for i, l := range b.Lines {
			if i > 0 {
				if b.Lines[i-1].Break {
					sb.WriteString("\n")
				} else {
					sb.WriteString(" ")
				}
			}
			sb.WriteString(plain(l.Text))
		}
		sections = append(sections, display.Wrap(sb.String()))
	}

	return strings.Join(sections, "\n\n")
}

// Render serializes n, keeping interpreter bold and italic markers as tags.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return inlineTagRestorer.Replace(buf.String()), nil
}

func plain(s string) string {
	s = inlineTag.ReplaceAllString(s, "")
	return strings.ReplaceAll(s, "\u00a0", " ")
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func classed(a atom.Atom, class, text string) *html.Node {
	n := element(a)
	setAttr(n, "class", class)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

func setAttr(n *html.Node, key, val string) {
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
