package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Table is a simple listing with an optional header row. A table with a
// caption renders as a div holding the caption paragraph and the table.
type Table struct {
	Caption string
	Header  []string
	Rows    [][]string
}

func (t *Table) Node() *html.Node {
	table := element(atom.Table)
	if len(t.Header) > 0 {
		table.AppendChild(row(atom.Th, t.Header))
	}
	for _, r := range t.Rows {
		table.AppendChild(row(atom.Td, r))
	}

	if t.Caption == "" {
		return table
	}

	root := element(atom.Div)
	p := element(atom.P)
	p.AppendChild(&html.Node{Type: html.TextNode, Data: t.Caption})
	root.AppendChild(p)
	root.AppendChild(table)
	return root
}

func (t *Table) HTML() (string, error) {
	return Render(t.Node())
}

// PlainText renders the table with space padded columns.
func (t *Table) PlainText() string {
	rows := t.Rows
	if len(t.Header) > 0 {
		rows = append([][]string{t.Header}, rows...)
	}

	var widths []int
	for _, r := range rows {
		for i, c := range r {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], len([]rune(c)))
		}
	}

	var sb strings.Builder
	if t.Caption != "" {
		sb.WriteString(t.Caption + "\n")
	}
	for _, r := range rows {
		for i, c := range r {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(c)
			if i < len(r)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-len([]rune(c))))
			}
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func row(cell atom.Atom, cells []string) *html.Node {
	tr := element(atom.Tr)
	for _, c := range cells {
		td := element(cell)
		td.AppendChild(&html.Node{Type: html.TextNode, Data: c})
		tr.AppendChild(td)
	}
	return tr
}
