package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// RawTable is an ordered list of named columns with string rows.
type RawTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the position of the named column, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Validate checks that every row is as wide as the header.
func (t *RawTable) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return parseErrorf("row", "row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}

// Trim drops a fixed number of leading and trailing entries.
type Trim struct {
	Leading  int
	Trailing int
}

func (tr Trim) apply(cells []string) ([]string, bool) {
	if tr.Leading+tr.Trailing > len(cells) {
		return nil, false
	}
	return cells[tr.Leading : len(cells)-tr.Trailing], true
}

// Layout describes where a page keeps its table and how to read it.
type Layout struct {
	// Selector locates the table; the first match is used.
	Selector string
	// HeaderRow is the index of the row holding column names. Rows are
	// counted inside <thead> when the table has one.
	HeaderRow int
	// HeaderCell selects header cells within the header row. Defaults to "th".
	HeaderCell string
	// Cell selects value cells within a body row. Defaults to "td".
	Cell string
	// RowLabel, when set, selects one element per body row whose text is
	// prepended to the row's cells.
	RowLabel string

	TrimHeader Trim
	TrimCells  Trim

	// Rename maps extracted header names to output column names.
	Rename map[string]string
	// Columns, when set, replaces the extracted header wholesale and must
	// have the same width.
	Columns []string
}

func (l Layout) headerCell() string {
	if l.HeaderCell == "" {
		return "th"
	}
	return l.HeaderCell
}

func (l Layout) cell() string {
	if l.Cell == "" {
		return "td"
	}
	return l.Cell
}

// Parse reads an HTML document and extracts the table described by l.
func Parse(r io.Reader, l Layout) (*RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, NewParseError("document", fmt.Errorf("parsing HTML: %w", err))
	}
	return Extract(doc.Selection, l)
}

// Extract locates the table described by l inside root and returns its
// header and body rows. Any structural mismatch is reported as a *ParseError.
func Extract(root *goquery.Selection, l Layout) (*RawTable, error) {
	tbl := Find(root, l.Selector)
	if tbl == nil {
		return nil, parseErrorf("table", "no element matches %q", l.Selector)
	}

	headerRows, bodyRows := splitRows(tbl, l.HeaderRow)
	if l.HeaderRow < 0 || l.HeaderRow >= headerRows.Length() {
		return nil, parseErrorf("header", "header row %d not found (%d rows available)", l.HeaderRow, headerRows.Length())
	}

	header := Texts(headerRows.Eq(l.HeaderRow).Find(l.headerCell()))
	if len(header) == 0 {
		return nil, parseErrorf("header", "header row %d has no %q cells", l.HeaderRow, l.headerCell())
	}
	header, ok := l.TrimHeader.apply(header)
	if !ok {
		return nil, parseErrorf("header", "header has fewer cells than the layout trims")
	}

	if l.Columns != nil {
		if len(l.Columns) != len(header) {
			return nil, parseErrorf("header", "page has %d columns, layout expects %d", len(header), len(l.Columns))
		}
		header = append([]string(nil), l.Columns...)
	}
	for i, name := range header {
		if renamed, ok := l.Rename[name]; ok {
			header[i] = renamed
		}
	}

	t := &RawTable{
		Columns: header,
		Rows:    make([][]string, 0, bodyRows.Length()),
	}

	var rowErr error
	bodyRows.EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells, ok := l.TrimCells.apply(Texts(tr.Find(l.cell())))
		if !ok {
			rowErr = parseErrorf("row", "row %d has fewer cells than the layout trims", i)
			return false
		}

		if l.RowLabel != "" {
			label := tr.Find(l.RowLabel).First()
			if label.Length() == 0 {
				rowErr = parseErrorf("row", "row %d has no %q label", i, l.RowLabel)
				return false
			}
			cells = append([]string{Text(label)}, cells...)
		}

		t.Rows = append(t.Rows, cells)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Find returns the first element under root matching selector, or nil.
func Find(root *goquery.Selection, selector string) *goquery.Selection {
	sel := root.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return sel
}

// splitRows returns the candidate header rows and the body rows of tbl.
// With a <thead>, header rows live there and body rows are the <tbody> rows.
// Without one, every row after the header row is a body row.
func splitRows(tbl *goquery.Selection, headerRow int) (*goquery.Selection, *goquery.Selection) {
	thead := tbl.ChildrenFiltered("thead")
	if thead.Length() > 0 {
		return thead.First().ChildrenFiltered("tr"), tbl.ChildrenFiltered("tbody").ChildrenFiltered("tr")
	}

	rows := tbl.ChildrenFiltered("tbody").ChildrenFiltered("tr")
	if rows.Length() == 0 {
		rows = tbl.ChildrenFiltered("tr")
	}
	if headerRow+1 > rows.Length() {
		return rows, rows.Slice(rows.Length(), rows.Length())
	}
	return rows, rows.Slice(headerRow+1, rows.Length())
}

// Texts returns Text for each element of sel.
func Texts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Text(s))
	})
	return out
}

// Text concatenates the element's text nodes, each trimmed of surrounding
// whitespace, so that "Preceding<br>Period" reads "PrecedingPeriod".
func Text(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(n, &b)
	}
	return b.String()
}

func writeText(n *html.Node, b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(strings.TrimSpace(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, b)
	}
}
