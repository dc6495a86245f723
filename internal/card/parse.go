package card

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// markdown is the shared goldmark instance. GFM is required for the
// results tables. The parser is safe for concurrent use.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var (
	roleMarkerRe  = regexp.MustCompile(`<!--\s*\[([A-Za-z_]+)\]\s*-->`)
	summaryLinkRe = regexp.MustCompile(`<summary[^>]*>\s*<a\s+href=["']([^"']+)["'][^>]*>([^<]+)</a>`)
	summaryBareRe = regexp.MustCompile(`<summary[^>]*>([^<]+)</summary>`)
	nameVenueRe   = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)\s*$`)
)

// Parse parses a model card from markdown source. Parsing is lenient:
// malformed citations and tables are represented as-is and judged by the
// lint rules, not rejected here.
func Parse(id string, source []byte) *Card {
	c := &Card{
		ID:     id,
		Source: source,
	}

	doc := markdown.Parser().Parse(text.NewReader(source))

	var (
		pendingRole   Role
		open          *Citation
		lastParagraph string
	)

	closeCitation := func() {
		if open != nil {
			c.Citations = append(c.Citations, *open)
			open = nil
		}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if c.Title == "" {
				c.Title, _ = inlineContent(node, source)
			}

		case *ast.HTMLBlock:
			raw := blockText(node, source)

			if m := roleMarkerRe.FindStringSubmatch(raw); m != nil {
				pendingRole = Role(strings.ToLower(m[1]))
				continue
			}

			if m := summaryLinkRe.FindStringSubmatch(raw); m != nil {
				closeCitation()
				open = newCitation(pendingRole, m[2], m[1], lineAt(source, node))
				pendingRole = RoleUnknown
				continue
			}
			if m := summaryBareRe.FindStringSubmatch(raw); m != nil {
				closeCitation()
				open = newCitation(pendingRole, m[1], "", lineAt(source, node))
				pendingRole = RoleUnknown
				continue
			}

			if strings.Contains(raw, "</details>") {
				closeCitation()
			}

		case *ast.FencedCodeBlock:
			lang := strings.ToLower(string(node.Language(source)))
			if lang != "bibtex" && lang != "bib" && lang != "latex" {
				continue
			}

			if open == nil {
				// bib fence without a details wrapper
				open = newCitation(pendingRole, "", "", lineAt(source, node))
				pendingRole = RoleUnknown
			}

			open.BibRaw = blockText(node, source)
			if entry, err := ParseBib(open.BibRaw); err != nil {
				open.BibErr = err.Error()
			} else {
				open.Bib = entry
				if open.Name == "" {
					open.Name = entry.Key
				}
			}

		case *ast.Paragraph:
			lastParagraph, _ = inlineContent(node, source)

		case *east.Table:
			table := buildTable(node, source)
			table.Preamble = lastParagraph
			lastParagraph = ""
			c.Tables = append(c.Tables, table)
		}
	}
	closeCitation()

	return c
}

// newCitation builds a citation from a summary line, splitting the
// "Name (VENUE'YEAR)" form when it matches.
func newCitation(role Role, summary, url string, line int) *Citation {
	cit := &Citation{
		Role: role,
		Name: strings.TrimSpace(summary),
		URL:  url,
		Line: line,
	}
	if m := nameVenueRe.FindStringSubmatch(cit.Name); m != nil && m[1] != "" {
		cit.Name = m[1]
		cit.Venue = m[2]
	}
	return cit
}

// buildTable converts a GFM table node into a BenchmarkTable, classifying
// the columns by header name.
func buildTable(t *east.Table, src []byte) BenchmarkTable {
	table := BenchmarkTable{}

	var rows []ast.Node
	for n := t.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.(type) {
		case *east.TableHeader:
			for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
				txt, _ := inlineContent(cell, src)
				table.Columns = append(table.Columns, txt)
			}
			table.Line = lineAt(src, n)
		case *east.TableRow:
			rows = append(rows, n)
		}
	}

	sizeIdx, ckptIdx, logIdx := classifyColumns(table.Columns)

	for _, r := range rows {
		row := BenchmarkRow{Line: lineAt(src, r)}
		for cell := r.FirstChild(); cell != nil; cell = cell.NextSibling() {
			txt, link := inlineContent(cell, src)
			row.Cells = append(row.Cells, Cell{Text: txt, Link: link})
		}

		if len(row.Cells) > 0 {
			row.Variant = row.Cells[0].Text
			row.ConfigPath = row.Cells[0].Link
		}
		if sizeIdx >= 0 && sizeIdx < len(row.Cells) {
			row.InputSize = row.Cells[sizeIdx].Text
		}
		if ckptIdx >= 0 && ckptIdx < len(row.Cells) {
			row.Ckpt = cellRef(row.Cells[ckptIdx])
		}
		if logIdx >= 0 && logIdx < len(row.Cells) {
			row.Log = cellRef(row.Cells[logIdx])
		}

		for i, col := range table.Columns {
			if !IsMetricColumn(col) || i >= len(row.Cells) {
				continue
			}
			if row.Metrics == nil {
				row.Metrics = make(map[string]MetricCell)
			}
			row.Metrics[col] = parseMetricCell(row.Cells[i].Text)
		}

		table.Rows = append(table.Rows, row)
	}

	return table
}

// classifyColumns locates the input-size, checkpoint and log columns.
func classifyColumns(columns []string) (sizeIdx, ckptIdx, logIdx int) {
	sizeIdx, ckptIdx, logIdx = -1, -1, -1
	for i, col := range columns {
		n := strings.ToLower(strings.TrimSpace(col))
		switch {
		case n == "input size" || n == "input resolution" || n == "size" || n == "resolution":
			sizeIdx = i
		case n == "ckpt" || n == "checkpoint" || strings.Contains(n, "ckpt"):
			ckptIdx = i
		case n == "log" || strings.Contains(n, "log"):
			logIdx = i
		}
	}
	return sizeIdx, ckptIdx, logIdx
}

// cellRef prefers a cell's link over its text.
func cellRef(c Cell) string {
	if c.Link != "" {
		return c.Link
	}
	return c.Text
}

// blockText concatenates the raw source lines of a block node.
func blockText(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

// inlineContent collects the visible text of a node's inline children and
// the destination of the first link among them.
func inlineContent(n ast.Node, src []byte) (string, string) {
	var (
		b    strings.Builder
		link string
	)
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
		case *ast.Link:
			if link == "" {
				link = string(t.Destination)
			}
		case *ast.AutoLink:
			if link == "" {
				link = string(t.URL(src))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String()), link
}

// lineAt returns the 1-based source line of a node's first segment, or 0
// when the node carries no position.
func lineAt(src []byte, n ast.Node) int {
	if off, ok := firstOffset(n); ok {
		return 1 + bytes.Count(src[:off], []byte{'\n'})
	}
	return 0
}

// firstOffset finds the byte offset of the first positioned descendant.
func firstOffset(n ast.Node) (int, bool) {
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines.Len() > 0 {
			return lines.At(0).Start, true
		}
	}
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Start, true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if off, ok := firstOffset(c); ok {
			return off, true
		}
	}
	return 0, false
}
