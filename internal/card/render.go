package card

import (
	"fmt"
	"strings"
)

// Render re-emits a card as normalized markdown: role markers, citation
// details blocks and results tables in canonical formatting.
func Render(c *Card) []byte {
	var b strings.Builder

	if c.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", c.Title)
	}

	for i := range c.Citations {
		renderCitation(&b, &c.Citations[i])
	}

	for i := range c.Tables {
		renderTable(&b, &c.Tables[i])
	}

	return []byte(strings.TrimRight(b.String(), "\n") + "\n")
}

func renderCitation(b *strings.Builder, cit *Citation) {
	if cit.Role != RoleUnknown {
		fmt.Fprintf(b, "<!-- [%s] -->\n\n", strings.ToUpper(string(cit.Role)))
	}

	summary := cit.Name
	if cit.Venue != "" {
		summary = fmt.Sprintf("%s (%s)", cit.Name, cit.Venue)
	}

	b.WriteString("<details>\n")
	if cit.URL != "" {
		fmt.Fprintf(b, "<summary align=\"right\"><a href=%q>%s</a></summary>\n", cit.URL, summary)
	} else {
		fmt.Fprintf(b, "<summary align=\"right\">%s</summary>\n", summary)
	}

	if raw := strings.TrimSpace(cit.BibRaw); raw != "" {
		b.WriteString("\n```bibtex\n")
		b.WriteString(raw)
		b.WriteString("\n```\n")
	}

	b.WriteString("\n</details>\n\n")
}

func renderTable(b *strings.Builder, t *BenchmarkTable) {
	if t.Preamble != "" {
		b.WriteString(t.Preamble)
		b.WriteString("\n\n")
	}

	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(c)
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(t.Columns)

	// first column left-aligned, the rest centered (zoo convention)
	seps := make([]string, len(t.Columns))
	for i := range seps {
		if i == 0 {
			seps[i] = ":---"
		} else {
			seps[i] = ":---:"
		}
	}
	writeRow(seps)

	for _, row := range t.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = renderCell(c)
		}
		writeRow(cells)
	}

	b.WriteString("\n")
}

func renderCell(c Cell) string {
	if c.Link != "" {
		return fmt.Sprintf("[%s](%s)", c.Text, c.Link)
	}
	if c.Text == "" {
		return "-"
	}
	return c.Text
}
