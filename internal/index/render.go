package index

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/atelier-vision/zoocard/internal/card"
	"github.com/atelier-vision/zoocard/internal/config"
)

// Render renders the index in the requested format.
func Render(entries []*Entry, format config.IndexFormat) ([]byte, error) {
	switch format {
	case config.IndexFormatJSON:
		return RenderJSON(entries)
	case config.IndexFormatMarkdown, "":
		return RenderMarkdown(entries), nil
	default:
		return nil, fmt.Errorf("unknown index format %q", format)
	}
}

// RenderJSON renders the index as indented JSON.
func RenderJSON(entries []*Entry) ([]byte, error) {
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal index: %w", err)
	}
	return out, nil
}

// RenderMarkdown renders the index as a markdown document: one section
// per card, rows flattened into a fixed-column table so the index stays
// regular even when cards disagree on metric columns.
func RenderMarkdown(entries []*Entry) []byte {
	var b strings.Builder

	rows := 0
	for _, entry := range entries {
		for i := range entry.Card.Tables {
			rows += len(entry.Card.Tables[i].Rows)
		}
	}

	b.WriteString("# Model Zoo Results Index\n\n")
	fmt.Fprintf(&b, "Generated %s. %d cards, %d model variants.\n\n",
		time.Now().Format("2006-01-02"), len(entries), rows)

	for _, entry := range entries {
		c := entry.Card

		title := c.Title
		if title == "" {
			title = cardLabel(c)
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		fmt.Fprintf(&b, "Card: `%s`\n\n", c.ID)

		if cits := citationLine(c); cits != "" {
			b.WriteString(cits)
			b.WriteString("\n\n")
		}

		for ti := range c.Tables {
			renderIndexTable(&b, c, &c.Tables[ti])
		}
	}

	return []byte(b.String())
}

// cardLabel falls back to the algorithm citation, then the file stem.
func cardLabel(c *card.Card) string {
	for _, cit := range c.Citations {
		if cit.Role == card.RoleAlgorithm && cit.Name != "" {
			return cit.Name
		}
	}
	id := c.ID
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return strings.TrimSuffix(id, ".md")
}

func citationLine(c *card.Card) string {
	var parts []string
	for _, cit := range c.Citations {
		if cit.Name == "" {
			continue
		}
		label := cit.Name
		if cit.Venue != "" {
			label = fmt.Sprintf("%s (%s)", cit.Name, cit.Venue)
		}
		if cit.URL != "" {
			label = fmt.Sprintf("[%s](%s)", label, cit.URL)
		}
		parts = append(parts, label)
	}
	if len(parts) == 0 {
		return ""
	}
	return "Cites: " + strings.Join(parts, ", ")
}

func renderIndexTable(b *strings.Builder, c *card.Card, t *card.BenchmarkTable) {
	if t.Preamble != "" {
		b.WriteString(t.Preamble)
		b.WriteString("\n\n")
	}

	b.WriteString("| Model | Input Size | Results | Config | ckpt | log |\n")
	b.WriteString("| :--- | :---: | :--- | :---: | :---: | :---: |\n")

	for _, row := range t.Rows {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n",
			orDash(row.Variant),
			orDash(row.InputSize),
			orDash(metricSummary(t, row)),
			linkOrDash("config", row.ConfigPath),
			linkOrDash("ckpt", row.Ckpt),
			linkOrDash("log", row.Log),
		)
	}
	b.WriteString("\n")
}

// metricSummary flattens a row's metrics into "AP=0.739, AR=0.792",
// preserving header order.
func metricSummary(t *card.BenchmarkTable, row card.BenchmarkRow) string {
	var parts []string
	cols := t.MetricColumns()
	for _, col := range cols {
		cell, ok := row.Metrics[col]
		if !ok || !cell.Filled {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", col, strings.TrimSpace(cell.Raw)))
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func linkOrDash(label, ref string) string {
	if ref == "" || ref == "-" {
		return "-"
	}
	return fmt.Sprintf("[%s](%s)", label, ref)
}
