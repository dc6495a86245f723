// Package card parses model-zoo model cards: markdown documents pairing
// citation blocks with benchmark results tables.
package card

import (
	"strconv"
	"strings"
)

// Role classifies what a citation refers to, taken from the comment
// markers (<!-- [ALGORITHM] -->) that precede citation blocks.
type Role string

const (
	// RoleAlgorithm cites the method the card's models implement.
	RoleAlgorithm Role = "algorithm"

	// RoleBackbone cites the backbone network.
	RoleBackbone Role = "backbone"

	// RoleDataset cites the benchmark dataset.
	RoleDataset Role = "dataset"

	// RoleOthers cites supporting work (training tricks, losses, etc.).
	RoleOthers Role = "others"

	// RoleUnknown marks a citation without a recognized marker.
	RoleUnknown Role = ""
)

// Card is a parsed model card.
type Card struct {
	// ID is the card's path relative to the zoo root.
	ID string `json:"id"`

	// Title is the first heading, if the card has one.
	Title string `json:"title,omitempty"`

	Citations []Citation       `json:"citations"`
	Tables    []BenchmarkTable `json:"tables"`

	// Source is the raw markdown the card was parsed from.
	Source []byte `json:"-"`
}

// Citation is a single citation record: role marker, summary link and
// bibliographic entry.
type Citation struct {
	Role Role `json:"role"`

	// Name and Venue come from the summary line, e.g.
	// "ViTPose (NeurIPS'2022)".
	Name  string `json:"name"`
	Venue string `json:"venue,omitempty"`

	// URL is the paper or dataset link from the summary anchor.
	URL string `json:"url,omitempty"`

	Bib *BibEntry `json:"bib,omitempty"`

	// BibRaw is the fenced block the entry was parsed from; BibErr holds
	// the parse error when the block is malformed.
	BibRaw string `json:"-"`
	BibErr string `json:"-"`

	// Line is the 1-based source line of the summary block.
	Line int `json:"line"`
}

// BibEntry is a parsed bibliographic entry.
type BibEntry struct {
	EntryType string     `json:"entry_type"`
	Key       string     `json:"key"`
	Fields    []BibField `json:"fields"`

	// Raw is the entry text as it appeared in the fenced block.
	Raw string `json:"-"`
}

// BibField is a single name = value pair of a bibliographic entry.
type BibField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Field returns the value of the named field (case-insensitive) and
// whether it is present.
func (b *BibEntry) Field(name string) (string, bool) {
	for _, f := range b.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// BenchmarkTable is one results table of a card.
type BenchmarkTable struct {
	// Preamble is the paragraph immediately preceding the table, e.g.
	// "Results on COCO val2017 with detector having human AP of 56.4 ...".
	Preamble string `json:"preamble,omitempty"`

	// Columns are the header cells in order.
	Columns []string `json:"columns"`

	Rows []BenchmarkRow `json:"rows"`

	// Line is the 1-based source line of the header row.
	Line int `json:"line"`
}

// BenchmarkRow is one model variant's row.
type BenchmarkRow struct {
	// Variant is the display text of the first cell.
	Variant string `json:"variant"`

	// ConfigPath is the repo-relative link of the first cell, when present.
	ConfigPath string `json:"config_path,omitempty"`

	// InputSize is the raw input resolution cell, e.g. "256x192".
	InputSize string `json:"input_size,omitempty"`

	// Metrics maps metric column name to the cell value.
	Metrics map[string]MetricCell `json:"metrics,omitempty"`

	// Ckpt and Log are the artifact links.
	Ckpt string `json:"ckpt,omitempty"`
	Log  string `json:"log,omitempty"`

	// Cells are all cells of the row in order, including the ones the
	// typed fields above were derived from.
	Cells []Cell `json:"-"`

	// Line is the 1-based source line of the row.
	Line int `json:"line"`
}

// Cell is a raw table cell.
type Cell struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// MetricCell is a single metric value. Template cards ship with unfilled
// cells, so emptiness is represented rather than rejected.
type MetricCell struct {
	Raw string `json:"raw"`

	// Filled reports whether the cell holds anything besides a
	// placeholder ("", "-").
	Filled bool `json:"filled"`

	// Value and Numeric are set when the cell parses as a float.
	Value   float64 `json:"value,omitempty"`
	Numeric bool    `json:"numeric"`
}

// parseMetricCell classifies a raw metric cell.
func parseMetricCell(raw string) MetricCell {
	cell := MetricCell{Raw: raw}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "-" {
		return cell
	}
	cell.Filled = true

	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		cell.Value = v
		cell.Numeric = true
	}
	return cell
}

// MetricColumns returns the table's metric column names in header order.
func (t *BenchmarkTable) MetricColumns() []string {
	var cols []string
	for _, c := range t.Columns {
		if IsMetricColumn(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// IsMetricColumn reports whether a header cell names an evaluation metric
// (the AP/AR family plus the other common pose metrics).
func IsMetricColumn(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, prefix := range []string{"ap", "ar", "map", "pckh", "pck", "auc", "epe", "nme", "acc", "mpjpe"} {
		if n == prefix {
			return true
		}
		if strings.HasPrefix(n, prefix) {
			// AP50, AR75, PCKh@0.5 and friends: a metric prefix followed
			// by digits or a qualifier, not an unrelated word ("archive").
			rest := n[len(prefix):]
			if rest != "" && (rest[0] >= '0' && rest[0] <= '9' || rest[0] == '@' || rest[0] == '.') {
				return true
			}
		}
	}
	return false
}

// IsModelCard reports whether the parsed document looks like a model card
// rather than plain documentation: it carries a citation or a results
// table with a recognizable metric column.
func (c *Card) IsModelCard() bool {
	if len(c.Citations) > 0 {
		return true
	}
	for i := range c.Tables {
		if len(c.Tables[i].MetricColumns()) > 0 {
			return true
		}
	}
	return false
}
