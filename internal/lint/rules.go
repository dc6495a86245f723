package lint

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/atelier-vision/zoocard/internal/card"
	"github.com/atelier-vision/zoocard/internal/mapsafe"
	"github.com/atelier-vision/zoocard/internal/xfs"
)

// configPathRule checks that config links in the first table column
// resolve to files inside the zoo tree.
type configPathRule struct{}

func (configPathRule) Name() string { return "config-path" }

func (configPathRule) Check(ctx *Context, c *card.Card) []Finding {
	var findings []Finding

	for ti := range c.Tables {
		for _, row := range c.Tables[ti].Rows {
			link := row.ConfigPath
			if link == "" || strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") || strings.HasPrefix(link, "#") {
				continue
			}

			var target string
			if strings.HasPrefix(link, "/") {
				// repo-relative, the zoo convention
				target = filepath.Join(ctx.ZooRoot, filepath.FromSlash(link))
			} else {
				target = filepath.Join(ctx.ZooRoot, filepath.FromSlash(path.Join(path.Dir(c.ID), link)))
			}

			if !xfs.FileExists(target) {
				findings = append(findings, Finding{
					Rule:     "config-path",
					Severity: SeverityError,
					CardID:   c.ID,
					Line:     row.Line,
					Message:  fmt.Sprintf("config link %q does not resolve under the zoo root", link),
				})
			}
		}
	}

	return findings
}

// citationRule checks that citations carry role markers and valid
// bibliographic entries.
type citationRule struct{}

func (citationRule) Name() string { return "citation" }

func (citationRule) Check(ctx *Context, c *card.Card) []Finding {
	var findings []Finding

	add := func(sev Severity, line int, format string, args ...any) {
		findings = append(findings, Finding{
			Rule:     "citation",
			Severity: sev,
			CardID:   c.ID,
			Line:     line,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if len(c.Citations) == 0 {
		if len(c.Tables) > 0 {
			add(SeverityWarning, 0, "card has results tables but no citation blocks")
		}
		return findings
	}

	for i := range c.Citations {
		cit := &c.Citations[i]
		label := cit.Name
		if label == "" {
			label = fmt.Sprintf("citation #%d", i+1)
		}

		if cit.Role == card.RoleUnknown {
			add(SeverityWarning, cit.Line, "%s: missing role marker (e.g. <!-- [ALGORITHM] -->)", label)
		}
		if cit.URL == "" {
			add(SeverityWarning, cit.Line, "%s: summary line has no link", label)
		}

		switch {
		case cit.BibErr != "":
			add(SeverityError, cit.Line, "%s: invalid bibliographic entry: %s", label, cit.BibErr)
		case cit.Bib == nil:
			add(SeverityError, cit.Line, "%s: no bibliographic entry", label)
		default:
			if cit.Bib.Key == "" {
				add(SeverityError, cit.Line, "%s: bibliographic entry has an empty key", label)
			}
			if _, ok := cit.Bib.Field("title"); !ok {
				add(SeverityWarning, cit.Line, "%s: bibliographic entry has no title field", label)
			}
		}
	}

	return findings
}

// tableShapeRule checks that every row has exactly the header's column
// count. The markdown parser normalizes rows to the header width (short
// rows padded, long rows truncated), so ragged rows are only visible in
// the raw source; the check counts pipe-delimited cells on the row's
// source line and falls back to the parsed cells when the card carries
// no source.
type tableShapeRule struct{}

func (tableShapeRule) Name() string { return "table-shape" }

func (tableShapeRule) Check(ctx *Context, c *card.Card) []Finding {
	var findings []Finding

	for ti := range c.Tables {
		t := &c.Tables[ti]

		if len(t.Rows) == 0 {
			findings = append(findings, Finding{
				Rule:     "table-shape",
				Severity: SeverityWarning,
				CardID:   c.ID,
				Line:     t.Line,
				Message:  "results table has no rows",
			})
			continue
		}

		for _, row := range t.Rows {
			cells := len(row.Cells)
			if line, ok := sourceLine(c.Source, row.Line); ok && strings.Contains(line, "|") {
				cells = pipeCellCount(line)
			}

			if cells != len(t.Columns) {
				findings = append(findings, Finding{
					Rule:     "table-shape",
					Severity: SeverityError,
					CardID:   c.ID,
					Line:     row.Line,
					Message:  fmt.Sprintf("row has %d cells, header has %d columns", cells, len(t.Columns)),
				})
			}
		}
	}

	return findings
}

// sourceLine returns the 1-based line of src, when both exist.
func sourceLine(src []byte, line int) (string, bool) {
	if line <= 0 || len(src) == 0 {
		return "", false
	}
	lines := strings.Split(string(src), "\n")
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

// pipeCellCount counts the cells of a markdown table line, honoring
// escaped pipes and optional leading/trailing delimiters.
func pipeCellCount(line string) int {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")

	count := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '|':
			count++
		}
	}
	return count
}

// metricRangeRule checks that filled AP/AR-family cells are numeric and
// inside the configured range.
type metricRangeRule struct{}

func (metricRangeRule) Name() string { return "metric-range" }

func (metricRangeRule) Check(ctx *Context, c *card.Card) []Finding {
	var findings []Finding

	lo := mapsafe.Get(ctx.Options, "min", 0.0)
	hi := mapsafe.Get(ctx.Options, "max", 1.0)
	// the range only binds the AP/AR family by default; PCK-style metrics
	// are reported as percentages
	bounded := mapsafe.Strings(ctx.Options, "columns", nil)

	inBounded := func(col string) bool {
		n := strings.ToLower(col)
		if bounded == nil {
			return strings.HasPrefix(n, "ap") || strings.HasPrefix(n, "ar") || strings.HasPrefix(n, "map")
		}
		for _, b := range bounded {
			if strings.EqualFold(b, col) {
				return true
			}
		}
		return false
	}

	for ti := range c.Tables {
		for _, row := range c.Tables[ti].Rows {
			for col, cell := range row.Metrics {
				if !cell.Filled {
					continue
				}
				if !cell.Numeric {
					findings = append(findings, Finding{
						Rule:     "metric-range",
						Severity: SeverityError,
						CardID:   c.ID,
						Line:     row.Line,
						Message:  fmt.Sprintf("%s: %s cell %q is not numeric", row.Variant, col, cell.Raw),
					})
					continue
				}
				if inBounded(col) && (cell.Value < lo || cell.Value > hi) {
					findings = append(findings, Finding{
						Rule:     "metric-range",
						Severity: SeverityError,
						CardID:   c.ID,
						Line:     row.Line,
						Message:  fmt.Sprintf("%s: %s value %v outside [%v, %v]", row.Variant, col, cell.Value, lo, hi),
					})
				}
			}
		}
	}

	return findings
}

// metricFilledRule warns when a table still carries unfilled metric
// cells. Template cards ship empty, so this never escalates past a
// warning by default.
type metricFilledRule struct{}

func (metricFilledRule) Name() string { return "metric-filled" }

func (metricFilledRule) Check(ctx *Context, c *card.Card) []Finding {
	var findings []Finding

	for ti := range c.Tables {
		t := &c.Tables[ti]

		var unfilled, total int
		for _, row := range t.Rows {
			for _, cell := range row.Metrics {
				total++
				if !cell.Filled {
					unfilled++
				}
			}
		}

		if unfilled > 0 {
			findings = append(findings, Finding{
				Rule:     "metric-filled",
				Severity: SeverityWarning,
				CardID:   c.ID,
				Line:     t.Line,
				Message:  fmt.Sprintf("%d of %d metric cells are unfilled", unfilled, total),
			})
		}
	}

	return findings
}

var inputSizeRe = regexp.MustCompile(`^\d+\s*[xX×]\s*\d+$`)

// inputSizeRule checks that input-size cells are WxH resolutions.
type inputSizeRule struct{}

func (inputSizeRule) Name() string { return "input-size" }

func (inputSizeRule) Check(ctx *Context, c *card.Card) []Finding {
	var findings []Finding

	for ti := range c.Tables {
		for _, row := range c.Tables[ti].Rows {
			if row.InputSize == "" {
				continue
			}
			if !inputSizeRe.MatchString(strings.TrimSpace(row.InputSize)) {
				findings = append(findings, Finding{
					Rule:     "input-size",
					Severity: SeverityError,
					CardID:   c.ID,
					Line:     row.Line,
					Message:  fmt.Sprintf("%s: input size %q is not WxH", row.Variant, row.InputSize),
				})
			}
		}
	}

	return findings
}

// artifactLinkRule checks that ckpt/log cells carry absolute http(s)
// links.
type artifactLinkRule struct{}

func (artifactLinkRule) Name() string { return "artifact-link" }

func (artifactLinkRule) Check(ctx *Context, c *card.Card) []Finding {
	var findings []Finding

	check := func(kind, ref string, line int, variant string) {
		switch {
		case ref == "" || ref == "-":
			findings = append(findings, Finding{
				Rule:     "artifact-link",
				Severity: SeverityWarning,
				CardID:   c.ID,
				Line:     line,
				Message:  fmt.Sprintf("%s: missing %s link", variant, kind),
			})
		case !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://"):
			findings = append(findings, Finding{
				Rule:     "artifact-link",
				Severity: SeverityError,
				CardID:   c.ID,
				Line:     line,
				Message:  fmt.Sprintf("%s: %s link %q is not an absolute http(s) URL", variant, kind, ref),
			})
		}
	}

	for ti := range c.Tables {
		t := &c.Tables[ti]

		var hasCkpt, hasLog bool
		for _, col := range t.Columns {
			n := strings.ToLower(strings.TrimSpace(col))
			if strings.Contains(n, "ckpt") || n == "checkpoint" {
				hasCkpt = true
			}
			if strings.Contains(n, "log") {
				hasLog = true
			}
		}

		for _, row := range t.Rows {
			if hasCkpt {
				check("ckpt", row.Ckpt, row.Line, row.Variant)
			}
			if hasLog {
				check("log", row.Log, row.Line, row.Variant)
			}
		}
	}

	return findings
}

// uniqueVariantRule checks that variant names are unique within a table.
type uniqueVariantRule struct{}

func (uniqueVariantRule) Name() string { return "unique-variant" }

func (uniqueVariantRule) Check(ctx *Context, c *card.Card) []Finding {
	var findings []Finding

	for ti := range c.Tables {
		seen := make(map[string]int)
		for _, row := range c.Tables[ti].Rows {
			if row.Variant == "" {
				continue
			}
			if first, ok := seen[row.Variant]; ok {
				findings = append(findings, Finding{
					Rule:     "unique-variant",
					Severity: SeverityError,
					CardID:   c.ID,
					Line:     row.Line,
					Message:  fmt.Sprintf("variant %q duplicates the row at line %d", row.Variant, first),
				})
				continue
			}
			seen[row.Variant] = row.Line
		}
	}

	return findings
}
