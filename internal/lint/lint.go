// Package lint checks model cards for documentation-quality defects:
// unresolvable config links, malformed citations, ragged tables,
// out-of-range metrics.
package lint

import (
	"github.com/atelier-vision/zoocard/internal/card"
	"github.com/atelier-vision/zoocard/internal/config"
	"github.com/atelier-vision/zoocard/internal/mapsafe"
)

// Severity grades a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is a single lint result.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	CardID   string   `json:"card_id"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

// Context carries the environment a rule checks against.
type Context struct {
	// ZooRoot is the directory repo-relative links resolve in.
	ZooRoot string

	// Options holds the rule's configured options.
	Options map[string]any
}

// Rule checks one property of a card.
type Rule interface {
	// Name returns the rule identifier used in config and findings.
	Name() string

	// Check returns the rule's findings for a card.
	Check(ctx *Context, c *card.Card) []Finding
}

// Runner applies a registry of rules to cards, honoring per-rule config.
type Runner struct {
	registry *Registry
	zooRoot  string
	cfg      config.LintConfig
}

// NewRunner creates a runner over the given registry. A nil registry gets
// the built-in rules.
func NewRunner(zooRoot string, cfg config.LintConfig, registry *Registry) *Runner {
	if registry == nil {
		registry = Builtin()
	}
	return &Runner{
		registry: registry,
		zooRoot:  zooRoot,
		cfg:      cfg,
	}
}

// Lint runs every enabled rule against the card.
func (r *Runner) Lint(c *card.Card) []Finding {
	var findings []Finding

	for _, rule := range r.registry.All() {
		opts := r.cfg.Rules[rule.Name()]
		if !mapsafe.Get(opts, "enabled", true) {
			continue
		}

		ctx := &Context{ZooRoot: r.zooRoot, Options: opts}
		got := rule.Check(ctx, c)

		// a configured severity overrides the rule's default
		if override := mapsafe.Get(opts, "severity", ""); override != "" {
			for i := range got {
				got[i].Severity = Severity(override)
			}
		}

		findings = append(findings, got...)
	}

	return findings
}

// Report aggregates findings across cards.
type Report struct {
	Findings []Finding `json:"findings"`
}

// Add appends findings to the report.
func (r *Report) Add(findings ...Finding) {
	r.Findings = append(r.Findings, findings...)
}

// HasErrors reports whether any finding is error-severity.
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CountBySeverity tallies findings per severity.
func (r *Report) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}
