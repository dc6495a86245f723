package index

import (
	"time"

	"github.com/atelier-vision/zoocard/internal/lint"
)

// Summary describes one index build.
type Summary struct {
	Cards    int                   `json:"cards"`
	Tables   int                   `json:"tables"`
	Rows     int                   `json:"rows"`
	Findings map[lint.Severity]int `json:"findings"`
	Duration time.Duration         `json:"duration"`
	BuiltAt  time.Time             `json:"built_at"`
}

// summarize tallies build statistics over the registry entries.
func summarize(entries []*Entry, duration time.Duration) *Summary {
	s := &Summary{
		Findings: make(map[lint.Severity]int),
		Duration: duration,
		BuiltAt:  time.Now(),
	}

	for _, entry := range entries {
		s.Cards++
		s.Tables += len(entry.Card.Tables)
		for i := range entry.Card.Tables {
			s.Rows += len(entry.Card.Tables[i].Rows)
		}
		for _, f := range entry.Findings {
			s.Findings[f.Severity]++
		}
	}

	return s
}
