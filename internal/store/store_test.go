package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-vision/zoocard/internal/card"
	"github.com/atelier-vision/zoocard/internal/index"
	"github.com/atelier-vision/zoocard/internal/lint"
	"github.com/atelier-vision/zoocard/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func testEntries() []*index.Entry {
	return []*index.Entry{
		{
			Card: &card.Card{
				ID: "body_2d_keypoint/vitpose_coco.md",
				Tables: []card.BenchmarkTable{{
					Rows: []card.BenchmarkRow{
						{
							Variant:    "ViTPose-S",
							InputSize:  "256x192",
							ConfigPath: "/configs/vitpose-small.py",
							Ckpt:       "https://example.org/s.pth",
							Log:        "https://example.org/s.json",
							Metrics: map[string]card.MetricCell{
								"AP": {Raw: "0.739", Filled: true, Value: 0.739, Numeric: true},
								"AR": {Raw: "0.792", Filled: true, Value: 0.792, Numeric: true},
							},
						},
						{
							Variant: "ViTPose-B",
							Metrics: map[string]card.MetricCell{
								"AP": {Raw: "-"},
								"AR": {Raw: "-"},
							},
						},
					},
				}},
			},
			Findings: []lint.Finding{
				{Rule: "metric-filled", Severity: lint.SeverityWarning, Line: 30, Message: "2 of 2 metric cells unfilled"},
			},
			IndexedAt: time.Now(),
		},
		{
			Card:      &card.Card{ID: "face_2d_keypoint/rtmpose_face6.md", Title: "RTMPose"},
			IndexedAt: time.Now(),
		},
	}
}

func TestStore_ReplaceAndLoad(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.ReplaceIndex(testEntries()))

	records, err := s.Cards()
	require.NoError(t, err)
	require.Len(t, records, 2)

	// ordered by card_id
	assert.Equal(t, "body_2d_keypoint/vitpose_coco.md", records[0].CardID)
	assert.Equal(t, "face_2d_keypoint/rtmpose_face6.md", records[1].CardID)
	assert.Equal(t, "RTMPose", records[1].Title)

	require.Len(t, records[0].Benchmarks, 2)
	small := records[0].Benchmarks[0]
	assert.Equal(t, "ViTPose-S", small.Variant)
	assert.True(t, small.APFilled)
	assert.InDelta(t, 0.739, small.AP, 1e-9)
	assert.True(t, small.ARFilled)
	assert.Contains(t, small.MetricsJSON, `"AP"`)

	big := records[0].Benchmarks[1]
	assert.False(t, big.APFilled)
	assert.False(t, big.ARFilled)

	require.Len(t, records[0].Findings, 1)
	assert.Equal(t, "metric-filled", records[0].Findings[0].Rule)
	assert.Equal(t, "warning", records[0].Findings[0].Severity)
}

func TestStore_ReplaceIsFull(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.ReplaceIndex(testEntries()))
	require.NoError(t, s.ReplaceIndex([]*index.Entry{
		{Card: &card.Card{ID: "only.md"}, IndexedAt: time.Now()},
	}))

	records, err := s.Cards()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "only.md", records[0].CardID)
}

func TestStore_Entries(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.ReplaceIndex(testEntries()))

	entries, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entry := entries[0]
	assert.Equal(t, "body_2d_keypoint/vitpose_coco.md", entry.Card.ID)
	require.Len(t, entry.Card.Tables, 1)
	require.Len(t, entry.Card.Tables[0].Rows, 2)

	small := entry.Card.Tables[0].Rows[0]
	assert.Equal(t, "ViTPose-S", small.Variant)
	assert.Equal(t, "256x192", small.InputSize)
	require.Contains(t, small.Metrics, "AP")
	assert.InDelta(t, 0.739, small.Metrics["AP"].Value, 1e-9)
	assert.True(t, small.Metrics["AP"].Numeric)

	require.Len(t, entry.Findings, 1)
	assert.Equal(t, "metric-filled", entry.Findings[0].Rule)
	assert.Equal(t, lint.SeverityWarning, entry.Findings[0].Severity)
	assert.Equal(t, entry.Card.ID, entry.Findings[0].CardID)
}

func TestStore_OpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "index.db")

	s, err := store.Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.ReplaceIndex(nil))
	records, err := s.Cards()
	require.NoError(t, err)
	assert.Empty(t, records)
}
