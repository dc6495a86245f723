// Package store persists the results index to SQLite so serve mode
// survives restarts without rescanning the zoo.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/atelier-vision/zoocard/internal/card"
	"github.com/atelier-vision/zoocard/internal/index"
	"github.com/atelier-vision/zoocard/internal/lint"
)

// CardRecord is one indexed card.
type CardRecord struct {
	ID        uint   `gorm:"primaryKey"      json:"-"`
	CardID    string `gorm:"uniqueIndex"     json:"card_id"`
	Title     string `json:"title,omitempty"`
	IndexedAt time.Time `json:"indexed_at"`

	Benchmarks []BenchmarkRecord `gorm:"foreignKey:CardRecordID;constraint:OnDelete:CASCADE" json:"benchmarks,omitempty"`
	Findings   []FindingRecord   `gorm:"foreignKey:CardRecordID;constraint:OnDelete:CASCADE" json:"findings,omitempty"`
}

// BenchmarkRecord is one model variant row. AP and AR get dedicated
// columns as the headline metrics; the full metric map rides along as
// JSON.
type BenchmarkRecord struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	CardRecordID uint    `gorm:"index"      json:"-"`
	Variant      string  `json:"variant"`
	InputSize    string  `json:"input_size,omitempty"`
	ConfigPath   string  `json:"config_path,omitempty"`
	Ckpt         string  `json:"ckpt,omitempty"`
	Log          string  `json:"log,omitempty"`
	AP           float64 `json:"ap,omitempty"`
	APFilled     bool    `json:"ap_filled"`
	AR           float64 `json:"ar,omitempty"`
	ARFilled     bool    `json:"ar_filled"`
	MetricsJSON  string  `json:"-"`
}

// FindingRecord is one lint finding.
type FindingRecord struct {
	ID           uint   `gorm:"primaryKey" json:"-"`
	CardRecordID uint   `gorm:"index"      json:"-"`
	Rule         string `json:"rule"`
	Severity     string `json:"severity"`
	Line         int    `json:"line,omitempty"`
	Message      string `json:"message"`
}

// Store wraps the SQLite database.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the index database at path and runs
// migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	if err := db.AutoMigrate(&CardRecord{}, &BenchmarkRecord{}, &FindingRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate index database: %w", err)
	}

	return &Store{db: db}, nil
}

// ReplaceIndex transactionally swaps the stored index for the given
// entries.
func (s *Store) ReplaceIndex(entries []*index.Entry) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&FindingRecord{}, &BenchmarkRecord{}, &CardRecord{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear stored index: %w", err)
			}
		}

		for _, entry := range entries {
			record := toRecord(entry)
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to store card %s: %w", entry.Card.ID, err)
			}
		}

		return nil
	})
}

// Cards returns every stored card with benchmarks and findings.
func (s *Store) Cards() ([]CardRecord, error) {
	var records []CardRecord
	err := s.db.Preload("Benchmarks").Preload("Findings").
		Order("card_id").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load stored cards: %w", err)
	}
	return records, nil
}

// Entries rebuilds index entries from the stored records, so a server
// starting with the zoo unavailable can serve the last persisted index.
// Only what the store flattens survives the round trip: card identity,
// benchmark rows with their metrics, and findings.
func (s *Store) Entries() ([]*index.Entry, error) {
	records, err := s.Cards()
	if err != nil {
		return nil, err
	}

	entries := make([]*index.Entry, 0, len(records))
	for i := range records {
		entries = append(entries, fromRecord(&records[i]))
	}
	return entries, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// toRecord flattens an index entry into its stored form.
func toRecord(entry *index.Entry) CardRecord {
	record := CardRecord{
		CardID:    entry.Card.ID,
		Title:     entry.Card.Title,
		IndexedAt: entry.IndexedAt,
	}

	for ti := range entry.Card.Tables {
		for _, row := range entry.Card.Tables[ti].Rows {
			bench := BenchmarkRecord{
				Variant:    row.Variant,
				InputSize:  row.InputSize,
				ConfigPath: row.ConfigPath,
				Ckpt:       row.Ckpt,
				Log:        row.Log,
			}

			if cell, ok := row.Metrics["AP"]; ok && cell.Numeric {
				bench.AP = cell.Value
				bench.APFilled = true
			}
			if cell, ok := row.Metrics["AR"]; ok && cell.Numeric {
				bench.AR = cell.Value
				bench.ARFilled = true
			}
			if len(row.Metrics) > 0 {
				if data, err := json.Marshal(row.Metrics); err == nil {
					bench.MetricsJSON = string(data)
				}
			}

			record.Benchmarks = append(record.Benchmarks, bench)
		}
	}

	for _, f := range entry.Findings {
		record.Findings = append(record.Findings, FindingRecord{
			Rule:     f.Rule,
			Severity: string(f.Severity),
			Line:     f.Line,
			Message:  f.Message,
		})
	}

	return record
}

// fromRecord is the inverse of toRecord.
func fromRecord(record *CardRecord) *index.Entry {
	c := &card.Card{
		ID:    record.CardID,
		Title: record.Title,
	}

	if len(record.Benchmarks) > 0 {
		table := card.BenchmarkTable{}
		for _, bench := range record.Benchmarks {
			row := card.BenchmarkRow{
				Variant:    bench.Variant,
				InputSize:  bench.InputSize,
				ConfigPath: bench.ConfigPath,
				Ckpt:       bench.Ckpt,
				Log:        bench.Log,
			}
			if bench.MetricsJSON != "" {
				_ = json.Unmarshal([]byte(bench.MetricsJSON), &row.Metrics)
			}
			table.Rows = append(table.Rows, row)
		}
		c.Tables = []card.BenchmarkTable{table}
	}

	var findings []lint.Finding
	for _, f := range record.Findings {
		findings = append(findings, lint.Finding{
			Rule:     f.Rule,
			Severity: lint.Severity(f.Severity),
			CardID:   record.CardID,
			Line:     f.Line,
			Message:  f.Message,
		})
	}

	return &index.Entry{
		Card:      c,
		Findings:  findings,
		IndexedAt: record.IndexedAt,
	}
}
