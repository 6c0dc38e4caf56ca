package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/erudite/internal/model"
)

// AnalysisRecord is one persisted analysis run.
type AnalysisRecord struct {
	ID        string                  `json:"id"`
	InputText string                  `json:"input_text"`
	Language  string                  `json:"language"`
	Analysis  *model.CulturalAnalysis `json:"analysis"`
	CreatedAt time.Time               `json:"created_at"`
}

// AnalysisLog keeps the history of completed analyses, separate from the
// cache so purging the cache never loses history.
type AnalysisLog struct {
	db *sql.DB
}

// NewAnalysisLog creates the history log on top of the store.
func NewAnalysisLog(s *Store) *AnalysisLog {
	return &AnalysisLog{db: s.db}
}

// Save records one analysis run and returns the stored record.
func (l *AnalysisLog) Save(text, language string, analysis *model.CulturalAnalysis) (*AnalysisRecord, error) {
	data, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis: %w", err)
	}

	rec := &AnalysisRecord{
		ID:        uuid.New().String(),
		InputText: text,
		Language:  language,
		Analysis:  analysis,
		CreatedAt: time.Now().UTC(),
	}

	_, err = l.db.Exec(
		`INSERT INTO analyses (id, input_text, language, result, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.InputText, rec.Language, string(data), rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert analysis: %w", err)
	}

	return rec, nil
}

// Get returns one record by id.
func (l *AnalysisLog) Get(id string) (*AnalysisRecord, error) {
	row := l.db.QueryRow(
		`SELECT id, input_text, language, result, created_at FROM analyses WHERE id = ?`, id,
	)
	return scanAnalysisRecord(row.Scan)
}

// List returns the most recent records, newest first.
func (l *AnalysisLog) List(limit int) ([]*AnalysisRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := l.db.Query(
		`SELECT id, input_text, language, result, created_at FROM analyses ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*AnalysisRecord
	for rows.Next() {
		rec, err := scanAnalysisRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanAnalysisRecord(scan func(...interface{}) error) (*AnalysisRecord, error) {
	var (
		rec        AnalysisRecord
		resultJSON string
	)
	if err := scan(&rec.ID, &rec.InputText, &rec.Language, &resultJSON, &rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan analysis: %w", err)
	}

	var analysis model.CulturalAnalysis
	if err := json.Unmarshal([]byte(resultJSON), &analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	analysis.Normalize()
	rec.Analysis = &analysis

	return &rec, nil
}
