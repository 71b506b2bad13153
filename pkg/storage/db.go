package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/helmcode/leafdoc/pkg/model"
)

// Prediction is one persisted diagnosis.
type Prediction struct {
	ID               string    `json:"id" yaml:"id"`
	CreatedAt        time.Time `json:"created_at" yaml:"created_at"`
	Filename         string    `json:"filename" yaml:"filename"`
	Provider         string    `json:"provider" yaml:"provider"`
	Model            string    `json:"model" yaml:"model"`
	Class            string    `json:"class" yaml:"class"`
	PlantName        string    `json:"plant_name" yaml:"plant_name"`
	PredictedDisease string    `json:"predicted_disease" yaml:"predicted_disease"`
	Category         string    `json:"category" yaml:"category"`
	ConfidenceScore  string    `json:"confidence_score" yaml:"confidence_score"`
	ReplyStatus      string    `json:"reply_status" yaml:"reply_status"`
	Simulated        bool      `json:"simulated" yaml:"simulated"`
}

// Meta describes where a diagnosis came from.
type Meta struct {
	Filename string
	Provider string
	Model    string
}

// NewPrediction builds a history row from a result.
func NewPrediction(r *model.DiagnosisResult, meta Meta) *Prediction {
	return &Prediction{
		Filename:         meta.Filename,
		Provider:         meta.Provider,
		Model:            meta.Model,
		Class:            string(r.Class),
		PlantName:        r.PlantName,
		PredictedDisease: r.PredictedDisease,
		Category:         string(r.Category),
		ConfidenceScore:  r.ConfidenceScore,
		ReplyStatus:      string(r.ReplyStatus),
		Simulated:        r.ReplyStatus == model.ReplySimulated,
	}
}

// Stats aggregates the prediction history.
type Stats struct {
	TotalPredictions int            `json:"total_predictions" yaml:"total_predictions"`
	TopPlant         string         `json:"top_plant" yaml:"top_plant"`
	Categories       map[string]int `json:"categories" yaml:"categories"`
	Degraded         int            `json:"degraded_replies" yaml:"degraded_replies"`
}

// Store persists predictions in SQLite. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS predictions (
		id                TEXT PRIMARY KEY,
		created_at        INTEGER NOT NULL,
		filename          TEXT,
		provider          TEXT,
		model             TEXT,
		class             TEXT,
		plant_name        TEXT NOT NULL,
		predicted_disease TEXT NOT NULL,
		category          TEXT NOT NULL,
		confidence_score  TEXT NOT NULL,
		reply_status      TEXT,
		simulated         INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts p, assigning an ID and timestamp when they are unset.
func (s *Store) Save(ctx context.Context, p *Prediction) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions
			(id, created_at, filename, provider, model, class, plant_name, predicted_disease, category, confidence_score, reply_status, simulated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CreatedAt.UnixNano(), p.Filename, p.Provider, p.Model, p.Class,
		p.PlantName, p.PredictedDisease, p.Category, p.ConfidenceScore, p.ReplyStatus, p.Simulated,
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// Recent returns up to limit predictions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Prediction, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, filename, provider, model, class, plant_name, predicted_disease, category, confidence_score, reply_status, simulated
		FROM predictions
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []Prediction
	for rows.Next() {
		var p Prediction
		var created int64
		var filename, provider, mdl, class, status sql.NullString
		if err := rows.Scan(&p.ID, &created, &filename, &provider, &mdl, &class,
			&p.PlantName, &p.PredictedDisease, &p.Category, &p.ConfidenceScore, &status, &p.Simulated); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		p.CreatedAt = time.Unix(0, created).UTC()
		p.Filename = filename.String
		p.Provider = provider.String
		p.Model = mdl.String
		p.Class = class.String
		p.ReplyStatus = status.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// Stats computes aggregate counts over the whole history.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Categories: map[string]int{}}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&stats.TotalPredictions); err != nil {
		return nil, fmt.Errorf("count predictions: %w", err)
	}
	if stats.TotalPredictions == 0 {
		return stats, nil
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT plant_name FROM predictions
		GROUP BY plant_name
		ORDER BY COUNT(*) DESC, plant_name ASC
		LIMIT 1`).Scan(&stats.TopPlant)
	if err != nil {
		return nil, fmt.Errorf("top plant: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM predictions GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		stats.Categories[category] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM predictions WHERE reply_status IN (?, ?)`,
		string(model.ReplyNoJSON), string(model.ReplyMalformed)).Scan(&stats.Degraded)
	if err != nil {
		return nil, fmt.Errorf("count degraded: %w", err)
	}

	return stats, nil
}
