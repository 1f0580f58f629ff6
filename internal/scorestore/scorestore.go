// Package scorestore persists computed information content and similarity
// scores to SQLite so expensive batch runs can be queried later without
// recomputation.
package scorestore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Open opens or creates a score database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS ic_scores (
			approach TEXT NOT NULL,
			term TEXT NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (approach, term)
		);

		CREATE TABLE IF NOT EXISTS term_scores (
			model TEXT NOT NULL,
			approach TEXT NOT NULL,
			term1 TEXT NOT NULL,
			term2 TEXT NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (model, approach, term1, term2)
		);

		CREATE TABLE IF NOT EXISTS entity_scores (
			measure TEXT NOT NULL,
			entity1 TEXT NOT NULL,
			entity2 TEXT NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (measure, entity1, entity2)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveIC stores per-term scores for one IC approach, replacing earlier runs.
func (d *DB) SaveIC(approach string, scores map[string]float64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO ic_scores (approach, term, score)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing ic insert: %w", err)
	}
	defer stmt.Close()

	for term, score := range scores {
		if _, err := stmt.Exec(approach, term, score); err != nil {
			return fmt.Errorf("inserting ic score for %s: %w", term, err)
		}
	}
	return tx.Commit()
}

// LoadIC returns the stored per-term scores of one IC approach.
func (d *DB) LoadIC(approach string) (map[string]float64, error) {
	rows, err := d.db.Query(`SELECT term, score FROM ic_scores WHERE approach = ?`, approach)
	if err != nil {
		return nil, fmt.Errorf("loading ic scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var term string
		var score float64
		if err := rows.Scan(&term, &score); err != nil {
			return nil, err
		}
		scores[term] = score
	}
	return scores, rows.Err()
}

// TermScore is one persisted concept similarity score.
type TermScore struct {
	Model    string
	Approach string
	Term1    string
	Term2    string
	Score    float64
}

// SaveTermScores stores a batch of concept similarity scores.
func (d *DB) SaveTermScores(scores []TermScore) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO term_scores (model, approach, term1, term2, score)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing term score insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range scores {
		if _, err := stmt.Exec(s.Model, s.Approach, s.Term1, s.Term2, s.Score); err != nil {
			return fmt.Errorf("inserting term score %s/%s: %w", s.Term1, s.Term2, err)
		}
	}
	return tx.Commit()
}

// ListTermScores returns the stored scores of one model and approach,
// ordered by term pair.
func (d *DB) ListTermScores(model, approach string) ([]TermScore, error) {
	rows, err := d.db.Query(`
		SELECT model, approach, term1, term2, score
		FROM term_scores
		WHERE model = ? AND approach = ?
		ORDER BY term1, term2
	`, model, approach)
	if err != nil {
		return nil, fmt.Errorf("listing term scores: %w", err)
	}
	defer rows.Close()

	var scores []TermScore
	for rows.Next() {
		var s TermScore
		if err := rows.Scan(&s.Model, &s.Approach, &s.Term1, &s.Term2, &s.Score); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// EntityScore is one persisted entity similarity score.
type EntityScore struct {
	Measure string
	Entity1 string
	Entity2 string
	Score   float64
}

// SaveEntityScores stores a batch of entity similarity scores.
func (d *DB) SaveEntityScores(scores []EntityScore) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO entity_scores (measure, entity1, entity2, score)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing entity score insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range scores {
		if _, err := stmt.Exec(s.Measure, s.Entity1, s.Entity2, s.Score); err != nil {
			return fmt.Errorf("inserting entity score %s/%s: %w", s.Entity1, s.Entity2, err)
		}
	}
	return tx.Commit()
}

// ListEntityScores returns the stored scores of one measure, ordered by
// entity pair.
func (d *DB) ListEntityScores(measure string) ([]EntityScore, error) {
	rows, err := d.db.Query(`
		SELECT measure, entity1, entity2, score
		FROM entity_scores
		WHERE measure = ?
		ORDER BY entity1, entity2
	`, measure)
	if err != nil {
		return nil, fmt.Errorf("listing entity scores: %w", err)
	}
	defer rows.Close()

	var scores []EntityScore
	for rows.Next() {
		var s EntityScore
		if err := rows.Scan(&s.Measure, &s.Entity1, &s.Entity2, &s.Score); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// CountIC returns the number of stored IC scores across approaches.
func (d *DB) CountIC() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM ic_scores").Scan(&count)
	return count, err
}
