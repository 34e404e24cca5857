// Package memory is the translation memory: an SQLite store of previously
// accepted (source, language pair, register) -> target pairs. The pipeline
// consults it before dispatching units so repeated strings — and RPG Maker
// projects repeat names and notes constantly — cost nothing on later runs.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the memory database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open translation memory: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate translation memory: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_memory (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		prompt_type TEXT NOT NULL,
		target_text TEXT NOT NULL,
		usage_count INTEGER DEFAULT 1,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang, prompt_type)
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup
		ON translation_memory(source_text, source_lang, target_lang, prompt_type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Key identifies one memory entry. PromptType keeps registers separate: a
// skill name and a note containing the same source text translate
// differently.
type Key struct {
	SourceText string
	SourceLang string
	TargetLang string
	PromptType engine.PromptType
}

// Lookup returns the remembered target for key, bumping its usage counter
// on a hit.
func (s *Store) Lookup(ctx context.Context, key Key) (string, bool, error) {
	source := normalizeText(key.SourceText)
	var target string
	err := s.db.QueryRowContext(ctx,
		`SELECT target_text FROM translation_memory
		 WHERE source_text = ? AND source_lang = ? AND target_lang = ? AND prompt_type = ?`,
		source, key.SourceLang, key.TargetLang, string(key.PromptType)).Scan(&target)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ?
		 WHERE source_text = ? AND source_lang = ? AND target_lang = ? AND prompt_type = ?`,
		time.Now(), source, key.SourceLang, key.TargetLang, string(key.PromptType))
	return target, true, err
}

// Record stores or replaces the target for key.
func (s *Store) Record(ctx context.Context, key Key, target string) error {
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("refusing to remember an empty translation")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_memory
			(source_text, source_lang, target_lang, prompt_type, target_text, usage_count, last_used, created_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		 ON CONFLICT(source_text, source_lang, target_lang, prompt_type)
		 DO UPDATE SET target_text = excluded.target_text, last_used = excluded.last_used`,
		normalizeText(key.SourceText), key.SourceLang, key.TargetLang, string(key.PromptType),
		target, time.Now(), time.Now())
	return err
}

// Stats summarises the memory contents.
type Stats struct {
	Entries    int
	TotalUsage int
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(usage_count), 0) FROM translation_memory`).
		Scan(&st.Entries, &st.TotalUsage)
	return st, err
}

// Prune removes entries not used since the cutoff and returns how many were
// dropped.
func (s *Store) Prune(ctx context.Context, unusedSince time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM translation_memory WHERE last_used < ?`, unusedSince)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Clear removes all entries.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization so
// visually identical keys compare equal.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
