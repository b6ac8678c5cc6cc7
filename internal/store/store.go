// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/tuispeak/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

var (
	// ErrSessionNotFound is returned when no session matches an id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrAmbiguousID is returned when an id prefix matches several sessions.
	ErrAmbiguousID = errors.New("session id prefix is ambiguous")
)

// Store wraps SQLite access for practice sessions.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			uid TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			transcript TEXT NOT NULL,
			original_text TEXT NOT NULL,
			pronunciation INTEGER NOT NULL,
			grammar INTEGER NOT NULL,
			fluency INTEGER NOT NULL,
			overall INTEGER NOT NULL,
			xp INTEGER NOT NULL,
			duration_s INTEGER NOT NULL,
			feedback TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_sound_stats (
			session_id INTEGER NOT NULL,
			sound TEXT NOT NULL,
			matched INTEGER NOT NULL,
			flagged INTEGER NOT NULL,
			score_sum INTEGER NOT NULL,
			PRIMARY KEY (session_id, sound)
		);`,
		`CREATE TABLE IF NOT EXISTS session_word_stats (
			session_id INTEGER NOT NULL,
			word TEXT NOT NULL,
			phonetic_key TEXT NOT NULL,
			score INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_session_sound_stats_sound ON session_sound_stats(sound);`,
		`CREATE INDEX IF NOT EXISTS idx_session_word_stats_key ON session_word_stats(phonetic_key);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a practice session with its sound and word breakdown.
func (s *Store) InsertSession(ctx context.Context, ps model.PracticeSession, sounds []model.SoundStats, words []model.WordStats) (id int64, err error) {
	feedback, err := json.Marshal(ps.Feedback)
	if err != nil {
		return 0, fmt.Errorf("failed to encode feedback: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (uid, user_id, ended_at, transcript, original_text, pronunciation, grammar, fluency, overall, xp, duration_s, feedback)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ps.ID,
		ps.UserID,
		ps.Timestamp.UTC().Format(time.RFC3339Nano),
		ps.Transcript,
		ps.OriginalText,
		ps.Scores.Pronunciation,
		ps.Scores.Grammar,
		ps.Scores.Fluency,
		ps.Scores.Overall,
		ps.XPGained,
		ps.DurationSeconds,
		string(feedback),
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(sounds) > 0 {
		if err = insertEach(ctx, tx,
			`INSERT INTO session_sound_stats (session_id, sound, matched, flagged, score_sum) VALUES (?, ?, ?, ?, ?)`,
			len(sounds), func(i int) []any {
				st := sounds[i]
				return []any{id, st.Sound, st.Matched, st.Flagged, st.ScoreSum}
			}); err != nil {
			return 0, err
		}
	}
	if len(words) > 0 {
		if err = insertEach(ctx, tx,
			`INSERT INTO session_word_stats (session_id, word, phonetic_key, score) VALUES (?, ?, ?, ?)`,
			len(words), func(i int) []any {
				ws := words[i]
				return []any{id, ws.Word, ws.PhoneticKey, ws.Score}
			}); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func insertEach(ctx context.Context, tx *sql.Tx, query string, n int, args func(int) []any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

// GetSession loads a session by its id or a unique id prefix.
func (s *Store) GetSession(ctx context.Context, uid string) (model.PracticeSession, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return model.PracticeSession{}, ErrSessionNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT uid, user_id, ended_at, transcript, original_text, pronunciation, grammar, fluency, overall, xp, duration_s, feedback
		 FROM sessions
		 WHERE uid = ? OR substr(uid, 1, length(?)) = ?
		 ORDER BY (uid = ?) DESC
		 LIMIT 2`, uid, uid, uid, uid)
	if err != nil {
		return model.PracticeSession{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var found []model.PracticeSession
	for rows.Next() {
		var ps model.PracticeSession
		var endedAt, feedback string
		if err := rows.Scan(&ps.ID, &ps.UserID, &endedAt, &ps.Transcript, &ps.OriginalText,
			&ps.Scores.Pronunciation, &ps.Scores.Grammar, &ps.Scores.Fluency, &ps.Scores.Overall,
			&ps.XPGained, &ps.DurationSeconds, &feedback); err != nil {
			return model.PracticeSession{}, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return model.PracticeSession{}, err
		}
		ps.Timestamp = parsed
		if err := json.Unmarshal([]byte(feedback), &ps.Feedback); err != nil {
			return model.PracticeSession{}, fmt.Errorf("failed to decode feedback for %s: %w", ps.ID, err)
		}
		found = append(found, ps)
	}
	if err := rows.Err(); err != nil {
		return model.PracticeSession{}, err
	}
	switch {
	case len(found) == 0:
		return model.PracticeSession{}, ErrSessionNotFound
	case found[0].ID == uid || len(found) == 1:
		return found[0], nil
	default:
		return model.PracticeSession{}, ErrAmbiguousID
	}
}

// GetWeakSounds aggregates sound stats over the most recent sessions.
func (s *Store) GetWeakSounds(ctx context.Context, window int, user string) ([]model.SoundAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR user_id = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT ss.sound, SUM(ss.matched), SUM(ss.flagged), SUM(ss.score_sum)
	FROM session_sound_stats ss
	JOIN recent_sessions r ON r.id = ss.session_id
	GROUP BY ss.sound`

	rows, err := s.db.QueryContext(ctx, query, user, user, window)
	if err != nil {
		return nil, err
	}
	return scanSoundAggregates(rows)
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.User != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, cfg.User)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, uid, ended_at, pronunciation, grammar, fluency, overall, xp, duration_s
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &agg.UID, &endedAt,
			&agg.Scores.Pronunciation, &agg.Scores.Grammar, &agg.Scores.Fluency, &agg.Scores.Overall,
			&agg.XP, &agg.DurationSeconds); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListSoundAggregatesForSessions aggregates per-sound stats across sessions.
func (s *Store) ListSoundAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.SoundAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inArgs(sessionIDs)
	query := fmt.Sprintf(`SELECT sound, SUM(matched), SUM(flagged), SUM(score_sum)
		FROM session_sound_stats
		WHERE session_id IN (%s)
		GROUP BY sound`, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanSoundAggregates(rows)
}

// ListSoundStatsForSessions returns per-session stats for selected sounds.
func (s *Store) ListSoundStatsForSessions(ctx context.Context, sessionIDs []int64, sounds []string) (map[int64]map[string]model.SoundAggregate, error) {
	if len(sessionIDs) == 0 || len(sounds) == 0 {
		return map[int64]map[string]model.SoundAggregate{}, nil
	}
	idPlaceholders, args := inArgs(sessionIDs)
	soundPlaceholders := make([]string, len(sounds))
	for i, sound := range sounds {
		soundPlaceholders[i] = "?"
		args = append(args, sound)
	}

	query := fmt.Sprintf(`SELECT session_id, sound, matched, flagged, score_sum
		FROM session_sound_stats
		WHERE session_id IN (%s) AND sound IN (%s)`, idPlaceholders, strings.Join(soundPlaceholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[int64]map[string]model.SoundAggregate{}
	for rows.Next() {
		var sessionID int64
		var agg model.SoundAggregate
		if err := rows.Scan(&sessionID, &agg.Sound, &agg.Matched, &agg.Flagged, &agg.ScoreSum); err != nil {
			return nil, err
		}
		if _, ok := result[sessionID]; !ok {
			result[sessionID] = map[string]model.SoundAggregate{}
		}
		result[sessionID][agg.Sound] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListWeakWords groups flagged words by phonetic key across sessions,
// most frequent first.
func (s *Store) ListWeakWords(ctx context.Context, sessionIDs []int64, limit int) ([]model.WordAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inArgs(sessionIDs)
	query := fmt.Sprintf(`SELECT phonetic_key, word, COUNT(*), SUM(score)
		FROM session_word_stats
		WHERE session_id IN (%s)
		GROUP BY phonetic_key, word
		ORDER BY phonetic_key, word`, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	byKey := map[string]*model.WordAggregate{}
	var keys []string
	for rows.Next() {
		var key, word string
		var count int
		var sum int64
		if err := rows.Scan(&key, &word, &count, &sum); err != nil {
			return nil, err
		}
		agg, ok := byKey[key]
		if !ok {
			agg = &model.WordAggregate{PhoneticKey: key}
			byKey[key] = agg
			keys = append(keys, key)
		}
		agg.Words = append(agg.Words, word)
		agg.Count += count
		agg.ScoreSum += sum
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]model.WordAggregate, 0, len(keys))
	for _, key := range keys {
		result = append(result, *byKey[key])
	}
	sortWordAggregates(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func sortWordAggregates(aggs []model.WordAggregate) {
	sort.SliceStable(aggs, func(i, j int) bool {
		if aggs[i].Count != aggs[j].Count {
			return aggs[i].Count > aggs[j].Count
		}
		ai := float64(aggs[i].ScoreSum) / float64(aggs[i].Count)
		aj := float64(aggs[j].ScoreSum) / float64(aggs[j].Count)
		if ai != aj {
			return ai < aj
		}
		return aggs[i].PhoneticKey < aggs[j].PhoneticKey
	})
}

func scanSoundAggregates(rows *sql.Rows) ([]model.SoundAggregate, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var result []model.SoundAggregate
	for rows.Next() {
		var agg model.SoundAggregate
		if err := rows.Scan(&agg.Sound, &agg.Matched, &agg.Flagged, &agg.ScoreSum); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func inArgs(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}
