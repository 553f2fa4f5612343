package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"StoryStudio/internal/logging"
)

// KeyFailureLog records failed provider attempts per masked key.
// It is observational only; key order is always taken from the user's list.
type KeyFailureLog struct {
	db *sql.DB
}

// KeyFailureStat summarizes the failures of one key
type KeyFailureStat struct {
	Provider   string
	MaskedKey  string
	Failures   int
	LastStatus int
	LastError  string
	LastFailed time.Time
}

// NewKeyFailureLog creates a ledger over an initialized database
func NewKeyFailureLog(db *sql.DB) *KeyFailureLog {
	return &KeyFailureLog{db: db}
}

// RecordFailure appends one failed attempt
func (l *KeyFailureLog) RecordFailure(ctx context.Context, provider, maskedKey string, httpStatus int, message string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO key_failures (provider, masked_key, http_status, message, failed_at)
		VALUES ($1, $2, $3, $4, $5)
	`, provider, maskedKey, httpStatus, message, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record key failure: %w", err)
	}

	logging.Debug("Recorded %s key failure for %s (status %d)", provider, maskedKey, httpStatus)
	return nil
}

// Stats returns per-key failure counts, most failures first
func (l *KeyFailureLog) Stats(ctx context.Context) ([]KeyFailureStat, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT DISTINCT ON (provider, masked_key)
			provider, masked_key,
			COUNT(*) OVER (PARTITION BY provider, masked_key) AS failures,
			http_status, message, failed_at
		FROM key_failures
		ORDER BY provider, masked_key, failed_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("Failed to close rows: %v", err)
		}
	}()

	var stats []KeyFailureStat
	for rows.Next() {
		var st KeyFailureStat
		var failedAt int64
		if err := rows.Scan(&st.Provider, &st.MaskedKey, &st.Failures, &st.LastStatus, &st.LastError, &failedAt); err != nil {
			return nil, err
		}
		st.LastFailed = time.Unix(failedAt, 0)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortStats(stats)
	return stats, nil
}

// Reset clears the ledger for one provider, or for all when provider is empty
func (l *KeyFailureLog) Reset(ctx context.Context, provider string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM key_failures WHERE $1::text = '' OR provider = $1`, provider); err != nil {
		return fmt.Errorf("failed to reset key failures for provider %q: %w", provider, err)
	}
	logging.Info("Reset key failure ledger for provider: %q", provider)
	return nil
}

func sortStats(stats []KeyFailureStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Failures > stats[j].Failures
	})
}
