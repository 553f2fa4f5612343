package storage

import (
	"context"
	"database/sql"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	json "github.com/json-iterator/go"

	"StoryStudio/internal/logging"
)

const sessionCacheSize = 64

// PostgresSessionStore keeps sessions as JSONB rows with an LRU cache of encoded rows
type PostgresSessionStore struct {
	db    *sql.DB
	cache *lru.Cache[string, []byte]
}

// NewPostgresSessionStore creates a store over an initialized database
func NewPostgresSessionStore(db *sql.DB) (*PostgresSessionStore, error) {
	cache, err := lru.New[string, []byte](sessionCacheSize)
	if err != nil {
		return nil, err
	}
	return &PostgresSessionStore{db: db, cache: cache}, nil
}

// Save upserts the session
func (s *PostgresSessionStore) Save(ctx context.Context, session *SavedSession) error {
	if err := prepareForSave(session); err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return &StorageError{Op: "save", ID: session.ID, Err: err}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO story_sessions (id, book_title, data, last_modified)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			book_title = EXCLUDED.book_title,
			data = EXCLUDED.data,
			last_modified = EXCLUDED.last_modified
	`, session.ID, session.BookTitle, data, session.LastModified)
	if err != nil {
		s.cache.Remove(session.ID)
		return &StorageError{Op: "save", ID: session.ID, Err: err}
	}

	s.cache.Add(session.ID, data)
	return nil
}

// Get returns the session with the given ID
func (s *PostgresSessionStore) Get(ctx context.Context, id string) (*SavedSession, error) {
	data, ok := s.cache.Get(id)
	if !ok {
		err := s.db.QueryRowContext(ctx, `SELECT data FROM story_sessions WHERE id = $1`, id).Scan(&data)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, &StorageError{Op: "read", ID: id, Err: ErrSessionNotFound}
			}
			return nil, &StorageError{Op: "read", ID: id, Err: err}
		}
		s.cache.Add(id, data)
	}

	var session SavedSession
	if err := json.Unmarshal(data, &session); err != nil {
		s.cache.Remove(id)
		return nil, &StorageError{Op: "read", ID: id, Err: err}
	}
	return &session, nil
}

// List returns all sessions, newest first
func (s *PostgresSessionStore) List(ctx context.Context) ([]*SavedSession, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM story_sessions ORDER BY last_modified DESC`)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("Failed to close rows: %v", err)
		}
	}()

	var sessions []*SavedSession
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		var session SavedSession
		if err := json.Unmarshal(data, &session); err != nil {
			logging.Warn("Skipping unreadable session row: %v", err)
			continue
		}
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return sessions, nil
}

// Delete removes the session with the given ID
func (s *PostgresSessionStore) Delete(ctx context.Context, id string) error {
	s.cache.Remove(id)
	res, err := s.db.ExecContext(ctx, `DELETE FROM story_sessions WHERE id = $1`, id)
	if err != nil {
		return &StorageError{Op: "delete", ID: id, Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &StorageError{Op: "delete", ID: id, Err: ErrSessionNotFound}
	}
	return nil
}

// Close does nothing since the database connection is shared
func (s *PostgresSessionStore) Close() error {
	s.cache.Purge()
	return nil
}
