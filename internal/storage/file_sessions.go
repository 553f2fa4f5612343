package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/json-iterator/go"
)

// FileSessionStore keeps all sessions in one JSON array, newest first
type FileSessionStore struct {
	path     string
	mu       sync.RWMutex
	sessions []*SavedSession
}

// NewFileSessionStore loads the store at path, creating an empty one when missing
func NewFileSessionStore(path string) (*FileSessionStore, error) {
	s := &FileSessionStore{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileSessionStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.sessions = nil
			return nil
		}
		return &StorageError{Op: "read", Err: err}
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.sessions); err != nil {
		return &StorageError{Op: "read", Err: fmt.Errorf("corrupt session file %s: %w", s.path, err)}
	}
	sortNewestFirst(s.sessions)
	return nil
}

// save writes through a temp file and rename so readers never see a partial file
func (s *FileSessionStore) save() error {
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return &StorageError{Op: "write", Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".sessions-*.tmp")
	if err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &StorageError{Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &StorageError{Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &StorageError{Op: "write", Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

// clone deep-copies a session through JSON so callers never share slices with the store
func clone(in *SavedSession) (*SavedSession, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out SavedSession
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Save upserts the session and moves it to the front
func (s *FileSessionStore) Save(ctx context.Context, session *SavedSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := prepareForSave(session); err != nil {
		return err
	}
	stored, err := clone(session)
	if err != nil {
		return &StorageError{Op: "save", ID: session.ID, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]*SavedSession, 0, len(s.sessions)+1)
	updated = append(updated, stored)
	for _, existing := range s.sessions {
		if existing.ID != stored.ID {
			updated = append(updated, existing)
		}
	}
	previous := s.sessions
	s.sessions = updated
	if err := s.save(); err != nil {
		s.sessions = previous
		return err
	}
	return nil
}

// Get returns a copy of the session with the given ID
func (s *FileSessionStore) Get(ctx context.Context, id string) (*SavedSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.ID == id {
			out, err := clone(session)
			if err != nil {
				return nil, &StorageError{Op: "read", ID: id, Err: err}
			}
			return out, nil
		}
	}
	return nil, &StorageError{Op: "read", ID: id, Err: ErrSessionNotFound}
}

// List returns copies of all sessions, newest first
func (s *FileSessionStore) List(ctx context.Context) ([]*SavedSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*SavedSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		c, err := clone(session)
		if err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		out = append(out, c)
	}
	return out, nil
}

// Delete removes the session with the given ID
func (s *FileSessionStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, session := range s.sessions {
		if session.ID != id {
			continue
		}
		previous := s.sessions
		updated := make([]*SavedSession, 0, len(s.sessions)-1)
		updated = append(updated, s.sessions[:i]...)
		updated = append(updated, s.sessions[i+1:]...)
		s.sessions = updated
		if err := s.save(); err != nil {
			s.sessions = previous
			return err
		}
		return nil
	}
	return &StorageError{Op: "delete", ID: id, Err: ErrSessionNotFound}
}

// Close does nothing; every write is already flushed
func (s *FileSessionStore) Close() error {
	return nil
}
