// Package store persists the per-host result cache as a single JSON
// snapshot. Every mutation rewrites the whole file (temp file + rename)
// and only then becomes visible in memory.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/validator"
)

// FileStore implements ports.ResultStore
type FileStore struct {
	mu      sync.Mutex // serializa todas las mutaciones
	path    string
	entries map[string]domain.Record
	closed  bool
	logger  logx.Logger
}

var _ ports.ResultStore = (*FileStore)(nil)

// DefaultPath devuelve ~/.webnmap/scan_cache.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".webnmap", "scan_cache.json")
}

// Open carga el snapshot de path. Un fichero inexistente es una caché vacía;
// path vacío mantiene la caché solo en memoria.
func Open(path string, logger logx.Logger) (*FileStore, error) {
	if logger == nil {
		logger = logx.NewDiscard()
	}
	s := &FileStore{
		path:    path,
		entries: make(map[string]domain.Record),
		logger:  logger.With("component", "store"),
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, errors.Wrapf(err, "read cache %s", path)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, errors.Wrapf(domain.ErrInvalidRecord, "decode cache %s: %v", path, err)
	}
	if s.entries == nil {
		s.entries = make(map[string]domain.Record)
	}

	s.logger.Debug("cache loaded", "path", path, "hosts", len(s.entries))
	return s, nil
}

// Get implements ports.ResultStore
func (s *FileStore) Get(host string) (domain.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.entries[validator.NormalizeHost(host)]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Merge implements ports.ResultStore
func (s *FileStore) Merge(host string, rec domain.Record) (domain.Record, error) {
	return s.Update(host, func(current domain.Record) (domain.Record, error) {
		return current.Merge(rec), nil
	})
}

// Update implements ports.ResultStore. fn recibe una copia de la entrada
// actual (vacía si no existe) y devuelve la nueva.
func (s *FileStore) Update(host string, fn func(current domain.Record) (domain.Record, error)) (domain.Record, error) {
	key := validator.NormalizeHost(host)
	if key == "" {
		return nil, domain.ErrEmptyTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}

	current := s.entries[key].Clone()
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = domain.Record{}
	}

	snapshot := make(map[string]domain.Record, len(s.entries)+1)
	for k, v := range s.entries {
		snapshot[k] = v
	}
	snapshot[key] = next.Clone()

	if err := s.persist(snapshot); err != nil {
		return nil, err
	}
	s.entries = snapshot
	return next.Clone(), nil
}

// Snapshot implements ports.ResultStore
func (s *FileStore) Snapshot() map[string]domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Record, len(s.entries))
	for k, v := range s.entries {
		out[k] = v.Clone()
	}
	return out
}

// Close implements ports.ResultStore
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// persist escribe el snapshot completo. La llamada se hace con mu tomado.
func (s *FileStore) persist(snapshot map[string]domain.Record) error {
	if s.path == "" {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "create cache dir %s", dir)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.Wrapf(domain.ErrInvalidRecord, "encode cache: %v", err)
	}

	tmp, err := os.CreateTemp(dir, ".scan_cache-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp cache file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op tras el rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write cache")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync cache")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close cache")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrapf(err, "replace cache %s", s.path)
	}

	s.logger.Debug("cache persisted", "path", s.path, "hosts", len(snapshot))
	return nil
}
