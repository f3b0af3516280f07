// Package store implements the durable collection store: per-collection
// load/save of JSON snapshot documents on the local filesystem. It is a
// stateless codec plus file I/O; repositories own all in-memory state and
// call Save under their own critical section.
package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"

	deckerrors "github.com/agentdeck/agentdeck/internal/errors"
	"github.com/agentdeck/agentdeck/internal/flock"
)

// Directory and file permission constants.
const (
	dirPerm  = 0o750
	lockPerm = 0o600
)

// lockFileName guards the data directory against a second server instance.
const lockFileName = "agentdeck.lock"

// Store reads and writes one JSON snapshot file per collection key under
// a single data directory. The directory is exclusively locked for the
// life of the Store.
type Store struct {
	dir      string
	lockFile *os.File
	logger   zerolog.Logger
}

// New creates a Store rooted at dir, creating the directory if needed and
// acquiring its exclusive lock. A second Store on the same directory
// (from this or another process) fails with ErrDataDirLocked.
func New(dir string, logger zerolog.Logger) (*Store, error) {
	if dir == "" {
		return nil, deckerrors.Wrap(deckerrors.ErrEmptyValue, "data directory")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, deckerrors.Wrap(err, "failed to create data directory")
	}

	lockFile, err := os.OpenFile(filepath.Join(dir, lockFileName), os.O_RDWR|os.O_CREATE, lockPerm) // #nosec G304 -- path from validated config
	if err != nil {
		return nil, deckerrors.Wrap(err, "failed to open lock file")
	}
	if err := flock.Exclusive(lockFile.Fd()); err != nil {
		_ = lockFile.Close()
		return nil, deckerrors.Wrapf(deckerrors.ErrDataDirLocked, "%s", dir)
	}

	return &Store{dir: dir, lockFile: lockFile, logger: logger}, nil
}

// Close releases the data directory lock.
func (s *Store) Close() error {
	if s.lockFile == nil {
		return nil
	}
	if err := flock.Unlock(s.lockFile.Fd()); err != nil {
		_ = s.lockFile.Close()
		return deckerrors.Wrap(err, "failed to release data directory lock")
	}
	return s.lockFile.Close()
}

// Path returns the snapshot file path for a collection key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load decodes the snapshot for key into the value pointed to by into.
// It returns false and leaves into untouched when no snapshot exists or the
// stored document is unparseable: corruption degrades to the caller's
// default value, never to an error. A corrupt snapshot is logged and then
// overwritten by the next Save.
func (s *Store) Load(key string, into any) bool {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("collection", key).Msg("snapshot unreadable, using defaults")
		}
		return false
	}
	if err := json.Unmarshal(data, into); err != nil {
		s.logger.Warn().Err(err).Str("collection", key).Msg("snapshot corrupt, using defaults")
		return false
	}
	return true
}

// Save overwrites the snapshot for key with v, atomically from the reader's
// perspective: the document is written to a temp file and renamed into
// place, so a concurrent Load never observes a partial write.
func (s *Store) Save(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return deckerrors.Wrapf(err, "failed to encode collection %s", key)
	}
	if err := atomic.WriteFile(s.Path(key), bytes.NewReader(data)); err != nil {
		return deckerrors.Wrapf(err, "failed to write collection %s", key)
	}
	return nil
}
