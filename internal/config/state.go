package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"
)

// ErrStateCorrupted indicates the view state file exists but contains invalid data.
var ErrStateCorrupted = errors.New("view state file corrupted")

// ViewStateVersion is the current schema version for the view state file.
const ViewStateVersion = 1

const stateFileName = "state.json"

// ViewState records where the user left a timeline so the next session can
// resume there.
type ViewState struct {
	// Source identifies the timeline, usually the joined absolute input paths.
	Source string `json:"source"`

	// SelectedID is the ID of the item that was selected on exit.
	SelectedID string `json:"selected_id,omitempty"`

	Mode      string    `json:"mode,omitempty"`
	Slideshow bool      `json:"slideshow"`
	UpdatedAt time.Time `json:"updated_at"`
}

type viewStateData struct {
	Version int                   `json:"version"`
	Views   map[string]*ViewState `json:"views"`
}

// ViewStateStore persists ViewState records as a JSON file guarded by a
// cross-process lockfile.
type ViewStateStore struct {
	mu       sync.RWMutex
	filePath string
	version  int
	views    map[string]*ViewState
}

// NewViewStateStore creates a store backed by filePath. An empty filePath uses
// state.json in the chronoline home directory.
func NewViewStateStore(filePath string) (*ViewStateStore, error) {
	if filePath == "" {
		dir, err := HomeDir()
		if err != nil {
			return nil, err
		}
		filePath = filepath.Join(dir, stateFileName)
	}

	return &ViewStateStore{
		filePath: filePath,
		version:  ViewStateVersion,
		views:    make(map[string]*ViewState),
	}, nil
}

func (s *ViewStateStore) lockFilePath() string {
	return s.filePath + ".lock"
}

// acquireFileLock acquires a cross-process advisory lockfile.
// Returns a cleanup function that releases the lock.
func (s *ViewStateStore) acquireFileLock() (func(), error) {
	lockPath := s.lockFilePath()

	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	const maxRetries = 10
	const retryDelay = 100 * time.Millisecond
	const staleLockAge = 30 * time.Second

	for range maxRetries {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			// PID for stale lock detection
			_, _ = fmt.Fprintf(f, "%d", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}

		if removeStaleLock(lockPath, staleLockAge) {
			continue
		}
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("could not acquire lock on %s after retries", lockPath)
}

// removeStaleLock removes lockPath when it is older than staleLockAge and its
// owner is gone. Returns true if the lock was removed.
func removeStaleLock(lockPath string, staleLockAge time.Duration) bool {
	info, statErr := os.Stat(lockPath)
	if statErr != nil || time.Since(info.ModTime()) <= staleLockAge {
		return false
	}
	if isLockHeldByLiveProcess(lockPath) {
		return false
	}
	_ = os.Remove(lockPath)
	return true
}

func isLockHeldByLiveProcess(lockPath string) bool {
	pidData, readErr := os.ReadFile(lockPath)
	if readErr != nil || len(pidData) == 0 {
		return false
	}
	var pid int
	if _, scanErr := fmt.Sscanf(string(pidData), "%d", &pid); scanErr != nil || pid <= 0 {
		return false
	}
	return processExists(pid) == nil
}

func processExists(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	// Signal 0 tests existence without delivering anything.
	return proc.Signal(syscall.Signal(0))
}

// Load reads the state file. A missing file leaves the store empty. A corrupt
// file or unknown version returns ErrStateCorrupted and empties the store. Null
// records are dropped.
func (s *ViewStateStore) Load() error {
	unlock, lockErr := s.acquireFileLock()
	if lockErr != nil {
		return fmt.Errorf("acquiring file lock: %w", lockErr)
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.views = make(map[string]*ViewState)
			return nil
		}
		return fmt.Errorf("reading view state file: %w", err)
	}

	var stored viewStateData
	if unmarshalErr := json.Unmarshal(data, &stored); unmarshalErr != nil {
		s.views = make(map[string]*ViewState)
		return fmt.Errorf("%w: %w", ErrStateCorrupted, unmarshalErr)
	}
	if stored.Version != ViewStateVersion {
		s.views = make(map[string]*ViewState)
		return fmt.Errorf("%w: unsupported version %d (expected %d)",
			ErrStateCorrupted, stored.Version, ViewStateVersion)
	}
	if stored.Views == nil {
		stored.Views = make(map[string]*ViewState)
	}
	for source, v := range stored.Views {
		if v == nil {
			delete(stored.Views, source)
		}
	}

	s.views = stored.Views
	s.version = stored.Version
	return nil
}

// Save writes the state file atomically via a temp file and rename.
func (s *ViewStateStore) Save() error {
	unlock, lockErr := s.acquireFileLock()
	if lockErr != nil {
		return fmt.Errorf("acquiring file lock: %w", lockErr)
	}
	defer unlock()

	s.mu.RLock()
	data, err := json.MarshalIndent(viewStateData{Version: s.version, Views: s.views}, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling view state: %w", err)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(s.filePath), 0o750); mkdirErr != nil {
		return fmt.Errorf("creating view state directory: %w", mkdirErr)
	}

	tmpPath := s.filePath + ".tmp"
	if writeErr := os.WriteFile(tmpPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("writing view state temp file: %w", writeErr)
	}
	if renameErr := os.Rename(tmpPath, s.filePath); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming view state temp file: %w", renameErr)
	}
	return nil
}

// Get returns a copy of the state recorded for source.
func (s *ViewStateStore) Get(source string) (ViewState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.views[source]
	if !ok || v == nil {
		return ViewState{}, false
	}
	return *v, true
}

// Set records state, keyed by its Source. A zero UpdatedAt is set to now.
func (s *ViewStateStore) Set(state ViewState) error {
	if state.Source == "" {
		return errors.New("view state source cannot be empty")
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[state.Source] = &state
	return nil
}

// Delete removes the state recorded for source.
func (s *ViewStateStore) Delete(source string) error {
	if source == "" {
		return errors.New("view state source cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, source)
	return nil
}

// Sources returns the recorded sources, most recently updated first.
func (s *ViewStateStore) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make([]string, 0, len(s.views))
	for k := range s.views {
		sources = append(sources, k)
	}
	sort.Slice(sources, func(i, j int) bool {
		a, b := s.views[sources[i]], s.views[sources[j]]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return sources[i] < sources[j]
	})
	return sources
}

// Prune drops records not updated since before. Returns the number removed.
func (s *ViewStateStore) Prune(before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, v := range s.views {
		if v.UpdatedAt.Before(before) {
			delete(s.views, k)
			removed++
		}
	}
	return removed
}

// FilePath returns the file path of the store.
func (s *ViewStateStore) FilePath() string {
	return s.filePath
}

// Count returns the number of records.
func (s *ViewStateStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}
