package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"notemaster/pkg/models"
	"notemaster/pkg/performance"
)

// TokenStore persists the session credential in a local file, the desktop
// counterpart of browser local storage. Changes made by other processes (a
// CLI login, another running instance) are picked up by Watch.
type TokenStore struct {
	path      string
	mutex     sync.RWMutex
	watcher   *fsnotify.Watcher
	debouncer *performance.Debouncer
	lastWrite time.Time
}

// NewTokenStore creates a token store backed by path
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{
		path:      path,
		debouncer: performance.NewDebouncer(50 * time.Millisecond),
	}
}

// Path returns the token file path
func (s *TokenStore) Path() string {
	return s.path
}

// Load reads the stored session. A missing file yields a nil session.
func (s *TokenStore) Load(_ context.Context) (*models.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.read()
}

func (s *TokenStore) read() (*models.Session, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	if session.Token == "" {
		return nil, nil
	}
	return &session, nil
}

// Save writes the session atomically with owner-only permissions
func (s *TokenStore) Save(_ context.Context, session *models.Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".token-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp token file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace token file: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		s.lastWrite = info.ModTime()
	}
	return nil
}

// Clear removes the stored session
func (s *TokenStore) Clear(_ context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	s.lastWrite = time.Time{}
	return nil
}

// Watch calls fn with the reloaded session whenever another process changes
// the token file. fn receives nil after a logout elsewhere. Watching stops
// when ctx is done or Close is called.
func (s *TokenStore) Watch(ctx context.Context, fn func(*models.Session)) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: Save replaces the file by rename.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	s.mutex.Lock()
	s.watcher = watcher
	s.mutex.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				s.Close()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				s.debouncer.Debounce("token", func() { s.reload(fn) })
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Token watcher error: %v", err)
			}
		}
	}()
	return nil
}

func (s *TokenStore) reload(fn func(*models.Session)) {
	s.mutex.RLock()
	info, statErr := os.Stat(s.path)
	own := statErr == nil && info.ModTime().Equal(s.lastWrite)
	session, err := s.read()
	s.mutex.RUnlock()

	if own {
		return
	}
	if err != nil {
		log.Printf("Warning: ignoring unreadable token file: %v", err)
		return
	}
	log.Printf("Session changed on disk: %s", s.path)
	fn(session)
}

// Close stops watching
func (s *TokenStore) Close() error {
	s.debouncer.Clear()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}
