// Package shared reads, writes and watches the appointment counts document
// that the host application shares with the widget.
package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/calendar-widget-tui/internal/logger"
	"github.com/j-veylop/calendar-widget-tui/internal/models"
)

// ErrDocumentMissing is returned when the shared document does not exist yet.
var ErrDocumentMissing = errors.New("shared document missing")

const debounceInterval = 100 * time.Millisecond

// Event represents a shared document event.
type Event struct {
	Counts models.CountsByDate
	Error  error
	Type   EventType
}

// EventType defines the type of shared document event.
type EventType int

const (
	EventDocumentChanged EventType = iota
	EventDocumentRemoved
	EventDocumentWritten
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventDocumentChanged:
		return "changed"
	case EventDocumentRemoved:
		return "removed"
	case EventDocumentWritten:
		return "written"
	default:
		return "error"
	}
}

// Store gives access to the shared document and reports changes made to it
// by other processes.
type Store struct {
	lastRead      time.Time
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	path          string
	mu            sync.Mutex
	closeOnce     sync.Once
}

// New creates a store for the document at path and starts watching its
// directory. The document itself does not need to exist.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("shared document path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create shared directory: %w", err)
	}

	s := &Store{
		path:      path,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	return s, nil
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Events returns the event channel for subscribing to document changes.
func (s *Store) Events() <-chan Event {
	return s.eventChan
}

// LastRead returns when the document was last read successfully.
func (s *Store) LastRead() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRead
}

// Read loads the document from disk.
func (s *Store) Read() (models.CountsByDate, error) {
	counts, err := ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastRead = time.Now()
	s.mu.Unlock()

	return counts, nil
}

// Write replaces the document with counts.
func (s *Store) Write(counts models.CountsByDate) error {
	if err := WriteFile(s.path, counts); err != nil {
		return err
	}
	s.sendEvent(Event{Type: EventDocumentWritten, Counts: counts.Clone()})
	return nil
}

// ReadFile decodes the document at path.
func ReadFile(path string) (models.CountsByDate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentMissing, path)
		}
		return nil, fmt.Errorf("failed to read shared document: %w", err)
	}
	return Decode(data)
}

// Decode parses a document body and validates its keys and values.
func Decode(data []byte) (models.CountsByDate, error) {
	var counts models.CountsByDate
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("failed to parse shared document: %w", err)
	}
	if counts == nil {
		counts = make(models.CountsByDate)
	}
	if err := counts.Validate(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Encode renders counts the way they are stored: indented, keys sorted.
func Encode(counts models.CountsByDate) ([]byte, error) {
	if counts == nil {
		counts = make(models.CountsByDate)
	}
	data, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal counts: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile validates counts and atomically replaces the document at path.
func WriteFile(path string, counts models.CountsByDate) error {
	if err := counts.Validate(); err != nil {
		return err
	}

	data, err := Encode(counts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create shared directory: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

func (s *Store) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory so creation and replacement are seen too
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Store) watchLoop() {
	name := filepath.Base(s.path)

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.debounce()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Store) debounce() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
}

// handleFileChange re-reads the document after a burst of file events.
func (s *Store) handleFileChange() {
	select {
	case <-s.stopChan:
		return
	default:
	}

	counts, err := s.Read()
	switch {
	case errors.Is(err, ErrDocumentMissing):
		logger.Debug("shared document removed", "path", s.path)
		s.sendEvent(Event{Type: EventDocumentRemoved})
	case err != nil:
		logger.Warn("shared document unreadable", "path", s.path, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
	default:
		logger.Debug("shared document changed", "path", s.path, "entries", len(counts))
		s.sendEvent(Event{Type: EventDocumentChanged, Counts: counts})
	}
}

// sendEvent sends an event without blocking, dropping the oldest when full.
func (s *Store) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
