package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cwarden/eventlist/internal/notify"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Store owns the date -> events index and keeps it in sync with a JSON file.
//
// Dates are kept in first-seen order and events within a date in insertion
// order. A date stays in the index after its last event is deleted.
type Store struct {
	path     string
	logger   *slog.Logger
	notifier notify.Sink

	mu       sync.Mutex
	dates    []string
	byDate   map[string][]Event
	lastData []byte
	loadErr  error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for the store
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier sets the sink that is told about every added event.
func WithNotifier(sink notify.Sink) Option {
	return func(s *Store) {
		if sink != nil {
			s.notifier = sink
		}
	}
}

// New creates an empty store backed by the file at path. Call Load to read it.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		notifier: notify.Discard,
		byDate:   make(map[string][]Event),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the index with the contents of the backing file. A missing
// file leaves the store empty. A file that cannot be parsed is logged and also
// leaves the store empty; the error is available from LastLoadError.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	s.loadErr = nil

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.lastData = nil
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		s.recoverLoad(err)
		return
	}

	s.lastData = data
	if err := s.populate(data); err != nil {
		s.recoverLoad(err)
		return
	}
	s.logger.Debug("loaded events", "path", s.path, "count", s.countLocked())
}

func (s *Store) recoverLoad(err error) {
	readErr := &PersistenceReadError{Path: s.path, Err: err}
	s.reset()
	s.loadErr = readErr
	s.logger.Warn("ignoring unreadable events file", "path", s.path, "error", err)
}

// LastLoadError returns the error recovered by the most recent Load, or nil.
func (s *Store) LastLoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Reload re-reads the backing file if its contents differ from what this
// store last read or wrote. It reports whether the index was replaced.
func (s *Store) Reload() (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to read events file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A missing file and an empty file are different states.
	if bytes.Equal(data, s.lastData) && (data == nil) == (s.lastData == nil) {
		return false, nil
	}

	s.reset()
	s.loadErr = nil
	s.lastData = data
	if data == nil {
		// File was removed
		return true, nil
	}
	if err := s.populate(data); err != nil {
		s.recoverLoad(err)
		return true, s.loadErr
	}
	return true, nil
}

// populate decodes data and fills the index. The index is untouched unless
// every record is valid.
func (s *Store) populate(data []byte) error {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("events file is not a JSON array")
	}

	records := make([]Record, 0, len(raw))
	for i, item := range raw {
		date, ok := item["date"].(string)
		if !ok {
			return fmt.Errorf("record %d: missing or non-string date", i)
		}
		title, ok := item["title"].(string)
		if !ok {
			return fmt.Errorf("record %d: missing or non-string title", i)
		}
		records = append(records, Record{Date: date, Title: title})
	}

	for _, r := range records {
		s.appendLocked(Event{ID: uuid.NewString(), Date: r.Date, Title: r.Title})
	}
	return nil
}

func (s *Store) reset() {
	s.dates = nil
	s.byDate = make(map[string][]Event)
}

func (s *Store) appendLocked(e Event) {
	if _, ok := s.byDate[e.Date]; !ok {
		s.dates = append(s.dates, e.Date)
	}
	s.byDate[e.Date] = append(s.byDate[e.Date], e)
}

// AddEvent appends a new event, saves the file and then notifies the sink.
// Blank fields yield a *ValidationError and leave the index unchanged.
func (s *Store) AddEvent(date, title string) (Event, error) {
	if strings.TrimSpace(title) == "" {
		return Event{}, &ValidationError{Field: "title"}
	}
	if strings.TrimSpace(date) == "" {
		return Event{}, &ValidationError{Field: "date"}
	}
	if !utf8.ValidString(title) {
		return Event{}, &ValidationError{Field: "title", Reason: "must be valid UTF-8"}
	}
	if !utf8.ValidString(date) {
		return Event{}, &ValidationError{Field: "date", Reason: "must be valid UTF-8"}
	}

	event := Event{ID: uuid.NewString(), Date: date, Title: title}

	s.mu.Lock()
	s.appendLocked(event)
	err := s.saveLocked()
	s.mu.Unlock()

	if err != nil {
		return event, err
	}

	n := notify.Notification{Type: notify.EventTypeCalendar, Data: event.Display()}
	s.notifier.Notify(n.Content())
	return event, nil
}

// EditEvent returns the fields of the event with the given id so a form can
// be pre-filled. The index is not modified; submitting the form adds a new
// event.
func (s *Store) EditEvent(id string) (date, title string, ok bool) {
	e, found := s.Get(id).Get()
	if !found {
		return "", "", false
	}
	return e.Date, e.Title, true
}

// DeleteEvent removes the event with the given id and saves the file.
// An unknown or empty id is a no-op.
func (s *Store) DeleteEvent(id string) error {
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, date := range s.dates {
		events := s.byDate[date]
		for i, e := range events {
			if e.ID != id {
				continue
			}
			s.byDate[date] = append(events[:i:i], events[i+1:]...)
			return s.saveLocked()
		}
	}
	return nil
}

// Get returns the event with the given id.
func (s *Store) Get(id string) mo.Option[Event] {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, date := range s.dates {
		for _, e := range s.byDate[date] {
			if e.ID == id {
				return mo.Some(e)
			}
		}
	}
	return mo.None[Event]()
}

// Lookup returns the first event whose display string equals display. Dates
// may themselves contain ": ", so every date prefixing display is tried.
func (s *Store) Lookup(display string) mo.Option[Event] {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, date := range s.dates {
		if !strings.HasPrefix(display, date+": ") {
			continue
		}
		for _, e := range s.byDate[date] {
			if e.Display() == display {
				return mo.Some(e)
			}
		}
	}
	return mo.None[Event]()
}

// FilterByDate returns the events for date in insertion order.
func (s *Store) FilterByDate(date string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]Event, len(s.byDate[date]))
	copy(events, s.byDate[date])
	return events
}

// Dates returns every date key in first-seen order, including dates whose
// events have all been deleted.
func (s *Store) Dates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	dates := make([]string, len(s.dates))
	copy(dates, s.dates)
	return dates
}

// All returns every event in index order.
func (s *Store) All() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []Event
	for _, date := range s.dates {
		events = append(events, s.byDate[date]...)
	}
	return events
}

// Len returns the number of events in the index.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

func (s *Store) countLocked() int {
	n := 0
	for _, events := range s.byDate {
		n += len(events)
	}
	return n
}

// Records flattens the index into its on-disk form.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordsLocked()
}

func (s *Store) recordsLocked() []Record {
	records := make([]Record, 0, s.countLocked())
	for _, date := range s.dates {
		for _, e := range s.byDate[date] {
			records = append(records, Record{Date: e.Date, Title: e.Title})
		}
	}
	return records
}

// SaveAll rewrites the backing file from the index.
func (s *Store) SaveAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	data, err := json.Marshal(s.recordsLocked())
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to save events: %w", err)
	}

	s.lastData = data
	s.logger.Debug("saved events", "path", s.path, "bytes", len(data))
	return nil
}

// writeFileAtomic writes data to a temp file next to path, syncs it and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0o644)
}
