package store

import (
	"fmt"
)

// Event is one calendar entry. ID is generated when the event enters the
// index and is not persisted.
type Event struct {
	ID    string
	Date  string
	Title string
}

// Display returns the "date: title" form shown in event lists.
func (e Event) Display() string {
	return e.Date + ": " + e.Title
}

// Record is the on-disk form of an event.
type Record struct {
	Date  string `json:"date"`
	Title string `json:"title"`
}

// ValidationError is returned when an event is submitted with a blank or
// unstorable field. An empty Reason means the field was blank.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s must be provided", e.Field)
}

// PersistenceReadError reports a backing file that exists but could not be
// read as a list of events.
type PersistenceReadError struct {
	Path string
	Err  error
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("error reading events file %s: %v", e.Path, e.Err)
}

func (e *PersistenceReadError) Unwrap() error {
	return e.Err
}
