// Package intent turns user actions into EventStore calls and returns the
// state a presentation layer should render.
package intent

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwarden/eventlist/internal/store"
)

// Intent is a user action understood by the Dispatcher.
type Intent interface {
	isIntent()
}

// AddEvent submits the add/edit form.
type AddEvent struct {
	Date  string
	Title string
}

// EditEvent copies the selected event into the form.
type EditEvent struct {
	ID string
}

// DeleteEvent removes the selected event. An empty ID means nothing is
// selected.
type DeleteEvent struct {
	ID string
}

// Filter shows the events of one date.
type Filter struct {
	Date string
}

// Refresh re-reads the displayed date from the store, e.g. after the
// backing file changed on disk.
type Refresh struct{}

func (AddEvent) isIntent()    {}
func (EditEvent) isIntent()   {}
func (DeleteEvent) isIntent() {}
func (Filter) isIntent()      {}
func (Refresh) isIntent()     {}

// Form holds the add/edit input fields.
type Form struct {
	Date  string
	Title string
}

// State is what the presentation layer renders after each intent.
type State struct {
	Date    string
	Events  []store.Event
	Form    Form
	Err     error
	Message string
}

type Dispatcher struct {
	store  *store.Store
	logger *slog.Logger
	state  State
}

func NewDispatcher(s *store.Store, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:  s,
		logger: logger,
		state:  State{Events: []store.Event{}},
	}
}

// State returns the current state without dispatching anything.
func (d *Dispatcher) State() State {
	return d.state
}

// Dispatch applies an intent and returns the resulting state. Err and
// Message describe only the last intent.
func (d *Dispatcher) Dispatch(i Intent) State {
	d.state.Err = nil
	d.state.Message = ""

	switch i := i.(type) {
	case Filter:
		d.state.Date = i.Date
		d.refresh()

	case Refresh:
		d.refresh()

	case AddEvent:
		d.state.Form = Form{Date: i.Date, Title: i.Title}
		event, err := d.store.AddEvent(i.Date, i.Title)
		var verr *store.ValidationError
		switch {
		case errors.As(err, &verr):
			d.state.Err = err
			return d.state
		case err != nil:
			d.logger.Error("add event failed", "date", i.Date, "error", err)
			d.state.Err = err
		default:
			d.state.Message = fmt.Sprintf("Added %s", event.Display())
		}
		d.state.Form = Form{}
		if event.Date == d.state.Date {
			d.refresh()
		}

	case EditEvent:
		date, title, ok := d.store.EditEvent(i.ID)
		if ok {
			d.state.Form = Form{Date: date, Title: title}
		}

	case DeleteEvent:
		if i.ID == "" {
			return d.state
		}
		if err := d.store.DeleteEvent(i.ID); err != nil {
			d.logger.Error("delete event failed", "id", i.ID, "error", err)
			d.state.Err = err
		}
		d.refresh()

	default:
		d.state.Err = fmt.Errorf("unknown intent %T", i)
	}

	return d.state
}

func (d *Dispatcher) refresh() {
	if d.state.Date == "" {
		d.state.Events = []store.Event{}
		return
	}
	d.state.Events = d.store.FilterByDate(d.state.Date)
}
