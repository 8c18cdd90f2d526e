package notify

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// EventTypeCalendar is the type attached to notifications about new events.
const EventTypeCalendar = "Calendar Event"

// Sink receives one line of text per notification.
type Sink interface {
	Notify(message string)
}

// Notification describes something that happened to an event.
type Notification struct {
	Type string
	Data string
}

// Content returns the text delivered to a Sink.
func (n Notification) Content() string {
	return fmt.Sprintf("New event added: %s of type %s", n.Data, n.Type)
}

// Console writes notifications as "Notification: <message>" lines.
type Console struct {
	W io.Writer
}

func (c Console) Notify(message string) {
	if c.W == nil {
		return
	}
	fmt.Fprintf(c.W, "Notification: %s\n", message)
}

// Log forwards notifications to a structured logger at info level.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(message string) {
	if l.Logger == nil {
		return
	}
	l.Logger.Info("notification", "message", message)
}

// Func adapts a plain function to the Sink interface.
type Func func(message string)

func (f Func) Notify(message string) {
	if f != nil {
		f(message)
	}
}

// Multi fans a notification out to every sink in order.
type Multi []Sink

func (m Multi) Notify(message string) {
	for _, s := range m {
		if s != nil {
			s.Notify(message)
		}
	}
}

type discard struct{}

func (discard) Notify(string) {}

// Discard drops every notification.
var Discard Sink = discard{}

// FromConfig returns the sink named by kind: "console", "log" or "none".
func FromConfig(kind string, w io.Writer, logger *slog.Logger) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "console":
		return Console{W: w}, nil
	case "log":
		return Log{Logger: logger}, nil
	case "none", "off":
		return Discard, nil
	default:
		return nil, fmt.Errorf("unknown notification sink: %s", kind)
	}
}
