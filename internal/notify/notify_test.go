package notify

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationContent(t *testing.T) {
	n := Notification{Type: EventTypeCalendar, Data: "2024-01-01: New Year"}
	assert.Equal(t, "New event added: 2024-01-01: New Year of type Calendar Event", n.Content())
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	Console{W: &buf}.Notify("hello")
	assert.Equal(t, "Notification: hello\n", buf.String())

	// A console without a writer is silent.
	assert.NotPanics(t, func() { Console{}.Notify("hello") })
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	Log{Logger: logger}.Notify("added")
	assert.Contains(t, buf.String(), "msg=notification")
	assert.Contains(t, buf.String(), "message=added")
}

func TestMultiAndFunc(t *testing.T) {
	var got []string
	sink := Multi{
		Func(func(m string) { got = append(got, "a:"+m) }),
		nil,
		Func(func(m string) { got = append(got, "b:"+m) }),
	}
	sink.Notify("x")
	assert.Equal(t, []string{"a:x", "b:x"}, got)
}

func TestFromConfig(t *testing.T) {
	var buf bytes.Buffer

	sink, err := FromConfig("console", &buf, nil)
	require.NoError(t, err)
	sink.Notify("one")
	assert.Equal(t, "Notification: one\n", buf.String())

	sink, err = FromConfig("", &buf, nil)
	require.NoError(t, err)
	assert.IsType(t, Console{}, sink)

	sink, err = FromConfig("log", &buf, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, Log{}, sink)

	sink, err = FromConfig("none", &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, Discard, sink)

	_, err = FromConfig("pager", &buf, nil)
	assert.Error(t, err)
}
