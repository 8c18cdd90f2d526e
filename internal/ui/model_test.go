package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwarden/eventlist/internal/config"
	"github.com/cwarden/eventlist/internal/notify"
	"github.com/cwarden/eventlist/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

var baseDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)

func newTestModel(t *testing.T) (*Model, *store.Store) {
	t.Helper()
	notes := NewNotifications()
	s := store.New(filepath.Join(t.TempDir(), "events.json"), store.WithNotifier(notify.Multi{notes}))
	s.Load()

	m := NewModel(config.DefaultConfig(), s, notes, nil)
	m.width = 100
	m.height = 30
	m.selectDate(baseDate)
	return m, s
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func TestCalendarNavigation(t *testing.T) {
	tests := []struct {
		keys     []string
		expected time.Time
	}{
		{keys: []string{"l"}, expected: baseDate.AddDate(0, 0, 1)},
		{keys: []string{"h", "h"}, expected: baseDate.AddDate(0, 0, -2)},
		{keys: []string{"j"}, expected: baseDate.AddDate(0, 0, 7)},
		{keys: []string{"k"}, expected: baseDate.AddDate(0, 0, -7)},
		{keys: []string{">"}, expected: baseDate.AddDate(0, 1, 0)},
		{keys: []string{"<", "l"}, expected: baseDate.AddDate(0, -1, 1)},
		{keys: []string{"down"}, expected: baseDate.AddDate(0, 0, 7)},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.keys, ","), func(t *testing.T) {
			m, _ := newTestModel(t)
			press(m, tt.keys...)

			if !sameDay(m.selectedDate, tt.expected) {
				t.Errorf("Date mismatch: got %v, want %v", m.selectedDate, tt.expected)
			}
			if m.state.Date != tt.expected.Format("2006-01-02") {
				t.Errorf("Filter not applied: got %s", m.state.Date)
			}
		})
	}
}

func TestSelectingDateFiltersEvents(t *testing.T) {
	m, s := newTestModel(t)
	if _, err := s.AddEvent("2024-03-16", "Gym"); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	if _, err := s.AddEvent("2024-03-16", "Dentist"); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}

	press(m, "l")

	if len(m.state.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(m.state.Events))
	}
	if m.state.Events[0].Title != "Gym" || m.state.Events[1].Title != "Dentist" {
		t.Errorf("Events out of order: %v", m.state.Events)
	}
}

func TestAddEventThroughForm(t *testing.T) {
	m, s := newTestModel(t)

	press(m, "a")
	if m.mode != ViewForm {
		t.Fatalf("Expected form mode, got %v", m.mode)
	}
	if m.dateInput.Value() != "2024-03-15" {
		t.Errorf("Date should be pre-filled with the selected date, got %q", m.dateInput.Value())
	}

	press(m, "N", "e", "w")
	if m.titleInput.Value() != "New" {
		t.Errorf("Typing should go to the title field, got %q", m.titleInput.Value())
	}

	press(m, "enter")

	if m.mode != ViewCalendar {
		t.Errorf("Form should close after a successful add, mode %v", m.mode)
	}
	events := s.FilterByDate("2024-03-15")
	if len(events) != 1 || events[0].Title != "New" {
		t.Fatalf("Event not stored: %v", events)
	}
	if len(m.state.Events) != 1 {
		t.Errorf("List should show the new event")
	}
	if !strings.Contains(m.message, "New event added: 2024-03-15: New") {
		t.Errorf("Expected notification in status bar, got %q", m.message)
	}
}

func TestAddEventNormalizesDate(t *testing.T) {
	m, s := newTestModel(t)

	press(m, "a")
	m.titleInput.SetValue("Review")
	m.dateInput.SetValue("12/25/2024")
	press(m, "enter")

	if len(s.FilterByDate("2024-12-25")) != 1 {
		t.Errorf("Expected event on 2024-12-25, got %v", s.All())
	}
}

func TestAddEventValidationKeepsForm(t *testing.T) {
	m, s := newTestModel(t)

	press(m, "a")
	m.titleInput.SetValue("   ")
	press(m, "enter")

	if m.mode != ViewForm {
		t.Errorf("Form should stay open on validation error, mode %v", m.mode)
	}
	if m.message != "Title and Date must be provided." {
		t.Errorf("Wrong message: %q", m.message)
	}
	if m.titleInput.Value() != "   " || m.dateInput.Value() != "2024-03-15" {
		t.Errorf("Input should be left for correction")
	}
	if s.Len() != 0 {
		t.Errorf("No event should be created")
	}
}

func TestFormCancel(t *testing.T) {
	m, s := newTestModel(t)

	press(m, "a")
	m.titleInput.SetValue("Never saved")
	press(m, "esc")

	if m.mode != ViewCalendar {
		t.Errorf("Expected calendar mode, got %v", m.mode)
	}
	if s.Len() != 0 {
		t.Errorf("Cancelled form must not add an event")
	}
}

func TestEditPrefillsAndAddsNew(t *testing.T) {
	m, s := newTestModel(t)
	if _, err := s.AddEvent("2024-03-15", "Talk: intro"); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	m.selectDate(baseDate)

	press(m, "tab", "e")

	if m.mode != ViewForm || !m.editing {
		t.Fatalf("Expected edit form, mode %v", m.mode)
	}
	if m.titleInput.Value() != "Talk: intro" || m.dateInput.Value() != "2024-03-15" {
		t.Errorf("Form not pre-filled: %q %q", m.titleInput.Value(), m.dateInput.Value())
	}

	m.titleInput.SetValue("Talk: outro")
	press(m, "enter")

	events := s.FilterByDate("2024-03-15")
	if len(events) != 2 {
		t.Fatalf("Edit should add a new event and keep the original, got %v", events)
	}
}

func TestEditWithoutSelection(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "e")

	if m.mode != ViewCalendar {
		t.Errorf("Edit without an event should not open the form")
	}
	if m.message != "No event selected" {
		t.Errorf("Wrong message: %q", m.message)
	}
}

func TestDeleteWithConfirmation(t *testing.T) {
	m, s := newTestModel(t)
	if _, err := s.AddEvent("2024-03-15", "One"); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	if _, err := s.AddEvent("2024-03-15", "Two"); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	m.selectDate(baseDate)

	press(m, "tab", "down", "d")
	if m.mode != ViewConfirmDelete {
		t.Fatalf("Expected confirmation, got mode %v", m.mode)
	}

	press(m, "n")
	if s.Len() != 2 {
		t.Fatalf("Cancelled delete removed an event")
	}

	press(m, "d", "y")
	events := s.FilterByDate("2024-03-15")
	if len(events) != 1 || events[0].Title != "One" {
		t.Errorf("Expected only One to remain, got %v", events)
	}
	if len(m.state.Events) != 1 {
		t.Errorf("Displayed list not updated: %v", m.state.Events)
	}
}

func TestDeleteWithoutConfirmation(t *testing.T) {
	m, s := newTestModel(t)
	m.config.ConfirmDelete = false
	if _, err := s.AddEvent("2024-03-15", "Only"); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	m.selectDate(baseDate)

	press(m, "tab", "d")

	if s.Len() != 0 {
		t.Errorf("Event should be deleted")
	}
	if m.mode != ViewCalendar {
		t.Errorf("Empty list should return focus to the calendar")
	}
}

func TestDeleteFromCalendarIsNoop(t *testing.T) {
	m, s := newTestModel(t)
	m.config.ConfirmDelete = false
	for _, title := range []string{"A", "B"} {
		if _, err := s.AddEvent("2024-03-15", title); err != nil {
			t.Fatalf("AddEvent failed: %v", err)
		}
	}
	m.selectDate(baseDate)

	press(m, "d")

	if s.Len() != 2 {
		t.Errorf("No event is selected while the calendar has focus, got %d events", s.Len())
	}
	if m.mode != ViewCalendar {
		t.Errorf("Expected calendar mode, got %v", m.mode)
	}
}

func TestEditFromCalendarIsNoop(t *testing.T) {
	m, s := newTestModel(t)
	if _, err := s.AddEvent("2024-03-15", "A"); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	m.selectDate(baseDate)

	press(m, "e")

	if m.mode != ViewCalendar {
		t.Errorf("Edit without a selected event should stay on the calendar, got %v", m.mode)
	}
}

func TestDeleteNothingSelectedIsNoop(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "d")

	if m.mode != ViewCalendar {
		t.Errorf("Delete with no selection should do nothing, mode %v", m.mode)
	}
}

func TestGotoDate(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "g")
	if m.mode != ViewGoto {
		t.Fatalf("Expected goto mode, got %v", m.mode)
	}
	m.gotoInput.SetValue("2023-12-24")
	press(m, "enter")

	if m.state.Date != "2023-12-24" {
		t.Errorf("Expected 2023-12-24, got %s", m.state.Date)
	}

	press(m, "g")
	m.gotoInput.SetValue("not a date")
	press(m, "enter")
	if m.state.Date != "2023-12-24" || !strings.HasPrefix(m.message, "Invalid date") {
		t.Errorf("Invalid input should keep the date and report: %q", m.message)
	}
}

func TestStoreChangedRefreshesList(t *testing.T) {
	m, s := newTestModel(t)
	if _, err := s.AddEvent("2024-03-15", "From disk"); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}

	m.Update(StoreChangedMsg{})

	if len(m.state.Events) != 1 {
		t.Errorf("Expected refreshed list, got %v", m.state.Events)
	}
}

func TestMessageTimeout(t *testing.T) {
	m, _ := newTestModel(t)
	m.showMessage("first")
	stale := m.messageID
	m.showMessage("second")

	m.Update(messageTimeoutMsg{id: stale})
	if m.message != "second" {
		t.Errorf("Stale timeout cleared the message")
	}

	m.Update(messageTimeoutMsg{id: m.messageID})
	if m.message != "" {
		t.Errorf("Message should be cleared")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("Expected QuitMsg")
	}
}

func TestViewRendersEvents(t *testing.T) {
	m, s := newTestModel(t)
	if _, err := s.AddEvent("2024-03-15", "Family dinner"); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	m.selectDate(baseDate)

	view := m.View()
	if !strings.Contains(view, "March 2024") {
		t.Error("Calendar header missing")
	}
	if !strings.Contains(view, "2024-03-15: Family dinner") {
		t.Error("Event missing from list")
	}
	if !strings.Contains(view, "Events: 1") {
		t.Error("Status bar count missing")
	}

	press(m, "?")
	if !strings.Contains(m.View(), "Event List Help") {
		t.Error("Help view missing")
	}
	press(m, "x")
	if m.mode != ViewCalendar {
		t.Errorf("Any key should leave help, mode %v", m.mode)
	}
}
