package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cwarden/eventlist/internal/config"
	"github.com/cwarden/eventlist/internal/dateparse"
	"github.com/cwarden/eventlist/internal/intent"
	"github.com/cwarden/eventlist/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ViewMode int

const (
	ViewCalendar ViewMode = iota
	ViewList
	ViewForm
	ViewGoto
	ViewConfirmDelete
	ViewHelp
)

const messageTimeout = 3 * time.Second

type Model struct {
	// Core components
	config     *config.Config
	store      *store.Store
	dispatcher *intent.Dispatcher
	parser     *dateparse.Parser
	notes      *Notifications
	logger     *slog.Logger

	// View state
	mode         ViewMode
	prevMode     ViewMode
	selectedDate time.Time
	state        intent.State
	cursor       int

	// Form state
	titleInput textinput.Model
	dateInput  textinput.Model
	gotoInput  textinput.Model
	formField  int
	editing    bool

	// UI state
	width     int
	height    int
	message   string
	messageID int

	styles Styles
}

type Styles struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Today    lipgloss.Style
	Weekend  lipgloss.Style
	Header   lipgloss.Style
	Event    lipgloss.Style
	Marked   lipgloss.Style
	Help     lipgloss.Style
	Message  lipgloss.Style
	Error    lipgloss.Style
	Border   lipgloss.Style
}

// Notifications collects messages from the store's notification sink so the
// model can show them in the status bar.
type Notifications struct {
	mu    sync.Mutex
	items []string
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

func (n *Notifications) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, message)
}

func (n *Notifications) drain() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	items := n.items
	n.items = nil
	return items
}

// StoreChangedMsg tells the model the backing file was reloaded.
type StoreChangedMsg struct{}

type messageTimeoutMsg struct {
	id int
}

// NewModel builds the UI over s. notes may be nil when notifications are
// routed elsewhere.
func NewModel(cfg *config.Config, s *store.Store, notes *Notifications, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	if notes == nil {
		notes = NewNotifications()
	}

	m := &Model{
		config:     cfg,
		store:      s,
		dispatcher: intent.NewDispatcher(s, logger),
		parser:     dateparse.NewParser(),
		notes:      notes,
		logger:     logger,
		mode:       ViewCalendar,
		titleInput: newInput("Title", 128),
		dateInput:  newInput("Date (e.g., 2023-12-24)", 64),
		gotoInput:  newInput("today, next fri, 3/15, 2024-01-01", 64),
		styles:     StylesFromConfig(cfg),
	}

	m.selectDate(time.Now())
	if err := s.LastLoadError(); err != nil {
		m.message = err.Error()
	}

	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	return ti
}

func DefaultStyles() Styles {
	return Styles{
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("220")).
			Bold(true),
		Today: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true),
		Weekend: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true).
			Underline(true),
		Event: lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")),
		Marked: lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Underline(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")),
	}
}

// StylesFromConfig applies the configured foreground colors to the defaults.
func StylesFromConfig(cfg *config.Config) Styles {
	s := DefaultStyles()
	if cfg == nil {
		return s
	}
	for element, color := range cfg.Colors {
		c := lipgloss.Color(color)
		switch element {
		case "normal":
			s.Normal = s.Normal.Foreground(c)
		case "today":
			s.Today = s.Today.Foreground(c)
		case "selected":
			s.Selected = s.Selected.Background(c)
		case "weekend":
			s.Weekend = s.Weekend.Foreground(c)
		case "event":
			s.Event = s.Event.Foreground(c)
			s.Marked = s.Marked.Foreground(c)
		case "header":
			s.Header = s.Header.Foreground(c)
		}
	}
	return s
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case StoreChangedMsg:
		m.apply(m.dispatcher.Dispatch(intent.Refresh{}))
		return m, m.showMessage("Events file changed on disk")

	case messageTimeoutMsg:
		if msg.id == m.messageID {
			m.message = ""
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Mode-specific handling
	switch m.mode {
	case ViewForm:
		return m.handleFormKeys(msg)
	case ViewGoto:
		return m.handleGotoKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmKeys(msg)
	case ViewHelp:
		m.mode = m.prevMode
		return m, nil
	}

	key := msg.String()
	switch m.config.Action(key) {
	case "quit":
		return m, tea.Quit

	case "help":
		m.prevMode = m.mode
		m.mode = ViewHelp
		return m, nil

	case "today":
		m.selectDate(time.Now())
		return m, nil

	case "new_event":
		m.openForm(intent.Form{Date: m.selectedDate.Format(dateparse.Layout)}, false)
		return m, textinput.Blink

	case "edit_event":
		event, ok := m.selectedEvent()
		if !ok {
			return m, m.showMessage("No event selected")
		}
		m.apply(m.dispatcher.Dispatch(intent.EditEvent{ID: event.ID}))
		m.openForm(m.state.Form, true)
		return m, textinput.Blink

	case "delete_event":
		event, ok := m.selectedEvent()
		if !ok {
			// Nothing selected
			return m, nil
		}
		if m.config.ConfirmDelete {
			m.prevMode = m.mode
			m.mode = ViewConfirmDelete
			return m, nil
		}
		return m, m.deleteEvent(event)

	case "goto_date":
		m.prevMode = m.mode
		m.mode = ViewGoto
		m.gotoInput.SetValue("")
		m.gotoInput.Focus()
		return m, textinput.Blink
	}

	if m.mode == ViewList {
		return m.handleListKeys(msg)
	}
	return m.handleCalendarKeys(msg)
}

func (m *Model) handleCalendarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case key == "right" || m.config.Action(key) == "next_day":
		m.selectDate(m.selectedDate.AddDate(0, 0, 1))
	case key == "left" || m.config.Action(key) == "prev_day":
		m.selectDate(m.selectedDate.AddDate(0, 0, -1))
	case key == "down" || m.config.Action(key) == "next_week":
		m.selectDate(m.selectedDate.AddDate(0, 0, 7))
	case key == "up" || m.config.Action(key) == "prev_week":
		m.selectDate(m.selectedDate.AddDate(0, 0, -7))
	case m.config.Action(key) == "next_month":
		m.selectDate(m.selectedDate.AddDate(0, 1, 0))
	case m.config.Action(key) == "prev_month":
		m.selectDate(m.selectedDate.AddDate(0, -1, 0))
	case key == "tab" || key == "enter":
		if len(m.state.Events) > 0 {
			m.mode = ViewList
		}
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.state.Events)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "tab", "esc":
		m.mode = ViewCalendar
	}
	return m, nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil

	case "tab", "shift+tab":
		m.formField = 1 - m.formField
		m.focusFormField()
		return m, nil

	case "enter":
		date := m.parser.Normalize(m.dateInput.Value())
		state := m.dispatcher.Dispatch(intent.AddEvent{Date: date, Title: m.titleInput.Value()})
		m.apply(state)

		var verr *store.ValidationError
		if errors.As(state.Err, &verr) {
			// Input stays for correction.
			if verr.Reason != "" {
				return m, m.showMessage("Invalid " + verr.Error())
			}
			return m, m.showMessage("Title and Date must be provided.")
		}
		m.closeForm()
		if state.Err != nil {
			return m, m.showMessage(fmt.Sprintf("Error: %v", state.Err))
		}
		return m, m.showNotifications(state.Message)
	}

	var cmd tea.Cmd
	if m.formField == 0 {
		m.titleInput, cmd = m.titleInput.Update(msg)
	} else {
		m.dateInput, cmd = m.dateInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleGotoKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.gotoInput.Blur()
		m.mode = m.prevMode
		return m, nil

	case "enter":
		m.gotoInput.Blur()
		m.mode = ViewCalendar
		parsed, err := m.parser.Parse(m.gotoInput.Value())
		if err != nil {
			return m, m.showMessage(fmt.Sprintf("Invalid date: %v", err))
		}
		m.selectDate(parsed.Date)
		return m, nil
	}

	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = m.prevMode
	if msg.String() != "y" && msg.String() != "Y" {
		return m, m.showMessage("Delete cancelled")
	}
	event, ok := m.selectedEvent()
	if !ok {
		return m, nil
	}
	return m, m.deleteEvent(event)
}

func (m *Model) deleteEvent(event store.Event) tea.Cmd {
	state := m.dispatcher.Dispatch(intent.DeleteEvent{ID: event.ID})
	m.apply(state)
	if len(m.state.Events) == 0 {
		m.mode = ViewCalendar
	}
	if state.Err != nil {
		return m.showMessage(fmt.Sprintf("Error: %v", state.Err))
	}
	return m.showMessage("Deleted " + event.Display())
}

func (m *Model) openForm(form intent.Form, editing bool) {
	m.prevMode = m.mode
	m.mode = ViewForm
	m.editing = editing
	m.titleInput.SetValue(form.Title)
	m.dateInput.SetValue(form.Date)
	m.titleInput.CursorEnd()
	m.dateInput.CursorEnd()
	m.formField = 0
	m.focusFormField()
}

func (m *Model) closeForm() {
	m.titleInput.Blur()
	m.dateInput.Blur()
	m.titleInput.SetValue("")
	m.dateInput.SetValue("")
	m.editing = false
	m.mode = m.prevMode
	if m.mode == ViewList && len(m.state.Events) == 0 {
		m.mode = ViewCalendar
	}
}

func (m *Model) focusFormField() {
	if m.formField == 0 {
		m.dateInput.Blur()
		m.titleInput.Focus()
	} else {
		m.titleInput.Blur()
		m.dateInput.Focus()
	}
}

// selectDate moves the calendar cursor and filters the list to that date.
func (m *Model) selectDate(date time.Time) {
	m.selectedDate = date
	m.apply(m.dispatcher.Dispatch(intent.Filter{Date: date.Format(dateparse.Layout)}))
	m.cursor = 0
	if m.mode == ViewList && len(m.state.Events) == 0 {
		m.mode = ViewCalendar
	}
}

func (m *Model) apply(state intent.State) {
	m.state = state
	if m.cursor >= len(state.Events) {
		m.cursor = len(state.Events) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selectedEvent returns the event under the list cursor. Nothing is selected
// unless the list has focus.
func (m *Model) selectedEvent() (store.Event, bool) {
	listFocused := m.mode == ViewList || (m.mode == ViewConfirmDelete && m.prevMode == ViewList)
	if !listFocused || len(m.state.Events) == 0 || m.cursor >= len(m.state.Events) {
		return store.Event{}, false
	}
	return m.state.Events[m.cursor], true
}

// showNotifications shows pending notifications, falling back to fallback.
func (m *Model) showNotifications(fallback string) tea.Cmd {
	notes := m.notes.drain()
	if len(notes) == 0 {
		return m.showMessage(fallback)
	}
	return m.showMessage(notes[len(notes)-1])
}

func (m *Model) showMessage(msg string) tea.Cmd {
	m.message = msg
	m.messageID++
	id := m.messageID
	return tea.Tick(messageTimeout, func(time.Time) tea.Msg {
		return messageTimeoutMsg{id: id}
	})
}
