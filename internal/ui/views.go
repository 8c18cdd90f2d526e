package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/cwarden/eventlist/internal/dateparse"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

func (m *Model) View() string {
	if m.mode == ViewHelp {
		return m.viewHelp()
	}

	calendar := m.renderMiniCalendar()
	listWidth := m.width - lipgloss.Width(calendar) - 4
	if listWidth < 20 {
		listWidth = 40
	}
	list := m.renderEventList(listWidth)

	sections := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, calendar, "  ", list),
	}

	switch m.mode {
	case ViewForm:
		sections = append(sections, "", m.viewEventForm())
	case ViewGoto:
		sections = append(sections, "", m.viewGoto())
	case ViewConfirmDelete:
		sections = append(sections, "", m.viewConfirmDelete())
	}

	sections = append(sections, "", m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderMiniCalendar() string {
	var lines []string

	// Month/Year header
	lines = append(lines, m.styles.Header.Render(m.selectedDate.Format("January 2006")))

	weekStart := m.config.WeekStartDay
	var names []string
	for i := 0; i < 7; i++ {
		names = append(names, time.Weekday((int(weekStart) + i) % 7).String()[:2])
	}
	lines = append(lines, strings.Join(names, " "))

	// Calculate first visible day of the month grid
	firstDay := time.Date(m.selectedDate.Year(), m.selectedDate.Month(), 1, 0, 0, 0, 0, time.Local)
	startOffset := (int(firstDay.Weekday()) - int(weekStart) + 7) % 7
	day := firstDay.AddDate(0, 0, -startOffset)

	marked := make(map[string]bool)
	for _, date := range m.store.Dates() {
		if len(m.store.FilterByDate(date)) > 0 {
			marked[date] = true
		}
	}

	today := time.Now()
	for week := 0; week < 6; week++ {
		var days []string
		for weekday := 0; weekday < 7; weekday++ {
			dayStr := fmt.Sprintf("%2d", day.Day())

			switch {
			case sameDay(day, m.selectedDate):
				dayStr = m.styles.Selected.Render(dayStr)
			case day.Month() != m.selectedDate.Month():
				dayStr = m.styles.Help.Render(dayStr) // Dimmed
			case marked[day.Format(dateparse.Layout)]:
				dayStr = m.styles.Marked.Render(dayStr)
			case sameDay(day, today):
				dayStr = m.styles.Today.Render(dayStr)
			case day.Weekday() == time.Saturday || day.Weekday() == time.Sunday:
				dayStr = m.styles.Weekend.Render(dayStr)
			default:
				dayStr = m.styles.Normal.Render(dayStr)
			}

			days = append(days, dayStr)
			day = day.AddDate(0, 0, 1)
		}
		lines = append(lines, strings.Join(days, " "))

		// Stop if we've shown all days of the month
		if day.Month() != m.selectedDate.Month() && week > 3 {
			break
		}
	}

	return m.styles.Border.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderEventList(width int) string {
	var lines []string

	header := fmt.Sprintf("Events for %s", m.selectedDate.Format(m.config.DateFormat))
	lines = append(lines, m.styles.Header.Render(header))

	if len(m.state.Events) == 0 {
		lines = append(lines, m.styles.Help.Render("(no events)"))
	}

	for i, event := range m.state.Events {
		text := event.Display()
		if m.config.WrapText {
			text = wordwrap.String(text, width-2)
		}

		style := m.styles.Event
		if i == m.cursor && m.mode != ViewCalendar {
			style = m.styles.Selected
		}
		lines = append(lines, style.Render(text))
	}

	return m.styles.Border.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) viewEventForm() string {
	title := "New Event"
	if m.editing {
		title = "Edit Event (saves as a new event)"
	}

	sections := []string{
		m.styles.Header.Render(title),
		m.titleInput.View(),
		m.dateInput.View(),
		m.styles.Help.Render("Enter to save, Tab to switch field, Esc to cancel"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) viewGoto() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Normal.Render("Go to date:"),
		m.gotoInput.View(),
	)
}

func (m *Model) viewConfirmDelete() string {
	event, ok := m.selectedEvent()
	if !ok {
		return ""
	}
	return m.styles.Error.Render(fmt.Sprintf("Delete %q? (y/n)", event.Display()))
}

func (m *Model) viewHelp() string {
	line := func(action, desc string) string {
		keys := strings.Join(m.config.Keys(action), ",")
		return m.styles.Help.Render(fmt.Sprintf("  %-7s - %s", keys, desc))
	}

	help := []string{
		m.styles.Header.Render("Event List Help"),
		"",
		m.styles.Normal.Render("Navigation:"),
		line("prev_day", "Previous day"),
		line("next_day", "Next day"),
		line("prev_week", "Previous week"),
		line("next_week", "Next week"),
		line("prev_month", "Previous month"),
		line("next_month", "Next month"),
		line("today", "Today"),
		line("goto_date", "Go to date"),
		m.styles.Help.Render("  tab     - Switch between calendar and event list"),
		"",
		m.styles.Normal.Render("Actions:"),
		line("new_event", "New event"),
		line("edit_event", "Copy selected event into the form"),
		line("delete_event", "Delete selected event"),
		line("help", "Toggle help"),
		line("quit", "Quit"),
		"",
		m.styles.Help.Render("Press any key to return..."),
	}

	return lipgloss.JoinVertical(lipgloss.Left, help...)
}

func (m *Model) renderStatusBar() string {
	left := fmt.Sprintf(" %s | Events: %d | Total: %d",
		m.selectedDate.Format(m.config.DateFormat),
		len(m.state.Events),
		m.store.Len())

	right := "? for help | q to quit"

	if m.message != "" {
		right = m.styles.Message.Render(m.message)
	}

	width := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if width < 0 {
		width = 0
	}

	middle := strings.Repeat(" ", width)

	return m.styles.Help.Render(left + middle + right)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
