package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the date format used for event dates.
const Layout = "2006-01-02"

var (
	weekdayRe   = regexp.MustCompile(`^(next|this)\s+(mon|monday|tue|tuesday|wed|wednesday|thu|thursday|fri|friday|sat|saturday|sun|sunday)\b`)
	inRe        = regexp.MustCompile(`^in\s+(\d+)\s+(day|days|week|weeks|month|months)\b`)
	fromNowRe   = regexp.MustCompile(`^(\d+)\s+(day|days|week|weeks|month|months)\s+from\s+(now|today)\b`)
	isoRe       = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	longDateRe  = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)
	shortDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})\b`)
	monthNameRe = regexp.MustCompile(`^(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|september|oct|october|nov|november|dec|december)\s+(\d{1,2})(?:,?\s+(\d{4}))?\b`)
)

type Parsed struct {
	Date time.Time
	Text string // Remaining text after the date expression
}

// String returns the date in Layout form.
func (p *Parsed) String() string {
	return p.Date.Format(Layout)
}

type Parser struct {
	now      time.Time
	location *time.Location
}

func NewParser() *Parser {
	return &Parser{
		now:      time.Now(),
		location: time.Local,
	}
}

func (p *Parser) SetNow(now time.Time) {
	p.now = now
}

// Parse reads a date expression from the start of input. Unlike a quick-add
// line with no date, input that does not start with a date is an error.
func (p *Parser) Parse(input string) (*Parsed, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}

	if date, text, ok := p.parseRelativeDate(input); ok {
		return &Parsed{Date: date, Text: text}, nil
	}
	if date, text, ok := p.parseAbsoluteDate(input); ok {
		return &Parsed{Date: date, Text: text}, nil
	}

	return nil, fmt.Errorf("no date found in %q", input)
}

// ParseQuick splits a quick-add line such as "tomorrow Dentist" into a date
// and a title. Lines without a leading date are dated today.
func (p *Parser) ParseQuick(input string) *Parsed {
	if parsed, err := p.Parse(input); err == nil {
		return parsed
	}
	return &Parsed{Date: p.today(), Text: strings.TrimSpace(input)}
}

// Normalize returns the Layout form of input when the whole input is a date
// expression, and input unchanged otherwise.
func (p *Parser) Normalize(input string) string {
	parsed, err := p.Parse(input)
	if err != nil || parsed.Text != "" {
		return input
	}
	return parsed.String()
}

func (p *Parser) parseRelativeDate(input string) (time.Time, string, bool) {
	lower := strings.ToLower(input)

	if hasWord(lower, "today") {
		return p.today(), strings.TrimSpace(input[5:]), true
	}

	if hasWord(lower, "tomorrow") {
		return p.today().AddDate(0, 0, 1), strings.TrimSpace(input[8:]), true
	}
	if hasWord(lower, "tmrw") {
		return p.today().AddDate(0, 0, 1), strings.TrimSpace(input[4:]), true
	}

	if hasWord(lower, "yesterday") {
		return p.today().AddDate(0, 0, -1), strings.TrimSpace(input[9:]), true
	}

	// Next/this weekday
	if matches := weekdayRe.FindStringSubmatch(lower); matches != nil {
		isNext := matches[1] == "next"
		weekday := p.parseWeekday(matches[2])
		date := p.findNextWeekday(weekday, isNext)
		return date, strings.TrimSpace(input[len(matches[0]):]), true
	}

	// In N days/weeks/months
	if matches := inRe.FindStringSubmatch(lower); matches != nil {
		n, _ := strconv.Atoi(matches[1])
		return p.offset(n, matches[2]), strings.TrimSpace(input[len(matches[0]):]), true
	}

	// N days/weeks/months from now
	if matches := fromNowRe.FindStringSubmatch(lower); matches != nil {
		n, _ := strconv.Atoi(matches[1])
		return p.offset(n, matches[2]), strings.TrimSpace(input[len(matches[0]):]), true
	}

	return time.Time{}, input, false
}

func (p *Parser) offset(n int, unit string) time.Time {
	date := p.today()
	switch {
	case strings.HasPrefix(unit, "day"):
		date = date.AddDate(0, 0, n)
	case strings.HasPrefix(unit, "week"):
		date = date.AddDate(0, 0, n*7)
	case strings.HasPrefix(unit, "month"):
		date = date.AddDate(0, n, 0)
	}
	return date
}

func (p *Parser) parseAbsoluteDate(input string) (time.Time, string, bool) {
	// YYYY-MM-DD
	if matches := isoRe.FindStringSubmatch(input); matches != nil {
		year, _ := strconv.Atoi(matches[1])
		month, _ := strconv.Atoi(matches[2])
		day, _ := strconv.Atoi(matches[3])
		if date, ok := p.date(year, month, day); ok {
			return date, strings.TrimSpace(input[len(matches[0]):]), true
		}
		return time.Time{}, input, false
	}

	// MM/DD/YYYY or MM-DD-YYYY
	if matches := longDateRe.FindStringSubmatch(input); matches != nil {
		month, _ := strconv.Atoi(matches[1])
		day, _ := strconv.Atoi(matches[2])
		year, _ := strconv.Atoi(matches[3])
		if date, ok := p.date(year, month, day); ok {
			return date, strings.TrimSpace(input[len(matches[0]):]), true
		}
		return time.Time{}, input, false
	}

	// MM/DD (assume current year)
	if matches := shortDateRe.FindStringSubmatch(input); matches != nil {
		month, _ := strconv.Atoi(matches[1])
		day, _ := strconv.Atoi(matches[2])
		if date, ok := p.date(p.now.Year(), month, day); ok {
			return date, strings.TrimSpace(input[len(matches[0]):]), true
		}
		return time.Time{}, input, false
	}

	// Month DD, YYYY or Month DD
	if matches := monthNameRe.FindStringSubmatch(strings.ToLower(input)); matches != nil {
		month := p.parseMonth(matches[1])
		day, _ := strconv.Atoi(matches[2])
		year := p.now.Year()
		if matches[3] != "" {
			year, _ = strconv.Atoi(matches[3])
		}
		if date, ok := p.date(year, int(month), day); ok {
			return date, strings.TrimSpace(input[len(matches[0]):]), true
		}
	}

	return time.Time{}, input, false
}

// date builds a date and rejects values time.Date would normalize, such as
// February 30.
func (p *Parser) date(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, p.location)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}

func (p *Parser) parseWeekday(s string) time.Weekday {
	switch s {
	case "mon", "monday":
		return time.Monday
	case "tue", "tuesday":
		return time.Tuesday
	case "wed", "wednesday":
		return time.Wednesday
	case "thu", "thursday":
		return time.Thursday
	case "fri", "friday":
		return time.Friday
	case "sat", "saturday":
		return time.Saturday
	default:
		return time.Sunday
	}
}

func (p *Parser) parseMonth(s string) time.Month {
	switch s {
	case "feb", "february":
		return time.February
	case "mar", "march":
		return time.March
	case "apr", "april":
		return time.April
	case "may":
		return time.May
	case "jun", "june":
		return time.June
	case "jul", "july":
		return time.July
	case "aug", "august":
		return time.August
	case "sep", "september":
		return time.September
	case "oct", "october":
		return time.October
	case "nov", "november":
		return time.November
	case "dec", "december":
		return time.December
	default:
		return time.January
	}
}

func (p *Parser) findNextWeekday(target time.Weekday, skipThisWeek bool) time.Time {
	date := p.today()
	daysUntilTarget := int(target - date.Weekday())

	if daysUntilTarget <= 0 || skipThisWeek {
		daysUntilTarget += 7
	}

	return date.AddDate(0, 0, daysUntilTarget)
}

func (p *Parser) today() time.Time {
	y, m, d := p.now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.location)
}

// hasWord reports whether s starts with word followed by a space or the end.
func hasWord(s, word string) bool {
	if !strings.HasPrefix(s, word) {
		return false
	}
	return len(s) == len(word) || s[len(word)] == ' ' || s[len(word)] == '\t'
}
