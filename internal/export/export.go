package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cwarden/eventlist/internal/dateparse"
	"github.com/cwarden/eventlist/internal/store"

	"github.com/emersion/go-ical"
)

const productID = "-//eventlist//Event List//EN"

// ICS writes events as an iCalendar document with one all-day VEVENT per
// event. Events whose date is not YYYY-MM-DD are left out; the number
// written is returned.
func ICS(w io.Writer, events []store.Event, now time.Time) (int, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	written := 0
	for _, e := range events {
		start, err := time.Parse(dateparse.Layout, e.Date)
		if err != nil {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, e.ID)
		event.Props.SetText(ical.PropSummary, e.Title)
		event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		event.Props.Set(dateProp(ical.PropDateTimeStart, start))
		event.Props.Set(dateProp(ical.PropDateTimeEnd, start.AddDate(0, 0, 1)))

		cal.Children = append(cal.Children, event.Component)
		written++
	}

	// Nothing to write for an empty calendar.
	if written == 0 {
		return 0, nil
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return 0, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return written, nil
}

func dateProp(name string, t time.Time) *ical.Prop {
	return &ical.Prop{
		Name:   name,
		Value:  t.Format("20060102"),
		Params: ical.Params{ical.ParamValue: []string{string(ical.ValueDate)}},
	}
}

// JSON writes records in the backing file format, indented for reading.
func JSON(w io.Writer, records []store.Record) error {
	if records == nil {
		records = []store.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}
	return nil
}
