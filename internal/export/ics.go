// Package export writes event lists in iCalendar format.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	ical "github.com/arran4/golang-ical"

	"eventplanner/local-app/internal/model"
)

const (
	productID     = "-//eventplanner//local-app//ES"
	eventDuration = 2 * time.Hour
)

// UID returns the iCalendar UID of an event.
func UID(e model.Event) string {
	return e.ID + "@eventplanner"
}

// Calendar builds a PUBLISH calendar with one VEVENT per event.
// Events have no end time, so each is given a fixed two-hour slot.
func Calendar(events []model.Event, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Eventos")

	for _, e := range events {
		ve := cal.AddEvent(UID(e))
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(e.Date)
		ve.SetEndAt(e.Date.Add(eventDuration))
		ve.SetSummary(e.Title)
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Organizer.Email != "" {
			ve.SetOrganizer("mailto:"+e.Organizer.Email, ical.WithCN(e.Organizer.DisplayName))
		}
	}
	return cal
}

// Write serializes the events to w.
func Write(w io.Writer, events []model.Event, stamp time.Time) error {
	if _, err := io.WriteString(w, Calendar(events, stamp).Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

// WriteFile writes the events to path, replacing any existing file.
func WriteFile(path string, events []model.Event, stamp time.Time) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, events, stamp); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
