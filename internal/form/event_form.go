package form

import (
	"strconv"
	"strings"
	"time"

	"eventplanner/local-app/internal/model"
)

// InputDateLayout is the minute-precision date typed by users.
const InputDateLayout = "2006-01-02T15:04"

// DefaultMaxAttendees prefills the capacity of a new event.
const DefaultMaxAttendees = 10

// EventForm holds the raw text of the create/edit event form.
type EventForm struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Date         string `json:"date" validate:"required"`
	Location     string `json:"location" validate:"required"`
	MaxAttendees string `json:"maxAttendees" validate:"required,numeric"`
}

var eventMessages = map[string]string{
	"title.required":        "El título es obligatorio",
	"description.required":  "La descripción es obligatoria",
	"date.required":         "La fecha es obligatoria",
	"location.required":     "La ubicación es obligatoria",
	"maxAttendees.required": "El número es obligatorio",
	"maxAttendees.numeric":  "El número es obligatorio",
}

// NewEventForm returns the empty creation form.
func NewEventForm() EventForm {
	return EventForm{MaxAttendees: strconv.Itoa(DefaultMaxAttendees)}
}

// EditEventForm prefills the form from an existing event.
func EditEventForm(e model.Event) EventForm {
	return EventForm{
		Title:        e.Title,
		Description:  e.Description,
		Date:         e.Date.In(time.Local).Format(InputDateLayout),
		Location:     e.Location,
		MaxAttendees: strconv.Itoa(e.MaxAttendees),
	}
}

// Parse validates the form against now and returns the data to send.
// Dates before the current minute are rejected.
func (f EventForm) Parse(now time.Time) (model.NewEventData, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Date = strings.TrimSpace(f.Date)
	f.Location = strings.TrimSpace(f.Location)
	f.MaxAttendees = strings.TrimSpace(f.MaxAttendees)

	c := newCollector("title", "description", "date", "location", "maxAttendees")
	if err := c.check(f, eventMessages); err != nil {
		return model.NewEventData{}, err
	}

	var date time.Time
	if !c.has("date") {
		parsed, err := ParseInputDate(f.Date)
		switch {
		case err != nil:
			c.add("date", "Formato de fecha no válido (AAAA-MM-DDTHH:MM)")
		case parsed.Before(now.In(time.Local).Truncate(time.Minute)):
			c.add("date", "No se pueden crear eventos en el pasado")
		default:
			date = parsed
		}
	}

	var maxAttendees int
	if !c.has("maxAttendees") {
		n, err := strconv.Atoi(f.MaxAttendees)
		switch {
		case err != nil:
			c.add("maxAttendees", "El número es obligatorio")
		case n < 1:
			c.add("maxAttendees", "Debe ser al menos 1")
		default:
			maxAttendees = n
		}
	}

	if err := c.err(); err != nil {
		return model.NewEventData{}, err
	}
	return model.NewEventData{
		Title:        f.Title,
		Description:  f.Description,
		Date:         date,
		Location:     f.Location,
		MaxAttendees: maxAttendees,
	}, nil
}

// ParseInputDate accepts local dates with or without seconds.
func ParseInputDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(InputDateLayout, s, time.Local)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation(model.DateLayout, s, time.Local)
}
