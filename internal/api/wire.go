package api

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"eventplanner/local-app/internal/model"
)

// flexID accepts ids sent either as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*f = flexID(b)
	return nil
}

// wireTime is a local date-time without zone, e.g. 2025-11-15T21:00:00.
type wireTime time.Time

var wireTimeLayouts = []string{model.DateLayout, "2006-01-02T15:04", time.RFC3339Nano}

func (t *wireTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid date %s: %w", b, err)
	}
	for _, layout := range wireTimeLayouts {
		parsed, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			*t = wireTime(parsed.In(time.Local))
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func formatDate(t time.Time) string {
	return t.In(time.Local).Format(model.DateLayout)
}

type userDTO struct {
	ID       flexID `json:"id"`
	FullName string `json:"fullName"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func (d userDTO) toUser() model.User {
	display := d.FullName
	if display == "" {
		display = d.Name
	}
	if display == "" {
		display = d.Username
	}
	return model.User{
		ID:          string(d.ID),
		DisplayName: display,
		Username:    d.Username,
		Email:       d.Email,
		Phone:       d.Phone,
		Role:        model.ParseRole(d.Role),
	}
}

type eventDTO struct {
	ID           flexID   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Date         wireTime `json:"date"`
	Location     string   `json:"location"`
	Organizer    userDTO  `json:"organizer"`
	Attendees    []flexID `json:"attendees"`
	MaxAttendees int      `json:"maxAttendees"`
}

func (d eventDTO) toEvent() model.Event {
	ids := make([]string, len(d.Attendees))
	for i, id := range d.Attendees {
		ids[i] = string(id)
	}
	return model.Event{
		ID:           string(d.ID),
		Title:        d.Title,
		Description:  d.Description,
		Date:         time.Time(d.Date),
		Location:     d.Location,
		Organizer:    d.Organizer.toUser(),
		Attendees:    model.NewAttendeeSet(ids...),
		MaxAttendees: d.MaxAttendees,
	}
}

type eventRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	Location     string `json:"location"`
	MaxAttendees int    `json:"maxAttendees"`
	OrganizerID  string `json:"organizerId,omitempty"`
}

func newEventRequest(data model.NewEventData, organizerID string) eventRequest {
	return eventRequest{
		Title:        data.Title,
		Description:  data.Description,
		Date:         formatDate(data.Date),
		Location:     data.Location,
		MaxAttendees: data.MaxAttendees,
		OrganizerID:  organizerID,
	}
}

type registerRequest struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type attendanceRequest struct {
	UserID string `json:"userId"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
