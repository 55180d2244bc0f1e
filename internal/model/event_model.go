package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and display format of event dates: ISO-8601 local
// time with seconds precision and no zone.
const DateLayout = "2006-01-02T15:04:05"

// AttendeeSet is an ordered set of user ids. Order is join order and each id
// appears at most once.
type AttendeeSet struct {
	ids []string
}

// NewAttendeeSet builds a set from ids, keeping the first occurrence of duplicates
// and skipping blanks.
func NewAttendeeSet(ids ...string) AttendeeSet {
	s := AttendeeSet{ids: make([]string, 0, len(ids))}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Len returns the number of attendees.
func (s AttendeeSet) Len() int {
	return len(s.ids)
}

// Contains reports whether the user id is in the set.
func (s AttendeeSet) Contains(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// IDs returns a copy of the ids in join order.
func (s AttendeeSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Event is a community event as seen by the client.
type Event struct {
	ID           string
	Title        string
	Description  string
	Date         time.Time
	Location     string
	Organizer    User
	Attendees    AttendeeSet
	MaxAttendees int
}

// IsFull reports whether the last known attendee count reached capacity.
// The server owns the capacity invariant, so this is only a hint for disabling
// the join control.
func (e Event) IsFull() bool {
	return e.Attendees.Len() >= e.MaxAttendees
}

// IsOrganizer reports whether userID organizes the event.
func (e Event) IsOrganizer(userID string) bool {
	return userID != "" && e.Organizer.ID == userID
}

// IsAttending reports whether userID is in the attendee list.
func (e Event) IsAttending(userID string) bool {
	return userID != "" && e.Attendees.Contains(userID)
}

// NewEventData is the full field set sent when creating or updating an event.
type NewEventData struct {
	Title        string
	Description  string
	Date         time.Time
	Location     string
	MaxAttendees int
}

// FromEvent returns the editable fields of an existing event.
func FromEvent(e Event) NewEventData {
	return NewEventData{
		Title:        e.Title,
		Description:  e.Description,
		Date:         e.Date,
		Location:     e.Location,
		MaxAttendees: e.MaxAttendees,
	}
}

// EventFilter selects a view over the event list.
type EventFilter string

const (
	FilterAll       EventFilter = "ALL"
	FilterAttending EventFilter = "ATTENDING"
	FilterOrganized EventFilter = "ORGANIZED"
)

// Filters lists every filter in tab order.
func Filters() []EventFilter {
	return []EventFilter{FilterAll, FilterAttending, FilterOrganized}
}

// Label is the tab caption shown to the user.
func (f EventFilter) Label() string {
	switch f {
	case FilterAttending:
		return "Mis Asistencias"
	case FilterOrganized:
		return "Organizados"
	default:
		return "Todos"
	}
}

// Matches reports whether the event belongs to the view for userID.
func (f EventFilter) Matches(e Event, userID string) bool {
	switch f {
	case FilterAttending:
		return e.IsAttending(userID)
	case FilterOrganized:
		return e.IsOrganizer(userID)
	default:
		return true
	}
}

// ParseEventFilter accepts the wire names, lowercase aliases and the Spanish labels.
func ParseEventFilter(s string) (EventFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "todos", "":
		return FilterAll, nil
	case "attending", "mis asistencias", "asistencias":
		return FilterAttending, nil
	case "organized", "organizados":
		return FilterOrganized, nil
	default:
		return "", fmt.Errorf("unknown filter %q", s)
	}
}
