package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("ROLE_ADMIN"))
	assert.Equal(t, RoleAdmin, ParseRole(" admin "))
	assert.Equal(t, RoleUser, ParseRole("ROLE_USER"))
	assert.Equal(t, RoleUser, ParseRole("moderator"))
	assert.Equal(t, RoleUser, ParseRole(""))
}

func TestAttendeeSetDeduplicates(t *testing.T) {
	s := NewAttendeeSet("2", "1", "2", "", "3")
	assert.Equal(t, []string{"2", "1", "3"}, s.IDs())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("1"))
	assert.False(t, s.Contains("4"))

	ids := s.IDs()
	ids[0] = "x"
	assert.Equal(t, "2", s.IDs()[0])
}

func TestEventPredicates(t *testing.T) {
	e := Event{
		Organizer:    User{ID: "2"},
		Attendees:    NewAttendeeSet("1", "3"),
		MaxAttendees: 2,
	}
	assert.True(t, e.IsFull())
	assert.True(t, e.IsOrganizer("2"))
	assert.False(t, e.IsOrganizer(""))
	assert.True(t, e.IsAttending("3"))
	assert.False(t, e.IsAttending(""))

	e.MaxAttendees = 3
	assert.False(t, e.IsFull())
}

func TestFilterMatches(t *testing.T) {
	e := Event{Organizer: User{ID: "2"}, Attendees: NewAttendeeSet("1")}
	assert.True(t, FilterAll.Matches(e, ""))
	assert.True(t, FilterAttending.Matches(e, "1"))
	assert.False(t, FilterAttending.Matches(e, "2"))
	assert.True(t, FilterOrganized.Matches(e, "2"))
	assert.False(t, FilterOrganized.Matches(e, "1"))
}

func TestParseEventFilter(t *testing.T) {
	cases := map[string]EventFilter{
		"":                FilterAll,
		"Todos":           FilterAll,
		"ATTENDING":       FilterAttending,
		"Mis Asistencias": FilterAttending,
		"organizados":     FilterOrganized,
	}
	for in, want := range cases {
		got, err := ParseEventFilter(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseEventFilter("mine")
	assert.Error(t, err)

	assert.Equal(t, "Mis Asistencias", FilterAttending.Label())
	assert.Equal(t, []EventFilter{FilterAll, FilterAttending, FilterOrganized}, Filters())
}

func TestCredentialsEmpty(t *testing.T) {
	assert.True(t, Credentials{Username: "maria"}.Empty())
	assert.False(t, Credentials{Username: "maria", Password: "x"}.Empty())
}
