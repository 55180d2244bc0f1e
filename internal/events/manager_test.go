package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner/local-app/internal/api"
	"eventplanner/local-app/internal/backendtest"
	"eventplanner/local-app/internal/bus"
	"eventplanner/local-app/internal/log"
	"eventplanner/local-app/internal/model"
)

type staticUser struct {
	user *model.User
}

func (s *staticUser) User() (model.User, bool) {
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

func loggedInAs(id, username string) *staticUser {
	return &staticUser{user: &model.User{ID: id, Username: username}}
}

func newManager(t *testing.T, username, userID string) (*Manager, *backendtest.Server, *bus.Bus) {
	t.Helper()
	srv, baseURL := backendtest.Start(t)
	creds := api.CredentialsFunc(func() (model.Credentials, bool) {
		return model.Credentials{Username: username, Password: backendtest.Password}, true
	})
	client := api.New(baseURL, creds, log.NewNop())
	b := bus.New(log.NewNop())
	return NewManager(client, loggedInAs(userID, username), b, log.NewNop()), srv, b
}

func TestRefreshAndCounts(t *testing.T) {
	m, _, _ := newManager(t, "admin", "1")
	ctx := context.Background()

	assert.Equal(t, model.FilterAll, m.Filter())
	m.Refresh(ctx)
	require.NoError(t, m.LastError())
	assert.False(t, m.Loading())
	assert.Len(t, m.Events(), 3)

	assert.Equal(t, map[model.EventFilter]int{
		model.FilterAll:       3,
		model.FilterAttending: 2,
		model.FilterOrganized: 0,
	}, m.CountByFilter())
}

func TestSetFilterKeepsCountsForEveryTab(t *testing.T) {
	m, _, _ := newManager(t, "maria", "2")
	ctx := context.Background()

	m.SetFilter(ctx, model.FilterOrganized)
	assert.Equal(t, model.FilterOrganized, m.Filter())
	events := m.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Concierto de Jazz en el Puerto", events[0].Title)

	counts := m.CountByFilter()
	assert.Equal(t, 3, counts[model.FilterAll])
	assert.Equal(t, 1, counts[model.FilterAttending])
	assert.Equal(t, 1, counts[model.FilterOrganized])
}

func TestJoinTwiceThenLeave(t *testing.T) {
	m, _, _ := newManager(t, "maria", "2")
	ctx := context.Background()

	require.NoError(t, m.Join(ctx, "evt3"))
	require.NoError(t, m.Join(ctx, "evt3"))

	ev, ok := m.Find("evt3")
	require.True(t, ok)
	assert.Equal(t, []string{"2"}, ev.Attendees.IDs())
	assert.True(t, ev.IsAttending("2"))

	require.NoError(t, m.Leave(ctx, "evt3"))
	ev, ok = m.Find("evt3")
	require.True(t, ok)
	assert.False(t, ev.IsAttending("2"))
}

func TestJoinFullEventSurfacesServerError(t *testing.T) {
	m, srv, _ := newManager(t, "maria", "2")
	id := srv.SeedEvent("Lleno", "2030-02-02T20:00:00", 3, []int{1, 4}, 2)
	ctx := context.Background()
	m.Refresh(ctx)

	ev, ok := m.Find(id)
	require.True(t, ok)
	assert.True(t, ev.IsFull())

	err := m.Join(ctx, id)
	var rf *api.RequestFailedError
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "El evento está completo.", rf.Message)
}

func TestCreateUpdateDeleteRefetch(t *testing.T) {
	m, _, _ := newManager(t, "club", "3")
	ctx := context.Background()
	data := model.NewEventData{
		Title:        "Carrera nocturna",
		Description:  "10K por el Muro",
		Date:         time.Date(2031, 6, 21, 22, 0, 0, 0, time.Local),
		Location:     "Playa de San Lorenzo",
		MaxAttendees: 40,
	}

	created, err := m.Create(ctx, data)
	require.NoError(t, err)
	ev, ok := m.Find(created.ID)
	require.True(t, ok, "created event must be visible after the refetch")
	assert.Equal(t, data.Title, ev.Title)
	assert.Equal(t, 0, ev.Attendees.Len())
	assert.True(t, ev.IsOrganizer("3"))

	data.MaxAttendees = 60
	_, err = m.Update(ctx, created.ID, data)
	require.NoError(t, err)
	ev, _ = m.Find(created.ID)
	assert.Equal(t, 60, ev.MaxAttendees)

	require.NoError(t, m.Delete(ctx, created.ID))
	_, ok = m.Find(created.ID)
	assert.False(t, ok)

	err = m.Delete(ctx, created.ID)
	assert.True(t, api.IsNotFound(err))
}

func TestOperationsRequireUser(t *testing.T) {
	srv, baseURL := backendtest.Start(t)
	m := NewManager(api.New(baseURL, nil, nil), &staticUser{}, nil, nil)
	ctx := context.Background()

	assert.ErrorIs(t, m.Join(ctx, "evt1"), ErrNotLoggedIn)
	assert.ErrorIs(t, m.Leave(ctx, "evt1"), ErrNotLoggedIn)
	_, err := m.Create(ctx, model.NewEventData{Title: "x"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Zero(t, srv.Requests())

	assert.Equal(t, map[model.EventFilter]int{
		model.FilterAll: 0, model.FilterAttending: 0, model.FilterOrganized: 0,
	}, m.CountByFilter())
}

type failingBackend struct {
	Backend
	err error
}

func (f failingBackend) GetEvents(context.Context, model.EventFilter, string) ([]model.Event, error) {
	return nil, f.err
}

func TestRefreshFailureKeepsPreviousList(t *testing.T) {
	m, _, _ := newManager(t, "admin", "1")
	ctx := context.Background()
	m.Refresh(ctx)
	require.Len(t, m.Events(), 3)

	boom := &api.NetworkError{Op: "GET /events", Err: errors.New("connection refused")}
	m.backend = failingBackend{err: boom}
	m.Refresh(ctx)

	assert.Len(t, m.Events(), 3)
	assert.False(t, m.Loading())
	assert.ErrorIs(t, m.LastError(), api.ErrNetworkUnavailable)
}

func TestLogoutClearsListAndFilter(t *testing.T) {
	m, _, b := newManager(t, "maria", "2")
	ctx := context.Background()
	m.SetFilter(ctx, model.FilterAttending)
	require.NotEmpty(t, m.Events())

	b.Publish(ctx, bus.Message{Topic: bus.UserLoggedOut})

	assert.Empty(t, m.Events())
	assert.Equal(t, model.FilterAll, m.Filter())
	_, ok := m.Find("evt2")
	assert.False(t, ok)
}

func TestRefreshPublishesCount(t *testing.T) {
	m, _, b := newManager(t, "admin", "1")
	var got []interface{}
	b.Subscribe(bus.EventsRefreshed, func(msg bus.Message) {
		got = append(got, msg.Data)
		// Reading state from a handler must not deadlock.
		_ = m.Events()
	})

	m.Refresh(context.Background())
	assert.Equal(t, []interface{}{3}, got)
}

// gatedBackend holds every GetEvents call until a value arrives on release.
type gatedBackend struct {
	Backend
	started chan struct{}
	release chan struct{}
	events  []model.Event
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
		events: []model.Event{{
			ID:           "evt1",
			Title:        "Concierto de Jazz en el Puerto",
			Organizer:    model.User{ID: "2"},
			Attendees:    model.NewAttendeeSet("1"),
			MaxAttendees: 150,
		}},
	}
}

func (g *gatedBackend) GetEvents(context.Context, model.EventFilter, string) ([]model.Event, error) {
	g.started <- struct{}{}
	<-g.release
	return g.events, nil
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting")
	}
}

func TestRefreshInFlightDuringSessionChangeIsDiscarded(t *testing.T) {
	for _, topic := range []bus.Topic{bus.UserLoggedOut, bus.UserLoggedIn} {
		t.Run(topic.String(), func(t *testing.T) {
			backend := newGatedBackend()
			b := bus.New(log.NewNop())
			m := NewManager(backend, loggedInAs("2", "maria"), b, log.NewNop())
			ctx := context.Background()

			done := make(chan struct{})
			go func() {
				m.Refresh(ctx)
				close(done)
			}()
			waitFor(t, backend.started)
			assert.True(t, m.Loading())

			b.Publish(ctx, bus.Message{Topic: topic, Data: model.User{ID: "3", Username: "club"}})
			backend.release <- struct{}{}
			waitFor(t, done)

			assert.Empty(t, m.Events())
			_, ok := m.Find("evt1")
			assert.False(t, ok)
			assert.Equal(t, 0, m.CountByFilter()[model.FilterAll])
			assert.False(t, m.Loading())
			assert.NoError(t, m.LastError())

			// A refresh started after the change is applied normally.
			again := make(chan struct{})
			go func() {
				m.Refresh(ctx)
				close(again)
			}()
			waitFor(t, backend.started)
			backend.release <- struct{}{}
			waitFor(t, again)
			assert.Len(t, m.Events(), 1)
		})
	}
}

func TestLoadingStaysSetWhileAnyRefreshIsInFlight(t *testing.T) {
	backend := newGatedBackend()
	m := NewManager(backend, loggedInAs("2", "maria"), bus.New(log.NewNop()), log.NewNop())
	ctx := context.Background()

	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			m.Refresh(ctx)
			done <- struct{}{}
		}()
		waitFor(t, backend.started)
	}

	backend.release <- struct{}{}
	waitFor(t, done)
	assert.True(t, m.Loading())

	backend.release <- struct{}{}
	waitFor(t, done)
	assert.False(t, m.Loading())
	assert.Len(t, m.Events(), 1)
}
