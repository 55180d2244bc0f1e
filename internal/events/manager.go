// Package events keeps the client's copy of the event list. The list is only
// ever replaced by a fresh fetch; mutations go to the backend and are followed
// by a refresh.
package events

import (
	"context"
	"errors"
	"sync"

	"eventplanner/local-app/internal/api"
	"eventplanner/local-app/internal/bus"
	"eventplanner/local-app/internal/log"
	"eventplanner/local-app/internal/model"
)

// ErrNotLoggedIn is returned by operations that act on behalf of the current user.
var ErrNotLoggedIn = errors.New("no user is logged in")

// Backend is the part of the API client used for events.
type Backend interface {
	GetEvents(ctx context.Context, filter model.EventFilter, userID string) ([]model.Event, error)
	CreateEvent(ctx context.Context, data model.NewEventData, organizerID string) (model.Event, error)
	UpdateEvent(ctx context.Context, id string, data model.NewEventData) (model.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	JoinEvent(ctx context.Context, id, userID string) error
	LeaveEvent(ctx context.Context, id, userID string) error
}

// UserSource reports the current user.
type UserSource interface {
	User() (model.User, bool)
}

type Manager struct {
	mu      sync.RWMutex
	backend Backend
	users   UserSource
	bus     *bus.Bus
	logger  *log.Logger
	events  []model.Event
	all     []model.Event
	filter  model.EventFilter
	loading bool
	lastErr error

	// generation changes on every login and logout. A fetch started under an
	// older generation is discarded.
	generation uint64
	inflight   int
}

// NewManager subscribes to session changes on b. On logout the list is cleared
// and the filter goes back to ALL.
func NewManager(backend Backend, users UserSource, b *bus.Bus, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	m := &Manager{
		backend: backend,
		users:   users,
		bus:     b,
		logger:  logger,
		filter:  model.FilterAll,
	}
	if b != nil {
		b.Subscribe(bus.UserLoggedOut, m.onLoggedOut)
		b.Subscribe(bus.UserLoggedIn, m.onLoggedIn)
	}
	return m
}

func (m *Manager) onLoggedOut(bus.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.events = nil
	m.all = nil
	m.filter = model.FilterAll
	m.lastErr = nil
}

func (m *Manager) onLoggedIn(msg bus.Message) {
	// A different user may be logging in; the old list is not theirs.
	m.mu.Lock()
	m.generation++
	m.events = nil
	m.all = nil
	m.lastErr = nil
	m.mu.Unlock()
	if u, ok := msg.Data.(model.User); ok {
		m.logger.Debug(context.Background(), "Event list reset for user", log.Fields{"user_id": u.ID})
	}
}

// Refresh replaces the list with the backend's view under the current filter.
// When the filter is not ALL the unfiltered list is fetched too, so that
// CountByFilter covers every tab. Failures are logged and leave the previous
// list in place; the error is available from LastError.
func (m *Manager) Refresh(ctx context.Context) {
	m.mu.Lock()
	m.inflight++
	m.loading = true
	filter := m.filter
	generation := m.generation
	m.mu.Unlock()

	userID := m.userID()
	list, err := m.backend.GetEvents(ctx, filter, userID)
	all := list
	if err == nil && filter != model.FilterAll {
		var allErr error
		all, allErr = m.backend.GetEvents(ctx, model.FilterAll, userID)
		if allErr != nil {
			m.logger.Warn(ctx, "Failed to fetch unfiltered events for counts", log.Fields{"error": allErr})
			all = nil
		}
	}

	m.mu.Lock()
	m.inflight--
	m.loading = m.inflight > 0
	if generation != m.generation {
		m.mu.Unlock()
		m.logger.Debug(ctx, "Discarded events fetched for a previous session", log.Fields{"filter": string(filter)})
		return
	}
	if err != nil {
		m.lastErr = err
		m.mu.Unlock()
		m.logger.Error(ctx, "Failed to fetch events", log.Fields{"error": err, "filter": string(filter)})
		return
	}
	m.lastErr = nil
	m.events = list
	if all != nil {
		m.all = all
	}
	m.mu.Unlock()

	m.logger.Info(ctx, "Events refreshed", log.Fields{"filter": string(filter), "count": len(list)})
	if m.bus != nil {
		m.bus.Publish(ctx, bus.Message{Topic: bus.EventsRefreshed, Data: len(list)})
	}
}

// SetFilter changes the filter and refreshes.
func (m *Manager) SetFilter(ctx context.Context, f model.EventFilter) {
	m.mu.Lock()
	m.filter = f
	m.mu.Unlock()
	m.Refresh(ctx)
}

// Create makes the current user the organizer of a new event.
func (m *Manager) Create(ctx context.Context, data model.NewEventData) (model.Event, error) {
	userID := m.userID()
	if userID == "" {
		return model.Event{}, ErrNotLoggedIn
	}
	ev, err := m.backend.CreateEvent(ctx, data, userID)
	if err != nil {
		m.logger.Error(ctx, "Failed to create event", log.Fields{"error": err})
		return model.Event{}, err
	}
	m.logger.Info(ctx, "Event created", log.Fields{"event_id": ev.ID})
	m.Refresh(ctx)
	return ev, nil
}

func (m *Manager) Update(ctx context.Context, id string, data model.NewEventData) (model.Event, error) {
	ev, err := m.backend.UpdateEvent(ctx, id, data)
	if err != nil {
		m.logger.Error(ctx, "Failed to update event", log.Fields{"error": err, "event_id": id})
		return model.Event{}, err
	}
	m.logger.Info(ctx, "Event updated", log.Fields{"event_id": id})
	m.Refresh(ctx)
	return ev, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.backend.DeleteEvent(ctx, id); err != nil {
		m.logger.Error(ctx, "Failed to delete event", log.Fields{"error": err, "event_id": id})
		return err
	}
	m.logger.Info(ctx, "Event deleted", log.Fields{"event_id": id})
	m.Refresh(ctx)
	return nil
}

// Join adds the current user to the event. Capacity is decided by the backend.
func (m *Manager) Join(ctx context.Context, id string) error {
	return m.attendance(ctx, id, "join", m.backend.JoinEvent)
}

func (m *Manager) Leave(ctx context.Context, id string) error {
	return m.attendance(ctx, id, "leave", m.backend.LeaveEvent)
}

func (m *Manager) attendance(ctx context.Context, id, action string, call func(context.Context, string, string) error) error {
	userID := m.userID()
	if userID == "" {
		return ErrNotLoggedIn
	}
	if err := call(ctx, id, userID); err != nil {
		m.logger.Error(ctx, "Attendance change failed", log.Fields{"error": err, "event_id": id, "action": action})
		return err
	}
	m.logger.Info(ctx, "Attendance changed", log.Fields{"event_id": id, "action": action})
	m.Refresh(ctx)
	return nil
}

// Events returns a copy of the current list.
func (m *Manager) Events() []model.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *Manager) Filter() model.EventFilter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filter
}

func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// LastError returns the error of the last failed refresh, if the latest one failed.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// CountByFilter counts the last unfiltered list under every filter for the
// current user. Without a user all counts are zero.
func (m *Manager) CountByFilter() map[model.EventFilter]int {
	counts := make(map[model.EventFilter]int, 3)
	for _, f := range model.Filters() {
		counts[f] = 0
	}
	userID := m.userID()
	if userID == "" {
		return counts
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ev := range m.all {
		for _, f := range model.Filters() {
			if f.Matches(ev, userID) {
				counts[f]++
			}
		}
	}
	return counts
}

// Find returns the event with id from the last fetched lists.
func (m *Manager) Find(id string) (model.Event, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, list := range [][]model.Event{m.events, m.all} {
		for _, ev := range list {
			if ev.ID == id {
				return ev, true
			}
		}
	}
	return model.Event{}, false
}

func (m *Manager) userID() string {
	if m.users == nil {
		return ""
	}
	u, ok := m.users.User()
	if !ok {
		return ""
	}
	return u.ID
}

var _ Backend = (*api.Client)(nil)
