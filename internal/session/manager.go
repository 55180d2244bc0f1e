// Package session owns the authenticated user and the credentials of the
// current process, and announces logins and logouts on the bus.
package session

import (
	"context"
	"errors"
	"sync"

	"eventplanner/local-app/internal/api"
	"eventplanner/local-app/internal/bus"
	"eventplanner/local-app/internal/log"
	"eventplanner/local-app/internal/model"
)

type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Authenticator is the part of the API client the session needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.User, error)
	Register(ctx context.Context, data model.RegisterData) (model.User, error)
}

// Store persists credentials for the process and the user profile across runs.
type Store interface {
	Save(creds model.Credentials)
	Load() (model.Credentials, bool)
	Clear()
	SaveUser(user model.User) error
	LoadUser() (model.User, bool)
	ClearUser() error
}

// Manager is safe for concurrent use. Overlapping Login or Register calls are
// not rejected; the last one to finish wins.
type Manager struct {
	mu      sync.RWMutex
	auth    Authenticator
	store   Store
	bus     *bus.Bus
	logger  *log.Logger
	user    *model.User
	loading bool
	errMsg  string
}

// NewManager restores the persisted user, if any.
func NewManager(auth Authenticator, store Store, b *bus.Bus, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	if b == nil {
		b = bus.New(logger)
	}
	m := &Manager{auth: auth, store: store, bus: b, logger: logger}
	if user, ok := store.LoadUser(); ok {
		m.user = &user
		logger.Info(context.Background(), "Restored persisted user", log.Fields{"username": user.Username})
	}
	return m
}

// Login verifies the credentials against the backend and starts a session.
func (m *Manager) Login(ctx context.Context, username, password string) (model.User, error) {
	m.begin()
	m.logger.Info(ctx, "Logging in", log.Fields{"username": username})

	user, err := m.auth.Login(ctx, username, password)
	if err != nil {
		m.fail(ctx, "Login failed", err)
		return model.User{}, err
	}
	m.establish(ctx, user, model.Credentials{Username: username, Password: password})
	return user, nil
}

// Register creates the account and logs the new user in with the same credentials.
func (m *Manager) Register(ctx context.Context, data model.RegisterData) (model.User, error) {
	m.begin()
	m.logger.Info(ctx, "Registering user", log.Fields{"username": data.Username})

	user, err := m.auth.Register(ctx, data)
	if err != nil {
		m.fail(ctx, "Registration failed", err)
		return model.User{}, err
	}
	m.establish(ctx, user, model.Credentials{Username: data.Username, Password: data.Password})
	return user, nil
}

// Logout forgets the user and credentials, in memory and in storage.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	prev := m.user
	m.user = nil
	m.errMsg = ""
	m.loading = false
	m.mu.Unlock()

	m.store.Clear()
	if err := m.store.ClearUser(); err != nil {
		m.logger.Error(ctx, "Failed to clear persisted user", log.Fields{"error": err})
	}

	fields := log.Fields{}
	if prev != nil {
		fields["username"] = prev.Username
	}
	m.logger.Info(ctx, "Logged out", fields)
	m.bus.Publish(ctx, bus.Message{Topic: bus.UserLoggedOut})
}

// User returns the current user, or false when nobody is logged in.
func (m *Manager) User() (model.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return model.User{}, false
	}
	return *m.user, true
}

func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Error returns the display message of the last failed attempt.
func (m *Manager) Error() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errMsg
}

func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = ""
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch {
	case m.loading:
		return Authenticating
	case m.user != nil:
		return Authenticated
	default:
		return Anonymous
	}
}

// Credentials returns the credentials of this process, implementing api.CredentialSource.
func (m *Manager) Credentials() (model.Credentials, bool) {
	return m.store.Load()
}

func (m *Manager) begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = true
	m.errMsg = ""
}

func (m *Manager) fail(ctx context.Context, msg string, err error) {
	m.mu.Lock()
	m.loading = false
	m.errMsg = DisplayMessage(err)
	m.mu.Unlock()
	m.logger.Warn(ctx, msg, log.Fields{"error": err})
}

func (m *Manager) establish(ctx context.Context, user model.User, creds model.Credentials) {
	m.store.Save(creds)
	if err := m.store.SaveUser(user); err != nil {
		m.logger.Error(ctx, "Failed to persist user", log.Fields{"error": err})
	}

	m.mu.Lock()
	m.user = &user
	m.loading = false
	m.errMsg = ""
	m.mu.Unlock()

	m.logger.Info(ctx, "Logged in", log.Fields{"username": user.Username, "user_id": user.ID})
	m.bus.Publish(ctx, bus.Message{Topic: bus.UserLoggedIn, Data: user})
}

// DisplayMessage turns an error from the API client into the text shown to the user.
func DisplayMessage(err error) string {
	var rf *api.RequestFailedError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrInvalidCredentials):
		return "Usuario o contraseña incorrectos."
	case errors.Is(err, api.ErrNetworkUnavailable):
		return "No se pudo conectar con el servidor. Comprueba tu conexión."
	case errors.Is(err, api.ErrNoCredentials):
		return "Tu sesión ha expirado. Inicia sesión de nuevo."
	case errors.As(err, &rf):
		return rf.Message
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "La operación se ha cancelado."
	default:
		return "Ha ocurrido un error inesperado."
	}
}
