package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner/local-app/internal/api"
	"eventplanner/local-app/internal/backendtest"
	"eventplanner/local-app/internal/bus"
	"eventplanner/local-app/internal/config"
	"eventplanner/local-app/internal/events"
	"eventplanner/local-app/internal/log"
	"eventplanner/local-app/internal/session"
	"eventplanner/local-app/internal/storage"
	"eventplanner/local-app/internal/ui"
)

// scriptedPrompter answers prompts from fixed queues. A "^C" line simulates an interrupt.
type scriptedPrompter struct {
	lines     []string
	passwords []string
	prompts   []string
}

func (p *scriptedPrompter) ReadLine(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

func (p *scriptedPrompter) ReadPassword(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.passwords) == 0 {
		return "", io.EOF
	}
	pw := p.passwords[0]
	p.passwords = p.passwords[1:]
	return pw, nil
}

type testCLI struct {
	*CLI
	out      *bytes.Buffer
	prompter *scriptedPrompter
	server   *backendtest.Server
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	server, baseURL := backendtest.Start(t)

	cfg := config.DefaultConfig()
	cfg.DatabaseDir = filepath.Join(t.TempDir(), "db")
	cfg.APIBaseURL = baseURL

	logger := log.NewNop()
	store, err := storage.Open(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	b := bus.New(logger)
	client := api.NewFromConfig(cfg, api.CredentialsFunc(store.Load), logger)
	sm := session.NewManager(client, store, b, logger)
	em := events.NewManager(client, sm, b, logger)

	out := &bytes.Buffer{}
	p := &scriptedPrompter{}
	c := NewCLI(sm, em, ui.NewUI(out, false), p, logger)
	c.Now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.Local) }

	return &testCLI{CLI: c, out: out, prompter: p, server: server}
}

func (tc *testCLI) exec(t *testing.T, line string) string {
	t.Helper()
	tc.out.Reset()
	require.NoError(t, tc.ExecuteLine(context.Background(), line))
	return tc.out.String()
}

func (tc *testCLI) login(t *testing.T, username string) {
	t.Helper()
	tc.prompter.passwords = append(tc.prompter.passwords, backendtest.Password)
	out := tc.exec(t, "login "+username)
	require.Contains(t, out, "Bienvenido")
	tc.UpdatePrompt()
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"list", []string{"list"}},
		{"join   evt1", []string{"join", "evt1"}},
		{`filter "Mis Asistencias"`, []string{"filter", "Mis Asistencias"}},
		{`export ""`, []string{"export", ""}},
		{"  ", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseArgs(tt.input), tt.input)
	}
}

func TestRunLoginShowsEvents(t *testing.T) {
	tc := newTestCLI(t)
	tc.prompter.lines = []string{"login maria"}
	tc.prompter.passwords = []string{backendtest.Password}

	require.NoError(t, tc.Run(context.Background()))

	out := tc.out.String()
	assert.Contains(t, out, "Bienvenido, María González.")
	assert.Contains(t, out, "[Todos (3)]")
	assert.Contains(t, out, " Mis Asistencias (1) ")
	assert.Contains(t, out, " Organizados (1) ")
	assert.Contains(t, out, "Festival de Gastronomía Asturiana [evt3]")
	assert.Equal(t, "maria @ Todos > ", tc.Prompt)
}

func TestRunInterruptKeepsReading(t *testing.T) {
	tc := newTestCLI(t)
	tc.prompter.lines = []string{"^C", "whoami"}

	require.NoError(t, tc.Run(context.Background()))
	assert.Contains(t, tc.out.String(), "Usa 'exit' o 'quit' para salir.")
	assert.Contains(t, tc.out.String(), "No has iniciado sesión.")
}

func TestRunStopsOnExit(t *testing.T) {
	tc := newTestCLI(t)
	tc.prompter.lines = []string{"exit", "whoami"}

	require.NoError(t, tc.Run(context.Background()))
	assert.Contains(t, tc.out.String(), "Saliendo...")
	assert.NotContains(t, tc.out.String(), "No has iniciado sesión.")
	assert.Equal(t, []string{"whoami"}, tc.prompter.lines)
}

func TestLoginValidationMessages(t *testing.T) {
	tc := newTestCLI(t)
	tc.prompter.lines = []string{"  "}
	tc.prompter.passwords = []string{""}

	out := tc.exec(t, "login")
	assert.Contains(t, out, "Usuario: El nombre de usuario es obligatorio")
	assert.Contains(t, out, "Contraseña: La contraseña es obligatoria")
	assert.Zero(t, tc.server.Requests())
}

func TestLoginWrongPassword(t *testing.T) {
	tc := newTestCLI(t)
	tc.prompter.passwords = []string{"wrong-password"}

	out := tc.exec(t, "login maria")
	assert.Contains(t, out, "! Usuario o contraseña incorrectos.")
	_, ok := tc.Session.User()
	assert.False(t, ok)
}

func TestRegisterValidation(t *testing.T) {
	tc := newTestCLI(t)
	tc.prompter.lines = []string{"Ana", "ana", "no-es-un-email", "600000009"}
	tc.prompter.passwords = []string{"abc", "abd"}

	out := tc.exec(t, "register")
	assert.Contains(t, out, "Email: El email no es válido")
	assert.Contains(t, out, "Contraseña: Mínimo 6 caracteres")
	assert.Contains(t, out, "Confirmar contraseña: Las contraseñas no coinciden")
	assert.Zero(t, tc.server.Requests())
}

func TestRegisterLogsIn(t *testing.T) {
	tc := newTestCLI(t)
	tc.prompter.lines = []string{"Ana Pérez", "ana", "ana@email.com", "600000009"}
	tc.prompter.passwords = []string{"secret1", "secret1"}

	out := tc.exec(t, "register")
	assert.Contains(t, out, "Cuenta creada. Bienvenido, Ana Pérez.")
	user, ok := tc.Session.User()
	require.True(t, ok)
	assert.Equal(t, "ana", user.Username)
}

func TestCommandsRequireLogin(t *testing.T) {
	tc := newTestCLI(t)
	for _, line := range []string{"list", "refresh", "filter all", "create", "join evt1", "export x.ics"} {
		out := tc.exec(t, line)
		assert.Contains(t, out, "Debes iniciar sesión primero.", line)
	}
	assert.Zero(t, tc.server.Requests())
}

func TestFilterCommand(t *testing.T) {
	tc := newTestCLI(t)
	tc.login(t, "maria")

	out := tc.exec(t, "filter organized")
	assert.Contains(t, out, "[Organizados (1)]")
	assert.Contains(t, out, "Concierto de Jazz en el Puerto")
	assert.NotContains(t, out, "Maratón de Gijón")

	tc.UpdatePrompt()
	assert.Equal(t, "maria @ Organizados > ", tc.Prompt)

	out = tc.exec(t, "filter nope")
	assert.Contains(t, out, "Filtro desconocido: nope")
}

func TestJoinAndLeave(t *testing.T) {
	tc := newTestCLI(t)
	tc.login(t, "maria")

	out := tc.exec(t, "join evt3")
	assert.Contains(t, out, "Te has unido a \"Festival de Gastronomía Asturiana\".")
	assert.Contains(t, out, " Mis Asistencias (2) ")

	out = tc.exec(t, "join evt3")
	assert.Contains(t, out, "Ya estás unido a este evento.")

	out = tc.exec(t, "leave evt3")
	assert.Contains(t, out, "Has salido de \"Festival de Gastronomía Asturiana\".")

	out = tc.exec(t, "leave evt3")
	assert.Contains(t, out, "No estás unido a este evento.")
}

func TestJoinFullEvent(t *testing.T) {
	tc := newTestCLI(t)
	id := tc.server.SeedEvent("Taller de sidra", "2030-12-01T18:00:00", 4, []int{1}, 1)
	tc.login(t, "maria")

	requests := tc.server.Requests()
	out := tc.exec(t, "join "+id)
	assert.Contains(t, out, "El evento \"Taller de sidra\" está completo.")
	assert.Equal(t, requests, tc.server.Requests())
}

func TestJoinUnknownEvent(t *testing.T) {
	tc := newTestCLI(t)
	tc.login(t, "maria")

	out := tc.exec(t, "join evt99")
	assert.Contains(t, out, "No se encontró el evento evt99.")
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	tc := newTestCLI(t)
	tc.login(t, "maria")

	tc.prompter.lines = []string{"n"}
	out := tc.exec(t, "delete evt1")
	assert.Contains(t, out, "Eliminación cancelada.")
	require.Len(t, tc.prompter.prompts, 2)
	assert.Contains(t, tc.prompter.prompts[1], "¿Estás seguro de que quieres eliminar el evento \"Concierto de Jazz en el Puerto\"?")
	_, ok := tc.Events.Find("evt1")
	assert.True(t, ok)

	tc.prompter.lines = []string{"s"}
	out = tc.exec(t, "delete evt1")
	assert.Contains(t, out, "Evento \"Concierto de Jazz en el Puerto\" eliminado.")
	_, ok = tc.Events.Find("evt1")
	assert.False(t, ok)
}

func TestDeleteRequiresOrganizer(t *testing.T) {
	tc := newTestCLI(t)
	tc.login(t, "maria")

	out := tc.exec(t, "delete evt2")
	assert.Contains(t, out, "Solo el organizador puede modificar o eliminar \"Maratón de Gijón\".")
}

func TestCreateEvent(t *testing.T) {
	tc := newTestCLI(t)
	tc.login(t, "maria")

	tc.prompter.lines = []string{"Ruta en bici", "Salida por la costa", "2031-01-10T18:30", "Playa de San Lorenzo", "25"}
	out := tc.exec(t, "create")
	assert.Contains(t, out, "Evento \"Ruta en bici\" creado.")
	assert.Contains(t, out, " Organizados (2) ")
	assert.Contains(t, out, "0/25 personas")
}

func TestCreateEventValidation(t *testing.T) {
	tc := newTestCLI(t)
	tc.login(t, "maria")
	requests := tc.server.Requests()

	tc.prompter.lines = []string{"", "Algo", "2020-01-01T10:00", "Sitio", "0"}
	out := tc.exec(t, "create")
	assert.Contains(t, out, "Título: El título es obligatorio")
	assert.Contains(t, out, "Fecha: No se pueden crear eventos en el pasado")
	assert.Contains(t, out, "Máximo de asistentes: Debe ser al menos 1")
	assert.Equal(t, requests, tc.server.Requests())
}

func TestEditKeepsDefaults(t *testing.T) {
	tc := newTestCLI(t)
	tc.login(t, "maria")

	tc.prompter.lines = []string{"Jazz en el Puerto", "", "", "", ""}
	out := tc.exec(t, "edit evt1")
	assert.Contains(t, out, "Evento actualizado.")

	ev, ok := tc.Events.Find("evt1")
	require.True(t, ok)
	assert.Equal(t, "Jazz en el Puerto", ev.Title)
	assert.Equal(t, "Puerto Deportivo de Gijón", ev.Location)
	assert.Equal(t, 150, ev.MaxAttendees)
	assert.Contains(t, tc.prompter.prompts[1], "[Concierto de Jazz en el Puerto]")
}

func TestExportWritesCalendar(t *testing.T) {
	tc := newTestCLI(t)
	tc.login(t, "maria")

	path := filepath.Join(t.TempDir(), "eventos.ics")
	out := tc.exec(t, "export "+path)
	assert.Contains(t, out, "3 eventos exportados")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "BEGIN:VCALENDAR")
	assert.Contains(t, string(data), "Maratón de Gijón")
}

func TestLogoutAndWhoami(t *testing.T) {
	tc := newTestCLI(t)
	tc.login(t, "maria")

	out := tc.exec(t, "whoami")
	assert.Contains(t, out, "María González (maria)")
	assert.Contains(t, out, "Rol: USER")

	out = tc.exec(t, "logout")
	assert.Contains(t, out, "Sesión cerrada.")
	tc.UpdatePrompt()
	assert.Equal(t, "> ", tc.Prompt)
	assert.Empty(t, tc.Events.Events())
}

func TestUnknownCommand(t *testing.T) {
	tc := newTestCLI(t)
	out := tc.exec(t, "dance")
	assert.Contains(t, out, "Comando desconocido: dance.")
}

func TestHelp(t *testing.T) {
	tc := newTestCLI(t)

	out := tc.exec(t, "help")
	assert.Contains(t, out, "Sesión:")
	assert.Contains(t, out, "Eventos:")
	assert.Contains(t, out, "export")

	out = tc.exec(t, "help join")
	assert.Contains(t, out, "Sintaxis: join <id>")

	out = tc.exec(t, "help nada")
	assert.Contains(t, out, "No hay ayuda para 'nada'.")
}

func TestExecuteScript(t *testing.T) {
	tc := newTestCLI(t)
	tc.prompter.passwords = []string{backendtest.Password}

	script := filepath.Join(t.TempDir(), "demo.txt")
	content := "# demo\nlogin club\n\nfilter organized\nexit\nlogout\n"
	require.NoError(t, os.WriteFile(script, []byte(content), 0o600))

	err := tc.ExecuteScript(context.Background(), script)
	assert.ErrorIs(t, err, ErrExit)

	out := tc.out.String()
	assert.Contains(t, out, "> login club")
	assert.Contains(t, out, "[Organizados (1)]")
	assert.Contains(t, out, "Saliendo...")
	assert.NotContains(t, out, "Sesión cerrada.")

	assert.Error(t, tc.ExecuteScript(context.Background(), filepath.Join(t.TempDir(), "missing.txt")))
}
