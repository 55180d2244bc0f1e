// Package cli provides the interactive shell of the events client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"eventplanner/local-app/internal/api"
	"eventplanner/local-app/internal/events"
	"eventplanner/local-app/internal/form"
	"eventplanner/local-app/internal/log"
	"eventplanner/local-app/internal/session"
	"eventplanner/local-app/internal/ui"
)

type CLI struct {
	Session  *session.Manager
	Events   *events.Manager
	UI       *ui.UI
	Prompter Prompter
	Logger   *log.Logger
	Now      func() time.Time
	Prompt   string

	commands map[string]func(ctx context.Context, args []string) error
}

func NewCLI(sm *session.Manager, em *events.Manager, u *ui.UI, p Prompter, logger *log.Logger) *CLI {
	if logger == nil {
		logger = log.NewNop()
	}
	c := &CLI{
		Session:  sm,
		Events:   em,
		UI:       u,
		Prompter: p,
		Logger:   logger,
		Now:      time.Now,
	}
	c.commands = map[string]func(ctx context.Context, args []string) error{
		"login":    c.handleLogin,
		"register": c.handleRegister,
		"logout":   c.handleLogout,
		"whoami":   c.handleWhoami,
		"list":     c.handleList,
		"refresh":  c.handleRefresh,
		"filter":   c.handleFilter,
		"create":   c.handleCreate,
		"edit":     c.handleEdit,
		"delete":   c.handleDelete,
		"join":     c.handleJoin,
		"leave":    c.handleLeave,
		"export":   c.handleExport,
		"help":     c.handleHelp,
		"exit":     c.handleExit,
		"quit":     c.handleExit,
	}
	c.UpdatePrompt()
	return c
}

// Start greets the user and loads the list when a session was restored.
func (c *CLI) Start(ctx context.Context) {
	c.UI.Println("Bienvenido al gestor de eventos. Escribe 'help' para ver los comandos.")
	user, ok := c.Session.User()
	if !ok {
		return
	}
	if _, hasCreds := c.Session.Credentials(); !hasCreds {
		c.UI.Warning(fmt.Sprintf("Hola de nuevo, %s. Inicia sesión para continuar: login %s", user.DisplayName, user.Username))
		return
	}
	c.Events.Refresh(ctx)
}

// Run reads and executes commands until exit or end of input.
func (c *CLI) Run(ctx context.Context) error {
	for {
		line, err := c.Prompter.ReadLine(c.Prompt)
		if errors.Is(err, readline.ErrInterrupt) {
			c.UI.Info("Usa 'exit' o 'quit' para salir.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		err = c.ExecuteLine(ctx, line)
		if errors.Is(err, ErrExit) {
			return nil
		}
		c.UpdatePrompt()
	}
}

// ExecuteLine runs one command line and reports its error to the user. Only
// ErrExit is returned.
func (c *CLI) ExecuteLine(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	args := ParseArgs(line)
	err := c.ExecuteCommand(ctx, args)
	if err == nil || errors.Is(err, ErrExit) {
		return err
	}
	c.reportError(err)
	return nil
}

// ExecuteScript runs every line of a script file as if typed at the prompt.
func (c *CLI) ExecuteScript(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open script %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c.UI.PrintCommand(c.Prompt + line)
		if err := c.ExecuteLine(ctx, line); errors.Is(err, ErrExit) {
			return err
		}
		c.UpdatePrompt()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return nil
}

// ParseArgs splits a command line on spaces, keeping double-quoted text together.
func ParseArgs(input string) []string {
	var args []string
	var currentArg strings.Builder
	inQuotes := false
	quoted := false

	for _, char := range input {
		switch char {
		case '"':
			inQuotes = !inQuotes
			quoted = true
		case ' ', '\t':
			if inQuotes {
				currentArg.WriteRune(char)
				continue
			}
			if currentArg.Len() > 0 || quoted {
				args = append(args, currentArg.String())
				currentArg.Reset()
				quoted = false
			}
		default:
			currentArg.WriteRune(char)
		}
	}

	if currentArg.Len() > 0 || quoted {
		args = append(args, currentArg.String())
	}

	return args
}

func (c *CLI) ExecuteCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command provided")
	}
	name := strings.ToLower(args[0])
	handler, ok := c.commands[name]
	if !ok {
		return withArg(errUnknownCommand, args[0])
	}

	fields := log.Fields{"command": name, "args": len(args) - 1}
	if user, ok := c.Session.User(); ok {
		fields["user"] = user.Username
	}
	c.Logger.Command(ctx, strings.Join(args, " "), fields)

	return handler(ctx, args[1:])
}

// UpdatePrompt shows the current user and filter in the prompt.
func (c *CLI) UpdatePrompt() {
	user, ok := c.Session.User()
	if !ok {
		c.Prompt = c.UI.GetPromptString("", "")
		return
	}
	c.Prompt = c.UI.GetPromptString(user.Username, c.Events.Filter().Label())
}

func (c *CLI) reportError(err error) {
	var ve *form.ValidationError
	if msg, ok := userMessage(err); ok {
		c.UI.Error(msg)
		return
	}
	switch {
	case errors.As(err, &ve):
		for _, f := range ve.Fields {
			c.UI.Error(fmt.Sprintf("%s: %s", fieldLabels[f.Field], f.Message))
		}
	case errors.Is(err, events.ErrNotLoggedIn):
		msg, _ := userMessage(errNotLoggedIn)
		c.UI.Error(msg)
	case isAPIError(err):
		c.UI.Error(session.DisplayMessage(err))
	default:
		c.UI.Error(err.Error())
	}
}

func isAPIError(err error) bool {
	var rf *api.RequestFailedError
	return errors.As(err, &rf) ||
		errors.Is(err, api.ErrInvalidCredentials) ||
		errors.Is(err, api.ErrNoCredentials) ||
		errors.Is(err, api.ErrNetworkUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

var fieldLabels = map[string]string{
	"username":        "Usuario",
	"password":        "Contraseña",
	"fullName":        "Nombre completo",
	"email":           "Email",
	"phone":           "Teléfono",
	"confirmPassword": "Confirmar contraseña",
	"title":           "Título",
	"description":     "Descripción",
	"date":            "Fecha",
	"location":        "Ubicación",
	"maxAttendees":    "Máximo de asistentes",
}
