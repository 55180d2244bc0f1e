package cli

import (
	"errors"
	"fmt"
	"io"
)

// ErrExit is returned by the exit and quit commands.
var ErrExit = fmt.Errorf("exit requested: %w", io.EOF)

var (
	errNotLoggedIn    = errors.New("not logged in")
	errUnknownCommand = errors.New("unknown command")
	errUnknownFilter  = errors.New("unknown filter")
	errEventFull      = errors.New("event is full")
	errEventNotFound  = errors.New("event not found")
	errNotOrganizer   = errors.New("only the organizer can manage the event")
	errNoHelp         = errors.New("no help for command")
)

// argError ties a command error to the argument it is about.
type argError struct {
	err error
	arg string
}

func (e *argError) Error() string { return fmt.Sprintf("%v: %s", e.err, e.arg) }

func (e *argError) Unwrap() error { return e.err }

func withArg(err error, arg string) error {
	return &argError{err: err, arg: arg}
}

// userMessages holds the text shown for each command error. Messages with a
// verb are formatted with the argError argument.
var userMessages = []struct {
	err error
	msg string
}{
	{errNotLoggedIn, "Debes iniciar sesión primero. Usa 'login' o 'register'."},
	{errUnknownCommand, "Comando desconocido: %s. Escribe 'help' para ver los comandos."},
	{errUnknownFilter, "Filtro desconocido: %s. Usa all, attending u organized."},
	{errEventFull, "El evento \"%s\" está completo."},
	{errEventNotFound, "No se encontró el evento %s."},
	{errNotOrganizer, "Solo el organizador puede modificar o eliminar \"%s\"."},
	{errNoHelp, "No hay ayuda para '%s'."},
}

// userMessage returns the text for a command error, if it has one.
func userMessage(err error) (string, bool) {
	for _, m := range userMessages {
		if !errors.Is(err, m.err) {
			continue
		}
		var ae *argError
		if errors.As(err, &ae) {
			return fmt.Sprintf(m.msg, ae.arg), true
		}
		return m.msg, true
	}
	return "", false
}
