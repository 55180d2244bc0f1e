// This file handles the help system, providing detailed information
// about commands and their usage to users.
package cli

import (
	"context"
	"fmt"
	"strings"
)

// CommandHelp represents the structure of help information for a specific command.
type CommandHelp struct {
	Scope     string
	Command   string
	ShortDesc string
	LongDesc  string
	Syntax    string
	Arguments []string
	Examples  []string
}

func (c *CLI) handleHelp(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		c.showGeneralHelp()
		return nil
	case 1:
		return c.showCommandHelp(args[0])
	default:
		return fmt.Errorf("usage: help [comando]")
	}
}

// showGeneralHelp lists every command grouped by scope.
func (c *CLI) showGeneralHelp() {
	c.UI.Println("Comandos disponibles:")
	currentScope := ""
	for _, cmd := range commandHelps {
		if cmd.Scope != currentScope {
			c.UI.Printf("\n%s:\n", cmd.Scope)
			currentScope = cmd.Scope
		}
		c.UI.Printf("  %-10s %s\n", cmd.Command, cmd.ShortDesc)
	}
	c.UI.Println("\nUsa 'help <comando>' para ver los detalles de un comando.")
}

func (c *CLI) showCommandHelp(name string) error {
	name = strings.ToLower(name)
	for _, cmd := range commandHelps {
		if cmd.Command != name {
			continue
		}
		c.UI.Printf("%s\n\n", cmd.LongDesc)
		c.UI.Printf("Sintaxis: %s\n", cmd.Syntax)
		if len(cmd.Arguments) > 0 {
			c.UI.Println("Argumentos:")
			for _, arg := range cmd.Arguments {
				c.UI.Printf("  %s\n", arg)
			}
		}
		if len(cmd.Examples) > 0 {
			c.UI.Println("Ejemplos:")
			for _, ex := range cmd.Examples {
				c.UI.Printf("  %s\n", ex)
			}
		}
		return nil
	}
	return withArg(errNoHelp, name)
}

var commandHelps = []CommandHelp{
	{
		Scope:     "Sesión",
		Command:   "login",
		ShortDesc: "Iniciar sesión",
		LongDesc:  "Inicia sesión con tu usuario y contraseña. La contraseña se pide sin mostrarla.",
		Syntax:    "login [usuario]",
		Arguments: []string{"usuario: (Opcional) Nombre de usuario; si se omite se pregunta"},
		Examples:  []string{"login", "login maria"},
	},
	{
		Scope:     "Sesión",
		Command:   "register",
		ShortDesc: "Crear una cuenta",
		LongDesc:  "Pide nombre, usuario, email, teléfono y contraseña, crea la cuenta e inicia sesión.",
		Syntax:    "register",
		Examples:  []string{"register"},
	},
	{
		Scope:     "Sesión",
		Command:   "logout",
		ShortDesc: "Cerrar sesión",
		LongDesc:  "Cierra la sesión y olvida el usuario guardado.",
		Syntax:    "logout",
	},
	{
		Scope:     "Sesión",
		Command:   "whoami",
		ShortDesc: "Mostrar el usuario actual",
		LongDesc:  "Muestra los datos del usuario con sesión iniciada.",
		Syntax:    "whoami",
	},
	{
		Scope:     "Eventos",
		Command:   "list",
		ShortDesc: "Mostrar los eventos",
		LongDesc:  "Muestra los eventos del filtro activo junto con el número de eventos de cada filtro.",
		Syntax:    "list",
	},
	{
		Scope:     "Eventos",
		Command:   "refresh",
		ShortDesc: "Recargar los eventos",
		LongDesc:  "Vuelve a pedir la lista de eventos al servidor y la muestra.",
		Syntax:    "refresh",
	},
	{
		Scope:     "Eventos",
		Command:   "filter",
		ShortDesc: "Cambiar el filtro",
		LongDesc:  "Cambia entre Todos, Mis Asistencias y Organizados, y recarga la lista.",
		Syntax:    "filter <all|attending|organized>",
		Arguments: []string{"all: Todos los eventos", "attending: Eventos a los que estás unido", "organized: Eventos que organizas"},
		Examples:  []string{"filter attending", "filter \"Mis Asistencias\""},
	},
	{
		Scope:     "Eventos",
		Command:   "create",
		ShortDesc: "Crear un evento",
		LongDesc:  "Pide título, descripción, fecha, ubicación y aforo, y crea un evento organizado por ti.",
		Syntax:    "create",
	},
	{
		Scope:     "Eventos",
		Command:   "edit",
		ShortDesc: "Editar un evento",
		LongDesc:  "Edita un evento que organizas. Deja un campo vacío para mantener su valor.",
		Syntax:    "edit <id>",
		Arguments: []string{"id: Identificador del evento, mostrado entre corchetes"},
		Examples:  []string{"edit evt1"},
	},
	{
		Scope:     "Eventos",
		Command:   "delete",
		ShortDesc: "Eliminar un evento",
		LongDesc:  "Elimina un evento que organizas, tras pedir confirmación.",
		Syntax:    "delete <id>",
		Arguments: []string{"id: Identificador del evento"},
		Examples:  []string{"delete evt1"},
	},
	{
		Scope:     "Eventos",
		Command:   "join",
		ShortDesc: "Unirse a un evento",
		LongDesc:  "Te apunta a un evento si aún queda sitio.",
		Syntax:    "join <id>",
		Arguments: []string{"id: Identificador del evento"},
		Examples:  []string{"join evt2"},
	},
	{
		Scope:     "Eventos",
		Command:   "leave",
		ShortDesc: "Salir de un evento",
		LongDesc:  "Te borra de la lista de asistentes de un evento.",
		Syntax:    "leave <id>",
		Arguments: []string{"id: Identificador del evento"},
		Examples:  []string{"leave evt2"},
	},
	{
		Scope:     "Eventos",
		Command:   "export",
		ShortDesc: "Exportar a iCalendar",
		LongDesc:  "Guarda los eventos visibles en un fichero .ics que puedes importar en tu calendario.",
		Syntax:    "export <fichero.ics>",
		Arguments: []string{"fichero.ics: Ruta del fichero a escribir"},
		Examples:  []string{"export eventos.ics"},
	},
	{
		Scope:     "Sistema",
		Command:   "help",
		ShortDesc: "Mostrar la ayuda",
		LongDesc:  "Muestra la lista de comandos o la ayuda de un comando.",
		Syntax:    "help [comando]",
		Examples:  []string{"help", "help create"},
	},
	{
		Scope:     "Sistema",
		Command:   "exit",
		ShortDesc: "Salir del programa",
		LongDesc:  "Sale del programa. La sesión no se conserva, pero sí el último usuario.",
		Syntax:    "exit",
	},
	{
		Scope:     "Sistema",
		Command:   "quit",
		ShortDesc: "Salir del programa",
		LongDesc:  "Equivalente a 'exit'.",
		Syntax:    "quit",
	},
}
