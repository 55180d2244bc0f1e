package ui

import (
	"fmt"
	"strings"
	"time"

	"eventplanner/local-app/internal/model"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatLongDate renders a date as "15 de noviembre de 2025" in local time.
func FormatLongDate(t time.Time) string {
	t = t.In(time.Local)
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// Action is the control offered on an event card.
type Action int

const (
	ActionJoin Action = iota
	ActionFull
	ActionLeave
	ActionManage
)

// CardAction picks the control for userID. Organizers manage, attendees may
// leave, and everyone else may join unless the event is full.
func CardAction(e model.Event, userID string) Action {
	switch {
	case e.IsOrganizer(userID):
		return ActionManage
	case e.IsAttending(userID):
		return ActionLeave
	case e.IsFull():
		return ActionFull
	default:
		return ActionJoin
	}
}

func (a Action) Labels() []string {
	switch a {
	case ActionManage:
		return []string{"Editar", "Eliminar"}
	case ActionLeave:
		return []string{"Ya estás unido (Salir)"}
	case ActionFull:
		return []string{"Completo"}
	default:
		return []string{"Unirse al Evento"}
	}
}

// Enabled is false only for a full event.
func (a Action) Enabled() bool {
	return a != ActionFull
}

// EventCard renders one event as a block of lines.
func (u *UI) EventCard(e model.Event, userID string) string {
	var b strings.Builder
	header := u.colorize(e.Title, ColorBrightWhite) + " " + u.colorize("["+e.ID+"]", ColorDarkGray)
	b.WriteString(header + "\n")
	b.WriteString("  " + u.colorize("Organizado por "+e.Organizer.DisplayName, ColorGray) + "\n")
	if e.Description != "" {
		b.WriteString("  " + e.Description + "\n")
	}
	b.WriteString(fmt.Sprintf("  %s, %s\n", FormatLongDate(e.Date), e.Date.In(time.Local).Format("15:04")))
	b.WriteString("  " + e.Location + "\n")
	b.WriteString(fmt.Sprintf("  %d/%d personas\n", e.Attendees.Len(), e.MaxAttendees))

	action := CardAction(e, userID)
	controls := make([]string, 0, 2)
	for _, label := range action.Labels() {
		switch {
		case !action.Enabled():
			controls = append(controls, u.colorize("("+label+")", ColorDarkGray))
		case action == ActionLeave:
			controls = append(controls, u.colorize("["+label+"]", ColorLightGreen))
		default:
			controls = append(controls, u.colorize("["+label+"]", ColorLightBlue))
		}
	}
	b.WriteString("  " + strings.Join(controls, " ") + "\n")
	return b.String()
}

// FilterTabs renders "{label} ({count})" for every filter, highlighting the active one.
func (u *UI) FilterTabs(active model.EventFilter, counts map[model.EventFilter]int) string {
	tabs := make([]string, 0, len(model.Filters()))
	for _, f := range model.Filters() {
		tab := fmt.Sprintf("%s (%d)", f.Label(), counts[f])
		if f == active {
			if u.useColor {
				tab = u.colorize(tab, ColorLightPurple)
			} else {
				tab = "[" + tab + "]"
			}
		} else if !u.useColor {
			tab = " " + tab + " "
		}
		tabs = append(tabs, tab)
	}
	line := strings.Join(tabs, "  ")
	return line + "\n" + strings.Repeat("─", visibleLength(line)) + "\n"
}

// EventList renders the list body: a loading notice, the empty state, or the cards.
func (u *UI) EventList(events []model.Event, loading bool, userID string) string {
	if loading {
		return u.colorize("Cargando eventos...", ColorGray) + "\n"
	}
	if len(events) == 0 {
		return u.colorize("No se encontraron eventos", ColorBrightWhite) + "\n" +
			u.colorize("Prueba a cambiar de filtro o crea un nuevo evento.", ColorGray) + "\n"
	}
	cards := make([]string, len(events))
	for i, e := range events {
		cards[i] = u.EventCard(e, userID)
	}
	return strings.Join(cards, "\n")
}

// DeleteConfirmation is the question asked before deleting an event.
func DeleteConfirmation(title string) string {
	return fmt.Sprintf("¿Estás seguro de que quieres eliminar el evento \"%s\"? Esta acción no se puede deshacer.", title)
}

// UserSummary renders the logged-in user for the whoami command.
func (u *UI) UserSummary(user model.User) string {
	var b strings.Builder
	b.WriteString(u.colorize(user.DisplayName, ColorLightBlue) + " (" + user.Username + ")\n")
	if user.Email != "" {
		b.WriteString("  " + user.Email + "\n")
	}
	if user.Phone != "" {
		b.WriteString("  " + user.Phone + "\n")
	}
	b.WriteString("  Rol: " + string(user.Role) + "\n")
	return b.String()
}
