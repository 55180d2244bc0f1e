package cli

import (
	"context"
	"fmt"

	"eventplanner/local-app/internal/export"
	"eventplanner/local-app/internal/form"
	"eventplanner/local-app/internal/model"
	"eventplanner/local-app/internal/session"
	"eventplanner/local-app/internal/ui"
)

func (c *CLI) handleList(ctx context.Context, args []string) error {
	if _, err := c.requireUser(); err != nil {
		return err
	}
	return c.showEvents(ctx, false)
}

func (c *CLI) handleRefresh(ctx context.Context, args []string) error {
	if _, err := c.requireUser(); err != nil {
		return err
	}
	return c.showEvents(ctx, true)
}

func (c *CLI) handleFilter(ctx context.Context, args []string) error {
	if _, err := c.requireUser(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: filter <all|attending|organized>")
	}
	f, err := model.ParseEventFilter(args[0])
	if err != nil {
		return withArg(errUnknownFilter, args[0])
	}
	c.Events.SetFilter(ctx, f)
	return c.showEvents(ctx, false)
}

// showEvents prints the filter tabs and the current list, refreshing first if asked.
func (c *CLI) showEvents(ctx context.Context, refresh bool) error {
	if refresh {
		c.Events.Refresh(ctx)
	}
	if err := c.Events.LastError(); err != nil {
		c.UI.Error(session.DisplayMessage(err))
	}
	user, _ := c.Session.User()
	c.UI.Print(c.UI.FilterTabs(c.Events.Filter(), c.Events.CountByFilter()))
	c.UI.Print(c.UI.EventList(c.Events.Events(), c.Events.Loading(), user.ID))
	return nil
}

func (c *CLI) handleCreate(ctx context.Context, args []string) error {
	if _, err := c.requireUser(); err != nil {
		return err
	}
	data, err := c.fillEventForm(form.NewEventForm())
	if err != nil {
		return err
	}
	ev, err := c.Events.Create(ctx, data)
	if err != nil {
		return err
	}
	c.UI.Success(fmt.Sprintf("Evento \"%s\" creado.", ev.Title))
	return c.showEvents(ctx, false)
}

func (c *CLI) handleEdit(ctx context.Context, args []string) error {
	ev, err := c.manageableEvent(ctx, "edit", args)
	if err != nil {
		return err
	}
	data, err := c.fillEventForm(form.EditEventForm(ev))
	if err != nil {
		return err
	}
	if _, err := c.Events.Update(ctx, ev.ID, data); err != nil {
		return err
	}
	c.UI.Success("Evento actualizado.")
	return c.showEvents(ctx, false)
}

func (c *CLI) handleDelete(ctx context.Context, args []string) error {
	ev, err := c.manageableEvent(ctx, "delete", args)
	if err != nil {
		return err
	}
	ok, err := c.confirm(ui.DeleteConfirmation(ev.Title))
	if err != nil {
		return err
	}
	if !ok {
		c.UI.Info("Eliminación cancelada.")
		return nil
	}
	if err := c.Events.Delete(ctx, ev.ID); err != nil {
		return err
	}
	c.UI.Success(fmt.Sprintf("Evento \"%s\" eliminado.", ev.Title))
	return c.showEvents(ctx, false)
}

func (c *CLI) handleJoin(ctx context.Context, args []string) error {
	user, err := c.requireUser()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: join <id>")
	}
	ev, err := c.lookupEvent(ctx, args[0])
	if err != nil {
		return err
	}
	switch ui.CardAction(ev, user.ID) {
	case ui.ActionLeave:
		c.UI.Info("Ya estás unido a este evento.")
		return nil
	case ui.ActionFull:
		return withArg(errEventFull, ev.Title)
	}
	if err := c.Events.Join(ctx, ev.ID); err != nil {
		return err
	}
	c.UI.Success(fmt.Sprintf("Te has unido a \"%s\".", ev.Title))
	return c.showEvents(ctx, false)
}

func (c *CLI) handleLeave(ctx context.Context, args []string) error {
	user, err := c.requireUser()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: leave <id>")
	}
	ev, err := c.lookupEvent(ctx, args[0])
	if err != nil {
		return err
	}
	if !ev.IsAttending(user.ID) {
		c.UI.Info("No estás unido a este evento.")
		return nil
	}
	if err := c.Events.Leave(ctx, ev.ID); err != nil {
		return err
	}
	c.UI.Success(fmt.Sprintf("Has salido de \"%s\".", ev.Title))
	return c.showEvents(ctx, false)
}

func (c *CLI) handleExport(ctx context.Context, args []string) error {
	if _, err := c.requireUser(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: export <fichero.ics>")
	}
	list := c.Events.Events()
	if err := export.WriteFile(args[0], list, c.Now()); err != nil {
		return err
	}
	c.UI.Success(fmt.Sprintf("%d eventos exportados a %s.", len(list), args[0]))
	return nil
}

// lookupEvent finds an event in the last fetched list, refreshing once if it is missing.
func (c *CLI) lookupEvent(ctx context.Context, id string) (model.Event, error) {
	if ev, ok := c.Events.Find(id); ok {
		return ev, nil
	}
	c.Events.Refresh(ctx)
	if ev, ok := c.Events.Find(id); ok {
		return ev, nil
	}
	if err := c.Events.LastError(); err != nil {
		return model.Event{}, err
	}
	return model.Event{}, withArg(errEventNotFound, id)
}

// manageableEvent resolves the id argument of edit and delete. Only the
// organizer is offered these actions.
func (c *CLI) manageableEvent(ctx context.Context, command string, args []string) (model.Event, error) {
	user, err := c.requireUser()
	if err != nil {
		return model.Event{}, err
	}
	if len(args) != 1 {
		return model.Event{}, fmt.Errorf("usage: %s <id>", command)
	}
	ev, err := c.lookupEvent(ctx, args[0])
	if err != nil {
		return model.Event{}, err
	}
	if ui.CardAction(ev, user.ID) != ui.ActionManage {
		return model.Event{}, withArg(errNotOrganizer, ev.Title)
	}
	return ev, nil
}

// fillEventForm prompts for every field, offering the current values as defaults.
func (c *CLI) fillEventForm(f form.EventForm) (model.NewEventData, error) {
	var err error
	if f.Title, err = c.promptWithDefault("Título del evento", f.Title); err != nil {
		return model.NewEventData{}, err
	}
	if f.Description, err = c.promptWithDefault("Descripción", f.Description); err != nil {
		return model.NewEventData{}, err
	}
	if f.Date, err = c.promptWithDefault("Fecha y hora (AAAA-MM-DDTHH:MM)", f.Date); err != nil {
		return model.NewEventData{}, err
	}
	if f.Location, err = c.promptWithDefault("Ubicación", f.Location); err != nil {
		return model.NewEventData{}, err
	}
	if f.MaxAttendees, err = c.promptWithDefault("Máximo de asistentes", f.MaxAttendees); err != nil {
		return model.NewEventData{}, err
	}
	return f.Parse(c.Now())
}
