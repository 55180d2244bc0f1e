package cli

import (
	"context"
	"fmt"

	"eventplanner/local-app/internal/form"
	"eventplanner/local-app/internal/model"
)

func (c *CLI) handleLogin(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("usage: login [usuario]")
	}
	var username string
	var err error
	if len(args) == 1 {
		username = args[0]
	} else {
		username, err = c.promptForInput("Usuario: ")
		if err != nil {
			return err
		}
	}
	password, err := c.promptForPassword("Contraseña: ")
	if err != nil {
		return err
	}

	username, err = form.ValidateLogin(username, password)
	if err != nil {
		return err
	}
	user, err := c.Session.Login(ctx, username, password)
	if err != nil {
		c.UI.Error(c.Session.Error())
		return nil
	}

	c.UI.Success(fmt.Sprintf("Bienvenido, %s.", user.DisplayName))
	return c.showEvents(ctx, true)
}

func (c *CLI) handleRegister(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: register")
	}
	var data model.RegisterData
	var err error
	if data.FullName, err = c.promptForInput("Nombre completo: "); err != nil {
		return err
	}
	if data.Username, err = c.promptForInput("Nombre de usuario: "); err != nil {
		return err
	}
	if data.Email, err = c.promptForInput("Email: "); err != nil {
		return err
	}
	if data.Phone, err = c.promptForInput("Teléfono: "); err != nil {
		return err
	}
	if data.Password, err = c.promptForPassword("Contraseña: "); err != nil {
		return err
	}
	if data.ConfirmPassword, err = c.promptForPassword("Confirmar contraseña: "); err != nil {
		return err
	}

	data, err = form.ValidateRegister(data)
	if err != nil {
		return err
	}
	user, err := c.Session.Register(ctx, data)
	if err != nil {
		c.UI.Error(c.Session.Error())
		return nil
	}

	c.UI.Success(fmt.Sprintf("Cuenta creada. Bienvenido, %s.", user.DisplayName))
	return c.showEvents(ctx, true)
}

func (c *CLI) handleLogout(ctx context.Context, args []string) error {
	if _, ok := c.Session.User(); !ok {
		c.UI.Info("No has iniciado sesión.")
		return nil
	}
	c.Session.Logout(ctx)
	c.UI.Success("Sesión cerrada.")
	return nil
}

func (c *CLI) handleWhoami(ctx context.Context, args []string) error {
	user, ok := c.Session.User()
	if !ok {
		c.UI.Info("No has iniciado sesión.")
		return nil
	}
	c.UI.Print(c.UI.UserSummary(user))
	if _, hasCreds := c.Session.Credentials(); !hasCreds {
		c.UI.Warning("Tu sesión ha expirado. Inicia sesión de nuevo.")
	}
	return nil
}

// requireUser returns the logged-in user or the not-logged-in error.
func (c *CLI) requireUser() (model.User, error) {
	user, ok := c.Session.User()
	if !ok {
		return model.User{}, errNotLoggedIn
	}
	return user, nil
}
