package cli

import "context"

func (c *CLI) handleExit(ctx context.Context, args []string) error {
	c.UI.Println("Saliendo...")
	return ErrExit
}
