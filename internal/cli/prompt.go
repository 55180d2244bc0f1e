package cli

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
)

// Prompter reads lines and masked passwords from the user.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}

// ReadlinePrompter prompts through a readline instance, which also keeps history.
type ReadlinePrompter struct {
	RL *readline.Instance
}

// NewReadlinePrompter opens a readline instance with the given history file.
func NewReadlinePrompter(historyFile string) (*ReadlinePrompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	return &ReadlinePrompter{RL: rl}, nil
}

func (p *ReadlinePrompter) ReadLine(prompt string) (string, error) {
	p.RL.SetPrompt(prompt)
	return p.RL.Readline()
}

// ReadPassword reads without echo. Passwords are kept out of the history.
func (p *ReadlinePrompter) ReadPassword(prompt string) (string, error) {
	b, err := p.RL.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *ReadlinePrompter) Close() error {
	return p.RL.Close()
}

func (c *CLI) promptForInput(prompt string) (string, error) {
	input, err := c.Prompter.ReadLine(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// promptWithDefault shows the current value and keeps it when the answer is empty.
func (c *CLI) promptWithDefault(label, current string) (string, error) {
	prompt := label + ": "
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, current)
	}
	input, err := c.promptForInput(prompt)
	if err != nil {
		return "", err
	}
	if input == "" {
		return current, nil
	}
	return input, nil
}

func (c *CLI) promptForPassword(prompt string) (string, error) {
	return c.Prompter.ReadPassword(prompt)
}

func (c *CLI) confirm(question string) (bool, error) {
	answer, err := c.promptForInput(question + " (s/N): ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "s", "si", "sí", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
