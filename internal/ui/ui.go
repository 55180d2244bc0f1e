// Package ui renders the event list and session messages to a terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type UI struct {
	writer   io.Writer
	useColor bool
}

func NewUI(w io.Writer, useColor bool) *UI {
	return &UI{writer: w, useColor: useColor}
}

// UseColor resolves the configured color mode ("auto", "always", "never")
// against the output file. Auto enables color only on a terminal.
func UseColor(mode string, out *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return out != nil && term.IsTerminal(int(out.Fd()))
	}
}

func (u *UI) Writer() io.Writer {
	return u.writer
}

func (u *UI) colorize(message string, color Color) string {
	if !u.useColor || color == ColorDefault {
		return message
	}
	return fmt.Sprintf("%s%s%s", color, message, ColorDefault)
}

func (u *UI) Print(message string) {
	fmt.Fprint(u.writer, message)
}

func (u *UI) Printf(format string, args ...interface{}) {
	fmt.Fprintf(u.writer, format, args...)
}

func (u *UI) Println(message string) {
	fmt.Fprintln(u.writer, message)
}

func (u *UI) PrintlnColored(message string, color Color) {
	fmt.Fprintln(u.writer, u.colorize(message, color))
}

func (u *UI) Error(message string) {
	u.Println(u.colorize("!", ColorRed) + " " + u.colorize(message, ColorLightOrange))
}

func (u *UI) Success(message string) {
	u.PrintlnColored(message, ColorLightGreen)
}

func (u *UI) Warning(message string) {
	u.Println(u.colorize("?", ColorLightRed) + " " + u.colorize(message, ColorLightYellow))
}

func (u *UI) Info(message string) {
	u.PrintlnColored(message, ColorGray)
}

// GetPromptString shows the logged-in user and the active filter.
func (u *UI) GetPromptString(user, filter string) string {
	var promptBuilder strings.Builder
	if user != "" {
		promptBuilder.WriteString(u.colorize(user, ColorLightBlue))
		if filter != "" {
			promptBuilder.WriteString(u.colorize(" @ ", ColorWhite))
			promptBuilder.WriteString(u.colorize(filter, ColorLightPurple))
		}
		promptBuilder.WriteString(" ")
	}
	promptBuilder.WriteString(u.colorize("> ", ColorGreen))
	return promptBuilder.String()
}

// PrintCommand echoes a command read from a script file.
func (u *UI) PrintCommand(command string) {
	u.PrintlnColored(command, ColorWhite)
}

func visibleLength(s string) int {
	visible := 0
	inEscapeSeq := false
	for _, r := range s {
		if inEscapeSeq {
			if r == 'm' {
				inEscapeSeq = false
			}
		} else if r == '\x1b' {
			inEscapeSeq = true
		} else {
			visible++
		}
	}
	return visible
}
