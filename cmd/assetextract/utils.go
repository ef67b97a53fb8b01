package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var red = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

func errorLabel(w io.Writer) string {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return red.Render("ERROR")
	}
	return "ERROR"
}
