package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm prints a warning box with the given lines and asks the user to
// type "yes". Any other answer, or a read error, declines.
func Confirm(in io.Reader, out io.Writer, title string, lines []string) bool {
	width := GetTerminalWidth()

	body := []string{WarningTitleStyle.Render(WarningMarker + "  " + title), ""}
	for _, l := range lines {
		body = append(body, ValueStyle.Render("• "+l))
	}
	_, _ = fmt.Fprintln(out, boxStyle(WarningColor, width).Render(strings.Join(body, "\n")))
	_, _ = fmt.Fprintln(out)

	prompt := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	_, _ = fmt.Fprint(out, prompt.Render(`Type "yes" to write these changes: `))

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}
	if strings.EqualFold(strings.TrimSpace(answer), "yes") {
		return true
	}
	_, _ = fmt.Fprintln(out, KeyStyle.Render("  Cancelled; nothing was written."))
	return false
}
