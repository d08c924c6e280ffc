package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/meshcfg/internal/deviceconfig"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Result is the closing box of a command.
type Result struct {
	Type    ResultType
	Title   string
	Details map[string]string
	Error   error
	// Notes are extra lines under the details, e.g. warnings or hints
	Notes []string
	Width int
}

// NewSuccessResult creates a success box.
func NewSuccessResult(title string, details map[string]string) *Result {
	return &Result{Type: ResultSuccess, Title: title, Details: details, Width: GetTerminalWidth()}
}

// NewFailureResult creates a failure box. The troubleshooting hint for
// err is added as a note.
func NewFailureResult(title string, err error) *Result {
	r := &Result{Type: ResultFailure, Title: title, Error: err, Width: GetTerminalWidth()}
	if err != nil {
		r.Notes = append(r.Notes, deviceconfig.GetTroubleshootingHint(err))
	}
	return r
}

// NewWarningResult creates a warning box.
func NewWarningResult(title string, notes ...string) *Result {
	return &Result{Type: ResultWarning, Title: title, Notes: notes, Width: GetTerminalWidth()}
}

// SetWidth overrides the render width.
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail adds a key/value row.
func (r *Result) AddDetail(key, value string) *Result {
	if r.Details == nil {
		r.Details = make(map[string]string)
	}
	r.Details[key] = value
	return r
}

// Render returns the styled box.
func (r *Result) Render() string {
	width := clampWidth(r.Width, true)

	var (
		color  lipgloss.Color
		title  lipgloss.Style
		marker string
		label  string
	)
	switch r.Type {
	case ResultFailure:
		color, title, marker, label = ErrorColor, ErrorTitleStyle, FailureMarker, "FAILED"
	case ResultWarning:
		color, title, marker, label = WarningColor, WarningTitleStyle, WarningMarker, "WARNING"
	default:
		color, title, marker, label = SuccessColor, SuccessTitleStyle, SuccessMarker, "SUCCESS"
	}

	lines := []string{title.Render(fmt.Sprintf("%s  %s  ─  %s", marker, label, r.Title))}

	if r.Error != nil {
		lines = append(lines, "", ErrorMessageStyle.Render("Error: "+r.Error.Error()))
	}

	if len(r.Details) > 0 {
		lines = append(lines, "")
		keys := make([]string, 0, len(r.Details))
		for k := range r.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		keyStyle := KeyStyle.Width(16)
		for _, k := range keys {
			lines = append(lines, keyStyle.Render(k+":")+" "+ValueStyle.Render(r.Details[k]))
		}
	}

	if len(r.Notes) > 0 {
		lines = append(lines, "")
		for _, n := range r.Notes {
			if n == "" {
				continue
			}
			lines = append(lines, NoteStyle.Render("• "+n))
		}
	}

	return boxStyle(color, width).Render(strings.Join(lines, "\n"))
}

func (r *Result) String() string {
	return r.Render()
}
