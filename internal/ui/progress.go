package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/meshcfg/internal/apply"
)

// eventMsg carries one orchestrator event into the program.
type eventMsg apply.Event

// finishedMsg ends the program once the apply worker returns.
type finishedMsg struct{ err error }

// ProgressModel shows a live apply: a bar over the changed sections, a
// spinner on the running step and one line per finished section.
type ProgressModel struct {
	spinner spinner.Model
	bar     progress.Model

	state    apply.State
	current  string
	done     int
	total    int
	finished []string
	started  time.Time

	quitting    bool
	interrupted bool
	err         error
}

// NewProgressModel creates a progress model sized to width.
func NewProgressModel(width int) ProgressModel {
	barWidth := width - 30
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	return ProgressModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(WarningTitleStyle),
		),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		started: time.Now(),
	}
}

// Init implements tea.Model
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m = m.apply(apply.Event(msg))
		return m, nil
	case finishedMsg:
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.interrupted = true
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = clampWidth(msg.Width, true) - 30
		if m.bar.Width < 20 {
			m.bar.Width = 20
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ProgressModel) apply(ev apply.Event) ProgressModel {
	if ev.Total > 0 {
		m.total = ev.Total
		m.done = ev.Done
	}
	switch {
	case ev.Result != nil:
		status := apply.PrettyStatus(ev.Result.Status)
		m.finished = append(m.finished, fmt.Sprintf("  %s %-12s %s",
			StatusStyle(status).Render(StatusMarker(status)),
			apply.SectionTitle(ev.Section),
			KeyStyle.Render(ev.Result.Duration.Round(10*time.Millisecond).String())))
		m.current = ""
	case ev.Section != "":
		m.current = "Writing " + apply.SectionTitle(ev.Section)
	default:
		m.state = ev.State
		m.current = stateLabel(ev.State)
	}
	return m
}

func stateLabel(s apply.State) string {
	switch s {
	case apply.StateDiffing:
		return "Computing changes"
	case apply.StateDetached:
		return "Releasing device"
	case apply.StateWaitingReboot:
		return "Waiting for the device to settle"
	case apply.StateReconnecting:
		return "Reconnecting"
	case apply.StateSnapshotting:
		return "Reading configuration back"
	default:
		return ""
	}
}

// View implements tea.Model
func (m ProgressModel) View() string {
	var b strings.Builder

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	b.WriteString("  ")
	b.WriteString(m.bar.ViewAs(percent))
	b.WriteString(KeyStyle.Render(fmt.Sprintf("  [%d/%d]", m.done, m.total)))
	b.WriteString("\n\n")

	for _, l := range m.finished {
		b.WriteString(l)
		b.WriteString("\n")
	}

	if !m.quitting && m.current != "" {
		b.WriteString("  ")
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.current)
		b.WriteString(NoteStyle.Render(fmt.Sprintf("  (%s)", time.Since(m.started).Round(time.Second))))
		b.WriteString("\n")
	}
	return b.String()
}

// Interrupted reports whether the user pressed ctrl+c.
func (m ProgressModel) Interrupted() bool {
	return m.interrupted
}
