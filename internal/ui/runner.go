package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/meshcfg/internal/apply"
	"golang.org/x/sync/errgroup"
)

// ErrInterrupted is returned when the user stops the progress display.
var ErrInterrupted = errors.New("interrupted")

// ApplyWork runs an apply and reports progress to observer.
type ApplyWork func(ctx context.Context, observer apply.Observer) error

// RunApply runs work on its own goroutine while progress is shown on out.
// On a terminal a bubbletea program draws the progress; otherwise each
// finished section is printed as a line. Cancelling the program with
// ctrl+c cancels the work's context; the work still runs to completion so
// the device connection is released.
func RunApply(ctx context.Context, out io.Writer, interactive bool, work ApplyWork) error {
	if !interactive {
		return work(ctx, LineObserver(out))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewProgressModel(GetTerminalWidth()),
		tea.WithOutput(out),
		tea.WithInput(os.Stdin),
		tea.WithContext(ctx),
	)

	g, gctx := errgroup.WithContext(ctx)
	var workErr error

	g.Go(func() error {
		workErr = work(gctx, func(ev apply.Event) {
			program.Send(eventMsg(ev))
		})
		program.Send(finishedMsg{err: workErr})
		return nil
	})

	g.Go(func() error {
		final, err := program.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("progress display: %w", err)
		}
		if m, ok := final.(ProgressModel); ok && m.Interrupted() {
			cancel()
			return ErrInterrupted
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if workErr != nil {
			return workErr
		}
		return err
	}
	return workErr
}

// LineObserver prints one line per finished section. It is used when
// stdout is not a terminal.
func LineObserver(out io.Writer) apply.Observer {
	return func(ev apply.Event) {
		if ev.Result == nil {
			return
		}
		status := apply.PrettyStatus(ev.Result.Status)
		_, _ = fmt.Fprintf(out, "[%d/%d] %s: %s (%s)\n",
			ev.Done, ev.Total, apply.SectionTitle(ev.Section), status,
			ev.Result.Duration.Round(10*time.Millisecond))
	}
}
