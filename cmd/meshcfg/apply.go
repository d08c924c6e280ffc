package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/meshcfg/internal/apply"
	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/logging"
	"github.com/muurk/meshcfg/internal/secretstore"
	"github.com/muurk/meshcfg/internal/ui"
)

// previewDiff computes the diff shown before confirmation. The orchestrator
// computes and logs the diff it applies, so the preview stays silent.
func previewDiff(conn *connection, edited *deviceconfig.Snapshot) *deviceconfig.Diff {
	return deviceconfig.ComputeDiff(conn.original, edited)
}

// errApplyFailed is returned when a section failed so the process exits 1.
var errApplyFailed = errors.New("apply did not complete")

// applySnapshot validates edited, shows the planned changes, asks for
// confirmation and runs the apply engine with live progress.
func applySnapshot(cmd *cobra.Command, conn *connection, edited *deviceconfig.Snapshot, command string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if errs := deviceconfig.Validate(edited, secretstore.IsToken); len(errs) > 0 {
		return deviceconfig.NewValidationError(joinErrors(errs))
	}

	diff := previewDiff(conn, edited)
	if diff.IsEmpty() {
		fmt.Fprintln(out, ui.KeyStyle.Render("No changes; nothing to write."))
		return nil
	}

	fmt.Fprint(out, ui.RenderDiff(diff))
	fmt.Fprintln(out)

	if !assumeYes {
		if !ui.IsTerminal(os.Stdin) {
			return errors.New("refusing to write without confirmation; pass --yes")
		}
		lines := []string{fmt.Sprintf("%d section(s) will be written to %s", len(diff.ChangedSections()), conn.target)}
		if diff.RebootExpected() {
			lines = append(lines, "The device is expected to reboot")
		}
		if !ui.Confirm(os.Stdin, out, "WRITE CONFIGURATION", lines) {
			return nil
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, ui.NewHeader("Apply configuration", command, map[string]string{
		"Target":   conn.target,
		"Sections": sectionList(diff.ChangedSections()),
	}).Render())
	fmt.Fprintln(out)

	orch := apply.NewOrchestrator(conn.transport, conn.session, conn.executor, logging.Named("apply"))

	var report *apply.Report
	interactive := ui.IsTerminal(os.Stdout)
	err := ui.RunApply(ctx, out, interactive, func(ctx context.Context, observer apply.Observer) error {
		var err error
		report, err = orch.WithObserver(observer).Apply(ctx, conn.original, edited)
		return err
	})
	if report == nil {
		if err == nil {
			err = errApplyFailed
		}
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, ui.RenderReport(report))

	if report.Status != apply.StatusError && !diff.Channels.IsEmpty() {
		waitForChannels(ctx, conn)
	}

	if reportFile != "" {
		if werr := writeReport(reportFile, report); werr != nil {
			conn.logger.Warn("could not write report", zap.Error(werr))
		} else {
			fmt.Fprintf(out, "\nReport written to %s\n", reportFile)
		}
	}

	fmt.Fprintln(out)
	switch {
	case report.Status == apply.StatusError:
		fmt.Fprintln(out, ui.NewFailureResult("Apply stopped", firstError(report)).Render())
		return errApplyFailed
	case report.Degraded():
		fmt.Fprintln(out, ui.NewWarningResult("Written, but not verified",
			deviceconfig.GetTroubleshootingHint(firstError(report))).Render())
	case len(report.Mismatches) > 0:
		fmt.Fprintln(out, ui.NewWarningResult("Written, some values not confirmed",
			deviceconfig.FormatMismatches(report.Mismatches)).Render())
	default:
		fmt.Fprintln(out, ui.NewSuccessResult("Configuration written", map[string]string{
			"Target":   conn.target,
			"Duration": report.Duration.Round(10 * time.Millisecond).String(),
		}).Render())
	}
	if errors.Is(err, ui.ErrInterrupted) {
		return err
	}
	return nil
}

// waitForChannels reopens the port and polls until the channel table is
// populated again after a channel write.
func waitForChannels(ctx context.Context, conn *connection) {
	src, err := conn.transport.Open(ctx, conn.target)
	if err != nil {
		conn.logger.Warn("could not reopen for channel check", zap.Error(err))
		return
	}
	defer src.Close()

	if _, err := apply.WaitForChannels(ctx, src, 0, 0); err != nil {
		conn.logger.Warn("channel table still empty", zap.Error(err))
	}
}

func writeReport(path string, report *apply.Report) error {
	data, err := json.MarshalIndent(report.Redacted(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func sectionList(sections []deviceconfig.Section) string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = apply.SectionTitle(s)
	}
	return strings.Join(names, ", ")
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func firstError(report *apply.Report) error {
	if len(report.Errors) == 0 {
		return nil
	}
	return report.Errors[0]
}
