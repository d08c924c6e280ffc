package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/discovery"
	"github.com/muurk/meshcfg/internal/meshcli"
	"github.com/muurk/meshcfg/internal/ui"
	"github.com/muurk/meshcfg/internal/urls"
)

// Command flags
var (
	showFormat   string
	showOut      string
	editedPath   string
	assumeYes    bool
	reportFile   string
	scanDuration int
)

func init() {
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(applyCmd)

	detectCmd.Flags().IntVar(&scanDuration, "timeout", 0, "mDNS scan time in seconds (default from config)")

	showCmd.Flags().StringVar(&showFormat, "format", ui.FormatDetailed, "Output format (detailed, compact, yaml)")
	showCmd.Flags().StringVar(&showOut, "out", "", "Write the output to a file instead of stdout")

	diffCmd.Flags().StringVar(&editedPath, "edited", "", "Edited snapshot file (YAML, may be partial)")
	_ = diffCmd.MarkFlagRequired("edited")

	applyCmd.Flags().StringVar(&editedPath, "edited", "", "Edited snapshot file (YAML, may be partial)")
	_ = applyCmd.MarkFlagRequired("edited")
	addApplyFlags(applyCmd)
}

// addApplyFlags registers the flags shared by every command that writes.
func addApplyFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Write without asking for confirmation")
	cmd.Flags().StringVar(&reportFile, "report-file", "", "Write the redacted apply report as JSON")
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "List attached radios and network nodes",
	Long: `List serial devices that look like Meshtastic radios and nodes that
advertise the Meshtastic API over mDNS.

The configured meshtastic tool is checked as well.`,
	RunE: runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	check, err := meshcli.CheckTool(ctx, toolPath())
	if err != nil {
		fmt.Fprintln(out, ui.ErrorMessageStyle.Render(ui.FailureMarker+" meshtastic tool: ")+check.Message)
		fmt.Fprintln(out, ui.NoteStyle.Render("  See "+urls.PythonCLI))
	} else {
		fmt.Fprintln(out, ui.SuccessTitleStyle.Render(ui.SuccessMarker+" meshtastic tool: ")+check.Path+" "+ui.NoteStyle.Render(check.Version))
	}
	fmt.Fprintln(out)

	ports := discovery.ListSerialPorts()
	preferred := registry().PreferredPort()
	fmt.Fprintln(out, ui.SectionTitleStyle.Render("Serial devices"))
	if len(ports) == 0 {
		fmt.Fprintln(out, ui.KeyStyle.Render("  none found"))
		fmt.Fprintln(out, ui.NoteStyle.Render("  Radio plugged in? It may need a USB serial driver: "+urls.SerialDrivers))
	}
	for _, p := range ports {
		note := ""
		if p == preferred {
			note = ui.NoteStyle.Render("  (preferred)")
		}
		fmt.Fprintf(out, "  %s%s\n", p, note)
	}
	fmt.Fprintln(out)

	scanner := discovery.NewScanner()
	scanner.Timeout = registry().DiscoveryTimeout()
	if scanDuration > 0 {
		scanner.Timeout = time.Duration(scanDuration) * time.Second
	}
	fmt.Fprintln(out, ui.SectionTitleStyle.Render("Network nodes"))
	nodes, err := scanner.Scan(ctx)
	if err != nil {
		fmt.Fprintln(out, ui.ErrorMessageStyle.Render("  mDNS scan failed: "+err.Error()))
	} else if len(nodes) == 0 {
		fmt.Fprintln(out, ui.KeyStyle.Render("  none found"))
	}
	for _, n := range nodes {
		fmt.Fprintf(out, "  %s  %s\n", n.Target(), ui.NoteStyle.Render(n.String()))
	}

	if target, err := discovery.ResolveTarget(portFlag, preferred, ports); err == nil {
		fmt.Fprintf(out, "\nCommands will use %s. Pass --port or --host to choose another.\n", target)
	}
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show device configuration",
	Long: `Read and display the configuration of a radio.

The yaml format writes a snapshot file that diff and apply accept as
--edited. Channel keys are included in yaml output; keep such files
private or save them as presets, which move keys to the secret store.`,
	Example: `  meshcfg show
  meshcfg show --format compact
  meshcfg show --format yaml --out node.yaml`,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	conn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	text, err := ui.RenderSnapshot(conn.original, showFormat)
	if err != nil {
		return err
	}
	if showOut == "" {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}
	if err := os.WriteFile(showOut, []byte(text), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", showOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", showOut)
	return nil
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what an edited snapshot would change (dry run)",
	Long: `Compare the device configuration with an edited snapshot file and
print the changes and the meshtastic commands an apply would run. Nothing
is written. Secret values are masked.`,
	Example: `  meshcfg diff --edited node.yaml`,
	RunE:    runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	conn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	edited, err := loadEdited(editedPath, conn.original)
	if err != nil {
		return err
	}
	diff := deviceconfig.NewDiffer(conn.logger).ComputeDiff(conn.original, edited)
	fmt.Fprint(cmd.OutOrStdout(), ui.RenderDiff(diff))
	return nil
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Write an edited snapshot to the device",
	Long: `Compute the changes between the device and an edited snapshot file and
write them section by section. A failed section stops the apply; sections
already written stay written. The device is read back afterwards and
values it did not take are listed.

The edited file may be partial: only the fields it sets are compared.
When it lists channels, the list is the whole channel table and channels
left out are deleted.`,
	Example: `  meshcfg apply --edited node.yaml
  meshcfg apply --edited node.yaml --yes --report-file report.json`,
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	conn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	edited, err := loadEdited(editedPath, conn.original)
	if err != nil {
		return err
	}
	return applySnapshot(cmd, conn, edited, "meshcfg apply --edited "+editedPath)
}

// loadEdited reads a snapshot file, resolves its secret tokens and lays it
// over original.
func loadEdited(path string, original *deviceconfig.Snapshot) (*deviceconfig.Snapshot, error) {
	patch, err := deviceconfig.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	if err := resolveEdited(patch); err != nil {
		return nil, err
	}
	return overlayEdited(original, patch), nil
}

// overlayEdited lays patch over original. When patch lists channels the
// list is the whole table: secondaries are renumbered densely and a
// missing row is a delete.
func overlayEdited(original, patch *deviceconfig.Snapshot) *deviceconfig.Snapshot {
	if len(patch.Channels) > 0 {
		patch.Channels = deviceconfig.RenumberChannels(patch.Channels)
	}
	edited := deviceconfig.Overlay(original, patch)
	if len(patch.Channels) > 0 {
		edited.Channels = onlyIndexes(edited.Channels, patch.Channels)
	}
	return edited
}

func onlyIndexes(channels, keep []deviceconfig.Channel) []deviceconfig.Channel {
	want := make(map[int]bool, len(keep))
	for _, ch := range keep {
		want[ch.Index] = true
	}
	out := channels[:0:0]
	for _, ch := range channels {
		if want[ch.Index] || ch.Index == 0 {
			out = append(out, ch)
		}
	}
	return out
}
