package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/meshcfg/internal/ui"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List radios meshcfg has connected to",
	Long: `List the radios recorded in the meshcfg config file, most recently
seen first. A radio is recorded each time meshcfg reads its
configuration.`,
	Args: cobra.NoArgs,
	RunE: runDevicesList,
}

var devicesNameCmd = &cobra.Command{
	Use:   "name <id> <nickname>",
	Short: "Give a known radio a nickname",
	Args:  cobra.ExactArgs(2),
	RunE:  runDevicesName,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.AddCommand(devicesNameCmd)
}

func runDevicesList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	reg := registry()

	ids := reg.DeviceIDs()
	if len(ids) == 0 {
		fmt.Fprintln(out, ui.KeyStyle.Render("No radios recorded yet. Run 'meshcfg show' with a radio attached."))
		return nil
	}

	preferred := reg.PreferredPort()
	for _, id := range ids {
		d := reg.GetDevice(id)
		title := id
		if d.Nickname != "" {
			title = fmt.Sprintf("%s (%s)", d.Nickname, id)
		}
		if d.LastPort == preferred {
			title += ui.NoteStyle.Render("  preferred")
		}
		fmt.Fprintln(out, ui.SectionTitleStyle.Render(title))
		fmt.Fprintf(out, "  %s %s\n", ui.KeyStyle.Render("hardware:"), orDash(d.HWModel))
		fmt.Fprintf(out, "  %s %s\n", ui.KeyStyle.Render("firmware:"), orDash(d.Firmware))
		if !d.LastSeen.IsZero() {
			fmt.Fprintf(out, "  %s %s\n", ui.KeyStyle.Render("last seen:"), d.LastSeen.Local().Format("2006-01-02 15:04"))
		}
	}
	return nil
}

func runDevicesName(cmd *cobra.Command, args []string) error {
	reg := registry()
	if reg.GetDevice(args[0]) == nil {
		return fmt.Errorf("unknown device %q; see 'meshcfg devices'", args[0])
	}
	reg.SetDeviceNickname(args[0], args[1])
	if err := reg.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %q\n", ui.SuccessMarker, args[0], args[1])
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
