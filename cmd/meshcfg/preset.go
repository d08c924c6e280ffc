package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/meshcfg/internal/config"
	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/logging"
	"github.com/muurk/meshcfg/internal/presets"
	"github.com/muurk/meshcfg/internal/secretstore"
	"github.com/muurk/meshcfg/internal/ui"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage named configuration presets",
	Long: `Presets are snapshot files kept in the meshcfg config directory.
Channel keys are not stored in preset files: they are moved to an
encrypted secret store and referenced by secret:// tokens.`,
}

func init() {
	rootCmd.AddCommand(presetCmd)

	presetApply := &cobra.Command{
		Use:   "apply <name>",
		Short: "Apply a preset to the device",
		Args:  cobra.ExactArgs(1),
		RunE:  runPresetApply,
	}
	addApplyFlags(presetApply)

	presetCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List presets",
			Args:  cobra.NoArgs,
			RunE:  runPresetList,
		},
		&cobra.Command{
			Use:   "save <name>",
			Short: "Save the device configuration as a preset",
			Args:  cobra.ExactArgs(1),
			RunE:  runPresetSave,
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Print a preset (keys stay tokens)",
			Args:  cobra.ExactArgs(1),
			RunE:  runPresetShow,
		},
		presetApply,
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a preset and its stored keys",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := presetManager()
				if err != nil {
					return err
				}
				if err := m.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %s\n", presets.CleanName(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "rename <old> <new>",
			Short: "Rename a preset",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := presetManager()
				if err != nil {
					return err
				}
				if err := m.Rename(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", presets.CleanName(args[0]), presets.CleanName(args[1]))
				return nil
			},
		},
	)
}

// openSecrets opens the secret store in the config directory.
func openSecrets() (*secretstore.Store, error) {
	dir, err := config.SecretsDir()
	if err != nil {
		return nil, err
	}
	return secretstore.Open(dir, logging.Named("secrets"))
}

func presetManager() (*presets.Manager, error) {
	dir, err := config.PresetsDir()
	if err != nil {
		return nil, err
	}
	secrets, err := openSecrets()
	if err != nil {
		return nil, err
	}
	return presets.NewManager(dir, secrets, logging.Named("presets")), nil
}

// resolveEdited replaces secret tokens in snap with stored keys.
func resolveEdited(snap *deviceconfig.Snapshot) error {
	secrets, err := openSecrets()
	if err != nil {
		return err
	}
	presets.ResolveSecrets(snap, secrets, logging.Named("presets"))
	return nil
}

func runPresetList(cmd *cobra.Command, args []string) error {
	m, err := presetManager()
	if err != nil {
		return err
	}
	names, err := m.List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, ui.KeyStyle.Render("No presets in "+m.Dir()))
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}

func runPresetSave(cmd *cobra.Command, args []string) error {
	m, err := presetManager()
	if err != nil {
		return err
	}
	conn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	name, err := m.Save(args[0], portable(conn.original))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %s\n", name)
	return nil
}

// portable strips what identifies one particular radio from a snapshot.
func portable(snap *deviceconfig.Snapshot) *deviceconfig.Snapshot {
	out := snap.Clone()
	out.Metadata = nil
	out.MyInfo = nil
	if out.User != nil {
		out.User = &deviceconfig.UserInfo{LongName: out.User.LongName, ShortName: out.User.ShortName}
	}
	return out
}

func runPresetShow(cmd *cobra.Command, args []string) error {
	m, err := presetManager()
	if err != nil {
		return err
	}
	snap, err := m.Load(args[0])
	if err != nil {
		return err
	}
	text, err := ui.RenderSnapshot(snap, ui.FormatYAML)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}

func runPresetApply(cmd *cobra.Command, args []string) error {
	m, err := presetManager()
	if err != nil {
		return err
	}
	patch, err := m.LoadResolved(args[0])
	if err != nil {
		return err
	}

	conn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	edited := overlayEdited(conn.original, patch)
	return applySnapshot(cmd, conn, edited, "meshcfg preset apply "+presets.CleanName(args[0]))
}
