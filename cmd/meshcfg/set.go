package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/secretstore"
	"github.com/muurk/meshcfg/internal/urls"
)

// edit is one builder change made by a set or channel command.
type edit func(cmd *cobra.Command, b *deviceconfig.SnapshotBuilder) error

// setFlags holds the values of every set/channel flag. Only flags the user
// passed are applied.
var setFlags struct {
	role        string
	longName    string
	shortName   string
	region      string
	preset      string
	channelNum  int
	hopLimit    int
	txEnabled   bool
	txPower     int
	lsSecs      int
	waitBtSecs  int
	minWakeSecs int
	broadcast   int
	smart       bool
	gpsInterval int

	index     int
	name      string
	psk       string
	uplink    bool
	downlink  bool
	precision int
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change individual settings",
	Long: `Change individual settings without editing a snapshot file. Each
subcommand builds an edited snapshot from the device configuration and
goes through the same diff, confirmation and apply steps as 'apply'.`,
}

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Add, change or delete channels",
	Long: `Add, change or delete channels. Index 0 is the primary channel and
cannot be deleted. Deleting a channel renumbers the ones above it on the
device.

Channel settings: ` + urls.ChannelConfig,
}

func init() {
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(channelCmd)

	role := editCommand("role <ROLE>", "Set the device role (CLIENT, ROUTER, ...)", cobra.ExactArgs(1),
		func(cmd *cobra.Command, b *deviceconfig.SnapshotBuilder) error {
			b.SetRole(cmd.Flags().Arg(0))
			return nil
		})

	owner := editCommand("owner", "Set the owner long and short names", cobra.NoArgs,
		func(cmd *cobra.Command, b *deviceconfig.SnapshotBuilder) error {
			if !changed(cmd, "long", "short") {
				return fmt.Errorf("pass --long and/or --short")
			}
			b.SetOwner(setFlags.longName, setFlags.shortName)
			return nil
		})
	owner.Flags().StringVar(&setFlags.longName, "long", "", "Long name (up to 39 characters)")
	owner.Flags().StringVar(&setFlags.shortName, "short", "", "Short name (up to 4 characters)")

	lora := editCommand("lora", "Set radio settings", cobra.NoArgs, editLoRa)
	lora.Long = "Set radio settings. Changing region or modem preset reboots the device.\n\nLoRa settings: " + urls.LoRaConfig
	lora.Flags().StringVar(&setFlags.region, "region", "", "Region (US, EU_868, ...)")
	lora.Flags().StringVar(&setFlags.preset, "preset", "", "Modem preset (LONG_FAST, ...)")
	lora.Flags().IntVar(&setFlags.channelNum, "channel-num", 0, "Frequency slot (0 derives it from the primary channel name)")
	lora.Flags().IntVar(&setFlags.hopLimit, "hop-limit", 3, "Hop limit")
	lora.Flags().BoolVar(&setFlags.txEnabled, "tx-enabled", true, "Enable the transmitter")
	lora.Flags().IntVar(&setFlags.txPower, "tx-power", 0, "Transmit power in dBm (0 uses the region maximum)")

	power := editCommand("power", "Set power-saving timers", cobra.NoArgs,
		func(cmd *cobra.Command, b *deviceconfig.SnapshotBuilder) error {
			ls, wait, wake := -1, -1, -1
			if changed(cmd, "ls-secs") {
				ls = setFlags.lsSecs
			}
			if changed(cmd, "wait-bluetooth-secs") {
				wait = setFlags.waitBtSecs
			}
			if changed(cmd, "min-wake-secs") {
				wake = setFlags.minWakeSecs
			}
			b.SetPower(ls, wait, wake)
			return nil
		})
	power.Flags().IntVar(&setFlags.lsSecs, "ls-secs", 0, "Light sleep seconds")
	power.Flags().IntVar(&setFlags.waitBtSecs, "wait-bluetooth-secs", 0, "Seconds to wait for Bluetooth before sleeping")
	power.Flags().IntVar(&setFlags.minWakeSecs, "min-wake-secs", 0, "Minimum wake seconds")

	position := editCommand("position", "Set position broadcast", cobra.NoArgs,
		func(cmd *cobra.Command, b *deviceconfig.SnapshotBuilder) error {
			if changed(cmd, "broadcast-secs", "smart") {
				b.SetPositionBroadcast(setFlags.broadcast, setFlags.smart)
			}
			if changed(cmd, "gps-update-interval") {
				b.SetGPSUpdateInterval(setFlags.gpsInterval)
			}
			if changed(cmd, "channel", "precision") {
				b.SetPositionPrecision(setFlags.index, setFlags.precision)
			}
			return nil
		})
	position.Flags().IntVar(&setFlags.broadcast, "broadcast-secs", 900, "Position broadcast interval")
	position.Flags().BoolVar(&setFlags.smart, "smart", true, "Smart position broadcast")
	position.Flags().IntVar(&setFlags.gpsInterval, "gps-update-interval", 120, "GPS update interval in seconds")
	position.Flags().IntVar(&setFlags.index, "channel", 0, "Channel whose position precision --precision sets")
	position.Flags().IntVar(&setFlags.precision, "precision", 13, "Position precision in bits (0 disables sharing)")

	setCmd.AddCommand(role, owner, lora, power, position)

	chSet := editCommand("set", "Add or change a channel", cobra.NoArgs, editChannel)
	chSet.Flags().IntVar(&setFlags.index, "index", 0, "Channel index (0 is the primary channel)")
	chSet.Flags().StringVar(&setFlags.name, "name", "", "Channel name")
	chSet.Flags().StringVar(&setFlags.psk, "psk", "", `Key: base64, "default" or a secret:// token`)
	chSet.Flags().BoolVar(&setFlags.uplink, "uplink", false, "Uplink to MQTT")
	chSet.Flags().BoolVar(&setFlags.downlink, "downlink", false, "Downlink from MQTT")
	chSet.Flags().IntVar(&setFlags.precision, "precision", 0, "Position precision in bits")
	_ = chSet.MarkFlagRequired("index")

	chDel := editCommand("delete", "Delete a secondary channel", cobra.NoArgs,
		func(cmd *cobra.Command, b *deviceconfig.SnapshotBuilder) error {
			b.DeleteChannel(setFlags.index)
			return nil
		})
	chDel.Flags().IntVar(&setFlags.index, "index", 0, "Channel index")
	_ = chDel.MarkFlagRequired("index")

	channelCmd.AddCommand(chSet, chDel)
}

// editCommand builds a command that edits the device snapshot and applies
// the result.
func editCommand(use, short string, args cobra.PositionalArgs, fn edit) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			b := deviceconfig.NewSnapshotBuilder(conn.original).WithTokenCheck(secretstore.IsToken)
			if err := fn(cmd, b); err != nil {
				return err
			}
			edited, err := b.Build()
			if err != nil {
				return err
			}
			if err := resolveEdited(edited); err != nil {
				return err
			}
			return applySnapshot(cmd, conn, edited, cmd.CommandPath())
		},
	}
	addApplyFlags(cmd)
	return cmd
}

func editLoRa(cmd *cobra.Command, b *deviceconfig.SnapshotBuilder) error {
	if !changed(cmd, "region", "preset", "channel-num", "hop-limit", "tx-enabled", "tx-power") {
		return fmt.Errorf("pass at least one setting to change")
	}
	if changed(cmd, "region") {
		b.SetLoRaRegion(setFlags.region)
	}
	if changed(cmd, "preset") {
		b.SetModemPreset(setFlags.preset)
	}
	if changed(cmd, "channel-num") {
		b.SetLoRaChannelNum(setFlags.channelNum)
	}
	if changed(cmd, "hop-limit") {
		b.SetHopLimit(setFlags.hopLimit)
	}
	if changed(cmd, "tx-enabled") {
		b.SetTxEnabled(setFlags.txEnabled)
	}
	if changed(cmd, "tx-power") {
		b.SetTxPower(setFlags.txPower)
	}
	return nil
}

func editChannel(cmd *cobra.Command, b *deviceconfig.SnapshotBuilder) error {
	ch := deviceconfig.Channel{Index: setFlags.index}
	if changed(cmd, "name") {
		ch.Name = deviceconfig.Ptr(setFlags.name)
	}
	if changed(cmd, "psk") {
		ch.PSK = deviceconfig.Ptr(setFlags.psk)
	}
	if changed(cmd, "uplink") {
		ch.UplinkEnabled = deviceconfig.Ptr(setFlags.uplink)
	}
	if changed(cmd, "downlink") {
		ch.DownlinkEnabled = deviceconfig.Ptr(setFlags.downlink)
	}
	if changed(cmd, "precision") {
		ch.PositionPrecision = deviceconfig.Ptr(setFlags.precision)
	}
	b.UpsertChannel(ch)
	return nil
}

// changed reports whether any of the named flags was passed.
func changed(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}
