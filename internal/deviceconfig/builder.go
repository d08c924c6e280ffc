package deviceconfig

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// SnapshotBuilder provides a fluent API for building an edited snapshot
// from the one read off the device. Only the fields that are set differ
// from the original, so the diff stays minimal.
//
// Example usage:
//
//	edited, err := NewSnapshotBuilder(original).
//	    SetRole("ROUTER").
//	    SetOwner("Hilltop relay", "HTR").
//	    SetLoRaChannelNum(20).
//	    Build()
type SnapshotBuilder struct {
	snap    *Snapshot
	errs    []error
	isToken func(string) bool
}

// NewSnapshotBuilder creates a builder with a deep copy of original as
// baseline. Pass nil to start from an empty snapshot.
func NewSnapshotBuilder(original *Snapshot) *SnapshotBuilder {
	snap := original.Clone()
	if snap == nil {
		snap = &Snapshot{}
	}
	return &SnapshotBuilder{snap: snap}
}

// WithTokenCheck lets PSK validation accept secret store tokens
func (b *SnapshotBuilder) WithTokenCheck(isToken func(string) bool) *SnapshotBuilder {
	b.isToken = isToken
	return b
}

// SetRole sets the device role
func (b *SnapshotBuilder) SetRole(role string) *SnapshotBuilder {
	if err := ValidateRole(role); err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	if b.snap.Device == nil {
		b.snap.Device = &DeviceSection{}
	}
	b.snap.Device.Role = Ptr(role)
	return b
}

// SetOwner sets the owner names. Empty arguments leave that name unchanged.
func (b *SnapshotBuilder) SetOwner(longName, shortName string) *SnapshotBuilder {
	if b.snap.User == nil {
		b.snap.User = &UserInfo{}
	}
	if longName != "" {
		b.snap.User.LongName = Ptr(longName)
	}
	if shortName != "" {
		b.snap.User.ShortName = Ptr(shortName)
	}
	return b
}

func (b *SnapshotBuilder) lora() *LoRaSection {
	if b.snap.LoRa == nil {
		b.snap.LoRa = &LoRaSection{}
	}
	return b.snap.LoRa
}

// SetLoRaRegion sets the regulatory region
func (b *SnapshotBuilder) SetLoRaRegion(region string) *SnapshotBuilder {
	if err := ValidateRegion(region); err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.lora().Region = Ptr(region)
	return b
}

// SetModemPreset sets the modem preset
func (b *SnapshotBuilder) SetModemPreset(preset string) *SnapshotBuilder {
	if err := ValidateModemPreset(preset); err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.lora().ModemPreset = Ptr(preset)
	return b
}

// SetLoRaChannelNum sets the frequency slot
func (b *SnapshotBuilder) SetLoRaChannelNum(n int) *SnapshotBuilder {
	b.lora().ChannelNum = Ptr(n)
	return b
}

// SetHopLimit sets the hop limit
func (b *SnapshotBuilder) SetHopLimit(n int) *SnapshotBuilder {
	b.lora().HopLimit = Ptr(n)
	return b
}

// SetTxEnabled enables or disables the transmitter
func (b *SnapshotBuilder) SetTxEnabled(enabled bool) *SnapshotBuilder {
	b.lora().TxEnabled = Ptr(enabled)
	return b
}

// SetTxPower sets the transmit power in dBm
func (b *SnapshotBuilder) SetTxPower(dbm int) *SnapshotBuilder {
	b.lora().TxPower = Ptr(dbm)
	return b
}

// SetPower sets the power-saving timers. Negative values leave a timer unchanged.
func (b *SnapshotBuilder) SetPower(lsSecs, waitBluetoothSecs, minWakeSecs int) *SnapshotBuilder {
	if b.snap.Power == nil {
		b.snap.Power = &PowerSection{}
	}
	if lsSecs >= 0 {
		b.snap.Power.LsSecs = Ptr(lsSecs)
	}
	if waitBluetoothSecs >= 0 {
		b.snap.Power.WaitBluetoothSecs = Ptr(waitBluetoothSecs)
	}
	if minWakeSecs >= 0 {
		b.snap.Power.MinWakeSecs = Ptr(minWakeSecs)
	}
	return b
}

// SetPositionBroadcast sets the position broadcast interval and smart mode
func (b *SnapshotBuilder) SetPositionBroadcast(secs int, smart bool) *SnapshotBuilder {
	if b.snap.Position == nil {
		b.snap.Position = &PositionSection{}
	}
	b.snap.Position.PositionBroadcastSecs = Ptr(secs)
	b.snap.Position.PositionBroadcastSmartEnabled = Ptr(smart)
	return b
}

// SetGPSUpdateInterval sets how often the GPS is polled
func (b *SnapshotBuilder) SetGPSUpdateInterval(secs int) *SnapshotBuilder {
	if b.snap.Position == nil {
		b.snap.Position = &PositionSection{}
	}
	b.snap.Position.GPSUpdateInterval = Ptr(secs)
	return b
}

// SetPositionPrecision sets a channel's position precision in bits
func (b *SnapshotBuilder) SetPositionPrecision(index, precision int) *SnapshotBuilder {
	if precision < 0 || precision > MaxPositionPrecision {
		b.errs = append(b.errs, NewValidationError(fmt.Sprintf("position precision must be in [0, %d], got %d", MaxPositionPrecision, precision)))
		return b
	}
	for i := range b.snap.Channels {
		if b.snap.Channels[i].Index == index {
			b.snap.Channels[i].PositionPrecision = Ptr(precision)
			return b
		}
	}
	b.errs = append(b.errs, NewValidationError(fmt.Sprintf("no channel with index %d", index)))
	return b
}

// UpsertChannel sets the set fields of ch on the channel with the same
// index, adding the channel when it does not exist yet.
func (b *SnapshotBuilder) UpsertChannel(ch Channel) *SnapshotBuilder {
	b.snap.Channels = overlayChannels(b.snap.Channels, []Channel{ch})
	return b
}

// DeleteChannel removes a secondary channel. The primary channel cannot be deleted.
func (b *SnapshotBuilder) DeleteChannel(index int) *SnapshotBuilder {
	if index == 0 {
		b.errs = append(b.errs, NewValidationError("the primary channel cannot be deleted"))
		return b
	}
	out := b.snap.Channels[:0]
	found := false
	for _, ch := range b.snap.Channels {
		if ch.Index == index {
			found = true
			continue
		}
		out = append(out, ch)
	}
	if !found {
		b.errs = append(b.errs, NewValidationError(fmt.Sprintf("no channel with index %d", index)))
	}
	b.snap.Channels = out
	return b
}

// Build validates the edited snapshot and returns it
func (b *SnapshotBuilder) Build() (*Snapshot, error) {
	errs := append([]error{}, b.errs...)
	errs = append(errs, Validate(b.snap, b.isToken)...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return b.snap, nil
}

// Overlay returns a copy of base with every field that is set in patch
// taking patch's value. Channels are matched by index; patch channels
// that do not exist in base are added.
func Overlay(base, patch *Snapshot) *Snapshot {
	out := base.Clone()
	if out == nil {
		out = &Snapshot{}
	}
	if patch == nil {
		return out
	}
	p := patch.Clone()

	overlayStruct(reflect.ValueOf(out).Elem(), reflect.ValueOf(p).Elem())
	out.Channels = overlayChannels(out.Channels, p.Channels)
	return out
}

// overlayStruct copies every non-nil pointer field of src into dst,
// descending into nested section structs.
func overlayStruct(dst, src reflect.Value) {
	for i := 0; i < src.NumField(); i++ {
		sf, df := src.Field(i), dst.Field(i)
		if sf.Kind() != reflect.Pointer || sf.IsNil() {
			continue
		}
		if sf.Elem().Kind() == reflect.Struct {
			if df.IsNil() {
				df.Set(reflect.New(sf.Elem().Type()))
			}
			overlayStruct(df.Elem(), sf.Elem())
			continue
		}
		df.Set(sf)
	}
}

func overlayChannels(base, patch []Channel) []Channel {
	out := make([]Channel, len(base))
	copy(out, base)

	for _, pc := range patch {
		merged := false
		for i := range out {
			if out[i].Index != pc.Index {
				continue
			}
			overlayStruct(reflect.ValueOf(&out[i]).Elem(), reflect.ValueOf(&pc).Elem())
			if pc.PSK != nil {
				out[i].PSKPresent = pc.PSKPresent || *pc.PSK != ""
			}
			merged = true
			break
		}
		if !merged {
			out = append(out, pc)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
