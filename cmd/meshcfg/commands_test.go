package main

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muurk/meshcfg/internal/deviceconfig"
)

func deviceSnapshot() *deviceconfig.Snapshot {
	return &deviceconfig.Snapshot{
		User: &deviceconfig.UserInfo{
			ID:       deviceconfig.Ptr("!a1b2c3d4"),
			LongName: deviceconfig.Ptr("Hilltop relay"),
			MacAddr:  deviceconfig.Ptr("aa:bb"),
		},
		Metadata: &deviceconfig.Metadata{Port: deviceconfig.Ptr("/dev/ttyUSB0")},
		LoRa:     &deviceconfig.LoRaSection{Region: deviceconfig.Ptr("US"), HopLimit: deviceconfig.Ptr(3)},
		Channels: []deviceconfig.Channel{
			{Index: 0, PSK: deviceconfig.Ptr("AQ==")},
			{Index: 1, Name: deviceconfig.Ptr("ops"), PSK: deviceconfig.Ptr("AQ==")},
			{Index: 2, Name: deviceconfig.Ptr("field")},
		},
	}
}

func TestOverlayEdited_PartialFileKeepsChannels(t *testing.T) {
	original := deviceSnapshot()
	patch := &deviceconfig.Snapshot{LoRa: &deviceconfig.LoRaSection{HopLimit: deviceconfig.Ptr(5)}}

	edited := overlayEdited(original, patch)

	if len(edited.Channels) != 3 {
		t.Errorf("Expected channels kept, got %d", len(edited.Channels))
	}
	if *edited.LoRa.HopLimit != 5 || *edited.LoRa.Region != "US" {
		t.Errorf("lora not merged: %+v", edited.LoRa)
	}
}

func TestOverlayEdited_ChannelListIsWholeTable(t *testing.T) {
	original := deviceSnapshot()
	patch := &deviceconfig.Snapshot{
		Channels: []deviceconfig.Channel{
			{Index: 0},
			{Index: 2, Name: deviceconfig.Ptr("field2")},
		},
	}

	edited := overlayEdited(original, patch)

	if len(edited.Channels) != 2 {
		t.Fatalf("Expected 2 channels, got %+v", edited.Channels)
	}
	ch1, ok := edited.ChannelByIndex(1)
	if !ok || *ch1.Name != "field2" {
		t.Errorf("channel 2 should be renumbered to 1 and merged, got %+v", ch1)
	}
	if ch1.PSK == nil || *ch1.PSK != "AQ==" {
		t.Errorf("unset fields should come from the device channel at the new index, got %+v", ch1)
	}

	plan := deviceconfig.ComputeDiff(original, edited).Channels
	if len(plan.Deletes) != 1 || plan.Deletes[0] != 2 {
		t.Errorf("Deletes = %v, want [2]", plan.Deletes)
	}
}

func TestPortable(t *testing.T) {
	original := deviceSnapshot()
	out := portable(original)

	if out.Metadata != nil || out.MyInfo != nil {
		t.Error("metadata should be stripped")
	}
	if out.User.ID != nil || out.User.MacAddr != nil {
		t.Errorf("node identity should be stripped: %+v", out.User)
	}
	if *out.User.LongName != "Hilltop relay" {
		t.Error("owner name should be kept")
	}
	if original.Metadata == nil {
		t.Error("portable modified its input")
	}
}

func TestPreviewDiff_DoesNotLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	original := deviceSnapshot()
	conn := &connection{original: original, logger: zap.New(core)}

	edited, err := deviceconfig.NewSnapshotBuilder(original).SetRole("ROUTER").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	diff := previewDiff(conn, edited)
	if diff.IsEmpty() {
		t.Fatal("expected a role change")
	}
	if n := logs.Len(); n != 0 {
		t.Errorf("preview logged %d entries, want 0", n)
	}
}
