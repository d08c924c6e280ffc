package deviceconfig

import (
	"strings"
	"testing"
)

func TestVerify(t *testing.T) {
	original := sampleSnapshot()
	edited, err := NewSnapshotBuilder(original).
		SetLoRaChannelNum(55).
		SetRole("ROUTER").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	t.Run("all applied", func(t *testing.T) {
		post := edited.Clone()
		if got := Verify(edited, post); len(got) != 0 {
			t.Errorf("Expected no mismatches, got %v", got)
		}
	})

	t.Run("value not taken", func(t *testing.T) {
		post := edited.Clone()
		post.LoRa.ChannelNum = Ptr(20)

		got := Verify(edited, post)
		if len(got) != 1 {
			t.Fatalf("Expected 1 mismatch, got %v", got)
		}
		if got[0].Section != SectionLoRa || got[0].Key != "lora.channel_num" || got[0].Want != 55 {
			t.Errorf("Mismatch = %+v", got[0])
		}
	})

	t.Run("channel not deleted", func(t *testing.T) {
		removed, _ := NewSnapshotBuilder(original).DeleteChannel(1).Build()
		got := Verify(removed, original)
		if len(got) != 1 || got[0].Key != "channel[1]" {
			t.Errorf("Expected channel[1] mismatch, got %v", got)
		}
	})

	t.Run("nil inputs", func(t *testing.T) {
		if got := Verify(nil, original); got != nil {
			t.Errorf("Expected nil, got %v", got)
		}
	})
}

func TestVerify_Secrets(t *testing.T) {
	original := sampleSnapshot()
	edited := original.Clone()
	edited.Network.WifiSSID = Ptr("field-ap")
	edited.Network.WifiPSK = Ptr("hunter22")

	post := edited.Clone()
	post.Network.WifiPSK = nil

	if got := Verify(edited, post); len(got) != 0 {
		t.Errorf("Unreported secret should be skipped, got %v", got)
	}

	post.Network.WifiPSK = Ptr("other")
	got := Verify(edited, post)
	if len(got) != 1 {
		t.Fatalf("Expected 1 mismatch, got %v", got)
	}
	if s := got[0].String(); strings.Contains(s, "hunter22") {
		t.Errorf("Mismatch leaks secret: %s", s)
	}
}

func TestVerify_DefaultKeyReadBack(t *testing.T) {
	original := sampleSnapshot()
	edited := original.Clone()
	edited.Channels[1].PSK = Ptr("")

	post := edited.Clone()
	post.Channels[1].PSK = Ptr(DefaultKeyBase64)

	if got := Verify(edited, post); len(got) != 0 {
		t.Errorf("Default key read back should verify, got %v", got)
	}
}

func TestFormatMismatches(t *testing.T) {
	if got := FormatMismatches(nil); got != "All values verified" {
		t.Errorf("FormatMismatches(nil) = %q", got)
	}

	got := FormatMismatches([]Mismatch{
		{Section: SectionLoRa, Key: "lora.hop_limit", Want: 5},
		{Section: SectionBluetooth, Key: "bluetooth.fixed_pin", Want: "654321"},
	})
	if !strings.HasPrefix(got, "2 value(s) did not verify") {
		t.Errorf("Unexpected header: %q", got)
	}
	if !strings.Contains(got, "lora.hop_limit expected 5") {
		t.Errorf("Missing hop_limit line: %q", got)
	}
	if strings.Contains(got, "654321") {
		t.Errorf("Pin leaked: %q", got)
	}
}
