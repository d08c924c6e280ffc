package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/muurk/meshcfg/internal/apply"
	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/redact"
)

func TestClampWidth(t *testing.T) {
	tests := []struct {
		width int
		ok    bool
		want  int
	}{
		{80, true, 80},
		{20, true, MinTerminalWidth},
		{300, true, MaxContentWidth},
		{80, false, MinTerminalWidth},
	}
	for _, tt := range tests {
		if got := clampWidth(tt.width, tt.ok); got != tt.want {
			t.Errorf("clampWidth(%d, %v) = %d, want %d", tt.width, tt.ok, got, tt.want)
		}
	}
}

func TestStatusMarker(t *testing.T) {
	tests := map[string]string{
		"Success":   SuccessMarker,
		"Error":     FailureMarker,
		"Timeout":   WarningMarker,
		"No change": NoChangeMarker,
	}
	for status, want := range tests {
		if got := StatusMarker(status); got != want {
			t.Errorf("StatusMarker(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestHeader_SortsParams(t *testing.T) {
	out := NewHeader("Apply configuration", "meshcfg apply", map[string]string{
		"Port":   "/dev/ttyUSB0",
		"Edited": "node.yaml",
	}).SetWidth(80).Render()

	if !strings.Contains(out, "APPLY CONFIGURATION") {
		t.Errorf("Title missing from header:\n%s", out)
	}
	if strings.Index(out, "Edited:") > strings.Index(out, "Port:") {
		t.Errorf("Params not sorted:\n%s", out)
	}
}

func diffFixture() *deviceconfig.Diff {
	original := &deviceconfig.Snapshot{
		LoRa:     &deviceconfig.LoRaSection{ChannelNum: deviceconfig.Ptr(20)},
		Channels: []deviceconfig.Channel{{Index: 0, PSK: deviceconfig.Ptr("AQ==")}},
	}
	edited := &deviceconfig.Snapshot{
		LoRa: &deviceconfig.LoRaSection{ChannelNum: deviceconfig.Ptr(55)},
		Channels: []deviceconfig.Channel{
			{Index: 0, PSK: deviceconfig.Ptr("AQ==")},
			{Index: 1, Name: deviceconfig.Ptr("ops"), PSK: deviceconfig.Ptr("c2VjcmV0c2VjcmV0c2VjcmV0c2VjcmV0")},
		},
	}
	return deviceconfig.ComputeDiff(original, edited)
}

func TestRenderDiff(t *testing.T) {
	out := RenderDiff(diffFixture())

	for _, want := range []string{"LoRa", "lora.channel_num", "55", "upsert", "Planned commands", "--ch-add ops", redact.Marker} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderDiff() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "c2VjcmV0c2VjcmV0c2VjcmV0c2VjcmV0") {
		t.Errorf("RenderDiff() leaked a channel key:\n%s", out)
	}
}

func TestRenderDiff_Empty(t *testing.T) {
	if out := RenderDiff(nil); !strings.Contains(out, "No changes") {
		t.Errorf("RenderDiff(nil) = %q", out)
	}
}

func TestRenderSnapshot(t *testing.T) {
	snap := &deviceconfig.Snapshot{
		User:   &deviceconfig.UserInfo{LongName: deviceconfig.Ptr("Hilltop relay")},
		Device: &deviceconfig.DeviceSection{Role: deviceconfig.Ptr("ROUTER")},
	}

	for _, format := range []string{FormatDetailed, FormatCompact, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			out, err := RenderSnapshot(snap, format)
			if err != nil {
				t.Fatalf("RenderSnapshot() error = %v", err)
			}
			if !strings.Contains(out, "ROUTER") {
				t.Errorf("RenderSnapshot(%s) missing role:\n%s", format, out)
			}
		})
	}

	if _, err := RenderSnapshot(snap, "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
	if _, err := RenderSnapshot(nil, FormatYAML); err == nil {
		t.Error("Expected error for nil snapshot")
	}
}

func TestRenderReport(t *testing.T) {
	report := &apply.Report{
		Status: apply.StatusError,
		Sections: map[deviceconfig.Section]*apply.SectionResult{
			deviceconfig.SectionLoRa: {
				Section:       deviceconfig.SectionLoRa,
				Status:        apply.StatusSuccess,
				ChangedFields: []string{"lora.channel_num"},
				Duration:      1200 * time.Millisecond,
			},
			deviceconfig.SectionChannels: {
				Section: deviceconfig.SectionChannels,
				Status:  apply.StatusTimeout,
				Stderr:  "TIMEOUT",
				Upserts: []apply.OpResult{{Index: 1, Status: apply.StatusTimeout, Stderr: "TIMEOUT"}},
			},
		},
		Errors: []*deviceconfig.ApplyError{
			deviceconfig.NewTimeoutError(deviceconfig.SectionChannels, "TIMEOUT"),
		},
		Mismatches: []deviceconfig.Mismatch{{Section: deviceconfig.SectionLoRa, Key: "lora.hop_limit", Want: 5}},
	}

	out := RenderReport(report)
	for _, want := range []string{"LoRa", "Success", "lora.channel_num", "Channels", "Timeout", "upsert #1", "Errors", "lora.hop_limit"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderReport() missing %q:\n%s", want, out)
		}
	}

	noChange := RenderReport(&apply.Report{Status: apply.StatusNoChange})
	if !strings.Contains(noChange, "nothing was written") {
		t.Errorf("RenderReport(no change) = %q", noChange)
	}
}

func TestResult_Render(t *testing.T) {
	out := NewFailureResult("Apply failed", deviceconfig.NewTimeoutError(deviceconfig.SectionLoRa, "TIMEOUT")).
		SetWidth(80).
		AddDetail("Port", "/dev/ttyUSB0").
		Render()
	for _, want := range []string{"FAILED", "Apply failed", "Port:", "/dev/ttyUSB0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"YES\n", true},
		{"y\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if got := Confirm(strings.NewReader(tt.input), &out, "Write changes", []string{"lora.channel_num"}); got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestProgressModel_Events(t *testing.T) {
	m := NewProgressModel(80)
	res := &apply.SectionResult{Section: deviceconfig.SectionLoRa, Status: apply.StatusSuccess}

	steps := []apply.Event{
		{State: apply.StateExecuting},
		{State: apply.StateExecuting, Section: deviceconfig.SectionLoRa, Done: 0, Total: 2},
		{State: apply.StateExecuting, Section: deviceconfig.SectionLoRa, Result: res, Done: 1, Total: 2},
	}
	for _, ev := range steps {
		next, _ := m.Update(eventMsg(ev))
		m = next.(ProgressModel)
	}

	if m.done != 1 || m.total != 2 {
		t.Errorf("done/total = %d/%d, want 1/2", m.done, m.total)
	}
	if len(m.finished) != 1 || !strings.Contains(m.finished[0], "LoRa") {
		t.Errorf("finished = %v", m.finished)
	}
	if !strings.Contains(m.View(), "[1/2]") {
		t.Errorf("View() missing counter:\n%s", m.View())
	}

	next, cmd := m.Update(finishedMsg{})
	if cmd == nil {
		t.Error("finishedMsg should quit the program")
	}
	if next.(ProgressModel).Interrupted() {
		t.Error("finish is not an interrupt")
	}
}

func TestRunApply_NonInteractive(t *testing.T) {
	var out bytes.Buffer
	res := &apply.SectionResult{Section: deviceconfig.SectionLoRa, Status: apply.StatusSuccess}
	wantErr := errors.New("boom")

	err := RunApply(context.Background(), &out, false, func(ctx context.Context, observer apply.Observer) error {
		observer(apply.Event{State: apply.StateDiffing})
		observer(apply.Event{Section: deviceconfig.SectionLoRa, Result: res, Done: 1, Total: 1})
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("RunApply() error = %v, want %v", err, wantErr)
	}
	if got := out.String(); got != "[1/1] LoRa: Success (0s)\n" {
		t.Errorf("output = %q", got)
	}
}
