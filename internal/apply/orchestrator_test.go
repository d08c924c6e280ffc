package apply

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/meshcli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type harness struct {
	orch      *Orchestrator
	runner    *fakeRunner
	initial   *fakeSource
	reopened  *fakeSource
	transport *fakeTransport
	sleeps    []time.Duration
	states    []State
}

// newHarness wires an orchestrator to fakes. The reopened source reads
// back post.
func newHarness(runner *fakeRunner, post *deviceconfig.Snapshot) *harness {
	h := &harness{
		runner:   runner,
		initial:  &fakeSource{id: Identity{Port: "/dev/ttyUSB0"}, snapshot: baseSnapshot()},
		reopened: &fakeSource{id: Identity{Port: "/dev/ttyUSB0"}, snapshot: post},
	}
	h.transport = &fakeTransport{source: h.reopened}
	h.orch = NewOrchestrator(h.transport, h.initial, runner, zap.NewNop())
	h.orch.sleep = func(_ context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return nil
	}
	h.orch.readyWindow = 200 * time.Millisecond
	h.orch.readyInterval = 5 * time.Millisecond
	h.orch.WithObserver(func(ev Event) {
		if ev.Section == "" {
			h.states = append(h.states, ev.State)
		}
	})
	return h
}

func TestApply_LogsDiffOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	original := baseSnapshot()
	edited, err := deviceconfig.NewSnapshotBuilder(original).SetLoRaChannelNum(55).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	h := newHarness(&fakeRunner{}, edited)
	h.orch.logger = zap.New(core)
	h.orch.differ = deviceconfig.NewDiffer(h.orch.logger)

	if _, err := h.orch.Apply(context.Background(), original, edited); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if n := logs.FilterMessage("Computed configuration diff").Len(); n != 1 {
		t.Errorf("diff logged %d times, want 1", n)
	}
}

func TestApply_NoChange(t *testing.T) {
	original := baseSnapshot()
	h := newHarness(&fakeRunner{}, original)

	report, err := h.orch.Apply(context.Background(), original, original.Clone())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if report.Status != StatusNoChange {
		t.Errorf("Status = %s, want no_change", report.Status)
	}
	if len(report.Sections) != 0 {
		t.Errorf("expected no section results, got %v", report.Sections)
	}
	if len(h.runner.calls) != 0 {
		t.Errorf("tool ran %d times", len(h.runner.calls))
	}
	if h.initial.closed != 0 {
		t.Error("connection detached for an empty diff")
	}
	if len(h.transport.opens) != 0 || len(h.sleeps) != 0 {
		t.Error("reconnect or settle wait happened for an empty diff")
	}
	if report.State != StateDone {
		t.Errorf("State = %s, want done", report.State)
	}
}

func TestApply_ChannelNum(t *testing.T) {
	original := baseSnapshot()
	edited, err := deviceconfig.NewSnapshotBuilder(original).SetLoRaChannelNum(55).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	h := newHarness(&fakeRunner{}, edited)

	report, err := h.orch.Apply(context.Background(), original, edited)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	wantDiff := deviceconfig.Changeset{"lora.channel_num": 55}
	if got := report.Diff.ChangedSections(); !reflect.DeepEqual(got, []deviceconfig.Section{deviceconfig.SectionLoRa}) {
		t.Errorf("ChangedSections = %v, want [lora]", got)
	}
	if got := report.Diff.Changeset(deviceconfig.SectionLoRa); !reflect.DeepEqual(got, wantDiff) {
		t.Errorf("lora changeset = %v, want %v", got, wantDiff)
	}

	if len(h.runner.calls) != 1 {
		t.Fatalf("expected exactly 1 tool run, got %d", len(h.runner.calls))
	}
	if got := h.runner.calls[0].args; !reflect.DeepEqual(got, []string{"--set", "lora.channel_num", "55"}) {
		t.Errorf("args = %v", got)
	}

	if report.RebootExpected {
		t.Error("channel_num must not expect a reboot")
	}
	if !reflect.DeepEqual(h.sleeps, []time.Duration{SettleDelay}) {
		t.Errorf("sleeps = %v, want one settle wait", h.sleeps)
	}

	if report.Status != StatusSuccess || report.State != StateDone {
		t.Errorf("Status/State = %s/%s, want success/done", report.Status, report.State)
	}
	if len(report.Errors) != 0 {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
	if report.PostSnapshot == nil || *report.PostSnapshot.LoRa.ChannelNum != 55 {
		t.Error("post-apply snapshot missing")
	}
	if len(report.Mismatches) != 0 {
		t.Errorf("unexpected mismatches: %v", report.Mismatches)
	}

	if h.initial.closed != 1 {
		t.Errorf("initial connection closed %d times, want 1", h.initial.closed)
	}
	if h.reopened.closed != 1 {
		t.Errorf("reopened connection closed %d times, want 1", h.reopened.closed)
	}
	if !reflect.DeepEqual(h.transport.opens, []string{"/dev/ttyUSB0"}) {
		t.Errorf("opens = %v", h.transport.opens)
	}
	if !reflect.DeepEqual(h.reopened.reads, []bool{true}) {
		t.Errorf("reads = %v, want one forced read", h.reopened.reads)
	}

	wantStates := []State{
		StateDiffing, StateDetached, StateExecuting, StateWaitingReboot,
		StateReconnecting, StateSnapshotting, StateDone,
	}
	if !reflect.DeepEqual(h.states, wantStates) {
		t.Errorf("states = %v, want %v", h.states, wantStates)
	}
}

func TestApply_RoleWaitsEvenWhenSectionFails(t *testing.T) {
	original := baseSnapshot()
	edited, _ := deviceconfig.NewSnapshotBuilder(original).SetRole("ROUTER").Build()

	runner := &fakeRunner{results: map[string]meshcli.Result{"device": failed(1, "Error: rejected")}}
	h := newHarness(runner, original)

	report, err := h.orch.Apply(context.Background(), original, edited)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if got := report.Diff.Changeset(deviceconfig.SectionDevice); !reflect.DeepEqual(got, deviceconfig.Changeset{"device.role": "ROUTER"}) {
		t.Errorf("device changeset = %v", got)
	}
	if !report.RebootExpected {
		t.Error("role change must expect a reboot")
	}
	if len(h.sleeps) != 1 {
		t.Errorf("expected settle wait, got %v", h.sleeps)
	}
	if report.Status != StatusError || report.State != StateAborted {
		t.Errorf("Status/State = %s/%s, want error/aborted", report.Status, report.State)
	}
}

func TestApply_AbortsAfterFailedSection(t *testing.T) {
	original := baseSnapshot()
	edited, err := deviceconfig.NewSnapshotBuilder(original).
		SetRole("ROUTER").
		SetOwner("Valley relay", "").
		SetLoRaChannelNum(55).
		SetPower(600, -1, -1).
		DeleteChannel(1).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	runner := &fakeRunner{results: map[string]meshcli.Result{"lora": failed(1, "Error: bad channel")}}
	h := newHarness(runner, original)

	report, _ := h.orch.Apply(context.Background(), original, edited)

	for _, s := range []deviceconfig.Section{deviceconfig.SectionDevice, deviceconfig.SectionOwner, deviceconfig.SectionLoRa} {
		if _, ok := report.Section(s); !ok {
			t.Errorf("missing result for %s", s)
		}
	}
	for _, s := range []deviceconfig.Section{deviceconfig.SectionPower, deviceconfig.SectionChannels} {
		if res, ok := report.Section(s); ok {
			t.Errorf("section %s after the failure has a result: %+v", s, res)
		}
	}
	if len(runner.calls) != 3 {
		t.Errorf("expected 3 tool runs, got %d", len(runner.calls))
	}
	if report.Status != StatusError {
		t.Errorf("Status = %s, want error", report.Status)
	}
	if len(report.Errors) == 0 || report.Errors[0].Section != deviceconfig.SectionLoRa || !deviceconfig.IsExecutionError(report.Errors[0]) {
		t.Errorf("Errors = %v", report.Errors)
	}
	if h.reopened.closed != 1 {
		t.Error("connection not released after abort")
	}
}

func TestApply_TimeoutSection(t *testing.T) {
	original := baseSnapshot()
	edited, _ := deviceconfig.NewSnapshotBuilder(original).SetHopLimit(5).Build()

	runner := &fakeRunner{results: map[string]meshcli.Result{"lora": failed(meshcli.ExitCodeTimeout, "TIMEOUT")}}
	h := newHarness(runner, original)

	report, _ := h.orch.Apply(context.Background(), original, edited)

	res, ok := report.Section(deviceconfig.SectionLoRa)
	if !ok || res.Status != StatusTimeout {
		t.Fatalf("lora result = %+v", res)
	}
	if len(report.Errors) != 1 || !deviceconfig.IsTimeoutError(report.Errors[0]) {
		t.Errorf("Errors = %v", report.Errors)
	}
	if len(h.sleeps) != 0 {
		t.Errorf("no section succeeded and no reboot expected, but waited %v", h.sleeps)
	}
}

func TestApply_ReconnectFailureKeepsResults(t *testing.T) {
	original := baseSnapshot()
	edited, _ := deviceconfig.NewSnapshotBuilder(original).SetLoRaChannelNum(55).Build()

	h := newHarness(&fakeRunner{}, edited)
	h.transport.openErr = errors.New("port busy")

	report, err := h.orch.Apply(context.Background(), original, edited)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if res, ok := report.Section(deviceconfig.SectionLoRa); !ok || res.Status != StatusSuccess {
		t.Errorf("lora result lost: %+v", res)
	}
	if report.Status != StatusSuccess {
		t.Errorf("Status = %s, want success", report.Status)
	}
	if !report.Degraded() {
		t.Error("expected degraded report")
	}
	if len(report.Errors) != 1 || !deviceconfig.IsReconnectError(report.Errors[0]) {
		t.Errorf("Errors = %v", report.Errors)
	}
	if report.PostSnapshot != nil {
		t.Error("post snapshot without a connection")
	}
	if len(h.transport.opens) < 2 {
		t.Errorf("expected reconnect retries, got %d opens", len(h.transport.opens))
	}
}

func TestApply_ReadyRetries(t *testing.T) {
	original := baseSnapshot()
	edited, _ := deviceconfig.NewSnapshotBuilder(original).SetLoRaChannelNum(55).Build()

	h := newHarness(&fakeRunner{}, edited)
	h.reopened.notReady = 3

	report, _ := h.orch.Apply(context.Background(), original, edited)

	if len(report.Errors) != 0 {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
	if len(h.transport.opens) != 1 {
		t.Errorf("transport opened %d times, want 1", len(h.transport.opens))
	}
	if report.PostSnapshot == nil {
		t.Error("post snapshot missing")
	}
}

func TestApply_SnapshotFallback(t *testing.T) {
	original := baseSnapshot()
	edited, _ := deviceconfig.NewSnapshotBuilder(original).SetLoRaChannelNum(55).Build()

	h := newHarness(&fakeRunner{}, edited)
	h.reopened.forceErr = errors.New("read timed out")

	report, _ := h.orch.Apply(context.Background(), original, edited)

	if !reflect.DeepEqual(h.reopened.reads, []bool{true, false}) {
		t.Errorf("reads = %v, want forced then cached", h.reopened.reads)
	}
	if report.PostSnapshot == nil {
		t.Error("fallback snapshot not attached")
	}
	if len(report.Errors) != 0 {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
}

func TestApply_SnapshotFailure(t *testing.T) {
	original := baseSnapshot()
	edited, _ := deviceconfig.NewSnapshotBuilder(original).SetLoRaChannelNum(55).Build()

	h := newHarness(&fakeRunner{}, edited)
	h.reopened.forceErr = errors.New("read timed out")
	h.reopened.cachedErr = errors.New("no data")

	report, _ := h.orch.Apply(context.Background(), original, edited)

	if len(report.Errors) != 1 || report.Errors[0].Type != deviceconfig.ErrTypeSnapshot {
		t.Errorf("Errors = %v", report.Errors)
	}
	if h.reopened.closed != 1 {
		t.Error("connection not released")
	}
}

func TestApply_PanicStillReleasesConnection(t *testing.T) {
	original := baseSnapshot()
	edited, _ := deviceconfig.NewSnapshotBuilder(original).SetLoRaChannelNum(55).Build()

	h := newHarness(&fakeRunner{}, edited)
	h.reopened.panicRead = true

	report, err := h.orch.Apply(context.Background(), original, edited)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if report.Status != StatusError || report.State != StateAborted {
		t.Errorf("Status/State = %s/%s, want error/aborted", report.Status, report.State)
	}
	if h.reopened.closed != 1 {
		t.Error("connection not released after panic")
	}
	if _, ok := report.Section(deviceconfig.SectionLoRa); !ok {
		t.Error("section result lost after panic")
	}
}

func TestApply_Unrecoverable(t *testing.T) {
	original := baseSnapshot()

	orch := NewOrchestrator(&fakeTransport{}, nil, &fakeRunner{}, nil)
	if _, err := orch.Apply(context.Background(), original, original); !errors.Is(err, deviceconfig.ErrNoConnection) {
		t.Errorf("expected ErrNoConnection, got %v", err)
	}

	h := newHarness(&fakeRunner{}, original)
	if _, err := h.orch.Apply(context.Background(), nil, original); !errors.Is(err, deviceconfig.ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
	if h.initial.closed != 0 {
		t.Error("connection touched for an unrecoverable error")
	}
}

func TestApply_SectionEvents(t *testing.T) {
	original := baseSnapshot()
	edited, _ := deviceconfig.NewSnapshotBuilder(original).SetRole("ROUTER").SetLoRaChannelNum(55).Build()

	h := newHarness(&fakeRunner{}, edited)
	var finished []deviceconfig.Section
	h.orch.WithObserver(func(ev Event) {
		if ev.Result != nil {
			finished = append(finished, ev.Section)
			if ev.Total != 2 {
				t.Errorf("Total = %d, want 2", ev.Total)
			}
		}
	})

	if _, err := h.orch.Apply(context.Background(), original, edited); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := []deviceconfig.Section{deviceconfig.SectionDevice, deviceconfig.SectionLoRa}
	if !reflect.DeepEqual(finished, want) {
		t.Errorf("finished = %v, want %v", finished, want)
	}
}
