package apply

import (
	"context"
	"errors"
	"time"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/meshcli"
)

const testKey = "RySCKAybPsBEVVZFj/x9NIhzub1L683th6Nh6bnzeMU="

var ptr = deviceconfig.Ptr[string]

func baseSnapshot() *deviceconfig.Snapshot {
	return &deviceconfig.Snapshot{
		User:   &deviceconfig.UserInfo{LongName: ptr("Hilltop relay"), ShortName: ptr("HTR")},
		Device: &deviceconfig.DeviceSection{Role: ptr("CLIENT")},
		LoRa: &deviceconfig.LoRaSection{
			Region:     ptr("US"),
			ChannelNum: deviceconfig.Ptr(20),
			HopLimit:   deviceconfig.Ptr(3),
			TxEnabled:  deviceconfig.Ptr(true),
		},
		Power: &deviceconfig.PowerSection{LsSecs: deviceconfig.Ptr(300)},
		Channels: []deviceconfig.Channel{
			{Index: 0, PSK: ptr("AQ=="), PSKPresent: true},
			{Index: 1, Name: ptr("ops"), PSK: ptr(testKey), PSKPresent: true},
		},
	}
}

type call struct {
	label   string
	args    []string
	timeout time.Duration
}

// fakeRunner records invocations. Labels without a configured result succeed.
type fakeRunner struct {
	calls   []call
	results map[string]meshcli.Result
	panicOn string
}

func (f *fakeRunner) Run(_ context.Context, section string, args []string, timeout time.Duration) meshcli.Result {
	f.calls = append(f.calls, call{label: section, args: append([]string(nil), args...), timeout: timeout})
	if section == f.panicOn {
		panic("runner exploded")
	}
	if res, ok := f.results[section]; ok {
		res.Args = args
		return res
	}
	return meshcli.Result{Args: args, Stdout: "Connected to radio\nWriting modified preferences to device", Duration: 10 * time.Millisecond}
}

func failed(code int, stderr string) meshcli.Result {
	return meshcli.Result{ExitCode: code, Stderr: stderr, Duration: 5 * time.Millisecond}
}

type fakeSource struct {
	id         Identity
	snapshot   *deviceconfig.Snapshot
	forceErr   error
	cachedErr  error
	notReady   int
	emptyReads int
	panicRead  bool
	closed     int
	reads      []bool
}

func (s *fakeSource) Identity() Identity { return s.id }

func (s *fakeSource) Snapshot(_ context.Context, force bool) (*deviceconfig.Snapshot, error) {
	s.reads = append(s.reads, force)
	if s.panicRead {
		panic("read exploded")
	}
	if force && s.forceErr != nil {
		return nil, s.forceErr
	}
	if !force && s.cachedErr != nil {
		return nil, s.cachedErr
	}
	snap := s.snapshot.Clone()
	if s.emptyReads > 0 {
		s.emptyReads--
		snap.Channels = nil
	}
	return snap, nil
}

func (s *fakeSource) Ready(context.Context) error {
	if s.notReady > 0 {
		s.notReady--
		return errors.New("config not received yet")
	}
	return nil
}

func (s *fakeSource) Close() error {
	s.closed++
	return nil
}

type fakeTransport struct {
	source  *fakeSource
	openErr error
	opens   []string
}

func (t *fakeTransport) Open(_ context.Context, port string) (SnapshotSource, error) {
	t.opens = append(t.opens, port)
	if t.openErr != nil {
		return nil, t.openErr
	}
	return t.source, nil
}
