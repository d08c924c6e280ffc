package apply

import (
	"context"
	"fmt"
	"time"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/logging"
	"go.uber.org/zap"
)

// Engine timing policy.
const (
	// SettleDelay is the pause before reopening the transport after any
	// write succeeded or a reboot is expected.
	SettleDelay = 2 * time.Second
	// ReadyWindow bounds the reconnect poll.
	ReadyWindow = 15 * time.Second
	// ReadyInterval is the pause between reconnect attempts.
	ReadyInterval = 200 * time.Millisecond
)

// State is a step of one apply run.
type State int

const (
	StateIdle State = iota
	StateDiffing
	StateDetached
	StateExecuting
	StateWaitingReboot
	StateReconnecting
	StateSnapshotting
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiffing:
		return "diffing"
	case StateDetached:
		return "detached"
	case StateExecuting:
		return "executing"
	case StateWaitingReboot:
		return "waiting_reboot"
	case StateReconnecting:
		return "reconnecting"
	case StateSnapshotting:
		return "snapshotting"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event reports apply progress to an Observer. Result is set once a
// section has finished.
type Event struct {
	State   State
	Section deviceconfig.Section
	Result  *SectionResult
	// Done and Total count non-empty sections
	Done  int
	Total int
}

// Observer receives progress events. It is called on the apply worker and
// must not block.
type Observer func(Event)

// Orchestrator runs one apply at a time against a single device
// connection. Callers must not start a second Apply before the first
// returns.
type Orchestrator struct {
	transport Transport
	source    SnapshotSource
	port      string
	executor  *SectionExecutor
	differ    *deviceconfig.Differ
	logger    *zap.Logger
	observer  Observer
	state     State

	settle        time.Duration
	readyWindow   time.Duration
	readyInterval time.Duration
	sleep         func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an orchestrator for the device behind source.
// The transport reopens the same port after the tool has run.
func NewOrchestrator(transport Transport, source SnapshotSource, runner Runner, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		transport:     transport,
		source:        source,
		executor:      NewSectionExecutor(runner, logger),
		differ:        deviceconfig.NewDiffer(logger),
		logger:        logger,
		settle:        SettleDelay,
		readyWindow:   ReadyWindow,
		readyInterval: ReadyInterval,
		sleep:         sleepContext,
	}
	if source != nil {
		o.port = source.Identity().Port
	}
	return o
}

// WithObserver registers a progress observer.
func (o *Orchestrator) WithObserver(observer Observer) *Orchestrator {
	o.observer = observer
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	return o.state
}

// Apply writes the difference between original and edited to the device
// and returns a complete report. Section failures are reported in the
// report; only a missing connection or a missing original snapshot return
// an error.
//
// When there is nothing to write, Apply returns a no_change report without
// touching the connection. Otherwise the connection is always released
// when Apply returns; reopen it to read the device again.
func (o *Orchestrator) Apply(ctx context.Context, original, edited *deviceconfig.Snapshot) (*Report, error) {
	if o.source == nil || o.port == "" || o.transport == nil {
		return nil, deviceconfig.ErrNoConnection
	}
	if original == nil {
		return nil, deviceconfig.ErrNoSnapshot
	}

	start := time.Now()
	report := newReport()

	o.transition(StateDiffing)
	report.Diff = o.differ.ComputeDiff(original, edited)
	if report.Diff.IsEmpty() {
		o.logger.Info("no changes detected; skipping writes")
		report.Status = StatusNoChange
		report.State = StateDone
		o.transition(StateDone)
		return report, nil
	}

	report.RebootExpected = report.Diff.RebootExpected()
	o.logger.Info("applying changes",
		zap.Int("sections", len(report.Diff.ChangedSections())),
		zap.Bool("reboot_expected", report.RebootExpected),
	)

	o.run(ctx, edited, report)

	report.Duration = time.Since(start)
	return report, nil
}

// run executes steps from detach to snapshot. The deferred cleanup always
// releases the connection, also when a step panics.
func (o *Orchestrator) run(ctx context.Context, edited *deviceconfig.Snapshot, report *Report) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("apply panicked", zap.Any("panic", r))
			report.Status = StatusError
			report.addError(&deviceconfig.ApplyError{
				Type:    deviceconfig.ErrTypeExecutionError,
				Message: fmt.Sprintf("internal error: %v", r),
			})
		}
		o.detach()
		o.logger.Info("released device connection")

		if report.Status == StatusError {
			report.State = StateAborted
		} else {
			report.State = StateDone
		}
		o.transition(report.State)
	}()

	o.transition(StateDetached)
	o.detach()

	o.transition(StateExecuting)
	anySuccess := o.execute(ctx, report)

	if report.RebootExpected || anySuccess {
		o.transition(StateWaitingReboot)
		o.logger.Info("waiting before reconnect", zap.Duration("delay", o.settle))
		if err := o.sleep(ctx, o.settle); err != nil {
			o.logger.Warn("settle wait interrupted", zap.Error(err))
		}
	}

	o.transition(StateReconnecting)
	src, err := o.reconnect(ctx)
	if src != nil {
		o.source = src
	}
	if err != nil {
		o.logger.Warn("device not ready after apply", zap.String("port", o.port), zap.Error(err))
		report.addError(deviceconfig.NewReconnectError(o.port, err))
		if src == nil {
			return
		}
	}

	o.transition(StateSnapshotting)
	post, err := src.Snapshot(ctx, true)
	if err != nil {
		o.logger.Warn("forced snapshot failed; falling back to cached read", zap.Error(err))
		post, err = src.Snapshot(ctx, false)
	}
	if err != nil {
		report.addError(deviceconfig.NewSnapshotError(err))
		return
	}

	report.PostSnapshot = post
	report.Mismatches = deviceconfig.Verify(edited, post)
	if len(report.Mismatches) > 0 {
		o.logger.Warn("some values did not verify", zap.Int("count", len(report.Mismatches)))
	}
}

// execute runs the non-empty sections in order and stops at the first
// failure. It reports whether any section succeeded.
func (o *Orchestrator) execute(ctx context.Context, report *Report) bool {
	sections := report.Diff.ChangedSections()
	anySuccess := false

	for i, section := range sections {
		o.emit(Event{State: StateExecuting, Section: section, Done: i, Total: len(sections)})

		res := o.executor.Execute(ctx, section, report.Diff)
		report.Sections[section] = &res
		o.emit(Event{State: StateExecuting, Section: section, Result: &res, Done: i + 1, Total: len(sections)})

		switch {
		case res.Status == StatusSuccess:
			anySuccess = true
		case res.Status.Failed():
			report.Status = StatusError
			report.addError(sectionError(section, res))
			o.logger.Warn("aborting after failed section",
				zap.String("section", string(section)),
				zap.String("status", string(res.Status)),
			)
			return anySuccess
		}
	}
	return anySuccess
}

func sectionError(section deviceconfig.Section, res SectionResult) *deviceconfig.ApplyError {
	msg := res.Stderr
	if msg == "" {
		msg = fmt.Sprintf("section %s failed", section)
	}
	if res.Status == StatusTimeout {
		return deviceconfig.NewTimeoutError(section, msg)
	}
	return deviceconfig.NewExecutionError(section, msg)
}

// detach releases the current connection. Safe with no connection open.
func (o *Orchestrator) detach() {
	if o.source == nil {
		return
	}
	if err := o.source.Close(); err != nil {
		o.logger.Debug("close failed", zap.Error(err))
	}
	o.source = nil
}

func (o *Orchestrator) transition(to State) {
	if o.state != to {
		logging.LogStateTransition(o.logger, o.state.String(), to.String())
	}
	o.state = to
	o.emit(Event{State: to})
}

func (o *Orchestrator) emit(ev Event) {
	if o.observer != nil {
		o.observer(ev)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
