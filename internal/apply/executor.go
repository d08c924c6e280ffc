package apply

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/meshcli"
	"go.uber.org/zap"
)

// Per-invocation time bounds.
const (
	SectionTimeout       = 20 * time.Second
	ChannelDeleteTimeout = 20 * time.Second
	ChannelSetTimeout    = 25 * time.Second
)

// OpKind distinguishes the invocations a section can produce.
type OpKind string

const (
	OpSet    OpKind = "set"
	OpDelete OpKind = "delete"
	OpUpsert OpKind = "upsert"
)

// Invocation is one planned run of the configuration tool.
type Invocation struct {
	Section deviceconfig.Section
	Kind    OpKind
	// Label names the invocation in logs ("lora", "channels:del[2]")
	Label string
	// Index is the channel index for channel operations
	Index   int
	Args    []string
	Fields  []string
	Timeout time.Duration
}

// Plan returns every invocation an apply of diff would issue, in order.
// It never runs anything and is what the dry-run output is built from.
func Plan(diff *deviceconfig.Diff) []Invocation {
	var out []Invocation
	for _, section := range deviceconfig.SectionOrder {
		out = append(out, Invocations(section, diff)...)
	}
	return out
}

// Invocations builds the tool invocations for one section of diff. An
// empty section yields nil.
func Invocations(section deviceconfig.Section, diff *deviceconfig.Diff) []Invocation {
	if diff == nil || diff.SectionEmpty(section) {
		return nil
	}

	switch section {
	case deviceconfig.SectionChannels:
		return channelInvocations(diff.Channels)
	case deviceconfig.SectionOwner:
		return []Invocation{ownerInvocation(diff.Changeset(section))}
	default:
		cs := diff.Changeset(section)
		keys := cs.Keys()
		args := make([]string, 0, len(keys)*3)
		for _, k := range keys {
			args = append(args, "--set", k, formatValue(cs[k]))
		}
		return []Invocation{{
			Section: section,
			Kind:    OpSet,
			Label:   string(section),
			Args:    args,
			Fields:  keys,
			Timeout: SectionTimeout,
		}}
	}
}

func ownerInvocation(cs deviceconfig.Changeset) Invocation {
	var args []string
	if v, ok := cs[deviceconfig.OwnerLongKey]; ok {
		args = append(args, "--set-owner", formatValue(v))
	}
	if v, ok := cs[deviceconfig.OwnerShortKey]; ok {
		args = append(args, "--set-owner-short", formatValue(v))
	}
	return Invocation{
		Section: deviceconfig.SectionOwner,
		Kind:    OpSet,
		Label:   string(deviceconfig.SectionOwner),
		Args:    args,
		Fields:  cs.Keys(),
		Timeout: SectionTimeout,
	}
}

func channelInvocations(plan deviceconfig.ChannelPlan) []Invocation {
	var out []Invocation

	for _, idx := range plan.Deletes {
		out = append(out, Invocation{
			Section: deviceconfig.SectionChannels,
			Kind:    OpDelete,
			Label:   fmt.Sprintf("channels:del[%d]", idx),
			Index:   idx,
			Args:    []string{"--ch-index", strconv.Itoa(idx), "--ch-del"},
			Fields:  []string{fmt.Sprintf("channel[%d].deleted", idx)},
			Timeout: ChannelDeleteTimeout,
		})
	}

	for _, up := range plan.Upserts {
		keys := up.Fields.Keys()
		fields := make([]string, len(keys))
		for i, k := range keys {
			fields[i] = fmt.Sprintf("channel[%d].%s", up.Index, k)
		}

		var args []string
		if name, ok := up.Fields[deviceconfig.ChannelNameKey]; ok && up.Index > 0 {
			args = []string{"--ch-add", formatValue(name)}
		} else {
			args = []string{"--ch-index", strconv.Itoa(up.Index)}
		}

		for _, k := range keys {
			v := up.Fields[k]
			switch {
			case k == deviceconfig.ChannelNameKey && args[0] == "--ch-add":
				continue
			case k == deviceconfig.ChannelPSKKey:
				args = append(args, "--ch-set", k, pskArg(formatValue(v)))
			default:
				args = append(args, "--ch-set", k, formatValue(v))
			}
		}

		out = append(out, Invocation{
			Section: deviceconfig.SectionChannels,
			Kind:    OpUpsert,
			Label:   fmt.Sprintf("channels:set[%d]", up.Index),
			Index:   up.Index,
			Args:    args,
			Fields:  fields,
			Timeout: ChannelSetTimeout,
		})
	}

	return out
}

// pskArg marks an explicit key so the tool does not treat it as a keyword.
func pskArg(psk string) string {
	if psk == deviceconfig.DefaultPSK {
		return psk
	}
	return "base64:" + psk
}

func formatValue(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}

// SectionExecutor runs the invocations for one section and folds their
// outcomes into a SectionResult. It never returns an error.
type SectionExecutor struct {
	runner Runner
	logger *zap.Logger
}

// NewSectionExecutor creates a section executor on top of runner.
func NewSectionExecutor(runner Runner, logger *zap.Logger) *SectionExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionExecutor{runner: runner, logger: logger}
}

// Execute applies one section of diff. An empty section returns
// StatusNoChange without running anything.
func (e *SectionExecutor) Execute(ctx context.Context, section deviceconfig.Section, diff *deviceconfig.Diff) (result SectionResult) {
	result = SectionResult{Section: section, Status: StatusNoChange}

	invs := Invocations(section, diff)
	if len(invs) == 0 {
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("section execution panicked",
				zap.String("section", string(section)),
				zap.Any("panic", r),
			)
			result.Status = StatusError
			result.ChangedFields = nil
			result.Stderr = meshcli.Truncate(fmt.Sprintf("internal error: %v", r))
		}
	}()

	if section == deviceconfig.SectionChannels {
		return e.executeChannels(ctx, result, invs)
	}

	inv := invs[0]
	res := e.runner.Run(ctx, inv.Label, inv.Args, inv.Timeout)
	op := newOpResult(0, res, inv.Fields)

	result.Status = op.Status
	result.ChangedFields = op.ChangedFields
	result.Duration = op.Duration
	result.Stdout = op.Stdout
	result.Stderr = op.Stderr

	if op.Status.Failed() {
		e.logger.Warn("section failed",
			zap.String("section", string(section)),
			zap.String("status", string(op.Status)),
			zap.Error(res.Err(inv.Label, inv.Timeout)),
		)
	}
	return result
}

// executeChannels runs deletes then upserts and stops at the first
// failing operation. Untried operations are not recorded.
func (e *SectionExecutor) executeChannels(ctx context.Context, result SectionResult, invs []Invocation) SectionResult {
	for _, inv := range invs {
		res := e.runner.Run(ctx, inv.Label, inv.Args, inv.Timeout)
		op := newOpResult(inv.Index, res, inv.Fields)
		result.Duration += op.Duration

		if inv.Kind == OpDelete {
			result.Deleted = append(result.Deleted, op)
		} else {
			result.Upserts = append(result.Upserts, op)
		}

		if op.Status.Failed() {
			e.logger.Warn("channel operation failed",
				zap.String("operation", inv.Label),
				zap.String("status", string(op.Status)),
				zap.Error(res.Err(inv.Label, inv.Timeout)),
			)
			result.Status = StatusError
			result.ChangedFields = nil
			result.Stdout = op.Stdout
			result.Stderr = op.Stderr
			return result
		}

		result.Status = StatusSuccess
		result.ChangedFields = append(result.ChangedFields, op.ChangedFields...)
	}
	return result
}
