package apply

import (
	"time"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/meshcli"
)

// Status is the outcome of a section, a channel operation or a whole apply.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusNoChange Status = "no_change"
	StatusTimeout  Status = "timeout"
	StatusError    Status = "error"
)

// Failed reports whether the status stops an apply.
func (s Status) Failed() bool {
	return s == StatusError || s == StatusTimeout
}

// statusFor maps a tool exit status to a Status. Only exit 0 is success.
func statusFor(res meshcli.Result) Status {
	switch {
	case res.Success():
		return StatusSuccess
	case res.TimedOut():
		return StatusTimeout
	default:
		return StatusError
	}
}

// OpResult is the outcome of one channel delete or upsert.
type OpResult struct {
	Index         int
	Status        Status
	ChangedFields []string
	Duration      time.Duration
	Stdout        string
	Stderr        string
}

// SectionResult is the outcome of one section. Deleted and Upserts are
// only filled for the channels section.
type SectionResult struct {
	Section       deviceconfig.Section
	Status        Status
	ChangedFields []string
	Duration      time.Duration
	Stdout        string
	Stderr        string
	Deleted       []OpResult
	Upserts       []OpResult
}

func newOpResult(index int, res meshcli.Result, fields []string) OpResult {
	op := OpResult{
		Index:    index,
		Status:   statusFor(res),
		Duration: res.Duration,
		Stdout:   meshcli.Truncate(res.Stdout),
		Stderr:   meshcli.Truncate(res.Stderr),
	}
	if op.Status == StatusSuccess {
		op.ChangedFields = fields
	}
	return op
}
