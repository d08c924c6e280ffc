package discovery

import (
	"fmt"
	"slices"
	"strings"
)

// Reason classifies why no connection target could be chosen.
type Reason string

const (
	ReasonNoCandidates       Reason = "no_candidates"
	ReasonMultipleCandidates Reason = "multiple_candidates"
	ReasonOpenFailed         Reason = "open_failed"
)

// PolicyError reports a failed connection target resolution.
type PolicyError struct {
	Reason     Reason
	Candidates []string
	Target     string
	Err        error
}

func (e *PolicyError) Error() string {
	switch e.Reason {
	case ReasonNoCandidates:
		return "no serial devices found; connect a radio or pass --port"
	case ReasonMultipleCandidates:
		return fmt.Sprintf("several devices found (%s); choose one with --port", strings.Join(e.Candidates, ", "))
	case ReasonOpenFailed:
		return fmt.Sprintf("could not open %s: %v", e.Target, e.Err)
	default:
		return string(e.Reason)
	}
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}

// OpenFailed wraps a failure to open target.
func OpenFailed(target string, err error) *PolicyError {
	return &PolicyError{Reason: ReasonOpenFailed, Target: target, Err: err}
}

// ResolveTarget picks the port to connect to: an explicit port wins, then
// the preferred port if it is still among the candidates, then the only
// candidate.
func ResolveTarget(explicit, preferred string, candidates []string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if preferred != "" && slices.Contains(candidates, preferred) {
		return preferred, nil
	}
	switch len(candidates) {
	case 0:
		return "", &PolicyError{Reason: ReasonNoCandidates}
	case 1:
		return candidates[0], nil
	default:
		return "", &PolicyError{Reason: ReasonMultipleCandidates, Candidates: candidates}
	}
}
