package discovery

import (
	"errors"
	"strings"
	"testing"
)

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name       string
		explicit   string
		preferred  string
		candidates []string
		want       string
		wantReason Reason
	}{
		{"explicit wins", "/dev/ttyACM3", "/dev/ttyUSB0", []string{"/dev/ttyUSB0"}, "/dev/ttyACM3", ""},
		{"explicit without candidates", "/dev/ttyACM3", "", nil, "/dev/ttyACM3", ""},
		{"preferred present", "", "/dev/ttyUSB1", []string{"/dev/ttyUSB0", "/dev/ttyUSB1"}, "/dev/ttyUSB1", ""},
		{"preferred gone, single candidate", "", "/dev/ttyUSB1", []string{"/dev/ttyUSB0"}, "/dev/ttyUSB0", ""},
		{"single candidate", "", "", []string{"/dev/ttyUSB0"}, "/dev/ttyUSB0", ""},
		{"no candidates", "", "", nil, "", ReasonNoCandidates},
		{"preferred gone, none left", "", "/dev/ttyUSB1", nil, "", ReasonNoCandidates},
		{"several candidates", "", "", []string{"/dev/ttyUSB0", "/dev/ttyUSB1"}, "", ReasonMultipleCandidates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTarget(tt.explicit, tt.preferred, tt.candidates)
			if tt.wantReason != "" {
				var pe *PolicyError
				if !errors.As(err, &pe) {
					t.Fatalf("Expected PolicyError, got %v", err)
				}
				if pe.Reason != tt.wantReason {
					t.Errorf("Reason = %q, want %q", pe.Reason, tt.wantReason)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveTarget() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPolicyError_Messages(t *testing.T) {
	multi := &PolicyError{Reason: ReasonMultipleCandidates, Candidates: []string{"/dev/ttyUSB0", "/dev/ttyUSB1"}}
	if !strings.Contains(multi.Error(), "/dev/ttyUSB0, /dev/ttyUSB1") {
		t.Errorf("Error() = %q, want it to list candidates", multi.Error())
	}

	cause := errors.New("port busy")
	open := OpenFailed("/dev/ttyUSB0", cause)
	if !errors.Is(open, cause) {
		t.Error("OpenFailed should unwrap to its cause")
	}
	if !strings.Contains(open.Error(), "/dev/ttyUSB0") {
		t.Errorf("Error() = %q, want target", open.Error())
	}
}
