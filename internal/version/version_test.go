package version

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		commit      string
		settings    map[string]string
		wantVersion string
		wantCommit  string
	}{
		{"ldflags win", "v0.3.0", "abc1234", map[string]string{"vcs.revision": "ffffffffff"}, "v0.3.0", "abc1234"},
		{"vcs stamp", "", "", map[string]string{
			"vcs.revision": "0123456789abcdef",
			"vcs.modified": "true",
			"vcs.time":     "2026-03-04T10:00:00Z",
		}, "dev-20260304", "0123456-dirty"},
		{"module version", "", "", map[string]string{"main.version": "v0.2.1"}, "v0.2.1", "unknown"},
		{"nothing", "", "", map[string]string{}, "dev", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(tt.version, tt.commit, tt.settings)
			if got.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", got.Version, tt.wantVersion)
			}
			if got.Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", got.Commit, tt.wantCommit)
			}
			if !strings.Contains(got.Platform, "/") {
				t.Errorf("Platform = %q", got.Platform)
			}
		})
	}
}

func TestFull(t *testing.T) {
	if !strings.Contains(Full(), "(commit: ") {
		t.Errorf("Full() = %q", Full())
	}
}
