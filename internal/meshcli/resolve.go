package meshcli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// EnvToolPath overrides the tool location.
const EnvToolPath = "MESHTASTIC_CLI"

func toolNames() []string {
	if runtime.GOOS == "windows" {
		return []string{"meshtastic.exe", "meshtastic"}
	}
	return []string{"meshtastic"}
}

// ResolveToolPath finds the meshtastic executable. Resolution order:
//  1. override (the --tool flag or the configured tool path)
//  2. MESHTASTIC_CLI environment variable
//  3. next to the running executable (bundled installs)
//  4. PATH
//
// When nothing is found it returns "meshtastic" so that the first run
// fails with ExitCodeNotFound and a clear message.
func ResolveToolPath(override string) string {
	if override != "" {
		return override
	}
	if env := os.Getenv(EnvToolPath); env != "" {
		return env
	}

	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		for _, name := range toolNames() {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
	}

	for _, name := range toolNames() {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return "meshtastic"
}

// ToolCheck is the result of probing the tool.
type ToolCheck struct {
	Path      string
	Available bool
	Version   string
	Message   string
}

// CheckTool verifies that the tool at path starts and reports a version.
func CheckTool(ctx context.Context, path string) (*ToolCheck, error) {
	check := &ToolCheck{Path: path}

	if path == "" {
		return check, &PrerequisiteError{Details: "tool path is empty"}
	}
	if _, err := exec.LookPath(path); err != nil {
		check.Message = "meshtastic not found\n" +
			"Install with: pip install meshtastic\n" +
			"Or set " + EnvToolPath + " to the executable"
		return check, fmt.Errorf("%w: %s", ErrToolNotFound, path)
	}

	versionCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	output, err := exec.CommandContext(versionCtx, path, "--version").Output()
	if err != nil {
		check.Message = fmt.Sprintf("found at %s but failed to execute: %v", path, err)
		return check, &PrerequisiteError{
			Path:    path,
			Details: fmt.Sprintf("failed to execute %s --version", path),
			Err:     err,
		}
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > 0 {
		check.Version = strings.TrimSpace(lines[len(lines)-1])
	}
	check.Available = true
	check.Message = fmt.Sprintf("Found at %s", path)
	return check, nil
}
