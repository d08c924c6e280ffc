//go:build !windows

package meshcli

import "os/exec"

func hideWindow(*exec.Cmd) {}
