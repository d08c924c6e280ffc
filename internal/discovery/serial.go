package discovery

import (
	"path/filepath"
	"runtime"
	"sort"
)

// Serial device patterns used by USB serial adapters on Meshtastic boards.
var (
	linuxPatterns  = []string{"/dev/ttyUSB*", "/dev/ttyACM*"}
	darwinPatterns = []string{"/dev/cu.usbserial*", "/dev/cu.usbmodem*", "/dev/cu.SLAB_USBtoUART*"}
)

// SerialPatterns returns the glob patterns for goos. Windows COM ports
// cannot be enumerated by globbing and yield none.
func SerialPatterns(goos string) []string {
	switch goos {
	case "linux":
		return linuxPatterns
	case "darwin":
		return darwinPatterns
	case "windows":
		return nil
	default:
		return append(append([]string(nil), linuxPatterns...), darwinPatterns...)
	}
}

// GlobFunc matches a pattern against the filesystem.
type GlobFunc func(pattern string) ([]string, error)

// ListSerialPorts returns serial candidates for the current platform in
// sorted order.
func ListSerialPorts() []string {
	return listSerialPorts(SerialPatterns(runtime.GOOS), filepath.Glob)
}

func listSerialPorts(patterns []string, glob GlobFunc) []string {
	seen := make(map[string]bool)
	var ports []string
	for _, p := range patterns {
		matches, err := glob(p)
		if err != nil {
			continue
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				ports = append(ports, m)
			}
		}
	}
	sort.Strings(ports)
	return ports
}
