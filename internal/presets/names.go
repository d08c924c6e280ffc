package presets

import (
	"fmt"
	"strings"
)

const invalidNameChars = `<>:"/\|?*`

var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
}

func init() {
	for i := 1; i <= 9; i++ {
		reservedNames[fmt.Sprintf("COM%d", i)] = struct{}{}
		reservedNames[fmt.Sprintf("LPT%d", i)] = struct{}{}
	}
}

// CleanName trims a user-entered preset name and removes its spaces.
func CleanName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "")
}

// IsSafeName reports whether name can be used as a file name on every
// supported platform.
func IsSafeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, invalidNameChars) {
		return false
	}
	if _, reserved := reservedNames[strings.ToUpper(name)]; reserved {
		return false
	}
	return true
}

// SecretLabel returns the secret store label for a channel key of a preset.
func SecretLabel(preset string, index int) string {
	return fmt.Sprintf("%s:ch%d", preset, index)
}
