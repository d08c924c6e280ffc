package deviceconfig

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// RoleNames are the device roles the firmware accepts
var RoleNames = []string{
	"CLIENT", "CLIENT_MUTE", "CLIENT_HIDDEN", "ROUTER", "ROUTER_CLIENT", "ROUTER_LATE",
	"REPEATER", "TRACKER", "SENSOR", "TAK", "TAK_TRACKER", "LOST_AND_FOUND",
}

// RegionNames are the LoRa regulatory regions the firmware accepts
var RegionNames = []string{
	"UNSET", "US", "EU_433", "EU_868", "CN", "JP", "ANZ", "ANZ_433", "KR", "TW", "RU", "IN",
	"NZ_865", "TH", "LORA_24", "UA_433", "UA_868", "MY_433", "MY_919", "SG_923", "PH_433",
	"PH_868", "PH_915", "KZ_433", "KZ_863", "NP_865", "BR_902",
}

// ModemPresetNames are the LoRa modem presets the firmware accepts
var ModemPresetNames = []string{
	"LONG_FAST", "LONG_SLOW", "LONG_MODERATE", "VERY_LONG_SLOW", "MEDIUM_SLOW", "MEDIUM_FAST",
	"SHORT_SLOW", "SHORT_FAST", "SHORT_TURBO",
}

const (
	// MaxChannels is the size of the firmware channel table
	MaxChannels = 8
	// MaxPositionPrecision is the highest position precision in bits
	MaxPositionPrecision = 32
	// MaxLongNameLen and MaxShortNameLen bound the owner names
	MaxLongNameLen  = 39
	MaxShortNameLen = 4
)

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// IsBase64ish is a structural check: base64 alphabet, padding, and a length
// that is a multiple of four. It never decodes the key.
func IsBase64ish(s string) bool {
	if s == "" || !base64Pattern.MatchString(s) {
		return false
	}
	return len(s)%4 == 0
}

// ValidateRole validates a device role name
func ValidateRole(role string) error {
	return validateName("device role", role, RoleNames)
}

// ValidateRegion validates a LoRa region name
func ValidateRegion(region string) error {
	return validateName("lora region", region, RegionNames)
}

// ValidateModemPreset validates a LoRa modem preset name
func ValidateModemPreset(preset string) error {
	return validateName("modem preset", preset, ModemPresetNames)
}

func validateName(what, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return NewValidationError(fmt.Sprintf("%s must be one of %s, got %q", what, strings.Join(allowed, ", "), value))
}

// ValidatePSK validates a channel key as written by a user. Accepted: empty
// (default key), "default", a secret store token, or base64 that decodes
// to 0, 1, 16 or 32 bytes.
func ValidatePSK(psk string, isToken func(string) bool) error {
	psk = strings.TrimSpace(psk)
	if psk == "" || psk == DefaultPSK {
		return nil
	}
	if isToken != nil && isToken(psk) {
		return nil
	}
	if !IsBase64ish(psk) {
		return NewValidationError("channel psk must be base64")
	}
	raw, err := base64.StdEncoding.DecodeString(psk)
	if err != nil {
		return NewValidationError(fmt.Sprintf("channel psk is not valid base64: %v", err))
	}
	switch len(raw) {
	case 0, 1, 16, 32:
		return nil
	default:
		return NewValidationError(fmt.Sprintf("channel psk must be 1, 16 or 32 bytes, got %d", len(raw)))
	}
}

// ValidateChannels validates a channel table
func ValidateChannels(channels []Channel, isToken func(string) bool) []error {
	var errs []error

	if len(channels) > MaxChannels {
		errs = append(errs, NewValidationError(fmt.Sprintf("at most %d channels are supported, got %d", MaxChannels, len(channels))))
	}

	seen := map[int]bool{}
	for _, ch := range channels {
		if ch.Index < 0 {
			errs = append(errs, NewValidationError(fmt.Sprintf("channel index must be >= 0, got %d", ch.Index)))
			continue
		}
		if seen[ch.Index] {
			errs = append(errs, NewValidationError(fmt.Sprintf("duplicate channel index %d", ch.Index)))
		}
		seen[ch.Index] = true

		if p := ch.PositionPrecision; p != nil && (*p < 0 || *p > MaxPositionPrecision) {
			errs = append(errs, NewValidationError(fmt.Sprintf("channel %d: position precision must be in [0, %d], got %d", ch.Index, MaxPositionPrecision, *p)))
		}
		if ch.PSK != nil {
			if err := ValidatePSK(*ch.PSK, isToken); err != nil {
				errs = append(errs, fmt.Errorf("channel %d: %w", ch.Index, err))
			}
		}
		if ch.Role != nil {
			if err := ValidateRole(*ch.Role); err != nil {
				errs = append(errs, fmt.Errorf("channel %d: %w", ch.Index, err))
			}
		}
	}

	return errs
}

// ValidateOwner validates owner names
func ValidateOwner(user *UserInfo) []error {
	var errs []error
	if user == nil {
		return nil
	}
	if user.LongName != nil {
		name := strings.TrimSpace(*user.LongName)
		if name == "" {
			errs = append(errs, NewValidationError("owner long name cannot be empty"))
		} else if len(name) > MaxLongNameLen {
			errs = append(errs, NewValidationError(fmt.Sprintf("owner long name too long (max %d chars): %d chars", MaxLongNameLen, len(name))))
		}
	}
	if user.ShortName != nil {
		name := strings.TrimSpace(*user.ShortName)
		if name == "" {
			errs = append(errs, NewValidationError("owner short name cannot be empty"))
		} else if len([]rune(name)) > MaxShortNameLen {
			errs = append(errs, NewValidationError(fmt.Sprintf("owner short name too long (max %d chars): %d chars", MaxShortNameLen, len([]rune(name)))))
		}
	}
	return errs
}

// Validate validates every section of a snapshot that is about to be
// applied. Returns a slice of validation errors (empty if valid).
func Validate(s *Snapshot, isToken func(string) bool) []error {
	if s == nil {
		return []error{NewValidationError("snapshot is empty")}
	}

	var errs []error

	if s.Device != nil && s.Device.Role != nil {
		if err := ValidateRole(*s.Device.Role); err != nil {
			errs = append(errs, err)
		}
	}
	if s.LoRa != nil {
		if s.LoRa.Region != nil {
			if err := ValidateRegion(*s.LoRa.Region); err != nil {
				errs = append(errs, err)
			}
		}
		if s.LoRa.ModemPreset != nil {
			if err := ValidateModemPreset(*s.LoRa.ModemPreset); err != nil {
				errs = append(errs, err)
			}
		}
		if s.LoRa.HopLimit != nil && (*s.LoRa.HopLimit < 0 || *s.LoRa.HopLimit > 7) {
			errs = append(errs, NewValidationError(fmt.Sprintf("hop limit must be 0-7, got %d", *s.LoRa.HopLimit)))
		}
	}
	if s.Bluetooth != nil && s.Bluetooth.FixedPin != nil {
		pin := strings.TrimSpace(*s.Bluetooth.FixedPin)
		if pin != "" && (!isDigits(pin) || len(pin) != 6) {
			errs = append(errs, NewValidationError("bluetooth fixed pin must be 6 digits"))
		}
	}

	errs = append(errs, ValidateOwner(s.User)...)
	errs = append(errs, ValidateChannels(s.Channels, isToken)...)

	return errs
}
