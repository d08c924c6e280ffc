package redact

import (
	"reflect"
	"strings"
)

// Marker replaces every secret value.
const Marker = "<redacted>"

// base64Prefix marks an explicit key in tool arguments ("base64:AQ==").
const base64Prefix = "base64:"

// secretKeys lists map keys whose values are never logged or exported.
// Dotted keys ("network.wifi_psk") match on their last segment.
var secretKeys = map[string]struct{}{
	"psk":       {},
	"password":  {},
	"pin":       {},
	"wifi_psk":  {},
	"fixed_pin": {},
	"wifiPsk":   {},
	"fixedPin":  {},
}

// IsSecretKey reports whether values stored under key must be redacted.
func IsSecretKey(key string) bool {
	if _, ok := secretKeys[key]; ok {
		return true
	}
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		_, ok := secretKeys[key[i+1:]]
		return ok
	}
	return false
}

// Value returns a redacted copy of v. Maps and slices are rebuilt
// recursively: secret keys get Marker, and entries that end up empty
// (nil, "", empty map, empty slice) are dropped. Scalars pass through.
// Redacting an already redacted value returns an equal value.
func Value(v any) any {
	out, _ := value(reflect.ValueOf(v))
	return out
}

// value returns the redacted form of v and whether it is non-empty.
func value(v reflect.Value) (any, bool) {
	if !v.IsValid() {
		return nil, false
	}
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return v.Interface(), v.Len() > 0
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			if IsSecretKey(k) {
				out[k] = Marker
				continue
			}
			if rv, ok := value(iter.Value()); ok {
				out[k] = rv
			}
		}
		return out, len(out) > 0
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface(), v.Len() > 0
		}
		out := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			if rv, ok := value(v.Index(i)); ok {
				out = append(out, rv)
			}
		}
		return out, len(out) > 0
	case reflect.String:
		return v.String(), v.Len() > 0
	default:
		return v.Interface(), true
	}
}

// Args returns a copy of a tool argument list with secret values masked.
// Covered forms are "--ch-set psk <v>" and "--set <secret key> <v>".
func Args(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)

	for i := 0; i < len(out); i++ {
		switch out[i] {
		case "--ch-set", "--set":
			if i+2 < len(out) && IsSecretKey(out[i+1]) {
				out[i+2] = maskArg(out[i+2])
				i += 2
			}
		}
	}
	return out
}

// maskArg keeps the explicit-key prefix so logs still show which form was sent.
func maskArg(v string) string {
	if strings.HasPrefix(v, base64Prefix) {
		return base64Prefix + Marker
	}
	return Marker
}
