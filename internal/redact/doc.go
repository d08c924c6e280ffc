// Package redact masks secrets before they reach logs or exported reports.
//
// Value walks arbitrary nested maps and slices, replacing the value of any
// secret-bearing key (psk, password, pin, wifi_psk, fixed_pin and their
// camelCase forms) with Marker and dropping entries left empty. Args masks
// the value that follows "--ch-set psk" or "--set <secret key>" in an
// external tool argument list.
package redact
