// Package discovery finds Meshtastic radios and decides which one to talk to.
//
// Two sources are searched:
//   - USB serial adapters, by globbing the device patterns of the platform
//     (/dev/ttyUSB*, /dev/ttyACM* on Linux; /dev/cu.usbserial*,
//     /dev/cu.usbmodem*, /dev/cu.SLAB_USBtoUART* on macOS).
//   - Network nodes advertising "_meshtastic._tcp" over mDNS, reached with
//     the tool's --host flag.
//
// # Connection Policy
//
// ResolveTarget applies the connection rule: an explicit --port wins, then
// the preferred port from the registry if it is still attached, then the
// only candidate. No candidates or several candidates yield a PolicyError
// with reason no_candidates or multiple_candidates; a failed open is
// reported with OpenFailed.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Nodes must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
