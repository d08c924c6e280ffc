package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Node represents a Meshtastic node found on the network
type Node struct {
	// Name is the mDNS instance name (e.g., "Meshtastic_a1b2")
	Name string

	// Hostname is the mDNS hostname (e.g., "Meshtastic_a1b2.local.")
	Hostname string

	// IP is the node address, IPv4 preferred
	IP string

	// Port is the TCP API port (typically 4403)
	Port int

	// Metadata contains the mDNS TXT record data
	// Common fields: "id=!a1b2c3d4", "shortname=HTR"
	Metadata map[string]string

	// DiscoveredAt is when the node was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the node
func (n *Node) String() string {
	id := n.GetMetadata("id")
	if id == "" {
		id = n.Name
	}
	return fmt.Sprintf("Meshtastic node %s (%s) at %s", id, n.Hostname, n.Target())
}

// Target returns the value to pass as --host. The port is omitted when it
// is the tool's default.
func (n *Node) Target() string {
	if n.Port == 0 || n.Port == DefaultPort {
		return n.IP
	}
	return net.JoinHostPort(n.IP, strconv.Itoa(n.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (n *Node) GetMetadata(key string) string {
	if n.Metadata == nil {
		return ""
	}
	return n.Metadata[key]
}
