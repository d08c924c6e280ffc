// Package urls holds links to the Meshtastic documentation shown in
// troubleshooting output.
package urls
