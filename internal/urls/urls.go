package urls

// Documentation URLs for guides and troubleshooting.
// All URLs point to the Meshtastic documentation at https://meshtastic.org/docs/

// PythonCLI covers installing and using the meshtastic command-line tool
// that meshcfg drives.
const PythonCLI = "https://meshtastic.org/docs/software/python/cli/"

// SerialDrivers lists the USB serial drivers radios need on each platform.
// Point users here when no serial device is detected.
const SerialDrivers = "https://meshtastic.org/docs/getting-started/serial-drivers/"

// ChannelConfig explains channel names, keys and position precision.
const ChannelConfig = "https://meshtastic.org/docs/configuration/radio/channels/"

// LoRaConfig explains regions, modem presets and frequency slots.
const LoRaConfig = "https://meshtastic.org/docs/configuration/radio/lora/"
