package config

import (
	"github.com/brutella/hc"
)

// Config is the primary daemon configuration
type Config struct {
	ConfigDir   string    // passed in from CLI
	ConfigFile  string    // server.json
	HTTPAddress string    // net.Dial address format, :port is good enough
	Name        string    // what this bridge shows as
	ID          string    // displayed serial number -- if you run multiple instances, make sure each has a distinct ID
	HCConfig    hc.Config // base HomeControl configuration

	// "C" or "F" -- how temperature sensors display their readings
	TemperatureUnit string

	// TPLink holds legacy flat-file TP-Link configuration; if set it is
	// imported into a config entry at startup
	TPLink *TPLinkConfig

	TPLinkPullRate   int // (seconds) how frequently to pull TP-Link devices -- 0 to disable
	TPLinkBroadcasts int // number of UDP broadcast packets to send - 1 is usually enough
	TPLinkTimeout    int // (seconds) how long to wait for direct (TCP) pulls

	PingRate int // (seconds) how frequently the ping platform checks its devices
}

// TPLinkConfig mirrors the old flat-file TP-Link device configuration
type TPLinkConfig struct {
	Discovery        bool     `json:"discovery"`
	Lights           []string `json:"lights"`   // hosts
	Switches         []string `json:"switches"` // hosts
	RetryDelay       int      `json:"retryDelay"`
	RetryMaxAttempts int      `json:"retryMaxAttempts"`
}

var runningConfig *Config

// Get a pointer to the global config
func Get() *Config {
	return runningConfig
}

// should only be called by the bootstrap
func Set(c *Config) {
	runningConfig = c
}
