package hearth

import (
	"fmt"

	"github.com/brutella/hc/log"

	"github.com/quatrano/hearth/accessory"
	"github.com/quatrano/hearth/config"
	"github.com/quatrano/hearth/dht"
	"github.com/quatrano/hearth/homecontrol"
	"github.com/quatrano/hearth/hostsensors"
	"github.com/quatrano/hearth/httpctl"
	"github.com/quatrano/hearth/owm"
	"github.com/quatrano/hearth/ping"
	"github.com/quatrano/hearth/platform"
	"github.com/quatrano/hearth/tplink"
)

// BootstrapPlatforms sets up all the platforms
// hardcode this until I can spend the time to make it dynamic
func BootstrapPlatforms(c *config.Config) {
	var hcp homecontrol.HCPlatform
	platform.RegisterPlatform("HomeControl", hcp)

	var h httpctl.Platform
	platform.RegisterPlatform("HTTP", h)

	var d dht.Platform
	platform.RegisterPlatform("DHT", d)

	var tp tplink.Platform
	platform.RegisterPlatform("TPLink", tp)

	var hs hostsensors.Platform
	platform.RegisterPlatform("HostSensors", hs)

	var owmp owm.Platform
	platform.RegisterPlatform("OWM", owmp)

	var png ping.Platform
	platform.RegisterPlatform("Ping", png)

	platform.StartupAllPlatforms(c)
}

// AddAccessory is a wrapper to each platform's AddAccessory, no need to expose each platform to the daemon
func AddAccessory(a *accessory.HAccessory) error {
	if a.Platform == "" {
		err := fmt.Errorf("accessory platform unset: %+v", a)
		log.Info.Print(err)
		return err
	}

	p, ok := platform.GetPlatform(a.Platform)
	if !ok {
		err := fmt.Errorf("unknown accessory platform: %+v", a)
		log.Info.Print(err)
		return err
	}

	p.AddAccessory(a)
	return nil
}

// StartHC is just a wrapper, no need to expose homecontrol to the daemon
func StartHC() {
	homecontrol.StartHC()
}
