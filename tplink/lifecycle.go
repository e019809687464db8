package tplink

import (
	"strings"

	"github.com/brutella/hc/log"

	"github.com/quatrano/hearth/config"
	"github.com/quatrano/hearth/entry"
)

// Domain is the key this integration's state lives under
const Domain = "tplink"

// platform categories the integration forwards devices to
const (
	PlatformLight  = "light"
	PlatformSwitch = "switch"
)

// domain state keys
const (
	keyConfig           = "config"
	keyRetryDelay       = "retryDelay"
	keyRetryMaxAttempts = "retryMaxAttempts"
	keyAddAttempt       = "addAttempt"
)

// Setup stores the raw bridge configuration for the domain and, when
// flat-file configuration exists, promotes it into a config entry via the
// import flow
func Setup(c *config.Config) error {
	entry.Set(Domain, keyConfig, c.TPLink)

	if c.TPLink != nil {
		entry.StartFlow(Domain, entry.SourceImport, flowData(c.TPLink))
	}
	return nil
}

// SetupEntry builds the device lists for a config entry -- static devices
// from the entry data plus discovered devices when discovery is on or no
// static config exists -- and forwards each non-empty list to its platform
func SetupEntry(e *entry.ConfigEntry) error {
	conf := configFromEntry(e)

	entry.Set(Domain, keyAddAttempt, 0)

	static := &SmartDevices{}
	if conf != nil {
		static = getStaticDevices(conf)
		entry.Set(Domain, keyRetryDelay, conf.RetryDelay)
		entry.Set(Domain, keyRetryMaxAttempts, conf.RetryMaxAttempts)
	}

	lights := append([]*Device(nil), static.Lights...)
	switches := append([]*Device(nil), static.Switches...)

	if conf == nil || conf.Discovery {
		discovered := discoverDevices(static)
		lights = append(lights, discovered.Lights...)
		switches = append(switches, discovered.Switches...)
	}

	entry.Set(Domain, PlatformLight, lights)
	entry.Set(Domain, PlatformSwitch, switches)

	if len(lights) > 0 {
		log.Debug.Printf("got %d lights: %s", len(lights), hostList(lights))
		if err := entry.ForwardSetup(e, PlatformLight); err != nil {
			log.Info.Println(err.Error())
		}
	}
	if len(switches) > 0 {
		log.Debug.Printf("got %d switches: %s", len(switches), hostList(switches))
		if err := entry.ForwardSetup(e, PlatformSwitch); err != nil {
			log.Info.Println(err.Error())
		}
	}
	return nil
}

// UnloadEntry forwards unload to each platform that had devices; the domain
// state is cleared only when at least one platform actually unloaded
func UnloadEntry(e *entry.ConfigEntry) bool {
	removeLights, removeSwitches := false, false
	if len(deviceList(PlatformLight)) > 0 {
		removeLights = entry.ForwardUnload(e, PlatformLight)
	}
	if len(deviceList(PlatformSwitch)) > 0 {
		removeSwitches = entry.ForwardUnload(e, PlatformSwitch)
	}

	if removeLights || removeSwitches {
		entry.ClearDomain(Domain)
		return true
	}

	// nothing came off: either no platform was loaded or every forward
	// failed
	return false
}

func deviceList(platform string) []*Device {
	v, _ := entry.Get(Domain, platform)
	list, _ := v.([]*Device)
	return list
}

func bumpAttempt() {
	v, _ := entry.Get(Domain, keyAddAttempt)
	n, _ := v.(int)
	entry.Set(Domain, keyAddAttempt, n+1)
}

func discoveryEnabled() bool {
	v, ok := entry.Get(Domain, keyConfig)
	if !ok {
		return false
	}
	conf, _ := v.(*config.TPLinkConfig)
	if conf == nil {
		// no static config at all means we run on discovery alone
		return true
	}
	return conf.Discovery
}

func hostList(devs []*Device) string {
	hosts := make([]string, 0, len(devs))
	for _, d := range devs {
		hosts = append(hosts, d.Host)
	}
	return strings.Join(hosts, ", ")
}

// flowData flattens the flat-file configuration into entry data
func flowData(conf *config.TPLinkConfig) map[string]interface{} {
	return map[string]interface{}{
		"discovery":        conf.Discovery,
		"lights":           conf.Lights,
		"switches":         conf.Switches,
		"retryDelay":       conf.RetryDelay,
		"retryMaxAttempts": conf.RetryMaxAttempts,
	}
}

// configFromEntry rebuilds the static configuration from entry data, which
// may have been through a JSON round trip on disk
func configFromEntry(e *entry.ConfigEntry) *config.TPLinkConfig {
	if e.Data == nil {
		return nil
	}
	conf := &config.TPLinkConfig{}
	if v, ok := e.Data["discovery"].(bool); ok {
		conf.Discovery = v
	}
	conf.Lights = stringList(e.Data["lights"])
	conf.Switches = stringList(e.Data["switches"])
	conf.RetryDelay = intValue(e.Data["retryDelay"])
	conf.RetryMaxAttempts = intValue(e.Data["retryMaxAttempts"])
	return conf
}

func stringList(v interface{}) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []interface{}:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intValue(v interface{}) int {
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	}
	return 0
}
