// Package tplink bridges TP-Link (Kasa) smart plugs, switches and dimmers.
// The wire protocol is the reverse-engineered one described at
// https://www.softscheck.com/en/reverse-engineering-tp-link-hs110/
package tplink

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"
	"github.com/sirupsen/logrus"

	haccessory "github.com/quatrano/hearth/accessory"
	"github.com/quatrano/hearth/action"
	"github.com/quatrano/hearth/config"
	"github.com/quatrano/hearth/devices"
	"github.com/quatrano/hearth/entry"
	"github.com/quatrano/hearth/homecontrol"
	"github.com/quatrano/hearth/platform"
	"github.com/quatrano/hearth/runner"
)

// Platform is the platform handle for the TP-Link devices
type Platform struct {
	Running bool
}

type tpmu struct {
	mu         sync.Mutex
	devs       map[string]*haccessory.HAccessory // by host
	byPlatform map[string][]string               // light/switch -> hosts
}

var tps tpmu
var doOnce sync.Once

// Startup opens the UDP listener, registers the entry hooks, and runs the
// config-entry lifecycle for whatever entry is loaded
func (t Platform) Startup(c *config.Config) platform.Control {
	doOnce.Do(func() {
		tps.mu.Lock()
		tps.devs = make(map[string]*haccessory.HAccessory)
		tps.byPlatform = make(map[string][]string)
		tps.mu.Unlock()
		logrus.SetLevel(logrus.InfoLevel)
	})

	if err := startListener(); err != nil {
		log.Info.Printf("unable to start UDP listener: %s", err.Error())
		return t
	}

	entry.RegisterPlatform(Domain, PlatformLight, entry.Hooks{
		Setup:  func(e *entry.ConfigEntry) error { return setupPlatformDevices(PlatformLight) },
		Unload: func(e *entry.ConfigEntry) bool { return unloadPlatformDevices(PlatformLight) },
	})
	entry.RegisterPlatform(Domain, PlatformSwitch, entry.Hooks{
		Setup:  func(e *entry.ConfigEntry) error { return setupPlatformDevices(PlatformSwitch) },
		Unload: func(e *entry.ConfigEntry) bool { return unloadPlatformDevices(PlatformSwitch) },
	})

	if err := Setup(c); err != nil {
		log.Info.Println(err.Error())
		return t
	}
	if e, ok := entry.ForDomain(Domain); ok {
		if err := SetupEntry(e); err != nil {
			log.Info.Println(err.Error())
		}
	}

	t.Running = true
	return t
}

// Shutdown is called by the platform management to shut things down
func (t Platform) Shutdown() platform.Control {
	stopListener()
	t.Running = false
	return t
}

// AddAccessory adds a file-configured TP-Link device: pull it for info,
// build the model-specific accessory, register it with HomeControl
func (t Platform) AddAccessory(a *haccessory.HAccessory) {
	if _, ok := t.GetAccessory(a.IP); ok {
		log.Info.Printf("already have a device with this IP address: %s", a.IP)
		return
	}

	// override the config file with reality
	settings, err := getSysinfoTCP(a.IP)
	if err != nil {
		log.Info.Printf("unable to identify TP-Link device, skipping: %s", err.Error())
		return
	}
	if !buildAccessory(a, settings) {
		return
	}
	register(a, platformFor(settings))
}

// GetAccessory looks up a TP-Link device by IP address
func (t Platform) GetAccessory(host string) (*haccessory.HAccessory, bool) {
	return getDevice(host)
}

// Background runs a background task keeping HomeControl current with
// device-side state changes
func (t Platform) Background() {
	rate := config.Get().TPLinkPullRate
	if rate == 0 {
		log.Info.Println("TPLinkPullRate is 0, disabling checks")
		return
	}
	go func() {
		for range time.Tick(time.Second * time.Duration(rate)) {
			if err := broadcastCmd(cmdSysinfo); err != nil {
				log.Info.Println(err.Error())
			}
		}
	}()
}

func getDevice(host string) (*haccessory.HAccessory, bool) {
	tps.mu.Lock()
	a, ok := tps.devs[host]
	tps.mu.Unlock()
	return a, ok
}

func platformFor(settings *Sysinfo) string {
	d := Device{Sysinfo: *settings}
	if d.IsLight() {
		return PlatformLight
	}
	return PlatformSwitch
}

// setupPlatformDevices turns one category's device list into registered
// accessories
func setupPlatformDevices(which string) error {
	for _, d := range deviceList(which) {
		if _, ok := getDevice(d.Host); ok {
			continue
		}
		a := &haccessory.HAccessory{Platform: "TPLink", IP: d.Host, Name: d.Sysinfo.Alias}
		settings := d.Sysinfo
		if !buildAccessory(a, &settings) {
			continue
		}
		register(a, which)
	}
	return nil
}

// unloadPlatformDevices drops one category's accessories; true when at
// least one came off
func unloadPlatformDevices(which string) bool {
	tps.mu.Lock()
	hosts := tps.byPlatform[which]
	delete(tps.byPlatform, which)
	tps.mu.Unlock()

	removed := 0
	for _, host := range hosts {
		a, ok := getDevice(host)
		if !ok {
			continue
		}
		homecontrol.RemoveAccessory(a.Name)
		tps.mu.Lock()
		delete(tps.devs, host)
		tps.mu.Unlock()
		removed++
	}
	log.Info.Printf("unloaded %d %s devices", removed, which)
	return removed > 0
}

func register(a *haccessory.HAccessory, which string) {
	h, ok := platform.GetPlatform("HomeControl")
	if !ok {
		log.Info.Println("can't add accessory, HomeControl platform does not yet exist")
		return
	}

	log.Info.Printf("adding [%s]: [%s]", a.Info.Name, a.Info.Model)
	h.AddAccessory(a)

	a.Accessory.Info.Name.OnValueRemoteUpdate(func(newname string) {
		log.Info.Printf("setting alias to [%s]", newname)
		if err := setRelayAlias(a, newname); err != nil {
			log.Info.Println(err.Error())
		}
	})

	tps.mu.Lock()
	tps.devs[a.IP] = a
	tps.byPlatform[which] = append(tps.byPlatform[which], a.IP)
	tps.mu.Unlock()
}

// buildAccessory wires up the model-specific services, startup values and
// HomeKit-side callbacks. False when the model is not supported.
func buildAccessory(a *haccessory.HAccessory, settings *Sysinfo) bool {
	a.Info.Name = settings.Alias
	a.Info.SerialNumber = settings.DeviceID
	a.Info.Manufacturer = "TP-Link"
	a.Info.Model = settings.Model
	a.Info.FirmwareRevision = settings.SWVersion
	a.Info.ID = deviceID(settings.DeviceID)
	if a.Name == "" {
		a.Name = settings.Alias
	}

	model := strings.ToUpper(settings.Model)
	switch {
	case strings.HasPrefix(model, "HS103"):
		a.Type = accessory.TypeOutlet
		d := devices.NewHS103(a.Info)
		a.Device = d
		a.Accessory = d.Accessory
		d.Outlet.On.SetValue(settings.RelayState > 0)
		d.Outlet.OutletInUse.SetValue(settings.RelayState > 0)
		d.Outlet.On.OnValueRemoteUpdate(func(newstate bool) {
			log.Info.Printf("setting [%s] to [%t] from HS103 handler", a.Name, newstate)
			if err := setRelayState(a, newstate); err != nil {
				log.Info.Println(err.Error())
				return
			}
			d.Outlet.OutletInUse.SetValue(newstate)
			fireActions(a, newstate)
		})
	case strings.HasPrefix(model, "HS200"), strings.HasPrefix(model, "HS210"):
		a.Type = accessory.TypeSwitch
		d := devices.NewHS200(a.Info)
		a.Device = d
		a.Accessory = d.Accessory
		d.Switch.On.SetValue(settings.RelayState > 0)
		d.Switch.On.OnValueRemoteUpdate(func(newstate bool) {
			log.Info.Printf("setting [%s] to [%t] from HS200 handler", a.Name, newstate)
			if err := setRelayState(a, newstate); err != nil {
				log.Info.Println(err.Error())
				return
			}
			fireActions(a, newstate)
		})
	case strings.HasPrefix(model, "KP115"):
		a.Type = accessory.TypeOutlet
		d := devices.NewKP115(a.Info)
		a.Device = d
		a.Accessory = d.Accessory
		d.Outlet.On.SetValue(settings.RelayState > 0)
		d.Outlet.OutletInUse.SetValue(settings.RelayState > 0)
		d.Outlet.On.OnValueRemoteUpdate(func(newstate bool) {
			log.Info.Printf("setting [%s] to [%t] from KP115 handler", a.Name, newstate)
			if err := setRelayState(a, newstate); err != nil {
				log.Info.Println(err.Error())
				return
			}
			d.Outlet.OutletInUse.SetValue(newstate)
			fireActions(a, newstate)
		})
	case strings.HasPrefix(model, "HS220"):
		a.Type = accessory.TypeLightbulb
		d := devices.NewHS220(a.Info)
		a.Device = d
		a.Accessory = d.Accessory
		d.Lightbulb.On.SetValue(settings.RelayState > 0)
		d.Lightbulb.Brightness.SetValue(settings.Brightness)
		d.Lightbulb.On.OnValueRemoteUpdate(func(newstate bool) {
			log.Info.Printf("setting [%s] to [%t] from HS220 handler", a.Name, newstate)
			if err := setRelayState(a, newstate); err != nil {
				log.Info.Println(err.Error())
				return
			}
			fireActions(a, newstate)
		})
		d.Lightbulb.Brightness.OnValueRemoteUpdate(func(newval int) {
			log.Info.Printf("setting [%s] brightness [%d] from HS220 handler", a.Name, newval)
			if err := setBrightness(a, newval); err != nil {
				log.Info.Println(err.Error())
			}
		})
	case strings.HasPrefix(model, "KP303"):
		a.Type = accessory.TypeOutlet
		d := devices.NewKP303(a.Info)
		a.Device = d
		a.Accessory = d.Accessory
		for i := 0; i < len(d.Outlets) && i < len(settings.Children); i++ {
			outlet := d.Outlets[i]
			child := settings.Children[i]
			outlet.On.SetValue(child.RelayState > 0)
			outlet.OutletInUse.SetValue(child.RelayState > 0)
			childID := child.ID
			idx := i
			outlet.On.OnValueRemoteUpdate(func(newstate bool) {
				log.Info.Printf("setting [%s].[%d] to [%t] from KP303 handler", a.Name, idx, newstate)
				if err := setChildRelayState(a, childID, newstate); err != nil {
					log.Info.Println(err.Error())
					return
				}
				outlet.OutletInUse.SetValue(newstate)
			})
		}
	default:
		log.Info.Printf("unsupported TP-Link model [%s], skipping", settings.Model)
		return false
	}

	a.Runner = switchActionRunner
	return true
}

func fireActions(a *haccessory.HAccessory, newstate bool) {
	if newstate {
		runner.RunActions(a.MatchActions("On"))
	} else {
		runner.RunActions(a.MatchActions("Off"))
	}
}

func switchActionRunner(a *haccessory.HAccessory, act *action.Action) {
	switch act.Verb {
	case "On":
		if err := setRelayState(a, true); err != nil {
			log.Info.Println(err.Error())
		}
	case "Off":
		if err := setRelayState(a, false); err != nil {
			log.Info.Println(err.Error())
		}
	default:
		log.Info.Printf("unknown verb [%s] for [%s]", act.Verb, a.Name)
	}
}

// updateState syncs a device-side state report into HomeControl; unknown
// hosts are added when discovery is on
func updateState(host string, settings *Sysinfo) {
	a, ok := getDevice(host)
	if !ok {
		if !discoveryEnabled() {
			return
		}
		log.Info.Printf("adding previously unknown device: %s", host)
		d := &Device{Host: host, Sysinfo: *settings}
		na := &haccessory.HAccessory{Platform: "TPLink", IP: host, Name: settings.Alias}
		si := d.Sysinfo
		if buildAccessory(na, &si) {
			register(na, platformFor(settings))
		}
		return
	}

	switch d := a.Device.(type) {
	case *devices.HS103:
		if d.Outlet.On.GetValue() != (settings.RelayState > 0) {
			log.Debug.Printf("updating HomeKit: %s relay %d", host, settings.RelayState)
			d.Outlet.On.SetValue(settings.RelayState > 0)
			d.Outlet.OutletInUse.SetValue(settings.RelayState > 0)
		}
	case *devices.HS200:
		if d.Switch.On.GetValue() != (settings.RelayState > 0) {
			log.Debug.Printf("updating HomeKit: %s relay %d", host, settings.RelayState)
			d.Switch.On.SetValue(settings.RelayState > 0)
		}
	case *devices.KP115:
		if d.Outlet.On.GetValue() != (settings.RelayState > 0) {
			log.Debug.Printf("updating HomeKit: %s relay %d", host, settings.RelayState)
			d.Outlet.On.SetValue(settings.RelayState > 0)
			d.Outlet.OutletInUse.SetValue(settings.RelayState > 0)
		}
	case *devices.HS220:
		if d.Lightbulb.On.GetValue() != (settings.RelayState > 0) {
			log.Debug.Printf("updating HomeKit: %s relay %d", host, settings.RelayState)
			d.Lightbulb.On.SetValue(settings.RelayState > 0)
		}
		if d.Lightbulb.Brightness.GetValue() != settings.Brightness {
			log.Debug.Printf("updating HomeKit: %s brightness %d", host, settings.Brightness)
			d.Lightbulb.Brightness.SetValue(settings.Brightness)
		}
	case *devices.KP303:
		for i := 0; i < len(d.Outlets) && i < len(settings.Children); i++ {
			if d.Outlets[i].On.GetValue() != (settings.Children[i].RelayState > 0) {
				d.Outlets[i].On.SetValue(settings.Children[i].RelayState > 0)
				d.Outlets[i].OutletInUse.SetValue(settings.Children[i].RelayState > 0)
			}
		}
	}
}

// convert 12 chars of the deviceId into a uint64 for the HomeKit ID
func deviceID(devid string) uint64 {
	if len(devid) < 12 {
		return 0
	}
	mac, err := hex.DecodeString(devid[:12])
	if err != nil {
		log.Info.Printf("weird TP-Link devid: %s", err.Error())
		return 0
	}
	var id uint64
	for i, v := range mac {
		id += uint64(v) << ((12 - i) * 8)
	}
	return id
}

func setRelayState(a *haccessory.HAccessory, newstate bool) error {
	state := 0
	if newstate {
		state = 1
	}
	return sendUDP(a.IP, fmt.Sprintf(`{"system":{"set_relay_state":{"state":%d}}}`, state))
}

func setChildRelayState(a *haccessory.HAccessory, childID string, newstate bool) error {
	state := 0
	if newstate {
		state = 1
	}
	cmd := fmt.Sprintf(`{"context":{"child_ids":["%s"]},"system":{"set_relay_state":{"state":%d}}}`, childID, state)
	return sendUDP(a.IP, cmd)
}

func setRelayAlias(a *haccessory.HAccessory, newname string) error {
	return sendUDP(a.IP, fmt.Sprintf(`{"system":{"set_alias":{"alias":"%s"}}}`, newname))
}

func setBrightness(a *haccessory.HAccessory, newval int) error {
	return sendUDP(a.IP, fmt.Sprintf(`{"smartlife.iot.dimmer":{"set_brightness":{"brightness":%d}}}`, newval))
}
