// Package homecontrol owns the HomeKit transport; every other platform
// registers its accessories here and this one feeds them to hc
package homecontrol

import (
	"sync"

	"github.com/brutella/hc"
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"
	"github.com/brutella/hc/util"

	haccessory "github.com/quatrano/hearth/accessory"
	"github.com/quatrano/hearth/config"
	"github.com/quatrano/hearth/platform"
)

// HCPlatform is the platform handle
type HCPlatform struct {
	Running bool
}

// the map exists from process start so platforms can register accessories
// no matter what order the bootstrap brings things up in
var hcmu sync.Mutex
var hcs = make(map[string]*haccessory.HAccessory)

// Startup is called by the platform bootstrap
func (h HCPlatform) Startup(c *config.Config) platform.Control {
	h.Running = true
	return h
}

// StartHC is called after all devices are discovered/registered to start operation
func StartHC() {
	c := config.Get()
	storage, err := util.NewFileStorage("serials")
	if err != nil {
		log.Info.Println("unable to get storage")
	}
	serial := util.GetSerialNumberForAccessoryName("HearthRoot", storage)

	if c.Name == "" {
		c.Name = "Hearth"
	}
	root := accessory.NewBridge(accessory.Info{
		Name:             c.Name,
		ID:               1,
		SerialNumber:     serial,
		Manufacturer:     "hearth",
		Model:            "Hearth",
		FirmwareRevision: "0.1.0",
	})
	root.Accessory.OnIdentify(func() {
		log.Info.Printf("bridge root identify called: %+v", root.Accessory)
	})

	// all the other registered things
	values := []*accessory.Accessory{}
	hcmu.Lock()
	for _, v := range hcs {
		values = append(values, v.Accessory)
	}
	hcmu.Unlock()

	transport, err := hc.NewIPTransport(hc.Config(c.HCConfig), root.Accessory, values...)
	if err != nil {
		log.Info.Panic(err)
	}

	hc.OnTermination(func() {
		<-transport.Stop()
	})
	go transport.Start()
	uri, _ := transport.XHMURI()
	log.Info.Printf("add this bridge with: %s", uri)
}

// Shutdown is called at process teardown
func (h HCPlatform) Shutdown() platform.Control {
	h.Running = false
	return h
}

// AddAccessory registers a device with HC
func (h HCPlatform) AddAccessory(a *haccessory.HAccessory) {
	// catch devices that didn't get built properly
	if a.Accessory == nil {
		log.Info.Printf("accessory unset: %v", a.Info)
		return
	}

	a.Accessory.OnIdentify(func() {
		log.Info.Printf("identify called for [%s]", a.Name)
	})

	hcmu.Lock()
	hcs[a.Name] = a
	hcmu.Unlock()
}

// RemoveAccessory drops a device from the registry; it disappears from the
// bridge the next time the transport starts
func RemoveAccessory(name string) {
	hcmu.Lock()
	delete(hcs, name)
	hcmu.Unlock()
}

// GetAccessory looks up a device by name -- you probably want the various platform's version, not this
func (h HCPlatform) GetAccessory(name string) (*haccessory.HAccessory, bool) {
	hcmu.Lock()
	a, ok := hcs[name]
	hcmu.Unlock()
	return a, ok
}

// Background runs the various background tasks: none for HC
func (h HCPlatform) Background() {
}
