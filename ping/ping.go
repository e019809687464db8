// Package ping watches device reachability and surfaces it as a HomeKit
// contact sensor: contact means the device answers
package ping

import (
	"sync"
	"time"

	probing "github.com/go-ping/ping"

	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/log"
	"github.com/brutella/hc/service"

	haccessory "github.com/quatrano/hearth/accessory"
	"github.com/quatrano/hearth/config"
	"github.com/quatrano/hearth/platform"
)

// Platform is the platform handle for the ping watchers
type Platform struct {
	Running bool
}

var watched map[string]*haccessory.HAccessory
var doOnce sync.Once
var pingRate int

// Startup is called by the platform management to start the platform up
func (p Platform) Startup(c *config.Config) platform.Control {
	pingRate = c.PingRate
	p.Running = true
	return p
}

// Shutdown is called by the platform management to shut things down
func (p Platform) Shutdown() platform.Control {
	p.Running = false
	return p
}

// AddAccessory adds a watched device and registers it with HomeControl
func (p Platform) AddAccessory(a *haccessory.HAccessory) {
	doOnce.Do(func() {
		watched = make(map[string]*haccessory.HAccessory)
	})

	a.Platform = "Ping"
	if a.Info.Name == "" {
		a.Info.Name = a.Name
	}
	a.Type = accessory.TypeSensor
	a.Info.Manufacturer = "hearth"
	a.Info.Model = "reachability"

	acc := accessory.New(a.Info, a.Type)
	cs := service.NewContactSensor()
	acc.AddService(cs.Service)
	a.Device = cs
	a.Accessory = acc

	h, ok := platform.GetPlatform("HomeControl")
	if !ok {
		log.Info.Println("can't add accessory, HomeControl platform does not yet exist")
		return
	}
	h.AddAccessory(a)

	watched[a.IP] = a
	cs.ContactSensorState.SetValue(check(a))
}

// GetAccessory looks up a watched device by IP address
func (p Platform) GetAccessory(ip string) (*haccessory.HAccessory, bool) {
	val, ok := watched[ip]
	return val, ok
}

// Background runs a background task periodically pinging everything
func (p Platform) Background() {
	rate := pingRate
	if rate <= 0 {
		rate = 60
	}
	go func() {
		for range time.Tick(time.Second * time.Duration(rate)) {
			for _, a := range watched {
				cs := a.Device.(*service.ContactSensor)
				cs.ContactSensorState.SetValue(check(a))
			}
		}
	}()
}

// check sends a single ICMP echo; detected == reachable
func check(a *haccessory.HAccessory) int {
	pinger, err := probing.NewPinger(a.IP)
	if err != nil {
		log.Info.Println(err.Error())
		return characteristic.ContactSensorStateContactNotDetected
	}
	pinger.Count = 1
	pinger.Timeout = time.Second * 2
	pinger.SetPrivileged(true)
	if err := pinger.Run(); err != nil {
		log.Info.Println(err.Error())
		return characteristic.ContactSensorStateContactNotDetected
	}
	if pinger.Statistics().PacketsRecv > 0 {
		return characteristic.ContactSensorStateContactDetected
	}
	return characteristic.ContactSensorStateContactNotDetected
}
