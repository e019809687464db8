// Package hostsensors surfaces the bridge host's own temperature chips so
// the hardware the bridge runs on shows up next to the room sensors
package hostsensors

import (
	"strconv"
	"time"

	"github.com/ssimunic/gosensors"

	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"

	haccessory "github.com/quatrano/hearth/accessory"
	"github.com/quatrano/hearth/config"
	"github.com/quatrano/hearth/devices"
	"github.com/quatrano/hearth/platform"
)

// Platform is the handle to the host sensors
type Platform struct {
	Running bool
}

var host *haccessory.HAccessory

// Startup is called by the platform management to get things going
func (s Platform) Startup(c *config.Config) platform.Control {
	s.Running = true
	return s
}

// Shutdown is called by the platform management to shut things down
func (s Platform) Shutdown() platform.Control {
	s.Running = false
	return s
}

// AddAccessory registers the host's sensors with HomeControl
func (s Platform) AddAccessory(a *haccessory.HAccessory) {
	a.Platform = "HostSensors"
	if a.Name == "" {
		a.Name = "Host Sensors"
	}
	a.Type = accessory.TypeSensor
	a.Info.Name = a.Name
	a.Info.Manufacturer = "Linux"
	a.Info.ID = 102
	a.Info.SerialNumber = "0"

	th := devices.NewThermoHygrometer(a.Info, true, false)
	a.Device = th
	a.Accessory = th.Accessory

	h, ok := platform.GetPlatform("HomeControl")
	if !ok {
		log.Info.Println("can't add accessory, HomeControl platform does not yet exist")
		return
	}
	h.AddAccessory(a)

	host = a
	s.pull()
}

// GetAccessory looks up the host sensor
func (s Platform) GetAccessory(name string) (*haccessory.HAccessory, bool) {
	return host, host != nil
}

// Background starts the go process to periodically update the sensor values
func (s Platform) Background() {
	go func() {
		for range time.Tick(time.Minute * 5) {
			s.pull()
		}
	}()
}

func (s Platform) pull() {
	if host == nil {
		return
	}
	nfs, err := gosensors.NewFromSystem()
	if err != nil {
		log.Info.Println(err)
		return
	}

	th := host.Device.(*devices.ThermoHygrometer)
	for chip := range nfs.Chips {
		for k, v := range nfs.Chips[chip] {
			if k != "temp1" {
				continue
			}
			// values come back like "+47.0°C"
			temp, err := strconv.ParseFloat(v[1:5], 64)
			if err != nil {
				log.Info.Println(err)
				continue
			}
			if th.TempSensor.CurrentTemperature.GetValue() != temp {
				log.Debug.Printf("setting host temp to: %f", temp)
				th.TempSensor.CurrentTemperature.SetValue(temp)
			}
		}
	}
}
