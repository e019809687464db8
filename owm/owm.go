// Package owm pulls OpenWeatherMap current conditions so indoor sensor
// readings have an outdoor reference point
package owm

import (
	"sync"
	"time"

	owm "github.com/briandowns/openweathermap"

	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"

	haccessory "github.com/quatrano/hearth/accessory"
	"github.com/quatrano/hearth/config"
	"github.com/quatrano/hearth/devices"
	"github.com/quatrano/hearth/platform"
)

// Platform is the handle to the OWM locations
type Platform struct {
	Running bool
}

var owms map[string]*haccessory.HAccessory
var doOnce sync.Once

// Startup is called by the platform management to get things going
func (o Platform) Startup(c *config.Config) platform.Control {
	o.Running = true
	return o
}

// Shutdown is called by the platform management to shut things down
func (o Platform) Shutdown() platform.Control {
	o.Running = false
	return o
}

// AddAccessory adds an OWM location and registers it with HomeControl.
// Username carries the location name, Password the API key.
func (o Platform) AddAccessory(a *haccessory.HAccessory) {
	doOnce.Do(func() {
		owms = make(map[string]*haccessory.HAccessory)
	})

	a.Platform = "OWM"
	if a.Info.Name == "" {
		a.Info.Name = a.Username
	}
	a.Info.Manufacturer = "OpenWeatherMap"
	if a.Info.ID == 0 {
		a.Info.ID = 1341
	}
	a.Type = accessory.TypeSensor

	th := devices.NewThermoHygrometer(a.Info, true, true)
	a.Device = th
	a.Accessory = th.Accessory

	h, ok := platform.GetPlatform("HomeControl")
	if !ok {
		log.Info.Println("can't add accessory, HomeControl platform does not yet exist")
		return
	}
	h.AddAccessory(a)

	owms[a.Name] = a
	pull(a)
}

// GetAccessory looks up an OWM location
func (o Platform) GetAccessory(name string) (*haccessory.HAccessory, bool) {
	val, ok := owms[name]
	return val, ok
}

// Background starts up the go process to periodically update the readings
func (o Platform) Background() {
	go func() {
		for range time.Tick(time.Minute * 5) {
			for _, a := range owms {
				pull(a)
			}
		}
	}()
}

func pull(a *haccessory.HAccessory) {
	w, err := owm.NewCurrent("C", "EN", a.Password)
	if err != nil {
		log.Info.Println(err.Error())
		return
	}
	if err := w.CurrentByName(a.Username); err != nil {
		log.Info.Println(err.Error())
		return
	}

	th := a.Device.(*devices.ThermoHygrometer)
	if th.TempSensor.CurrentTemperature.GetValue() != w.Main.Temp {
		th.TempSensor.CurrentTemperature.SetValue(w.Main.Temp)
	}
	if th.HumiditySensor.CurrentRelativeHumidity.GetValue() != float64(w.Main.Humidity) {
		th.HumiditySensor.CurrentRelativeHumidity.SetValue(float64(w.Main.Humidity))
	}
}
