package dht

import (
	"strconv"
	"strings"
	"sync"
	"time"

	godht "github.com/MichaelS11/go-dht"
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"

	haccessory "github.com/quatrano/hearth/accessory"
	"github.com/quatrano/hearth/config"
	"github.com/quatrano/hearth/devices"
	"github.com/quatrano/hearth/platform"
)

// Platform is the platform handle for the DHT sensors
type Platform struct {
	Running bool
}

var supportedSensors = map[string]bool{
	"AM2302": true,
	"DHT11":  true,
	"DHT22":  true,
}

// entity links one metric's state machine to its HomeKit characteristic
type entity struct {
	sensor *Sensor
	push   func(float64)
}

type dhtmu struct {
	mu       sync.Mutex
	devs     map[string]*haccessory.HAccessory
	entities []*entity
}

var dhts dhtmu
var doOnce sync.Once

// Startup is called by the platform management to start the platform up
func (d Platform) Startup(c *config.Config) platform.Control {
	if err := godht.HostInit(); err != nil {
		log.Info.Printf("unable to initialize GPIO host: %s", err)
		return d
	}
	d.Running = true
	return d
}

// Shutdown is called by the platform management to shut things down
func (d Platform) Shutdown() platform.Control {
	d.Running = false
	return d
}

// AddAccessory validates a sensor's configuration, builds one entity per
// monitored condition, and registers the lot with HomeControl. Bad
// configuration logs and registers nothing.
func (d Platform) AddAccessory(a *haccessory.HAccessory) {
	doOnce.Do(func() {
		dhts.mu.Lock()
		dhts.devs = make(map[string]*haccessory.HAccessory)
		dhts.mu.Unlock()
	})

	kind := strings.ToUpper(a.Sensor)
	if !supportedSensors[kind] {
		log.Info.Printf("DHT sensor type [%s] is not supported", a.Sensor)
		return
	}

	if len(a.Conditions) == 0 {
		log.Info.Printf("no monitored conditions for [%s], nothing to report", a.Name)
		return
	}

	if !offsetInRange(a.TemperatureOffset) || !offsetInRange(a.HumidityOffset) {
		log.Info.Printf("offset out of range for [%s]: temperature %.1f humidity %.1f",
			a.Name, a.TemperatureOffset, a.HumidityOffset)
		return
	}

	name := a.Name
	if name == "" {
		name = "DHT Sensor"
	}
	pin := NormalizePin(a.Pin)

	tempUnit := UnitCelsius
	if c := config.Get(); c != nil && strings.ToUpper(c.TemperatureUnit) == UnitFahrenheit {
		tempUnit = UnitFahrenheit
	}

	client := NewClient(kind, pin, name)

	var sensors []*Sensor
	withTemperature, withHumidity := false, false
	for _, cond := range a.Conditions {
		switch strings.ToLower(cond) {
		case SensorTemperature:
			withTemperature = true
			sensors = append(sensors,
				NewSensor(client, SensorTemperature, tempUnit, a.TemperatureOffset, a.HumidityOffset))
		case SensorHumidity:
			withHumidity = true
			sensors = append(sensors,
				NewSensor(client, SensorHumidity, UnitPercent, a.TemperatureOffset, a.HumidityOffset))
		default:
			log.Info.Printf("unknown monitored condition [%s] for [%s]", cond, name)
			return
		}
	}

	a.Platform = "DHT"
	a.Name = name
	a.Type = accessory.TypeSensor
	a.Info.Name = name
	a.Info.Manufacturer = "Aosong"
	a.Info.Model = kind
	a.Info.SerialNumber = pin

	th := devices.NewThermoHygrometer(a.Info, withTemperature, withHumidity)
	a.Device = th
	a.Accessory = th.Accessory

	h, ok := platform.GetPlatform("HomeControl")
	if !ok {
		log.Info.Println("can't add accessory, HomeControl platform does not yet exist")
		return
	}
	h.AddAccessory(a)

	dhts.mu.Lock()
	for _, s := range sensors {
		e := &entity{sensor: s}
		switch s.metric {
		case SensorTemperature:
			e.push = func(v float64) { th.TempSensor.CurrentTemperature.SetValue(v) }
		case SensorHumidity:
			e.push = func(v float64) { th.HumiditySensor.CurrentRelativeHumidity.SetValue(v) }
		}
		dhts.entities = append(dhts.entities, e)
	}
	dhts.devs[name] = a
	dhts.mu.Unlock()

	log.Info.Printf("adding [%s]: [%s] on pin %s", name, kind, pin)
}

// GetAccessory looks up a DHT sensor by name
func (d Platform) GetAccessory(name string) (*haccessory.HAccessory, bool) {
	dhts.mu.Lock()
	a, ok := dhts.devs[name]
	dhts.mu.Unlock()
	return a, ok
}

// Background starts the go process that polls the entities; the throttle in
// the client keeps the real device reads down to one per interval
func (d Platform) Background() {
	go func() {
		for range time.Tick(MinTimeBetweenUpdates) {
			d.backgroundPuller()
		}
	}()
}

func (d Platform) backgroundPuller() {
	dhts.mu.Lock()
	entities := append([]*entity(nil), dhts.entities...)
	dhts.mu.Unlock()

	for _, e := range entities {
		e.sensor.Update()
		if v, ok := e.sensor.State(); ok && e.push != nil {
			e.push(v)
		}
	}
}

// NormalizePin prefixes bare pin numbers with D and upcases board names
func NormalizePin(pin string) string {
	if _, err := strconv.Atoi(pin); err == nil {
		return "D" + pin
	}
	return strings.ToUpper(pin)
}

func offsetInRange(offset float64) bool {
	return offset >= -100 && offset <= 100
}
