package dht

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	haccessory "github.com/quatrano/hearth/accessory"
	"github.com/quatrano/hearth/config"
	"github.com/quatrano/hearth/platform"
)

// fakeHC stands in for the HomeControl platform
type fakeHC struct {
	added []*haccessory.HAccessory
}

func (f *fakeHC) Startup(c *config.Config) platform.Control            { return f }
func (f *fakeHC) Shutdown() platform.Control                           { return f }
func (f *fakeHC) Background()                                          {}
func (f *fakeHC) AddAccessory(a *haccessory.HAccessory)                { f.added = append(f.added, a) }
func (f *fakeHC) GetAccessory(name string) (*haccessory.HAccessory, bool) {
	return nil, false
}

var hc = &fakeHC{}

func init() {
	config.Set(&config.Config{})
	platform.RegisterPlatform("HomeControl", hc)
}

func TestNormalizePin(t *testing.T) {
	assert.Equal(t, "D4", NormalizePin("4"))
	assert.Equal(t, "D14", NormalizePin("14"))
	assert.Equal(t, "D4", NormalizePin("d4"))
	assert.Equal(t, "GPIO19", NormalizePin("gpio19"))
}

func TestGPIOName(t *testing.T) {
	assert.Equal(t, "GPIO4", gpioName("D4"))
	assert.Equal(t, "GPIO19", gpioName("GPIO19"))
}

func TestAddAccessory(t *testing.T) {
	var d Platform
	before := len(hc.added)

	d.AddAccessory(&haccessory.HAccessory{
		Name:       "Bedroom",
		Sensor:     "AM2302",
		Pin:        "4",
		Conditions: []string{"temperature", "humidity"},
	})

	require.Equal(t, before+1, len(hc.added))
	a, ok := d.GetAccessory("Bedroom")
	require.True(t, ok)
	assert.Equal(t, "AM2302", a.Info.Model)
	assert.Equal(t, "D4", a.Info.SerialNumber)
	assert.Equal(t, "DHT", a.Platform)
}

func TestAddAccessoryUnsupportedSensor(t *testing.T) {
	var d Platform
	before := len(hc.added)

	d.AddAccessory(&haccessory.HAccessory{
		Name:       "Garage",
		Sensor:     "BME280",
		Pin:        "4",
		Conditions: []string{"temperature"},
	})

	assert.Equal(t, before, len(hc.added))
	_, ok := d.GetAccessory("Garage")
	assert.False(t, ok)
}

func TestAddAccessoryNoConditions(t *testing.T) {
	var d Platform
	before := len(hc.added)

	d.AddAccessory(&haccessory.HAccessory{
		Name:   "Attic",
		Sensor: "DHT11",
		Pin:    "4",
	})

	assert.Equal(t, before, len(hc.added))
}

func TestAddAccessoryUnknownCondition(t *testing.T) {
	var d Platform
	before := len(hc.added)

	d.AddAccessory(&haccessory.HAccessory{
		Name:       "Porch",
		Sensor:     "DHT22",
		Pin:        "4",
		Conditions: []string{"pressure"},
	})

	assert.Equal(t, before, len(hc.added))
}

func TestAddAccessoryOffsetOutOfRange(t *testing.T) {
	var d Platform
	before := len(hc.added)

	d.AddAccessory(&haccessory.HAccessory{
		Name:              "Basement",
		Sensor:            "DHT22",
		Pin:               "4",
		Conditions:        []string{"temperature"},
		TemperatureOffset: 150,
	})

	assert.Equal(t, before, len(hc.added))
}
