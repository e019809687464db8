package dht

import (
	"fmt"
	"math"

	"github.com/brutella/hc/log"
)

// display units
const (
	UnitCelsius    = "C"
	UnitFahrenheit = "F"
	UnitPercent    = "%"
)

// Sensor is one reported metric carved out of a shared client
type Sensor struct {
	client     *Client
	metric     string
	unit       string
	clientName string

	temperatureOffset float64
	humidityOffset    float64

	state    float64
	hasState bool
}

func NewSensor(client *Client, metric, unit string, temperatureOffset, humidityOffset float64) *Sensor {
	return &Sensor{
		client:            client,
		metric:            metric,
		unit:              unit,
		clientName:        client.Name,
		temperatureOffset: temperatureOffset,
		humidityOffset:    humidityOffset,
	}
}

// Name is the display name, client name plus metric
func (s *Sensor) Name() string {
	return fmt.Sprintf("%s %s", s.clientName, displayNames[s.metric])
}

var displayNames = map[string]string{
	SensorTemperature: "Temperature",
	SensorHumidity:    "Humidity",
}

// Update pulls the shared client then recomputes this metric's state.
// Readings outside the sensor's plausible range leave the prior state alone.
func (s *Sensor) Update() {
	s.client.Update()

	raw, ok := s.client.Value(s.metric)
	if !ok {
		return
	}

	switch s.metric {
	case SensorTemperature:
		log.Debug.Printf("[%s] temperature %.1f C + offset %.1f", s.clientName, raw, s.temperatureOffset)
		if raw >= -20 && raw < 80 {
			s.state = round1(raw + s.temperatureOffset)
			if s.unit == UnitFahrenheit {
				// the offset is Celsius-only
				s.state = round1(celsiusToFahrenheit(raw))
			}
			s.hasState = true
		}
	case SensorHumidity:
		log.Debug.Printf("[%s] humidity %.1f%% + offset %.1f", s.clientName, raw, s.humidityOffset)
		if raw >= 0 && raw <= 100 {
			s.state = round1(raw + s.humidityOffset)
			s.hasState = true
		}
	}
}

// State returns the displayed value; false until the first good reading
func (s *Sensor) State() (float64, bool) {
	return s.state, s.hasState
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func celsiusToFahrenheit(c float64) float64 {
	return c*1.8 + 32
}
