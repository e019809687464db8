package dht

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient wires a canned reader in place of the hardware and, unless
// throttled is set, disables the read throttle
func newTestClient(t *testing.T, throttled bool, read readFunc) *Client {
	t.Helper()
	c := NewClient("DHT22", "D4", "Test Sensor")
	if !throttled {
		c.interval = 0
	}
	c.read = read
	return c
}

func fixedReader(humidity, temperature float64) readFunc {
	return func() (float64, float64, error) {
		return humidity, temperature, nil
	}
}

func TestTemperatureOffsetCelsius(t *testing.T) {
	c := newTestClient(t, false, fixedReader(50, 21.07))
	s := NewSensor(c, SensorTemperature, UnitCelsius, 0.5, 0)

	s.Update()
	state, ok := s.State()
	require.True(t, ok)
	assert.Equal(t, 21.6, state)
}

func TestHumidityOffset(t *testing.T) {
	c := newTestClient(t, false, fixedReader(48.24, 20))
	s := NewSensor(c, SensorHumidity, UnitPercent, 0, 1.5)

	s.Update()
	state, ok := s.State()
	require.True(t, ok)
	assert.Equal(t, 49.7, state)
}

func TestZeroHumidityIsAReading(t *testing.T) {
	c := newTestClient(t, false, fixedReader(0, 20))
	s := NewSensor(c, SensorHumidity, UnitPercent, 0, 0)

	s.Update()
	state, ok := s.State()
	require.True(t, ok)
	assert.Equal(t, 0.0, state)
}

func TestFahrenheitIgnoresOffset(t *testing.T) {
	c := newTestClient(t, false, fixedReader(50, 20))
	s := NewSensor(c, SensorTemperature, UnitFahrenheit, 5, 0)

	s.Update()
	state, ok := s.State()
	require.True(t, ok)
	// 20C is 68F; the offset only applies on the Celsius path
	assert.Equal(t, 68.0, state)
}

func TestOutOfRangeKeepsPriorState(t *testing.T) {
	reading := 25.0
	c := newTestClient(t, false, func() (float64, float64, error) {
		return 50, reading, nil
	})
	s := NewSensor(c, SensorTemperature, UnitCelsius, 0, 0)

	s.Update()
	state, ok := s.State()
	require.True(t, ok)
	require.Equal(t, 25.0, state)

	// a wild value out of the sensor's plausible range changes nothing
	reading = 104.2
	s.Update()
	state, ok = s.State()
	require.True(t, ok)
	assert.Equal(t, 25.0, state)
}

func TestNoStateBeforeFirstReading(t *testing.T) {
	c := newTestClient(t, false, func() (float64, float64, error) {
		return 0, 0, errors.New("checksum mismatch")
	})
	s := NewSensor(c, SensorTemperature, UnitCelsius, 0, 0)

	s.Update()
	_, ok := s.State()
	assert.False(t, ok)
}

func TestThrottleCollapsesReads(t *testing.T) {
	reads := 0
	c := newTestClient(t, true, func() (float64, float64, error) {
		reads++
		return 50, 20, nil
	})

	temp := NewSensor(c, SensorTemperature, UnitCelsius, 0, 0)
	hum := NewSensor(c, SensorHumidity, UnitPercent, 0, 0)

	// a burst of per-metric updates inside the interval collapses into
	// one real device read
	temp.Update()
	hum.Update()
	temp.Update()
	assert.Equal(t, 1, reads)

	state, ok := hum.State()
	require.True(t, ok)
	assert.Equal(t, 50.0, state)
}

func TestFailedReadKeepsData(t *testing.T) {
	fail := false
	c := newTestClient(t, false, func() (float64, float64, error) {
		if fail {
			return 0, 0, errors.New("read timeout")
		}
		return 50, 20, nil
	})
	s := NewSensor(c, SensorTemperature, UnitCelsius, 0, 0)

	s.Update()
	fail = true
	s.Update()

	state, ok := s.State()
	require.True(t, ok)
	assert.Equal(t, 20.0, state)
}

func TestSensorName(t *testing.T) {
	c := newTestClient(t, false, fixedReader(50, 20))
	s := NewSensor(c, SensorTemperature, UnitCelsius, 0, 0)
	assert.Equal(t, "Test Sensor Temperature", s.Name())
}
