package dht

import (
	"strconv"
	"strings"
	"sync"
	"time"

	godht "github.com/MichaelS11/go-dht"
	"github.com/brutella/hc/log"
)

// metrics reported by the sensor
const (
	SensorTemperature = "temperature"
	SensorHumidity    = "humidity"
)

// DHT11 is able to deliver data once per second, DHT22 once every two;
// polling any faster than this just burns GPIO cycles
const MinTimeBetweenUpdates = 30 * time.Second

type readFunc func() (humidity, temperature float64, err error)

// Client owns the wire to one physical DHT sensor. All entities carved out
// of the same sensor share a client, so a burst of per-metric updates
// collapses into a single device read.
type Client struct {
	SensorType string // AM2302, DHT11 or DHT22
	Pin        string // normalized board pin, D4 and the like
	Name       string

	mu       sync.Mutex
	lastRead time.Time
	interval time.Duration
	data     map[string]float64
	read     readFunc // swapped out in tests
}

func NewClient(sensorType, pin, name string) *Client {
	c := &Client{
		SensorType: sensorType,
		Pin:        pin,
		Name:       name,
		interval:   MinTimeBetweenUpdates,
		data:       make(map[string]float64),
	}
	c.read = c.readDevice
	return c
}

// Update reads the device at most once per interval; calls landing inside
// the window are no-ops. A failed read keeps the previous values.
func (c *Client) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastRead.IsZero() && time.Since(c.lastRead) < c.interval {
		return
	}
	c.lastRead = time.Now()

	humidity, temperature, err := c.read()
	if err != nil {
		return
	}
	c.data[SensorTemperature] = temperature
	c.data[SensorHumidity] = humidity
}

// Value returns the last raw reading for a metric
func (c *Client) Value(metric string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[metric]
	return v, ok
}

// readDevice opens a fresh handle for every read; the sensor resets its
// one-wire state between conversations and holding the pin open confuses it
func (c *Client) readDevice() (float64, float64, error) {
	handle, err := godht.NewDHT(gpioName(c.Pin), godht.Celsius, strings.ToLower(c.SensorType))
	if err != nil {
		log.Info.Printf("unable to open DHT sensor [%s] on pin %s: %s", c.Name, c.Pin, err)
		return 0, 0, err
	}
	humidity, temperature, err := handle.ReadRetry(3)
	if err != nil {
		// marginal pulses happen; the next poll tries again
		log.Debug.Printf("bad reading from [%s]: %s", c.Name, err)
		return 0, 0, err
	}
	return humidity, temperature, nil
}

// gpioName maps a board pin like D4 to the kernel name GPIO4
func gpioName(pin string) string {
	if strings.HasPrefix(pin, "D") {
		if _, err := strconv.Atoi(pin[1:]); err == nil {
			return "GPIO" + pin[1:]
		}
	}
	return pin
}
