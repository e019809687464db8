package tplink

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quatrano/hearth/config"
)

// how long a discovery pass listens for answers
const discoveryWindow = 3 * time.Second

const (
	defaultRetryDelay       = 60 // seconds
	defaultRetryMaxAttempts = 3
)

// test seam
var retrySleep = time.Sleep

var collector struct {
	mu   sync.Mutex
	sink chan *Device
}

// offerToCollector hands a sysinfo answer to a running discovery pass, if
// there is one; dropped otherwise
func offerToCollector(d *Device) {
	collector.mu.Lock()
	sink := collector.sink
	collector.mu.Unlock()
	if sink == nil {
		return
	}
	select {
	case sink <- d:
	default:
	}
}

// discoverDevices broadcasts a sysinfo probe and files every answer that is
// not already statically configured
func discoverDevices(static *SmartDevices) *SmartDevices {
	found := &SmartDevices{}

	sink := make(chan *Device, 64)
	collector.mu.Lock()
	collector.sink = sink
	collector.mu.Unlock()
	defer func() {
		collector.mu.Lock()
		collector.sink = nil
		collector.mu.Unlock()
	}()

	if err := broadcastCmd(cmdSysinfo); err != nil {
		logrus.WithError(err).Info("discovery broadcast failed")
		return found
	}

	window := time.After(discoveryWindow)
	for {
		select {
		case d := <-sink:
			if static.HasDevice(d.Host) || found.HasDevice(d.Host) {
				continue
			}
			logrus.WithFields(logrus.Fields{
				"host":  d.Host,
				"alias": d.Sysinfo.Alias,
				"model": d.Sysinfo.Model,
			}).Info("discovered device")
			found.Add(d)
		case <-window:
			return found
		}
	}
}

// getStaticDevices probes each configured host. Unreachable hosts are
// retried up to the configured attempt limit, one delay apart; every retry
// round bumps the attempt counter in the domain state.
func getStaticDevices(conf *config.TPLinkConfig) *SmartDevices {
	static := &SmartDevices{}

	type target struct {
		host  string
		light bool
	}
	var pending []target
	for _, h := range conf.Lights {
		pending = append(pending, target{h, true})
	}
	for _, h := range conf.Switches {
		pending = append(pending, target{h, false})
	}

	delay := time.Duration(conf.RetryDelay) * time.Second
	if conf.RetryDelay <= 0 {
		delay = defaultRetryDelay * time.Second
	}
	maxAttempts := conf.RetryMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = defaultRetryMaxAttempts
	}

	for attempt := 1; len(pending) > 0 && attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			bumpAttempt()
			retrySleep(delay)
		}
		var unreachable []target
		for _, t := range pending {
			si, err := getSysinfoTCP(t.host)
			if err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"host":    t.host,
					"attempt": attempt,
				}).Debug("static device unreachable")
				unreachable = append(unreachable, t)
				continue
			}
			d := &Device{Host: t.host, Sysinfo: *si}
			if t.light {
				static.Lights = append(static.Lights, d)
			} else {
				static.Switches = append(static.Switches, d)
			}
		}
		pending = unreachable
	}

	for _, t := range pending {
		logrus.WithField("host", t.host).Warn("giving up on static device")
	}
	return static
}
