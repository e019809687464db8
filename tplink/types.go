package tplink

import "strings"

// defined by the devices
type response struct {
	System tsystem `json:"system"`
}

// defined by the devices
type tsystem struct {
	Sysinfo Sysinfo `json:"get_sysinfo"`
}

// Sysinfo is the device-defined description every TP-Link smart device
// answers a get_sysinfo with
type Sysinfo struct {
	SWVersion  string  `json:"sw_ver"`
	HWVersion  string  `json:"hw_ver"`
	Model      string  `json:"model"`
	DeviceID   string  `json:"deviceId"`
	OEMID      string  `json:"oemId"`
	HWID       string  `json:"hwId"`
	RSSI       int     `json:"rssi"`
	Alias      string  `json:"alias"`
	Status     string  `json:"status"`
	MIC        string  `json:"mic_type"`
	Feature    string  `json:"feature"`
	MAC        string  `json:"mac"`
	LEDOff     int     `json:"led_off"`
	RelayState int     `json:"relay_state"`
	Brightness int     `json:"brightness"`
	OnTime     int     `json:"on_time"`
	ActiveMode string  `json:"active_mode"`
	DevName    string  `json:"dev_name"`
	Children   []Child `json:"children"`
}

// Child is one socket of a power strip
type Child struct {
	ID         string `json:"id"`
	RelayState int    `json:"state"`
	Alias      string `json:"alias"`
	OnTime     int    `json:"on_time"`
}

// Device is a discovered or statically configured smart device
type Device struct {
	Host    string
	Sysinfo Sysinfo
}

// IsLight reports whether the device belongs on the light platform:
// dimmers and the KL/LB bulb families
func (d *Device) IsLight() bool {
	model := strings.ToUpper(d.Sysinfo.Model)
	return strings.HasPrefix(model, "HS220") ||
		strings.HasPrefix(model, "KL") ||
		strings.HasPrefix(model, "LB")
}

// SmartDevices aggregates the devices destined for the light and switch
// platforms
type SmartDevices struct {
	Lights   []*Device
	Switches []*Device
}

// HasDevice reports whether either list already holds the host
func (s *SmartDevices) HasDevice(host string) bool {
	for _, d := range s.Lights {
		if d.Host == host {
			return true
		}
	}
	for _, d := range s.Switches {
		if d.Host == host {
			return true
		}
	}
	return false
}

// Add files the device on the list its model calls for
func (s *SmartDevices) Add(d *Device) {
	if d.IsLight() {
		s.Lights = append(s.Lights, d)
	} else {
		s.Switches = append(s.Switches, d)
	}
}
