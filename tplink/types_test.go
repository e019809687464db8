package tplink

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLight(t *testing.T) {
	light := &Device{Sysinfo: Sysinfo{Model: "HS220(US)"}}
	assert.True(t, light.IsLight())

	bulb := &Device{Sysinfo: Sysinfo{Model: "KL130(US)"}}
	assert.True(t, bulb.IsLight())

	plug := &Device{Sysinfo: Sysinfo{Model: "HS103(US)"}}
	assert.False(t, plug.IsLight())

	strip := &Device{Sysinfo: Sysinfo{Model: "KP303(US)"}}
	assert.False(t, strip.IsLight())
}

func TestSmartDevicesAdd(t *testing.T) {
	s := &SmartDevices{}
	s.Add(&Device{Host: "10.0.0.5", Sysinfo: Sysinfo{Model: "HS220(US)"}})
	s.Add(&Device{Host: "10.0.0.6", Sysinfo: Sysinfo{Model: "HS103(US)"}})

	assert.Len(t, s.Lights, 1)
	assert.Len(t, s.Switches, 1)
	assert.True(t, s.HasDevice("10.0.0.5"))
	assert.True(t, s.HasDevice("10.0.0.6"))
	assert.False(t, s.HasDevice("10.0.0.7"))
}

func TestSysinfoParse(t *testing.T) {
	// a trimmed HS103 answer
	raw := `{"system":{"get_sysinfo":{"sw_ver":"1.5.8","model":"HS103(US)",` +
		`"deviceId":"8006E1D3B5D6C0A2A7372F54B3C5D8E11F3A9B21","alias":"Lamp",` +
		`"relay_state":1,"mac":"50:C7:BF:11:22:33"}}}`

	var r response
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	si := r.System.Sysinfo
	assert.Equal(t, "HS103(US)", si.Model)
	assert.Equal(t, "Lamp", si.Alias)
	assert.Equal(t, 1, si.RelayState)
}
