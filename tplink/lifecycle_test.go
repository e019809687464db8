package tplink

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quatrano/hearth/config"
	"github.com/quatrano/hearth/entry"
)

func init() {
	config.Set(&config.Config{})
	retrySleep = func(time.Duration) {}
}

// resetDomain clears domain state and any lingering entry between tests
func resetDomain(t *testing.T) {
	t.Helper()
	entry.ClearDomain(Domain)
	if e, ok := entry.ForDomain(Domain); ok {
		entry.RemoveEntry(e)
	}
}

// recordingHooks registers canned setup/unload hooks for both platforms and
// reports what got forwarded
type recordingHooks struct {
	setup  map[string]int
	unload map[string]int
	allow  map[string]bool // unload result per platform
}

func installHooks(allowLight, allowSwitch bool) *recordingHooks {
	r := &recordingHooks{
		setup:  make(map[string]int),
		unload: make(map[string]int),
		allow:  map[string]bool{PlatformLight: allowLight, PlatformSwitch: allowSwitch},
	}
	for _, p := range []string{PlatformLight, PlatformSwitch} {
		p := p
		entry.RegisterPlatform(Domain, p, entry.Hooks{
			Setup:  func(e *entry.ConfigEntry) error { r.setup[p]++; return nil },
			Unload: func(e *entry.ConfigEntry) bool { r.unload[p]++; return r.allow[p] },
		})
	}
	return r
}

func fakeProbe(answers map[string]*Sysinfo) func(string) (*Sysinfo, error) {
	return func(host string) (*Sysinfo, error) {
		if si, ok := answers[host]; ok {
			return si, nil
		}
		return nil, errors.New("no route to host")
	}
}

func TestSetupCreatesImportEntry(t *testing.T) {
	resetDomain(t)

	conf := &config.Config{
		TPLink: &config.TPLinkConfig{
			Discovery: false,
			Switches:  []string{"10.0.0.6"},
		},
	}
	require.NoError(t, Setup(conf))

	e, ok := entry.ForDomain(Domain)
	require.True(t, ok)
	assert.Equal(t, entry.SourceImport, e.Source)
	assert.Equal(t, []string{"10.0.0.6"}, stringList(e.Data["switches"]))

	// a second Setup must not create a duplicate entry
	require.NoError(t, Setup(conf))
	e2, _ := entry.ForDomain(Domain)
	assert.Same(t, e, e2)

	entry.RemoveEntry(e)
}

func TestSetupWithoutConfigCreatesNoEntry(t *testing.T) {
	resetDomain(t)

	require.NoError(t, Setup(&config.Config{}))
	_, ok := entry.ForDomain(Domain)
	assert.False(t, ok)
}

func TestSetupEntryStaticDevices(t *testing.T) {
	resetDomain(t)
	hooks := installHooks(true, true)

	orig := getSysinfoTCP
	getSysinfoTCP = fakeProbe(map[string]*Sysinfo{
		"10.0.0.5": {Model: "HS220(US)", Alias: "Dimmer"},
		"10.0.0.6": {Model: "HS103(US)", Alias: "Lamp"},
	})
	defer func() { getSysinfoTCP = orig }()

	e := &entry.ConfigEntry{Domain: Domain, Source: entry.SourceImport, Data: map[string]interface{}{
		"discovery": false,
		"lights":    []string{"10.0.0.5"},
		"switches":  []string{"10.0.0.6"},
	}}
	require.NoError(t, SetupEntry(e))

	lights := deviceList(PlatformLight)
	require.Len(t, lights, 1)
	assert.Equal(t, "Dimmer", lights[0].Sysinfo.Alias)

	switches := deviceList(PlatformSwitch)
	require.Len(t, switches, 1)
	assert.Equal(t, "Lamp", switches[0].Sysinfo.Alias)

	assert.Equal(t, 1, hooks.setup[PlatformLight])
	assert.Equal(t, 1, hooks.setup[PlatformSwitch])

	v, ok := entry.Get(Domain, keyAddAttempt)
	require.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestSetupEntryEmptyListsNotForwarded(t *testing.T) {
	resetDomain(t)
	hooks := installHooks(true, true)

	orig := getSysinfoTCP
	getSysinfoTCP = fakeProbe(map[string]*Sysinfo{
		"10.0.0.6": {Model: "HS103(US)", Alias: "Lamp"},
	})
	defer func() { getSysinfoTCP = orig }()

	e := &entry.ConfigEntry{Domain: Domain, Data: map[string]interface{}{
		"discovery": false,
		"switches":  []string{"10.0.0.6"},
	}}
	require.NoError(t, SetupEntry(e))

	assert.Equal(t, 0, hooks.setup[PlatformLight])
	assert.Equal(t, 1, hooks.setup[PlatformSwitch])
}

func TestSetupEntryRetriesUnreachable(t *testing.T) {
	resetDomain(t)
	installHooks(true, true)

	orig := getSysinfoTCP
	getSysinfoTCP = fakeProbe(map[string]*Sysinfo{}) // nothing answers
	defer func() { getSysinfoTCP = orig }()

	e := &entry.ConfigEntry{Domain: Domain, Data: map[string]interface{}{
		"discovery":        false,
		"switches":         []string{"10.0.0.66"},
		"retryDelay":       1,
		"retryMaxAttempts": 3,
	}}
	require.NoError(t, SetupEntry(e))

	assert.Empty(t, deviceList(PlatformSwitch))

	// two retry rounds after the initial attempt
	v, _ := entry.Get(Domain, keyAddAttempt)
	assert.Equal(t, 2, v)
}

func TestUnloadEntryClearsStateOnSuccess(t *testing.T) {
	resetDomain(t)
	hooks := installHooks(true, false)

	entry.Set(Domain, PlatformLight, []*Device{{Host: "10.0.0.5"}})
	entry.Set(Domain, PlatformSwitch, []*Device{{Host: "10.0.0.6"}})

	e := &entry.ConfigEntry{Domain: Domain}
	assert.True(t, UnloadEntry(e))

	assert.Equal(t, 1, hooks.unload[PlatformLight])
	assert.Equal(t, 1, hooks.unload[PlatformSwitch])

	// the whole domain state is gone
	_, ok := entry.Get(Domain, PlatformLight)
	assert.False(t, ok)
	_, ok = entry.Get(Domain, keyConfig)
	assert.False(t, ok)
}

func TestUnloadEntryAllPlatformsFail(t *testing.T) {
	resetDomain(t)
	installHooks(false, false)

	entry.Set(Domain, PlatformLight, []*Device{{Host: "10.0.0.5"}})

	e := &entry.ConfigEntry{Domain: Domain}
	assert.False(t, UnloadEntry(e))

	// failed unload keeps the domain state
	_, ok := entry.Get(Domain, PlatformLight)
	assert.True(t, ok)
}

func TestUnloadEntryNothingLoaded(t *testing.T) {
	resetDomain(t)
	hooks := installHooks(true, true)

	e := &entry.ConfigEntry{Domain: Domain}
	assert.False(t, UnloadEntry(e))
	assert.Equal(t, 0, hooks.unload[PlatformLight])
	assert.Equal(t, 0, hooks.unload[PlatformSwitch])
}

func TestConfigFromEntryJSONRoundTrip(t *testing.T) {
	// entry data that has been to disk and back: lists become
	// []interface{}, numbers become float64
	e := &entry.ConfigEntry{Domain: Domain, Data: map[string]interface{}{
		"discovery":        true,
		"lights":           []interface{}{"10.0.0.5"},
		"switches":         []interface{}{"10.0.0.6", "10.0.0.7"},
		"retryDelay":       float64(30),
		"retryMaxAttempts": float64(5),
	}}

	conf := configFromEntry(e)
	require.NotNil(t, conf)
	assert.True(t, conf.Discovery)
	assert.Equal(t, []string{"10.0.0.5"}, conf.Lights)
	assert.Equal(t, []string{"10.0.0.6", "10.0.0.7"}, conf.Switches)
	assert.Equal(t, 30, conf.RetryDelay)
	assert.Equal(t, 5, conf.RetryMaxAttempts)
}

func TestConfigFromEntryNilData(t *testing.T) {
	e := &entry.ConfigEntry{Domain: Domain}
	assert.Nil(t, configFromEntry(e))
}
