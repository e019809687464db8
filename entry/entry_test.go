package entry

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartFlowIsIdempotent(t *testing.T) {
	e := StartFlow("flowtest", SourceImport, map[string]interface{}{"discovery": true})
	require.NotNil(t, e)
	assert.Equal(t, SourceImport, e.Source)

	again := StartFlow("flowtest", SourceUser, nil)
	assert.Same(t, e, again)

	RemoveEntry(e)
	_, ok := ForDomain("flowtest")
	assert.False(t, ok)
}

func TestDomainState(t *testing.T) {
	Set("statetest", "retryDelay", 30)
	Set("statetest", "addAttempt", 0)

	v, ok := Get("statetest", "retryDelay")
	require.True(t, ok)
	assert.Equal(t, 30, v)

	_, ok = Get("statetest", "missing")
	assert.False(t, ok)

	ClearDomain("statetest")
	_, ok = Get("statetest", "retryDelay")
	assert.False(t, ok)
}

func TestForwarding(t *testing.T) {
	setups := 0
	RegisterPlatform("fwdtest", "light", Hooks{
		Setup:  func(e *ConfigEntry) error { setups++; return nil },
		Unload: func(e *ConfigEntry) bool { return true },
	})

	e := &ConfigEntry{Domain: "fwdtest"}
	require.NoError(t, ForwardSetup(e, "light"))
	assert.Equal(t, 1, setups)
	assert.True(t, ForwardUnload(e, "light"))

	// nothing registered for this platform
	assert.Error(t, ForwardSetup(e, "switch"))
	assert.False(t, ForwardUnload(e, "switch"))
}

func TestForwardingReportsFailure(t *testing.T) {
	RegisterPlatform("failtest", "switch", Hooks{
		Setup:  func(e *ConfigEntry) error { return errors.New("no devices") },
		Unload: func(e *ConfigEntry) bool { return false },
	})

	e := &ConfigEntry{Domain: "failtest"}
	assert.Error(t, ForwardSetup(e, "switch"))
	assert.False(t, ForwardUnload(e, "switch"))
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.json")

	e := StartFlow("persisttest", SourceUser, map[string]interface{}{
		"discovery": true,
		"switches":  []string{"10.0.0.6"},
	})
	require.NoError(t, Save(path))
	RemoveEntry(e)

	require.NoError(t, Load(path))
	loaded, ok := ForDomain("persisttest")
	require.True(t, ok)
	assert.Equal(t, SourceUser, loaded.Source)
	assert.Equal(t, true, loaded.Data["discovery"])

	RemoveEntry(loaded)
}

func TestLoadMissingFileIsFine(t *testing.T) {
	require.NoError(t, Load(filepath.Join(t.TempDir(), "nope.json")))
}
