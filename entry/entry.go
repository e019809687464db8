// Package entry keeps the bridge's config entries: persisted configuration
// records that drive device setup and teardown, plus the per-domain runtime
// state those entries hang on to while they are loaded.
package entry

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"sync"

	"github.com/brutella/hc/log"
)

// entry sources
const (
	SourceImport = "import"
	SourceUser   = "user"
)

// ConfigEntry is a persisted configuration record for one integration domain
type ConfigEntry struct {
	Domain string                 `json:"domain"`
	Source string                 `json:"source"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Hooks are the per-platform setup and unload entry points an integration
// registers for each device category it can forward to
type Hooks struct {
	Setup  func(*ConfigEntry) error
	Unload func(*ConfigEntry) bool
}

var (
	mu      sync.Mutex
	entries []*ConfigEntry
	domains map[string]map[string]interface{}
	hooks   map[string]map[string]Hooks // domain -> platform -> hooks
)

func init() {
	domains = make(map[string]map[string]interface{})
	hooks = make(map[string]map[string]Hooks)
}

// RegisterPlatform wires a (domain, platform) pair to its setup/unload hooks
func RegisterPlatform(domain, platform string, h Hooks) {
	mu.Lock()
	defer mu.Unlock()
	if hooks[domain] == nil {
		hooks[domain] = make(map[string]Hooks)
	}
	hooks[domain][platform] = h
}

// ForwardSetup runs the registered setup hook for one of an entry's platforms
func ForwardSetup(e *ConfigEntry, platform string) error {
	h, ok := lookupHooks(e.Domain, platform)
	if !ok || h.Setup == nil {
		return fmt.Errorf("no setup registered for %s/%s", e.Domain, platform)
	}
	return h.Setup(e)
}

// ForwardUnload runs the registered unload hook, reporting whether the
// platform actually released anything
func ForwardUnload(e *ConfigEntry, platform string) bool {
	h, ok := lookupHooks(e.Domain, platform)
	if !ok || h.Unload == nil {
		log.Info.Printf("no unload registered for %s/%s", e.Domain, platform)
		return false
	}
	return h.Unload(e)
}

func lookupHooks(domain, platform string) (Hooks, bool) {
	mu.Lock()
	defer mu.Unlock()
	h, ok := hooks[domain][platform]
	return h, ok
}

// StartFlow creates a config entry for the domain unless one already exists.
// The import flow uses this to promote flat-file configuration into an entry.
func StartFlow(domain, source string, data map[string]interface{}) *ConfigEntry {
	mu.Lock()
	defer mu.Unlock()
	for _, e := range entries {
		if e.Domain == domain {
			return e
		}
	}
	e := &ConfigEntry{Domain: domain, Source: source, Data: data}
	entries = append(entries, e)
	return e
}

// ForDomain returns the entry for a domain, if one is loaded
func ForDomain(domain string) (*ConfigEntry, bool) {
	mu.Lock()
	defer mu.Unlock()
	for _, e := range entries {
		if e.Domain == domain {
			return e, true
		}
	}
	return nil, false
}

// RemoveEntry drops an entry from the store; the caller is responsible for
// unloading it first
func RemoveEntry(e *ConfigEntry) {
	mu.Lock()
	defer mu.Unlock()
	for i, have := range entries {
		if have == e {
			entries = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Set stores a value in the domain's runtime state
func Set(domain, key string, value interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if domains[domain] == nil {
		domains[domain] = make(map[string]interface{})
	}
	domains[domain][key] = value
}

// Get fetches a value from the domain's runtime state
func Get(domain, key string) (interface{}, bool) {
	mu.Lock()
	defer mu.Unlock()
	v, ok := domains[domain][key]
	return v, ok
}

// ClearDomain drops all runtime state for a domain; called after a
// successful unload
func ClearDomain(domain string) {
	mu.Lock()
	defer mu.Unlock()
	delete(domains, domain)
}

// Load reads persisted entries from disk; a missing file is a fresh install
func Load(path string) error {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		log.Debug.Printf("no config entries at %s: %s", path, err)
		return nil
	}
	var loaded []*ConfigEntry
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return err
	}
	mu.Lock()
	entries = loaded
	mu.Unlock()
	return nil
}

// Save writes the current entries to disk
func Save(path string) error {
	mu.Lock()
	raw, err := json.Marshal(entries)
	mu.Unlock()
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, raw, 0644)
}
