package accessory

import (
	hcaccessory "github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"
	"github.com/quatrano/hearth/action"
)

// HAccessory is the accessory type, hearth's stuff, plus hc's stuff
type HAccessory struct {
	Platform string // TPLink, DHT, OWM, Ping, etc
	Name     string // the name used internally
	// the accessory's config file name or dynamically determined for discovered devices
	IP       string // the IP address of the device (tplink, ping)
	Username string // OWM location name
	Password string // OWM API key

	// DHT platform configuration
	Sensor            string   `json:",omitempty"` // AM2302, DHT11 or DHT22
	Pin               string   `json:",omitempty"` // GPIO pin, bare number or board name
	Conditions        []string `json:",omitempty"` // temperature and/or humidity
	TemperatureOffset float64  `json:",omitempty"`
	HumidityOffset    float64  `json:",omitempty"`

	Type hcaccessory.AccessoryType

	Info                   hcaccessory.Info
	*hcaccessory.Accessory // set when the device is added to HomeControl

	Device interface{}

	Actions []action.Action
	Runner  func(*HAccessory, *action.Action)
}

// MatchActions returns a slice of actions that should be run
// jumping through hoops since including platform here would be circular
func (a HAccessory) MatchActions(state string) []*action.Action {
	var actions []*action.Action
	for i := range a.Actions {
		if a.Actions[i].TriggerState == state {
			log.Debug.Printf("%s: %+v", a.Actions[i].TriggerState, a.Actions[i])
			actions = append(actions, &a.Actions[i])
		}
	}
	return actions
}
