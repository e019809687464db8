package action

// Action describes a follow-up operation triggered by a device state change
type Action struct {
	// the source device is not stored here since actions hang off their accessory
	TriggerState   string // On or Off -- or sensor value
	TargetPlatform string
	TargetDevice   string // IP or name depending on platform
	Verb           string // per-platform specific
	Value          string // per-platform specific
}

// see runner for running actions -- circular imports suck
