package profile

import (
	"fmt"
)

// Unmanaged is the selector value that disables all frequency and cap writes.
const Unmanaged = -1

// Profile is one power preset. Field order mirrors the selector table
// layout used by the kernel tooling: on/off max, two legacy slots,
// core cap level on/off, core cap state on/off.
type Profile struct {
	Name            string `yaml:"name"`
	ScreenOnMax     int    `yaml:"screen_on_max"`
	ScreenOffMax    int    `yaml:"screen_off_max"`
	Reserved        [2]int `yaml:"reserved"`
	CoreCapLevelOn  int    `yaml:"core_cap_level_on"`
	CoreCapLevelOff int    `yaml:"core_cap_level_off"`
	CoreCapStateOn  int    `yaml:"core_cap_state_on"`
	CoreCapStateOff int    `yaml:"core_cap_state_off"`
}

// Table is the bounded list of presets, indexed 0..len-1.
type Table []Profile

// At returns the preset at index i. ok is false when i is out of range.
func (t Table) At(i int) (Profile, bool) {
	if i < 0 || i >= len(t) {
		return Profile{}, false
	}
	return t[i], true
}

// Default returns entry 0.
func (t Table) Default() Profile {
	p, _ := t.At(0)
	return p
}

// Validate checks that a table is well-formed.
func Validate(t Table) error {
	if len(t) == 0 {
		return fmt.Errorf("profile table is empty")
	}
	for i, p := range t {
		if p.ScreenOnMax <= 0 || p.ScreenOffMax <= 0 {
			return fmt.Errorf("profiles[%d]: max frequencies must be positive", i)
		}
		if p.ScreenOffMax > p.ScreenOnMax {
			return fmt.Errorf("profiles[%d]: screen_off_max %d exceeds screen_on_max %d", i, p.ScreenOffMax, p.ScreenOnMax)
		}
		if p.CoreCapLevelOn < 0 || p.CoreCapLevelOff < 0 || p.CoreCapStateOn < 0 || p.CoreCapStateOff < 0 {
			return fmt.Errorf("profiles[%d]: core cap values must not be negative", i)
		}
	}
	return nil
}

// Label returns the preset name, or its index when unnamed.
func (p Profile) Label(index int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("profile-%d", index)
}
