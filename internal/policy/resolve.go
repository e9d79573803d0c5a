package policy

import (
	"github.com/ppiankov/tegra-fqd/internal/profile"
)

// Resolve combines the folded flags with the active preset.
//
// Resolution order (must not be changed, each step only raises max):
//  1. Screen state picks the preset ceiling
//  2. An explicit request raises it
//  3. The required floor raises it, so max never drops below min
//  4. Screen state picks the core cap level
//  5. Screen state picks the core cap state
//  6. Accessory mode is forced only for exactly audio + preference
func Resolve(ip Intermediate, p profile.Profile) Resolved {
	maxFreq := p.ScreenOffMax
	if ip.ScreenOn {
		maxFreq = p.ScreenOnMax
	}
	maxFreq = max(maxFreq, ip.ReqFreq)
	maxFreq = max(maxFreq, ip.MinFreq)

	level := p.CoreCapLevelOff
	if ip.ScreenOn {
		level = p.CoreCapLevelOn
	}

	// TODO: confirm with the board owners whether core_cap_state should be
	// forced on regardless of screen state; it currently follows the preset.
	state := p.CoreCapStateOff
	if ip.ScreenOn {
		state = p.CoreCapStateOn
	}

	return Resolved{
		MinFreq:        ip.MinFreq,
		MaxFreq:        maxFreq,
		CoreCapLevel:   level,
		CoreCapState:   state,
		ForceAccessory: ip.Mask == forceAccessoryMask,
	}
}
