package policy

import (
	"strings"
)

// Mask records which subsystems asked for accessory-related behavior.
type Mask uint8

const (
	MaskAudio         Mask = 1 << 0
	MaskA2DP          Mask = 1 << 1
	MaskAccessoryPref Mask = 1 << 2
)

// forceAccessoryMask is the only combination that forces accessory mode.
const forceAccessoryMask = MaskAudio | MaskAccessoryPref

// Has reports whether every bit in b is set.
func (m Mask) Has(b Mask) bool {
	return m&b == b
}

func (m Mask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	if m.Has(MaskAudio) {
		parts = append(parts, "audio")
	}
	if m.Has(MaskA2DP) {
		parts = append(parts, "a2dp")
	}
	if m.Has(MaskAccessoryPref) {
		parts = append(parts, "accessory-pref")
	}
	return strings.Join(parts, "|")
}

// Intermediate is the flag set folded into frequency terms. It is rebuilt
// from the directory on every cycle.
type Intermediate struct {
	ScreenOn bool
	MinFreq  int // floor required by active use cases
	ReqFreq  int // highest explicit request, 0 when none
	Mask     Mask
}

// Resolved is what a cycle commits. MaxFreq >= MinFreq always holds.
type Resolved struct {
	MinFreq        int
	MaxFreq        int
	CoreCapLevel   int
	CoreCapState   int
	ForceAccessory bool
}
