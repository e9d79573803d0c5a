package policy

import (
	"testing"

	"github.com/ppiankov/tegra-fqd/internal/profile"
)

var testProfile = profile.Profile{
	ScreenOnMax:     1500000,
	ScreenOffMax:    475000,
	CoreCapLevelOn:  1300,
	CoreCapLevelOff: 1200,
	CoreCapStateOn:  1,
	CoreCapStateOff: 0,
}

func TestResolveScreenOnUsesOnCeiling(t *testing.T) {
	r := Resolve(Intermediate{ScreenOn: true, MinFreq: 51000}, testProfile)
	if r.MaxFreq != 1500000 {
		t.Errorf("MaxFreq = %d, want 1500000", r.MaxFreq)
	}
	if r.MinFreq != 51000 {
		t.Errorf("MinFreq = %d, want 51000", r.MinFreq)
	}
	if r.CoreCapLevel != 1300 || r.CoreCapState != 1 {
		t.Errorf("core cap = %d/%d, want 1300/1", r.CoreCapLevel, r.CoreCapState)
	}
}

func TestResolveScreenOffUsesOffCeiling(t *testing.T) {
	r := Resolve(Intermediate{MinFreq: 51000}, testProfile)
	if r.MaxFreq != 475000 {
		t.Errorf("MaxFreq = %d, want 475000", r.MaxFreq)
	}
	if r.CoreCapLevel != 1200 || r.CoreCapState != 0 {
		t.Errorf("core cap = %d/%d, want 1200/0", r.CoreCapLevel, r.CoreCapState)
	}
}

func TestResolveRequestRaisesCeiling(t *testing.T) {
	r := Resolve(Intermediate{MinFreq: 340000, ReqFreq: 640000}, testProfile)
	if r.MaxFreq != 640000 {
		t.Errorf("MaxFreq = %d, want 640000", r.MaxFreq)
	}
}

func TestResolveRequestNeverLowersCeiling(t *testing.T) {
	r := Resolve(Intermediate{ScreenOn: true, MinFreq: 340000, ReqFreq: 640000}, testProfile)
	if r.MaxFreq != 1500000 {
		t.Errorf("MaxFreq = %d, want 1500000", r.MaxFreq)
	}
}

func TestResolveFloorRaisesCeiling(t *testing.T) {
	low := profile.Profile{ScreenOnMax: 300000, ScreenOffMax: 200000}
	r := Resolve(Intermediate{MinFreq: 475000}, low)
	if r.MaxFreq != 475000 {
		t.Errorf("MaxFreq = %d, want floor 475000", r.MaxFreq)
	}
}

func TestResolveMaxNeverBelowMin(t *testing.T) {
	profiles := []profile.Profile{
		testProfile,
		{ScreenOnMax: 100000, ScreenOffMax: 51000},
		{ScreenOnMax: 51000, ScreenOffMax: 51000},
	}
	// Every combination of the four numeric flags, folded by hand.
	for bits := 0; bits < 16; bits++ {
		ip := Intermediate{MinFreq: 51000, ScreenOn: bits&1 != 0}
		if bits&2 != 0 {
			ip.MinFreq = max(ip.MinFreq, 340000)
			ip.ReqFreq = max(ip.ReqFreq, 640000)
		}
		if bits&4 != 0 {
			ip.MinFreq = max(ip.MinFreq, 475000)
			ip.ReqFreq = max(ip.ReqFreq, 640000)
		}
		if bits&8 != 0 {
			ip.MinFreq = max(ip.MinFreq, 475000)
		}
		for _, p := range profiles {
			r := Resolve(ip, p)
			if r.MaxFreq < r.MinFreq {
				t.Errorf("bits=%04b profile=%+v: max %d < min %d", bits, p, r.MaxFreq, r.MinFreq)
			}
		}
	}
}

func TestResolveForceAccessoryExactMatch(t *testing.T) {
	tests := []struct {
		mask Mask
		want bool
	}{
		{0, false},
		{MaskAudio, false},
		{MaskAccessoryPref, false},
		{MaskAudio | MaskAccessoryPref, true},
		{MaskAudio | MaskA2DP | MaskAccessoryPref, false},
		{MaskA2DP | MaskAccessoryPref, false},
		{MaskAudio | MaskA2DP, false},
	}
	for _, tt := range tests {
		r := Resolve(Intermediate{MinFreq: 51000, Mask: tt.mask}, testProfile)
		if r.ForceAccessory != tt.want {
			t.Errorf("mask %s: ForceAccessory = %v, want %v", tt.mask, r.ForceAccessory, tt.want)
		}
	}
}

func TestResolveIsPure(t *testing.T) {
	ip := Intermediate{ScreenOn: true, MinFreq: 475000, ReqFreq: 640000, Mask: MaskAudio}
	a := Resolve(ip, testProfile)
	b := Resolve(ip, testProfile)
	if a != b {
		t.Errorf("repeated resolve differs: %+v vs %+v", a, b)
	}
}

func TestMaskString(t *testing.T) {
	tests := []struct {
		mask Mask
		want string
	}{
		{0, "none"},
		{MaskAudio, "audio"},
		{MaskAudio | MaskAccessoryPref, "audio|accessory-pref"},
		{MaskAudio | MaskA2DP | MaskAccessoryPref, "audio|a2dp|accessory-pref"},
	}
	for _, tt := range tests {
		if got := tt.mask.String(); got != tt.want {
			t.Errorf("Mask(%d).String() = %q, want %q", tt.mask, got, tt.want)
		}
	}
}
