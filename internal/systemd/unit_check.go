package systemd

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// UnitFilePaths are the paths checked for an installed tegra-fqd unit.
var UnitFilePaths = []string{
	"/etc/systemd/system/" + UnitName,
	"/lib/systemd/system/" + UnitName,
}

// UnitStatus describes how an installed unit compares to DaemonTemplate.
type UnitStatus struct {
	Path     string // empty when no unit is installed
	Current  bool
	Expected string // short hash of the template
	Actual   string // short hash of the installed unit
}

// CheckInstalledUnit finds the installed unit and compares it with the
// template shipped in this binary.
func CheckInstalledUnit() (UnitStatus, error) {
	status := UnitStatus{Expected: shortHash([]byte(DaemonTemplate()))}

	for _, p := range UnitFilePaths {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return status, fmt.Errorf("cannot read unit file %s: %w", p, err)
		}
		status.Path = p
		status.Actual = shortHash(data)
		status.Current = status.Actual == status.Expected
		return status, nil
	}
	return status, nil
}

func shortHash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])[:16]
}
