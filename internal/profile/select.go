package profile

import (
	"errors"
	"io"
	"os"
)

// selectorWidth is the number of bytes read from the selector file.
const selectorWidth = 3

// Source values describe how a Selection was reached.
const (
	SourceDefault    = "default"      // selector missing or unreadable
	SourceSelector   = "selector"     // valid index read from the selector
	SourceOutOfRange = "out-of-range" // selector value ignored
	SourceUnmanaged  = "unmanaged"    // selector asked for no frequency management
)

// Selection is the preset chosen at startup. It is immutable and passed
// by value into every cycle.
type Selection struct {
	Index     int
	Raw       int
	Profile   Profile
	Unmanaged bool
	Source    string
}

// Select reads the persisted selector at path and picks a preset from table.
// It never fails: a missing file, garbage, or an out-of-range value falls
// back to entry 0. A value of -1 selects entry 0 and marks the process
// unmanaged.
func Select(path string, table Table) Selection {
	sel := Selection{Profile: table.Default(), Source: SourceDefault}

	raw, ok := readSelector(path)
	if !ok {
		return sel
	}
	sel.Raw = raw

	if raw == Unmanaged {
		sel.Unmanaged = true
		sel.Source = SourceUnmanaged
		return sel
	}
	p, ok := table.At(raw)
	if !ok {
		sel.Source = SourceOutOfRange
		return sel
	}
	sel.Index = raw
	sel.Profile = p
	sel.Source = SourceSelector
	return sel
}

// ForIndex builds a Selection for an explicit index, as if it had been
// read from the selector file.
func ForIndex(index int, table Table) Selection {
	sel := Selection{Raw: index, Profile: table.Default(), Source: SourceOutOfRange}
	if index == Unmanaged {
		sel.Unmanaged = true
		sel.Source = SourceUnmanaged
		return sel
	}
	if p, ok := table.At(index); ok {
		sel.Index = index
		sel.Profile = p
		sel.Source = SourceSelector
	}
	return sel
}

func readSelector(path string) (int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	buf := make([]byte, selectorWidth)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		// An empty file reads as zero, like an unparsable one.
		return 0, errors.Is(err, io.EOF)
	}
	return parseSelector(buf[:n]), true
}

// parseSelector is lenient: leading whitespace, an optional sign, then
// digits up to the first non-digit. Anything unparsable is zero.
func parseSelector(b []byte) int {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}
	neg := false
	if i < len(b) && (b[i] == '-' || b[i] == '+') {
		neg = b[i] == '-'
		i++
	}
	v := 0
	for ; i < len(b) && b[i] >= '0' && b[i] <= '9'; i++ {
		v = v*10 + int(b[i]-'0')
	}
	if neg {
		return -v
	}
	return v
}
