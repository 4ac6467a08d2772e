package platform

import (
	"maps"
	"slices"
)

// definedFlags holds the sendfile flag constants this platform defines.
var definedFlags map[string]int //nolint:gochecknoglobals // filled by per-OS init

// Caps describes what the compiled-in strategy can do.
type Caps struct {
	Flags         map[string]int
	Method        Method
	Sendfile      bool
	Fcopyfile     bool
	HeaderTrailer bool
	CurrentOffset bool
}

// Capabilities reports the zero-copy primitives available in this build.
func Capabilities() Caps {
	m := defaultStrategy.Method()
	return Caps{
		Method:        m,
		Sendfile:      m != Unsupported,
		Fcopyfile:     hasFcopyfile,
		HeaderTrailer: supportsHeaderTrailer(m),
		CurrentOffset: supportsCurrentOffset(m),
		Flags:         maps.Clone(definedFlags),
	}
}

// FlagNames returns the defined flag names in sorted order.
func (c Caps) FlagNames() []string {
	return slices.Sorted(maps.Keys(c.Flags))
}
