package registry

import (
	"fmt"
	"strings"
)

// CreateFlags indicate specific registry behaviors to activate or deactivate
type CreateFlags int32

const (
	// RegistryCreateExternallySynchronized ensures that this registry will not be synchronized
	// internally. The consumer must guarantee it is used from only one thread at a time or is
	// synchronized by some other mechanism, but performance may improve because internal
	// mutexes are not used.
	RegistryCreateExternallySynchronized CreateFlags = 1 << iota
)

func (f CreateFlags) String() string {
	if f == 0 {
		return "0"
	}

	var sb strings.Builder
	if f&RegistryCreateExternallySynchronized != 0 {
		sb.WriteString("RegistryCreateExternallySynchronized")
		f &^= RegistryCreateExternallySynchronized
	}

	if f != 0 {
		if sb.Len() > 0 {
			sb.WriteRune('|')
		}
		fmt.Fprintf(&sb, "0x%x", int32(f))
	}

	return sb.String()
}
