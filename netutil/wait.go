package netutil

import "time"

const (
	// MaxDescriptors is the number of positional slots Wait accepts.
	MaxDescriptors = 4

	// NoFD marks an unused descriptor slot. Any negative value is treated the same.
	NoFD = -1

	// Forever makes Wait block until a descriptor becomes readable.
	Forever time.Duration = -1
)

// Ready is a bitmask of readable descriptors: bit i is set when the i-th
// descriptor passed to Wait became readable.
type Ready uint

// IsSet reports whether positional descriptor i is readable.
func (r Ready) IsSet(i int) bool {
	return i >= 0 && i < MaxDescriptors && r&(1<<uint(i)) != 0
}

// Empty reports whether no descriptor is readable.
func (r Ready) Empty() bool { return r == 0 }
