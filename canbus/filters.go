package canbus

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter selects frames by identifier with SocketCAN semantics: a frame
// matches when (can_id & Mask) == (ID & Mask), where can_id carries the
// EFF and RTR flag bits. Invert negates the match.
type Filter struct {
	ID     uint32
	Mask   uint32
	Invert bool
}

// invFilter marks an inverted filter in struct can_filter.
const invFilter uint32 = 0x20000000

// ExactID matches one identifier. IDs above 0x7FF match extended frames only;
// lower IDs match standard frames only.
func ExactID(id uint32) Filter {
	if id > SFFMask {
		return Filter{ID: (id & EFFMask) | EFFFlag, Mask: EFFMask | EFFFlag}
	}
	return Filter{ID: id, Mask: SFFMask | EFFFlag}
}

// Match reports whether f accepts frame.
func (f Filter) Match(frame Frame) bool {
	ok := frame.CANID()&f.Mask == f.ID&f.Mask
	return ok != f.Invert
}

func (f Filter) canID() uint32 {
	if f.Invert {
		return f.ID | invFilter
	}
	return f.ID &^ invFilter
}

func (f Filter) String() string {
	sep := ":"
	if f.Invert {
		sep = "~"
	}
	return fmt.Sprintf("%X%s%X", f.ID, sep, f.Mask)
}

// MatchAny reports whether any filter accepts frame. An empty list accepts everything.
func MatchAny(filters []Filter, frame Frame) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if f.Match(frame) {
			return true
		}
	}
	return false
}

// ParseFilter parses candump filter syntax: "<id>:<mask>" matches,
// "<id>~<mask>" is inverted. Both values are hexadecimal; an eight digit
// id selects extended frames only.
func ParseFilter(s string) (Filter, error) {
	sep, invert := ":", false
	if strings.Contains(s, "~") {
		sep, invert = "~", true
	}
	idText, maskText, ok := strings.Cut(s, sep)
	if !ok {
		return Filter{}, fmt.Errorf("canbus: filter %q: want <id>:<mask> or <id>~<mask>", s)
	}
	id, err := strconv.ParseUint(idText, 16, 32)
	if err != nil {
		return Filter{}, fmt.Errorf("canbus: filter %q: id: %w", s, err)
	}
	mask, err := strconv.ParseUint(maskText, 16, 32)
	if err != nil {
		return Filter{}, fmt.Errorf("canbus: filter %q: mask: %w", s, err)
	}
	f := Filter{ID: uint32(id), Mask: uint32(mask), Invert: invert}
	if len(idText) == 8 {
		f.ID |= EFFFlag
		f.Mask |= EFFFlag
	}
	return f, nil
}
