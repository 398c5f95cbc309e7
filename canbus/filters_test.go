package canbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilters_Basics(t *testing.T) {
	f1 := MustFrame(0x100, []byte{1})
	f2 := MustFrame(0x101, []byte{2})
	f3 := Frame{ID: 0x100, Extended: true}
	rtr := f1
	rtr.RTR = true

	require.True(t, ExactID(0x100).Match(f1))
	require.False(t, ExactID(0x100).Match(f2))
	require.False(t, ExactID(0x100).Match(f3), "standard filter must not match extended frame")
	require.True(t, ExactID(0x100).Match(rtr), "RTR bit is outside the mask")
	require.True(t, ExactID(0x1ABCDEFF).Match(Frame{ID: 0x1ABCDEFF, Extended: true}))

	byMask := Filter{ID: 0x100, Mask: 0x700}
	require.True(t, byMask.Match(f1))
	require.True(t, byMask.Match(f2))
	require.True(t, byMask.Match(f3), "mask without EFF flag matches both formats")

	inv := Filter{ID: 0x100, Mask: SFFMask, Invert: true}
	require.False(t, inv.Match(f1))
	require.True(t, inv.Match(f2))

	require.True(t, MatchAny(nil, f1))
	require.True(t, MatchAny([]Filter{ExactID(0x999), ExactID(0x101)}, f2))
	require.False(t, MatchAny([]Filter{ExactID(0x999)}, f2))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("123:7FF")
	require.NoError(t, err)
	require.Equal(t, Filter{ID: 0x123, Mask: 0x7FF}, f)

	f, err = ParseFilter("123~7FF")
	require.NoError(t, err)
	require.True(t, f.Invert)
	require.Equal(t, "123~7FF", f.String())

	f, err = ParseFilter("1ABCDEFF:1FFFFFFF")
	require.NoError(t, err)
	require.Equal(t, EFFFlag|0x1ABCDEFF, f.ID)
	require.True(t, f.Match(Frame{ID: 0x1ABCDEFF, Extended: true}))

	for _, bad := range []string{"", "123", "xyz:7FF", "123:zz"} {
		_, err := ParseFilter(bad)
		require.Error(t, err, bad)
	}
}
