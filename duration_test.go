package rtlink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDurationAddMicrosWrapsHours(t *testing.T) {
	var d Duration
	got := d.AddMicros(USecPerHour - 1)
	require.Equal(t, uint32(USecPerHour-1), got)
	require.Zero(t, d.Hours)

	got = d.AddMicros(2)
	require.Equal(t, uint32(1), got, "after wrap")
	require.Equal(t, uint64(1), d.Hours, "after wrap")
}

func TestDurationAddMicrosMultiHourJump(t *testing.T) {
	d := Duration{Microseconds: USecPerHour - 1}
	d.AddMicros(USecPerHour + 500)
	require.Equal(t, uint64(2), d.Hours)
	require.Equal(t, uint32(499), d.Microseconds)
}

func TestDurationSeconds(t *testing.T) {
	d := Duration{Hours: 1, Microseconds: 500_000}
	require.Equal(t, float32(3600.5), d.Seconds())
}
