package rtlink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Exercises one full PTP exchange leg: client stamps+sends, host reads
// it back and replies, client reads the reply. All four fields should
// round-trip through the packet's PTP block exactly.
func TestTimeStampExchangeRoundTrip(t *testing.T) {
	var clientTS, hostTS TimeStamp

	var p Packet
	clientTS.ClientStamp(&p, 1000)

	hostTS.HostRead(&p, 1010)
	hostTS.HostStamp(&p, 1020)

	clientTS.ClientRead(&p, 1030)

	cr, cw, hr, hw := clientTS.Tuple()
	require.Equal(t, [4]uint32{1030, 1000, 1010, 1020}, [4]uint32{cr, cw, hr, hw}, "client tuple")

	hcr, hcw, hhr, hhw := hostTS.Tuple()
	require.Equal(t, [4]uint32{0, 1000, 1010, 1020}, [4]uint32{hcr, hcw, hhr, hhw}, "host tuple")
}

func TestTimeStampOffsetSignSurvivesUnderflow(t *testing.T) {
	// Client lags the host: a naive unsigned subtraction of these sums
	// would wrap around to a huge positive number instead of negative.
	ts := TimeStamp{}
	var p Packet
	ts.ClientStamp(&p, 10)
	ts.HostRead(&p, 10)
	ts.HostStamp(&p, 100_000)

	require.Negative(t, ts.Offset(), "client lags host")
}
