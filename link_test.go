package rtlink_test

import (
	"math"
	"testing"

	"github.com/atsika/rtlink"
	"github.com/atsika/rtlink/memtransport"
	"github.com/stretchr/testify/require"
)

func newLinkPair(t *testing.T) (*rtlink.Link, *rtlink.Link) {
	t.Helper()
	pipe := memtransport.NewPipe(8)

	var hostClock, clientClock uint32
	advance := func(c *uint32) rtlink.Clock {
		return func() uint32 {
			*c += rtlink.RIDCycleTimeUS
			return *c
		}
	}

	host, err := rtlink.NewLink(pipe.HostSide(), true, advance(&hostClock))
	require.NoError(t, err)
	client, err := rtlink.NewLink(pipe.ClientSide(), false, advance(&clientClock))
	require.NoError(t, err)
	return host, client
}

// runTicks alternates host.Tick/client.Tick deterministically, without
// the Run/RunPair goroutine machinery, so assertions don't race a
// background loop.
func runTicks(t *testing.T, host, client *rtlink.Link, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, host.Tick())
		require.NoError(t, client.Tick())
	}
}

func TestLinkConstantNodeDeploysAndConverges(t *testing.T) {
	host, client := newLinkPair(t)

	require.NoError(t, host.InitNode(0, rtlink.DriverConstant, false, 100, nil, &rtlink.ConstantTask{Value: 3.25}))

	runTicks(t, host, client, 10)

	node := client.Manager.Nodes[0]
	require.Equal(t, rtlink.Active, node.Status)
	require.Equal(t, float32(3.25), node.Data[0])
}

func TestLinkSwitchGateStreamsAndReconfigures(t *testing.T) {
	host, client := newLinkPair(t)

	require.NoError(t, host.InitNode(0, rtlink.DriverConstant, false, 100, nil, &rtlink.ConstantTask{Value: 1.0}))
	gate := []rtlink.InputRef{
		{NodeID: 0, OutputIndex: 0},
		{NodeID: 0, OutputIndex: 0},
		{NodeID: 0, OutputIndex: 0},
	}
	require.NoError(t, host.InitNode(1, rtlink.DriverSwitch, true, 100, gate, &rtlink.SwitchTask{NOutputs: 2}))

	runTicks(t, host, client, 40)

	sw := client.Manager.Nodes[1]
	require.Equal(t, rtlink.Active, sw.Status)
	require.Equal(t, float32(1), sw.Data[0])
	require.Equal(t, float32(1), sw.Data[1])

	require.NoError(t, host.Reconfigure(0, &rtlink.ConstantTask{Value: 0.0}))
	runTicks(t, host, client, 30)

	sw = client.Manager.Nodes[1]
	require.Equal(t, float32(0), sw.Data[0])
	require.Equal(t, float32(0), sw.Data[1])
}

func TestLinkPanicCascadesAndReloads(t *testing.T) {
	host, client := newLinkPair(t)

	require.NoError(t, host.InitNode(0, rtlink.DriverConstant, false, 100, nil, &rtlink.ConstantTask{Value: 5}))
	runTicks(t, host, client, 10)
	require.Equal(t, rtlink.Active, client.Manager.Nodes[0].Status)

	host.PanicAll()
	runTicks(t, host, client, 2)
	require.Equal(t, 0, host.Manager.NNodes)
	require.Equal(t, 0, client.Manager.NNodes)

	require.NoError(t, host.InitNode(0, rtlink.DriverConstant, false, 100, nil, &rtlink.ConstantTask{Value: 8}))
	runTicks(t, host, client, 10)
	require.Equal(t, rtlink.Active, client.Manager.Nodes[0].Status)
	require.Equal(t, float32(8), client.Manager.Nodes[0].Data[0])
}

func TestLinkWithMaxTasksBoundsNodeRange(t *testing.T) {
	pipe := memtransport.NewPipe(8)
	var clock uint32
	advance := func() uint32 {
		clock += rtlink.RIDCycleTimeUS
		return clock
	}

	host, err := rtlink.NewLink(pipe.HostSide(), true, advance, rtlink.WithMaxTasks(2))
	require.NoError(t, err)

	require.NoError(t, host.InitNode(0, rtlink.DriverConstant, false, 100, nil, &rtlink.ConstantTask{Value: 1}))
	require.NoError(t, host.InitNode(1, rtlink.DriverConstant, false, 100, nil, &rtlink.ConstantTask{Value: 2}))

	err = host.InitNode(2, rtlink.DriverConstant, false, 100, nil, &rtlink.ConstantTask{Value: 3})
	require.ErrorIs(t, err, rtlink.ErrNodeOutOfRange)
}

// stddev returns the population standard deviation of xs.
func stddev(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)))
}

// TestLinkPTPConvergesWithinSpecBounds is spec.md §8 scenario 1 ("PTP
// convergence"): after 1s of exchange at 1kHz, the standard deviation
// of the offset samples around the true clock skew must stay under
// 500us, and the linear model's host-to-client conversion error over
// that second must stay under TEST_DURATION_s/175
// (original_source/tests/ptp_performance.rs's thresholds).
func TestLinkPTPConvergesWithinSpecBounds(t *testing.T) {
	const ticksPerSecond = 1000 // 1 kHz

	cases := []struct {
		name   string
		skewUS int64
	}{
		{"no skew", 0},
		{"client ahead", 2_000},
		{"client behind", -1_500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pipe := memtransport.NewPipe(8)

			// Start above the largest negative skew so the client clock
			// never reads below zero (a uint32 conversion of a negative
			// value would jump to near 2^32, which no real clock does).
			virtualUS := uint64(2_000)
			hostClock := func() uint32 { return uint32(virtualUS) }
			clientClock := func() uint32 { return uint32(int64(virtualUS) + tc.skewUS) }

			// WithCycleTime(1) keeps the Pacer's real busy-wait to 1us
			// per tick; it has no bearing on the simulated 1kHz model,
			// which Link.Tick always advances by RIDCycleTimeUS.
			host, err := rtlink.NewLink(pipe.HostSide(), true, hostClock, rtlink.WithCycleTime(1))
			require.NoError(t, err)
			client, err := rtlink.NewLink(pipe.ClientSide(), false, clientClock, rtlink.WithCycleTime(1))
			require.NoError(t, err)

			offsetErrors := make([]float64, 0, ticksPerSecond)
			for i := 0; i < ticksPerSecond; i++ {
				require.NoError(t, host.Tick())
				require.NoError(t, client.Tick())
				virtualUS += rtlink.RIDCycleTimeUS

				offset := host.PTP.PTPOffset()
				offsetErrors = append(offsetErrors, float64(offset)-float64(tc.skewUS))
			}

			require.Less(t, stddev(offsetErrors), 500.0)

			const testDurationS = 1.0
			predictedClientElapsed := host.PTP.LinearToClient(1_000_000) - host.PTP.LinearToClient(0)
			conversionError := math.Abs(float64(predictedClientElapsed) - 1_000_000)
			require.Less(t, conversionError, testDurationS/175.0*1_000_000)
		})
	}
}
