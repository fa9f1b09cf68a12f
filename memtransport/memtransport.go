// Package memtransport provides an in-memory duplex rtlink.Transport
// pair standing in for the out-of-scope USB-HID link (spec §1). It
// exists so a host Link and a client Link can run against each other
// in a test or demo process without real hardware.
package memtransport

import (
	"context"
	"math/rand"

	"github.com/atsika/rtlink"
	"golang.org/x/sync/errgroup"
)

// Pipe is a lossy duplex channel pair. DropRate may be changed between
// or during ticks (rtlinkctl's -drop flag sets it). Packets are
// delivered in FIFO order; the pipe drops but never reorders.
type Pipe struct {
	DropRate float64

	toClient chan rtlink.Packet
	toHost   chan rtlink.Packet
}

// NewPipe builds a Pipe with depth slots of buffering in each
// direction. A small depth (the default demos use 8) is enough that a
// tick's single read/write never blocks.
func NewPipe(depth int) *Pipe {
	if depth <= 0 {
		depth = 1
	}
	return &Pipe{
		toClient: make(chan rtlink.Packet, depth),
		toHost:   make(chan rtlink.Packet, depth),
	}
}

// HostSide returns the Transport the host-role Link should use.
func (p *Pipe) HostSide() rtlink.Transport {
	return side{out: p.toClient, in: p.toHost, drop: &p.DropRate}
}

// ClientSide returns the Transport the client-role Link should use.
func (p *Pipe) ClientSide() rtlink.Transport {
	return side{out: p.toHost, in: p.toClient, drop: &p.DropRate}
}

type side struct {
	out  chan<- rtlink.Packet
	in   <-chan rtlink.Packet
	drop *float64
}

// Read implements rtlink.Transport. It never blocks: with nothing
// queued it reports rtlink.ErrNoData, same as an idle hardware link.
func (s side) Read(p *rtlink.Packet) error {
	select {
	case pkt := <-s.in:
		*p = pkt
		return nil
	default:
		return rtlink.ErrNoData
	}
}

// Write implements rtlink.Transport. A packet is silently dropped
// either by the DropRate roll or because the peer's queue is full —
// both model the same lossy, non-blocking wire the real driver rides.
func (s side) Write(p *rtlink.Packet) error {
	if *s.drop > 0 && rand.Float64() < *s.drop {
		return nil
	}
	select {
	case s.out <- *p:
	default:
	}
	return nil
}

// RunPair runs host.Run and client.Run concurrently, returning the
// first non-nil error either produces (or ctx's error once both exit
// cleanly on cancellation). Grounded on golang.org/x/sync/errgroup,
// used the same way by the sptp client in the retrieval pack to run
// paired per-peer loops.
func RunPair(ctx context.Context, host, client *rtlink.Link) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return host.Run(ctx) })
	g.Go(func() error { return client.Run(ctx) })
	return g.Wait()
}
