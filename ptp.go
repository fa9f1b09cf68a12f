package rtlink

// RIDCycleTimeUS is the fixed tick cadence of the core loop: 1 kHz.
const RIDCycleTimeUS = 1000

// Clock is the monotonic microsecond source the embedding program
// supplies (§1: out of scope, consumed at the interface level only).
type Clock func() uint32

// PTPLayer drives the four-timestamp exchange on one endpoint and fits
// the linear host<->client clock-conversion model from it. The same
// type and the same StampOutgoing/ReadIncoming/Timestep/Delay methods
// run on both host and client; only the caller decides which of HostStamp/HostRead vs.
// ClientStamp/ClientRead apply to a given packet (via IsHost).
type PTPLayer struct {
	IsHost bool
	Now    Clock

	SystemTime Duration
	Stamp      TimeStamp

	HostHours   float32
	ClientHours float32

	hostStart   float32
	clientStart float32
	started     bool

	// LinearOffset holds [m, b] such that clientUS = m*hostUS + b, with
	// m = clientElapsed/hostElapsed and b = clientStart - m*hostStart.
	LinearOffset [2]float32

	lastHostElapsed float32
	prevCW          uint32
	havePrevCW      bool

	pacer Pacer
}

// NewPTPLayer constructs a PTPLayer bound to a microsecond clock source.
// isHost selects which side of the exchange this layer performs.
func NewPTPLayer(now Clock, isHost bool, cycleTimeUS uint32) *PTPLayer {
	if cycleTimeUS == 0 {
		cycleTimeUS = RIDCycleTimeUS
	}
	return &PTPLayer{
		IsHost: isHost,
		Now:    now,
		pacer:  NewPacer(cycleTimeUS),
	}
}

// Probe builds a fresh non-node packet (task selector 0) ready to carry
// a PTP exchange leg.
func Probe() Packet {
	var p Packet
	p.SetTaskSelector(0)
	return p
}

// StampOutgoing timestamps an outgoing probe/data packet before it is
// handed to the transport, per the ordering contract in spec §4.2.
func (l *PTPLayer) StampOutgoing(p *Packet) {
	t := l.Now()
	if l.IsHost {
		l.Stamp.HostStamp(p, t)
	} else {
		l.Stamp.ClientStamp(p, t)
	}
}

// ReadIncoming timestamps an inbound packet and updates the linear
// clock model on the host side (spec §4.2: "updated every successful
// host read"). The client side only needs to set its own read
// timestamp; it does not fit a model (the model lives on the host,
// which is the side that needs to convert times between clocks).
func (l *PTPLayer) ReadIncoming(p *Packet) float32 {
	t := l.Now()
	if l.IsHost {
		l.Stamp.HostRead(p, t)
		return l.updateModel()
	}
	l.Stamp.ClientRead(p, t)
	return 0
}

// updateModel implements PTPLayer.spin steps 3-6: first successful read
// seeds clientStart and returns 0; subsequent reads detect a client-hour
// wrap, refit the linear model, and return the flight-time sample.
func (l *PTPLayer) updateModel() float32 {
	cr, cw, hr, hw := l.Stamp.Tuple()
	_ = cr

	if !l.started {
		l.clientStart = float32(cw)
		l.hostStart = float32(hw)
		l.started = true
		l.prevCW = cw
		l.havePrevCW = true
		return 0
	}

	if l.havePrevCW && cw < l.prevCW {
		l.ClientHours++
	}
	l.prevCW = cw
	l.havePrevCW = true

	hostElapsed := float32(hw) - l.hostStart
	clientElapsed := (float32(cw) + l.ClientHours*float32(USecPerHour)) - l.clientStart

	if hostElapsed != 0 {
		m := clientElapsed / hostElapsed
		b := l.clientStart - m*l.hostStart
		l.LinearOffset = [2]float32{m, b}
	}
	l.lastHostElapsed = hostElapsed

	return float32(hr) - float32(hw)
}

// PTPOffset returns the total cross-clock correction: the TimeStamp
// offset plus the accumulated hour-wrap skew between the two sides.
func (l *PTPLayer) PTPOffset() float32 {
	return l.Stamp.Offset() + (l.ClientHours-l.HostHours)*float32(USecPerHour)
}

// LinearToClient converts a host time in microseconds (on the same
// scale as the host's hw stamps) to the client time in microseconds
// that the fitted model predicts.
func (l *PTPLayer) LinearToClient(hostElapsedUS float32) float32 {
	m, b := l.LinearOffset[0], l.LinearOffset[1]
	return m*hostElapsedUS + b
}

// Timestep advances SystemTime by deltaUS (Link.Tick passes
// RIDCycleTimeUS, one nominal cycle) and rolls
// HostHours forward on every hour boundary the duration's wrap crosses.
func (l *PTPLayer) Timestep(deltaUS uint32) {
	before := l.SystemTime.Hours
	l.SystemTime.AddMicros(deltaUS)
	if l.SystemTime.Hours != before {
		l.HostHours += float32(l.SystemTime.Hours - before)
	}
}

// Delay busy-waits up to the configured cycle time (RIDCycleTimeUS
// unless overridden by WithCycleTime) since the last Reset, then
// resets the pacer for the next cycle.
func (l *PTPLayer) Delay() {
	l.pacer.Wait()
	l.pacer.Reset()
}
