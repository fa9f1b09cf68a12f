package rtlink

import "encoding/binary"

// TimeStamp holds the four PTP event timestamps of one exchange:
// client-read, client-write, host-read, host-write, all in microseconds
// on their respective endpoint's clock.
type TimeStamp struct {
	cr, cw, hr, hw uint32
}

// HostStamp records the host's write time and writes all four fields
// into the packet's PTP block (bytes 48..64). Called immediately before
// transmit, per the ordering contract in spec §4.2.
func (ts *TimeStamp) HostStamp(p *Packet, t uint32) {
	ts.hw = t
	ts.encode(p)
}

// HostRead records the host's read time and pulls cr/cw back out of the
// packet the client echoed. Called immediately after receive.
func (ts *TimeStamp) HostRead(p *Packet, t uint32) {
	ts.hr = t
	block := p[offPTP : offPTP+ptpBlockSize]
	ts.cr = binary.BigEndian.Uint32(block[0:4])
	ts.cw = binary.BigEndian.Uint32(block[4:8])
}

// ClientStamp records the client's write time and writes all four
// fields into the packet's PTP block, mirroring HostStamp.
func (ts *TimeStamp) ClientStamp(p *Packet, t uint32) {
	ts.cw = t
	ts.encode(p)
}

// ClientRead records the client's read time and pulls hr/hw out of the
// packet the host sent, mirroring HostRead.
func (ts *TimeStamp) ClientRead(p *Packet, t uint32) {
	ts.cr = t
	block := p[offPTP : offPTP+ptpBlockSize]
	ts.hr = binary.BigEndian.Uint32(block[8:12])
	ts.hw = binary.BigEndian.Uint32(block[12:16])
}

// encode writes the current cr, cw, hr, hw into the packet's PTP block.
func (ts *TimeStamp) encode(p *Packet) {
	block := p[offPTP : offPTP+ptpBlockSize]
	binary.BigEndian.PutUint32(block[0:4], ts.cr)
	binary.BigEndian.PutUint32(block[4:8], ts.cw)
	binary.BigEndian.PutUint32(block[8:12], ts.hr)
	binary.BigEndian.PutUint32(block[12:16], ts.hw)
}

// Offset returns ((cr+cw) - (hr+hw)) / 2 computed in floating point so
// the sign survives: direct unsigned subtraction of the four uint32
// fields underflows whenever the client lags the host.
func (ts *TimeStamp) Offset() float32 {
	sum1 := float64(ts.cr) + float64(ts.cw)
	sum2 := float64(ts.hr) + float64(ts.hw)
	return float32((sum1 - sum2) / 2)
}

// Tuple returns the four raw fields, for tests and round-trip checks.
func (ts *TimeStamp) Tuple() (cr, cw, hr, hw uint32) {
	return ts.cr, ts.cw, ts.hr, ts.hw
}
