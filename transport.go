package rtlink

// Transport is the raw packet-exchange interface implemented by the
// out-of-scope USB-HID driver (spec §1): non-blocking, lossy, fixed
// 64-byte frames. Narrowed from the teacher's streaming
// WriteRaw/ReadRaw (io.ReadCloser) to a fixed-size array, since this
// transport never has partial frames to buffer.
type Transport interface {
	// Read attempts to fetch the next inbound packet. It returns
	// ErrNoData, not a blocking wait, when nothing is available.
	Read(p *Packet) error
	// Write sends a packet. A failed write is not retried at this
	// layer (spec §4.3).
	Write(p *Packet) error
}
