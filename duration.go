package rtlink

// USecPerHour is the wraparound period of the client's microsecond
// counter: one hour expressed in microseconds.
const USecPerHour uint32 = 3_600_000_000

// Duration is a wrapping hours+microseconds accumulator. It models the
// client's free-running microsecond clock: microseconds rolls over into
// hours every USecPerHour, and hours itself is allowed to wrap at
// math.MaxUint64 (never observed in practice, but not guarded against).
type Duration struct {
	Hours        uint64
	Microseconds uint32
}

// AddMicros advances the duration by delta microseconds, rolling hours
// forward whenever the microsecond field reaches USecPerHour. It returns
// the new microsecond value.
func (d *Duration) AddMicros(delta uint32) uint32 {
	total := uint64(d.Microseconds) + uint64(delta)
	for total >= uint64(USecPerHour) {
		total -= uint64(USecPerHour)
		d.Hours++
	}
	d.Microseconds = uint32(total)
	return d.Microseconds
}

// Seconds returns the elapsed time since the duration's zero value, in
// seconds, including whole hours.
func (d *Duration) Seconds() float32 {
	return float32(d.Hours)*3600 + float32(d.Microseconds)/1e6
}
