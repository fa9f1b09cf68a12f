package rtlink

// MaxChunks is the maximum number of config chunks a single node's
// serialized state can span: 32 chunks * 38 bytes = 1216 bytes of
// private task state per node.
const MaxChunks = 32

// TaskConfig is the sharded-reassembly buffer for one node's serialized
// configuration. TotalChunks == 0 means the slot is free; any receipt of
// a chunk whose ID differs from the stored ID resets Missing and zeroes
// Buffer before the new chunk is applied, giving automatic
// resynchronization whenever the host begins a new configuration.
type TaskConfig struct {
	ID          byte
	TotalChunks int
	Missing     [MaxChunks]bool
	Buffer      [MaxChunks][ChunkBytes]byte
}

// Init sets a signaling default: a single missing chunk. The first
// chunk actually received carries the real TotalChunks in its header
// and widens Missing accordingly (see Apply).
func (c *TaskConfig) Init() {
	c.TotalChunks = 1
	c.Missing = [MaxChunks]bool{}
	c.Missing[0] = true
}

// Free reports whether the slot is unused.
func (c *TaskConfig) Free() bool { return c.TotalChunks == 0 }

// Release marks the slot free.
func (c *TaskConfig) Release() { *c = TaskConfig{} }

// MissingCount returns the number of chunks still outstanding.
func (c *TaskConfig) MissingCount() int {
	n := 0
	for i := 0; i < c.TotalChunks; i++ {
		if c.Missing[i] {
			n++
		}
	}
	return n
}

// reset clears Missing/Buffer for a new chunk identity and adopts the
// new id/total.
func (c *TaskConfig) reset(id byte, total int) {
	c.ID = id
	c.TotalChunks = total
	c.Buffer = [MaxChunks][ChunkBytes]byte{}
	c.Missing = [MaxChunks]bool{}
	for i := 0; i < total; i++ {
		c.Missing[i] = true
	}
}

// Apply stores one reassembled chunk. If id differs from the currently
// stored identity, the whole cache resets first (spec §4.4 "identity
// rule"), then the incoming chunk is applied on top of the fresh state.
// A total that differs from TotalChunks resets the cache the same way,
// which is how the first chunk after Init widens the signaling default.
func (c *TaskConfig) Apply(id byte, index int, total int, data []byte) {
	if id != c.ID || total != c.TotalChunks {
		c.reset(id, total)
	}
	if index < 0 || index >= MaxChunks {
		return
	}
	copy(c.Buffer[index][:], data)
	c.Missing[index] = false
}

// ApplyStatusMask ingests a client-reported missing mask (host side):
// bytes beyond TotalChunks are ignored.
func (c *TaskConfig) ApplyStatusMask(mask []byte) {
	for i := 0; i < c.TotalChunks && i < len(mask); i++ {
		c.Missing[i] = mask[i] != 0
	}
}

// StatusMask renders the missing mask as a byte slice (client side,
// building a Status packet payload): 1 byte per chunk, 1 = missing.
func (c *TaskConfig) StatusMask(dst []byte) int {
	n := 0
	for i := 0; i < c.TotalChunks && i < len(dst); i++ {
		if c.Missing[i] {
			dst[i] = 1
		} else {
			dst[i] = 0
		}
		n++
	}
	return n
}

// firstMissing returns the smallest-index missing chunk, or -1 if none.
func (c *TaskConfig) firstMissing() int {
	for i := 0; i < c.TotalChunks; i++ {
		if c.Missing[i] {
			return i
		}
	}
	return -1
}

// EmitChunk selects the first missing chunk (host emission policy): if
// none is missing, it idempotently re-emits index 0 — the node will
// already be Active and the receiving state machine ignores a Chunk
// packet there.
func (c *TaskConfig) EmitChunk() (index int, header ChunkHeader, payload []byte) {
	index = c.firstMissing()
	if index < 0 {
		index = 0
	}
	header = ChunkHeader{ChunkID: c.ID, ChunkIndex: byte(index), TotalChunks: byte(c.TotalChunks)}
	return index, header, c.Buffer[index][:]
}

// Chunks returns the reassembled buffer as a slice of ChunkBytes-sized
// chunks covering exactly TotalChunks chunks, for handing to
// Task.Configure.
func (c *TaskConfig) Chunks() [][ChunkBytes]byte {
	return c.Buffer[:c.TotalChunks]
}

// PackChunks serializes a flat byte payload into however many
// ChunkBytes-sized chunks it takes, for Task.Deconfigure to fill. It
// returns ErrTooManyChunks if payload does not fit in MaxChunks chunks.
func PackChunks(buf *[MaxChunks][ChunkBytes]byte, payload []byte) (int, error) {
	n := (len(payload) + ChunkBytes - 1) / ChunkBytes
	if n == 0 {
		n = 1
	}
	if n > MaxChunks {
		return 0, ErrTooManyChunks
	}
	for i := 0; i < n; i++ {
		lo := i * ChunkBytes
		hi := lo + ChunkBytes
		if hi > len(payload) {
			hi = len(payload)
		}
		copy(buf[i][:], payload[lo:hi])
	}
	return n, nil
}
