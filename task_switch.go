package rtlink

// SwitchTask gates a block of n inputs on a leading boolean input:
// when input[0] > 0, input[1:1+n] is copied through to the outputs;
// otherwise the outputs are all zero. Grounded on
// original_source/src/rtnt/switch.rs.
type SwitchTask struct {
	NOutputs int
}

// Size reports the configured output count.
func (t *SwitchTask) Size() int { return t.NOutputs }

// Configure reads n_outputs from byte 0 of the first chunk and rejects
// values that would overflow the input-gathering vector.
func (t *SwitchTask) Configure(chunks [][ChunkBytes]byte) bool {
	if len(chunks) < 1 {
		return false
	}
	n := int(chunks[0][0])
	if n >= MaxFloats-1 {
		return false
	}
	t.NOutputs = n
	return true
}

// Deconfigure serializes NOutputs into a single chunk.
func (t *SwitchTask) Deconfigure(buf *[MaxChunks][ChunkBytes]byte) int {
	buf[0][0] = byte(t.NOutputs)
	return 1
}

// Run copies inputs[1:1+NOutputs] to the output when the gate input is
// positive, else zeros.
func (t *SwitchTask) Run(inputs []float32) [MaxOutputs]float32 {
	var out [MaxOutputs]float32
	if len(inputs) == 0 || inputs[0] <= 0.0 {
		return out
	}
	for i := 0; i < t.NOutputs && i+1 < len(inputs); i++ {
		out[i] = inputs[i+1]
	}
	return out
}
