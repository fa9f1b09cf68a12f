package rtlink

// ConstantTask always outputs a single fixed value configured from the
// host. Grounded on original_source/src/rtnt/constant.rs.
type ConstantTask struct {
	Value float32
}

// Size always reports one output.
func (t *ConstantTask) Size() int { return 1 }

// Configure reads 4 big-endian bytes as the constant value.
func (t *ConstantTask) Configure(chunks [][ChunkBytes]byte) bool {
	if len(chunks) < 1 {
		return false
	}
	t.Value = Float32(chunks[0][:4])
	return true
}

// Deconfigure serializes Value into a single chunk.
func (t *ConstantTask) Deconfigure(buf *[MaxChunks][ChunkBytes]byte) int {
	PutFloat32(buf[0][:4], t.Value)
	return 1
}

// Run ignores inputs and returns the configured value in output 0.
func (t *ConstantTask) Run(inputs []float32) [MaxOutputs]float32 {
	var out [MaxOutputs]float32
	out[0] = t.Value
	return out
}
