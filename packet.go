package rtlink

import (
	"encoding/binary"
	"math"
)

// PacketSize is the fixed size of every wire packet, matching the
// transport's fixed-size HID-style frame.
const PacketSize = 64

// Packet type byte (offset 1).
const (
	PacketInit   byte = 0
	PacketChunk  byte = 1
	PacketStatus byte = 2
	PacketKill   byte = 3
	PacketData   byte = 255
)

// Driver ids (task header byte 5 of Init/Status/Data packets).
const (
	DriverSwitch   byte = 1
	DriverConstant byte = 2
)

// Packet offsets, per spec §6. Open Question #1 resolved: the PTP block
// sits at offset 48 (not 44, as some source variants disagreed).
const (
	offSelector  = 0
	offType      = 1
	offHeader    = 2
	headerSize   = 8
	offPayload   = offHeader + headerSize // 10
	payloadSize  = 38
	offPTP       = offPayload + payloadSize // 48
	ptpBlockSize = 16
)

// CHUNK_BYTES: payload minus nothing — the whole 38-byte payload region
// carries one chunk when the packet type is Chunk.
const ChunkBytes = payloadSize

// Packet is one fixed 64-byte frame exchanged over the transport.
type Packet [PacketSize]byte

// TaskSelector returns 0 for a non-node packet, or nodeID+1 for a packet
// addressed at node nodeID.
func (p *Packet) TaskSelector() byte { return p[offSelector] }

// SetTaskSelector sets the selector byte directly (0 clears it).
func (p *Packet) SetTaskSelector(b byte) { p[offSelector] = b }

// NodeID returns the addressed node id and whether the packet addresses
// a node at all (selector != 0).
func (p *Packet) NodeID() (id int, ok bool) {
	s := p[offSelector]
	if s == 0 {
		return 0, false
	}
	return int(s) - 1, true
}

// SetNodeID sets the task selector to address nodeID.
func (p *Packet) SetNodeID(nodeID int) { p[offSelector] = byte(nodeID + 1) }

// Type returns the packet type byte.
func (p *Packet) Type() byte { return p[offType] }

// SetType sets the packet type byte.
func (p *Packet) SetType(t byte) { p[offType] = t }

// Header returns the 8-byte task header slice.
func (p *Packet) Header() []byte { return p[offHeader : offHeader+headerSize] }

// Payload returns the 38-byte payload slice (chunk bytes, status mask,
// or data floats, depending on Type()).
func (p *Packet) Payload() []byte { return p[offPayload : offPayload+payloadSize] }

// StdHeader is the Init/Status/Data task header layout (Chunk packets
// use ChunkHeader instead):
// [_, _, stream, rateHi, rateLo, driverID, nInputs, nOutputs].
type StdHeader struct {
	Stream    bool
	Rate      uint16
	DriverID  byte
	NInputs   byte
	NOutputs  byte
}

// EncodeStdHeader writes h into an 8-byte task header.
func EncodeStdHeader(h StdHeader) [headerSize]byte {
	var b [headerSize]byte
	if h.Stream {
		b[2] = 1
	}
	binary.BigEndian.PutUint16(b[3:5], h.Rate)
	b[5] = h.DriverID
	b[6] = h.NInputs
	b[7] = h.NOutputs
	return b
}

// DecodeStdHeader parses the 8-byte task header of an Init/Status/Data
// packet.
func DecodeStdHeader(b []byte) StdHeader {
	return StdHeader{
		Stream:   b[2] != 0,
		Rate:     binary.BigEndian.Uint16(b[3:5]),
		DriverID: b[5],
		NInputs:  b[6],
		NOutputs: b[7],
	}
}

// ChunkHeader is the Chunk-only reinterpretation of the task header:
// header[2]=chunkID, header[3]=chunkIndex, header[4]=totalChunks.
type ChunkHeader struct {
	ChunkID     byte
	ChunkIndex  byte
	TotalChunks byte
}

// EncodeChunkHeader writes h into an 8-byte task header for a Chunk packet.
func EncodeChunkHeader(h ChunkHeader) [headerSize]byte {
	var b [headerSize]byte
	b[2] = h.ChunkID
	b[3] = h.ChunkIndex
	b[4] = h.TotalChunks
	return b
}

// DecodeChunkHeader parses the Chunk-only header overload.
func DecodeChunkHeader(b []byte) ChunkHeader {
	return ChunkHeader{ChunkID: b[2], ChunkIndex: b[3], TotalChunks: b[4]}
}

// PutFloat32 big-endian-encodes v into dst[0:4].
func PutFloat32(dst []byte, v float32) {
	binary.BigEndian.PutUint32(dst, math.Float32bits(v))
}

// Float32 decodes a big-endian IEEE-754 float32 from src[0:4].
func Float32(src []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(src))
}

// PutFloats big-endian-encodes vs into dst, 4 bytes per value. Callers
// must ensure len(dst) >= 4*len(vs).
func PutFloats(dst []byte, vs []float32) {
	for i, v := range vs {
		PutFloat32(dst[i*4:], v)
	}
}

// Floats decodes n big-endian float32 values from src.
func Floats(src []byte, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = Float32(src[i*4:])
	}
	return out
}
