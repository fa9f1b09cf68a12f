package rtlink

// MaxInputs bounds a node's wiring: each input names a source node and
// one of its output slots.
const MaxInputs = 16

// NodeStatus is one of the four TaskNode lifecycle states.
type NodeStatus int

const (
	Standby NodeStatus = iota
	Configuration
	Active
	Panic
)

func (s NodeStatus) String() string {
	switch s {
	case Standby:
		return "Standby"
	case Configuration:
		return "Configuration"
	case Active:
		return "Active"
	case Panic:
		return "Panic"
	default:
		return "Unknown"
	}
}

// InputRef names one wired input: the output slot of another node this
// node reads on every tick. Data-dependency cycles are permitted; they
// resolve by reading the referenced node's previous-tick output.
type InputRef struct {
	NodeID      int
	OutputIndex int
}

// TaskNode is one addressable slot in the TaskManager's table.
type TaskNode struct {
	Status   NodeStatus
	DriverID byte
	Task     Task // nil only in Standby after Kill

	Stream   bool
	Rate     uint16
	NInputs  byte
	NOutputs byte

	Inputs [MaxInputs]InputRef
	Data   [MaxOutputs]float32

	ConfigCache TaskConfig
}

// Init handles an Init packet (spec §4.5 Init column): installs or
// replaces the bound executable, resets the config cache to its
// signaling-default state, records shape/wiring, and enters
// Configuration — from any prior status.
func (n *TaskNode) Init(h StdHeader, payload []byte) {
	if n.Task == nil || n.DriverID != h.DriverID {
		n.DriverID = h.DriverID
		n.Task = NewTask(h.DriverID)
	}
	n.ConfigCache.Init()

	n.Stream = h.Stream
	n.Rate = h.Rate
	n.NInputs = h.NInputs
	n.NOutputs = h.NOutputs

	n.Inputs = [MaxInputs]InputRef{}
	for i := 0; i < int(h.NInputs) && i < MaxInputs && i*2+1 < len(payload); i++ {
		n.Inputs[i] = InputRef{
			NodeID:      int(payload[i*2]),
			OutputIndex: int(payload[i*2+1]),
		}
	}

	n.Status = Configuration
}

// CollectChunk handles a Chunk packet: stored only while Configuration
// (Standby/Active/Panic ignore it, per the state table).
func (n *TaskNode) CollectChunk(h ChunkHeader, payload []byte) {
	if n.Status != Configuration {
		return
	}
	n.ConfigCache.Apply(h.ChunkID, int(h.ChunkIndex), int(h.TotalChunks), payload)
}

// TryConfigure attempts the local configure() transition: once the
// config cache has zero missing chunks, the bound executable is handed
// the reassembled state; success enters Active, failure enters Panic.
// No-op while chunks are still missing, or outside Configuration.
func (n *TaskNode) TryConfigure() {
	if n.Status != Configuration {
		return
	}
	if n.ConfigCache.MissingCount() > 0 {
		return
	}
	if n.Task.Configure(n.ConfigCache.Chunks()) {
		n.Status = Active
	} else {
		n.Status = Panic
	}
}

// ApplyData handles a Data packet: decodes n_outputs floats into Data
// and marks the node Active (the sender, having streamed data, is by
// construction already configured).
func (n *TaskNode) ApplyData(nOutputs int, payload []byte) {
	n.Status = Active
	vals := Floats(payload, nOutputs)
	copy(n.Data[:nOutputs], vals)
}

// Execute runs the bound executable against a gathered input vector and
// copies the first NOutputs results into Data.
func (n *TaskNode) Execute(gathered []float32) {
	if n.Status != Active || n.Task == nil {
		return
	}
	out := n.Task.Run(gathered)
	copy(n.Data[:n.NOutputs], out[:n.NOutputs])
}

// Kill returns the node to Standby and releases its driver/executable/
// config cache. Both an explicit Kill packet and the self-clearing of
// Panic on the next spin route through this method.
func (n *TaskNode) Kill() {
	n.Status = Standby
	n.DriverID = 0
	n.Task = nil
	n.ConfigCache.Release()
	n.Data = [MaxOutputs]float32{}
}
