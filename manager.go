package rtlink

// MaxTasks is the fixed size of the per-endpoint node table.
const MaxTasks = 32

// DataCache holds each node's latest outbound packet and a round-robin
// publish cursor. Occupancy is tracked separately from the packet's own
// task-selector byte: a Kill packet legitimately carries selector 0 (it
// addresses no specific node), so selector alone can't distinguish a
// queued Kill from a genuinely empty slot.
type DataCache struct {
	cursor   int
	occupied [MaxTasks]bool
	buffer   [MaxTasks]Packet
}

// holdsUnreadStatus reports whether slot i currently holds a Status
// packet nobody has published yet (such a slot may not be overwritten
// by a Data packet, per spec §3).
func (c *DataCache) holdsUnreadStatus(i int) bool {
	return c.occupied[i] && c.buffer[i].Type() == PacketStatus
}

// Set stores p in slot i, refusing to clobber an unpublished Status
// packet with a Data packet.
func (c *DataCache) Set(i int, p Packet) {
	if c.holdsUnreadStatus(i) && p.Type() == PacketData {
		return
	}
	c.buffer[i] = p
	c.occupied[i] = true
}

// PrioritizeNext rewinds the publish cursor to i, so the next Publish
// call considers slot i first.
func (c *DataCache) PrioritizeNext(i int) { c.cursor = i }

// Publish scans up to n slots starting at cursor, returns the first
// occupied one and advances cursor modulo n. It returns ok=false iff
// every one of the n slots is empty.
func (c *DataCache) Publish(n int) (pkt Packet, ok bool) {
	if n <= 0 || n > MaxTasks {
		if n > MaxTasks {
			n = MaxTasks
		} else {
			return Packet{}, false
		}
	}
	for i := 0; i < n; i++ {
		idx := c.cursor
		c.cursor = (c.cursor + 1) % n
		if c.occupied[idx] {
			pkt = c.buffer[idx]
			c.occupied[idx] = false
			return pkt, true
		}
	}
	return Packet{}, false
}

// TaskManager is the per-endpoint orchestrator: the fixed node table,
// the data cache, and the live-node high-water mark (NNodes).
type TaskManager struct {
	Nodes  [MaxTasks]TaskNode
	Cache  DataCache
	NNodes int

	// limit narrows the addressable node range below MaxTasks, set from
	// Config.maxTasks by NewLink (see WithMaxTasks). A zero or
	// out-of-range value means "unset": a bare TaskManager{} literal
	// (as used directly in tests) keeps the full MaxTasks range.
	limit int
}

// effectiveLimit returns the addressable node-id bound: limit if it was
// set to a valid value, otherwise the full MaxTasks constant.
func (m *TaskManager) effectiveLimit() int {
	if m.limit <= 0 || m.limit > MaxTasks {
		return MaxTasks
	}
	return m.limit
}

// bumpLive grows NNodes to cover id if it doesn't already.
func (m *TaskManager) bumpLive(id int) {
	if id+1 > m.NNodes {
		m.NNodes = id + 1
	}
}

// Collect dispatches one inbound packet to the addressed node, per the
// spec §4.6 table. It returns true iff the packet represents published
// streaming data the caller may forward (meaningful on the host side
// only). A Kill packet addresses no node at all (selector 0, by
// design) and is handled before the node-address gate; any other
// packet with no node address (e.g. a pure PTP probe) or one
// addressing id >= MaxTasks is accepted as a no-op — the embedded
// contract never panics on a malformed selector.
func (m *TaskManager) Collect(p *Packet) bool {
	if p.Type() == PacketKill {
		m.panicAll()
		return false
	}

	id, ok := p.NodeID()
	if !ok || id < 0 || id >= m.effectiveLimit() {
		return false
	}

	switch p.Type() {
	case PacketInit:
		m.bumpLive(id)
		h := DecodeStdHeader(p.Header())
		m.Nodes[id].Init(h, p.Payload())
	case PacketChunk:
		ch := DecodeChunkHeader(p.Header())
		m.Nodes[id].CollectChunk(ch, p.Payload())
	case PacketStatus:
		node := &m.Nodes[id]
		node.ConfigCache.ApplyStatusMask(p.Payload())
		if node.ConfigCache.MissingCount() > 0 {
			node.Status = Configuration
		} else {
			node.Status = Active
		}
	case PacketData:
		h := DecodeStdHeader(p.Header())
		node := &m.Nodes[id]
		node.ApplyData(int(h.NOutputs), p.Payload())
		return node.Stream
	}
	return false
}

func (m *TaskManager) panicAll() {
	for i := 0; i < m.NNodes; i++ {
		m.Nodes[i].Status = Panic
	}
}

func (m *TaskManager) killAllAndReset() {
	for i := 0; i < MaxTasks; i++ {
		m.Nodes[i].Kill()
	}
	m.NNodes = 0
}

// gatherInputs builds the [f32] vector the manager hands to a node's
// executable: one stack-allocated array, filled by reading other
// nodes' current Data slots (spec §9 "sharing and lifetime" /
// "cycles in data wiring"). Within Spin, a lower-index source has
// already run this tick, so its value is this tick's output; any other
// source still holds its previous-tick output.
func (m *TaskManager) gatherInputs(node *TaskNode) [MaxFloats]float32 {
	var vec [MaxFloats]float32
	for i := 0; i < int(node.NInputs) && i < MaxFloats; i++ {
		ref := node.Inputs[i]
		if ref.NodeID >= 0 && ref.NodeID < MaxTasks && ref.OutputIndex >= 0 && ref.OutputIndex < MaxOutputs {
			vec[i] = m.Nodes[ref.NodeID].Data[ref.OutputIndex]
		}
	}
	return vec
}

func stdHeaderFor(n *TaskNode) [headerSize]byte {
	return EncodeStdHeader(StdHeader{
		Stream:   n.Stream,
		Rate:     n.Rate,
		DriverID: n.DriverID,
		NInputs:  n.NInputs,
		NOutputs: n.NOutputs,
	})
}

func (m *TaskManager) buildDataPacket(id int, node *TaskNode) Packet {
	var p Packet
	p.SetNodeID(id)
	p.SetType(PacketData)
	h := stdHeaderFor(node)
	copy(p.Header(), h[:])
	PutFloats(p.Payload(), node.Data[:node.NOutputs])
	return p
}

func (m *TaskManager) buildStatusPacket(id int, node *TaskNode) Packet {
	var p Packet
	p.SetNodeID(id)
	p.SetType(PacketStatus)
	h := stdHeaderFor(node)
	copy(p.Header(), h[:])
	node.ConfigCache.StatusMask(p.Payload())
	return p
}

func (m *TaskManager) buildInitPacket(id int, node *TaskNode) Packet {
	var p Packet
	p.SetNodeID(id)
	p.SetType(PacketInit)
	h := stdHeaderFor(node)
	copy(p.Header(), h[:])
	payload := p.Payload()
	for i := 0; i < int(node.NInputs) && i < MaxInputs && i*2+1 < len(payload); i++ {
		payload[i*2] = byte(node.Inputs[i].NodeID)
		payload[i*2+1] = byte(node.Inputs[i].OutputIndex)
	}
	return p
}

func (m *TaskManager) buildChunkPacket(id int, node *TaskNode) Packet {
	var p Packet
	p.SetNodeID(id)
	p.SetType(PacketChunk)
	_, ch, chunk := node.ConfigCache.EmitChunk()
	h := EncodeChunkHeader(ch)
	copy(p.Header(), h[:])
	copy(p.Payload(), chunk)
	return p
}

func buildKillPacket() Packet {
	var p Packet
	p.SetTaskSelector(0)
	p.SetType(PacketKill)
	return p
}

// Spin runs the client-side tick: advance each live node's state and
// produce at most one outbound packet per node into the cache.
func (m *TaskManager) Spin() {
	for i := 0; i < m.NNodes; i++ {
		node := &m.Nodes[i]
		switch node.Status {
		case Panic:
			m.killAllAndReset()
			return
		case Active:
			if m.Cache.holdsUnreadStatus(i) {
				continue
			}
			gathered := m.gatherInputs(node)
			node.Execute(gathered[:node.NInputs])
			if node.Stream {
				m.Cache.Set(i, m.buildDataPacket(i, node))
			}
		case Standby:
			// emit nothing
		case Configuration:
			node.TryConfigure()
			m.Cache.Set(i, m.buildStatusPacket(i, node))
			m.Cache.PrioritizeNext(i)
		}
	}
}

// ControlSpin runs the host-side tick: drive each live node toward
// deployment and produce at most one outbound packet per node.
func (m *TaskManager) ControlSpin() {
	for i := 0; i < m.NNodes; i++ {
		node := &m.Nodes[i]
		switch node.Status {
		case Standby:
			m.Cache.Set(i, m.buildInitPacket(i, node))
		case Configuration:
			m.Cache.Set(i, m.buildChunkPacket(i, node))
		case Active:
			// emit nothing: fully deployed
		case Panic:
			m.killAllAndReset()
			m.Cache.Set(i, buildKillPacket())
			return
		}
	}
}

// PublishOne emits the next round-robin packet from the cache, or
// ok=false if every slot is currently empty. It scans the full table
// rather than [0, NNodes) because a Panic cascade clears NNodes to 0
// in the same tick it queues the outgoing Kill packet — the cache
// slot a Kill lands in must still be reachable after that reset.
func (m *TaskManager) PublishOne() (Packet, bool) {
	return m.Cache.Publish(MaxTasks)
}

// DeployNode installs a fully-configured Task on the host side,
// pending transmission: it records shape/wiring, serializes the task's
// private state into the config cache via Deconfigure, and leaves the
// node Standby so ControlSpin emits the Init packet on the next tick.
// This is the host-side half of spec §6's configuration interface.
func (m *TaskManager) DeployNode(id int, driverID byte, stream bool, rate uint16, inputs []InputRef, task Task) error {
	if id < 0 || id >= m.effectiveLimit() {
		return ErrNodeOutOfRange
	}
	if len(inputs) > MaxInputs {
		return ErrTooManyInputs
	}

	node := &m.Nodes[id]
	node.DriverID = driverID
	node.Task = task
	node.Stream = stream
	node.Rate = rate
	node.NInputs = byte(len(inputs))
	node.NOutputs = byte(task.Size())
	node.Inputs = [MaxInputs]InputRef{}
	copy(node.Inputs[:], inputs)

	total := task.Deconfigure(&node.ConfigCache.Buffer)
	node.ConfigCache.ID++
	node.ConfigCache.TotalChunks = total
	for i := 0; i < total; i++ {
		node.ConfigCache.Missing[i] = true
	}
	node.Status = Standby

	m.bumpLive(id)
	return nil
}

// Reconfigure re-serializes task into an already-deployed node's config
// cache under a fresh chunk identity and re-enters the deploy path. It
// keeps wiring, stream and rate; NOutputs follows the new task's Size.
// See SPEC_FULL.md §9: the config cache
// is never cleared by the Active state itself, so resending on a
// bumped identity is all reconfiguration needs.
func (m *TaskManager) Reconfigure(id int, task Task) error {
	if id < 0 || id >= m.effectiveLimit() {
		return ErrNodeOutOfRange
	}
	node := &m.Nodes[id]
	if node.Task == nil {
		return ErrNodeUnknown
	}
	node.Task = task
	node.NOutputs = byte(task.Size())

	total := task.Deconfigure(&node.ConfigCache.Buffer)
	node.ConfigCache.ID++
	node.ConfigCache.TotalChunks = total
	for i := 0; i < total; i++ {
		node.ConfigCache.Missing[i] = true
	}
	node.Status = Standby
	return nil
}

// PanicAll forces every live node to Panic; the next Spin/ControlSpin
// call will cascade that into a full kill + table reset and (on the
// host) emit a single Kill packet.
func (m *TaskManager) PanicAll() {
	m.panicAll()
}
