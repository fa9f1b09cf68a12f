package rtlink

import "errors"

var (
	// ErrNoData is returned by a Transport when no packet is currently available.
	// It is not a failure: the core treats it as "nothing to collect this tick".
	ErrNoData = errors.New("rtlink: no data available")

	// ErrInvalidConfig is returned when the provided options result in an
	// invalid configuration.
	ErrInvalidConfig = errors.New("rtlink: invalid configuration")

	// ErrUnknownDriver is returned by the loader when a task names a
	// driver it does not recognize. NewTask does not return it: an
	// unregistered driver id falls back to Constant there.
	ErrUnknownDriver = errors.New("rtlink: unknown task driver")

	// ErrConfigValidation names a rejected reassembled chunk payload.
	// Task.Configure reports rejection as a false return (the node then
	// enters Panic); no function in this package returns this error.
	ErrConfigValidation = errors.New("rtlink: task configuration rejected")

	// ErrNodeOutOfRange is returned by DeployNode/Reconfigure (and so by
	// Link.InitNode/Reconfigure) for a node id outside the manager's
	// addressable range ([0, MaxTasks), or narrower under WithMaxTasks).
	// Inbound packets addressing such ids are ignored, not rejected.
	ErrNodeOutOfRange = errors.New("rtlink: node id out of range")

	// ErrNodeUnknown is returned by the loader when an input reference
	// names a task that was never declared.
	ErrNodeUnknown = errors.New("rtlink: unknown node name")

	// ErrTooManyInputs is returned when a node's wiring exceeds MaxInputs.
	ErrTooManyInputs = errors.New("rtlink: too many inputs")

	// ErrTooManyChunks is returned when a task's serialized state exceeds
	// MaxChunks chunks of ChunkBytes each.
	ErrTooManyChunks = errors.New("rtlink: too many chunks")

	// ErrShortPacket names a frame shorter than PacketSize bytes. Packet
	// is a fixed-size array, and no function in this package returns
	// this error.
	ErrShortPacket = errors.New("rtlink: short packet")
)
