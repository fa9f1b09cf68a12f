package rtlink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskNodeInitEntersConfigurationFromAnyStatus(t *testing.T) {
	for _, start := range []NodeStatus{Standby, Configuration, Active, Panic} {
		var n TaskNode
		n.Status = start
		h := StdHeader{Stream: true, Rate: 10, DriverID: DriverConstant, NInputs: 0, NOutputs: 1}
		n.Init(h, make([]byte, payloadSize))
		require.Equal(t, Configuration, n.Status, "from %v", start)
		require.NotNil(t, n.Task, "from %v: Init left Task nil", start)
	}
}

func TestTaskNodeCollectChunkIgnoredOutsideConfiguration(t *testing.T) {
	var n TaskNode
	n.Status = Active
	n.ConfigCache.reset(1, 1)
	n.CollectChunk(ChunkHeader{ChunkID: 1, ChunkIndex: 0, TotalChunks: 1}, bytesOf(0xFF, ChunkBytes))
	require.Equal(t, 1, n.ConfigCache.MissingCount(), "chunk should have been ignored while not Configuration")
}

func TestTaskNodeTryConfigureTransitionsToActive(t *testing.T) {
	var n TaskNode
	n.Status = Configuration
	n.Task = &ConstantTask{}
	n.ConfigCache.reset(1, 1)
	var payload [ChunkBytes]byte
	PutFloat32(payload[:4], 3.5)
	n.ConfigCache.Apply(1, 0, 1, payload[:])

	n.TryConfigure()
	require.Equal(t, Active, n.Status)
	require.Equal(t, float32(3.5), n.Task.(*ConstantTask).Value)
}

func TestTaskNodeTryConfigurePanicsOnRejection(t *testing.T) {
	var n TaskNode
	n.Status = Configuration
	n.Task = &SwitchTask{}
	n.ConfigCache.reset(1, 1)
	var payload [ChunkBytes]byte
	payload[0] = MaxFloats - 1 // Configure rejects n >= MaxFloats-1
	n.ConfigCache.Apply(1, 0, 1, payload[:])

	n.TryConfigure()
	require.Equal(t, Panic, n.Status)
}

func TestTaskNodeExecuteOnlyWhileActive(t *testing.T) {
	n := TaskNode{Status: Configuration, Task: &ConstantTask{Value: 1}, NOutputs: 1}
	n.Execute(nil)
	require.Zero(t, n.Data[0], "Execute should be a no-op outside Active")

	n.Status = Active
	n.Execute(nil)
	require.Equal(t, float32(1), n.Data[0])
}

func TestTaskNodeKillResetsToStandby(t *testing.T) {
	n := TaskNode{Status: Active, Task: &ConstantTask{Value: 9}, DriverID: DriverConstant}
	n.Data[0] = 9
	n.Kill()
	require.Equal(t, Standby, n.Status, "Kill did not fully reset the node: %+v", n)
	require.Nil(t, n.Task)
	require.Zero(t, n.DriverID)
	require.Zero(t, n.Data[0])
}
