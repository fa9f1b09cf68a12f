package rtlink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSwitchTaskDeconfigureConfigureRoundTrip(t *testing.T) {
	want := &SwitchTask{NOutputs: 4}
	var buf [MaxChunks][ChunkBytes]byte
	n := want.Deconfigure(&buf)

	got := &SwitchTask{}
	require.True(t, got.Configure(buf[:n]), "Configure rejected a payload Deconfigure produced")
	require.Equal(t, want.NOutputs, got.NOutputs)
}

func TestSwitchTaskConfigureRejectsOverflow(t *testing.T) {
	task := &SwitchTask{}
	var buf [MaxChunks][ChunkBytes]byte
	buf[0][0] = MaxFloats - 1
	require.False(t, task.Configure(buf[:1]), "expected Configure to reject n_outputs >= MaxFloats-1")
}

func TestSwitchTaskRunGatesOnFirstInput(t *testing.T) {
	task := &SwitchTask{NOutputs: 2}

	closed := task.Run([]float32{0, 1, 2})
	require.Equal(t, []float32{0, 0}, closed[:2], "want zeros while the gate is closed")

	open := task.Run([]float32{1, 11, 22})
	require.Equal(t, []float32{11, 22}, open[:2], "want [11 22] while the gate is open")
}
