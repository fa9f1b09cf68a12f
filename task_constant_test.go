package rtlink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstantTaskDeconfigureConfigureRoundTrip(t *testing.T) {
	want := &ConstantTask{Value: -12.5}
	var buf [MaxChunks][ChunkBytes]byte
	n := want.Deconfigure(&buf)

	got := &ConstantTask{}
	require.True(t, got.Configure(buf[:n]), "Configure rejected a payload Deconfigure produced")
	require.Equal(t, want.Value, got.Value)
}

func TestConstantTaskRun(t *testing.T) {
	task := &ConstantTask{Value: 7}
	out := task.Run([]float32{100, 200})
	require.Equal(t, float32(7), out[0])
	for i := 1; i < MaxOutputs; i++ {
		require.Zero(t, out[i], "out[%d]", i)
	}
}
