package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignedUniformSize(t *testing.T) {
	tests := []struct {
		name      string
		size      uint64
		alignment uint64
		want      uint64
	}{
		{"already aligned", 256, 256, 256},
		{"rounds up", 64, 256, 256},
		{"multiple alignments", 300, 256, 512},
		{"alignment of one", 77, 1, 77},
		{"zero alignment passes through", 100, 0, 100},
		{"small alignment", 100, 64, 128},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, alignedUniformSize(tt.size, tt.alignment))
		})
	}
}

func TestDescriptorPoolCapacityCoversTwoGenerations(t *testing.T) {
	for _, frames := range []uint32{2, 3} {
		capacity := descriptorPoolCapacity(frames)
		// A rebuild at the part cap allocates a full new generation while
		// the old one is still fenced in.
		assert.GreaterOrEqual(t, capacity, 2*uint32(VULKAN_MAX_MESH_COUNT)*frames)
	}
}
