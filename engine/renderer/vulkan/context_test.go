package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestFindMemoryIndex(t *testing.T) {
	deviceLocal := uint32(vk.MemoryPropertyDeviceLocalBit)
	hostVisible := uint32(vk.MemoryPropertyHostVisibleBit)
	hostCoherent := uint32(vk.MemoryPropertyHostCoherentBit)

	types := []vk.MemoryType{
		{PropertyFlags: vk.MemoryPropertyFlags(deviceLocal)},
		{PropertyFlags: vk.MemoryPropertyFlags(hostVisible | hostCoherent)},
		{PropertyFlags: vk.MemoryPropertyFlags(deviceLocal | hostVisible | hostCoherent)},
	}

	t.Run("picks lowest matching index", func(t *testing.T) {
		idx := findMemoryIndex(types, 0b111, deviceLocal)
		assert.Equal(t, int32(0), idx)
	})

	t.Run("property flags must all be present", func(t *testing.T) {
		idx := findMemoryIndex(types, 0b111, hostVisible|hostCoherent)
		assert.Equal(t, int32(1), idx)
	})

	t.Run("type filter excludes otherwise matching types", func(t *testing.T) {
		// Only type 2 allowed by the filter.
		idx := findMemoryIndex(types, 0b100, deviceLocal)
		assert.Equal(t, int32(2), idx)
	})

	t.Run("superset of requested flags is acceptable", func(t *testing.T) {
		idx := findMemoryIndex(types, 0b110, hostVisible)
		assert.Equal(t, int32(1), idx)
	})

	t.Run("no match returns -1", func(t *testing.T) {
		idx := findMemoryIndex(types, 0b001, hostVisible)
		assert.Equal(t, int32(-1), idx)
	})

	t.Run("empty type list returns -1", func(t *testing.T) {
		idx := findMemoryIndex(nil, 0b1, deviceLocal)
		assert.Equal(t, int32(-1), idx)
	})
}
