package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestBufferCreateRejectsZeroSize(t *testing.T) {
	assert.Panics(t, func() {
		BufferCreate(nil, 0, vk.BufferUsageTransferSrcBit, 0, false)
	})
}
