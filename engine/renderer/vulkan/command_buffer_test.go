package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandBufferBeginRequiresReset(t *testing.T) {
	states := []VulkanCommandBufferState{
		COMMAND_BUFFER_STATE_RECORDING,
		COMMAND_BUFFER_STATE_IN_RENDER_PASS,
		COMMAND_BUFFER_STATE_RECORDING_ENDED,
		COMMAND_BUFFER_STATE_SUBMITTED,
		COMMAND_BUFFER_STATE_NOT_ALLOCATED,
	}
	for _, state := range states {
		commandBuffer := &VulkanCommandBuffer{State: state}
		assert.Panics(t, func() {
			commandBuffer.Begin(false, false, false)
		})
	}
}

func TestCommandBufferResetReturnsToReady(t *testing.T) {
	commandBuffer := &VulkanCommandBuffer{State: COMMAND_BUFFER_STATE_SUBMITTED}
	commandBuffer.Reset()
	assert.Equal(t, COMMAND_BUFFER_STATE_READY, commandBuffer.State)
}
