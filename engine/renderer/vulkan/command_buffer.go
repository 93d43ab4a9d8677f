package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	// Command buffer state.
	State VulkanCommandBufferState
}

func CommandBufferAllocate(context *VulkanContext, pool vk.CommandPool, isPrimary bool) (*VulkanCommandBuffer, error) {
	level := vk.CommandBufferLevelPrimary
	if !isPrimary {
		level = vk.CommandBufferLevelSecondary
	}

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              level,
		CommandBufferCount: 1,
	}

	commandBuffer := &VulkanCommandBuffer{
		State: COMMAND_BUFFER_STATE_NOT_ALLOCATED,
	}
	handles := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, handles); res != vk.Success {
		err := fmt.Errorf("failed to allocate command buffer: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	commandBuffer.Handle = handles[0]
	commandBuffer.State = COMMAND_BUFFER_STATE_READY

	return commandBuffer, nil
}

func (commandBuffer *VulkanCommandBuffer) Free(context *VulkanContext, pool vk.CommandPool) {
	vk.FreeCommandBuffers(context.Device.LogicalDevice, pool, 1, []vk.CommandBuffer{commandBuffer.Handle})
	commandBuffer.Handle = nil
	commandBuffer.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

func (commandBuffer *VulkanCommandBuffer) Begin(isSingleUse, isRenderpassContinue, isSimultaneousUse bool) error {
	core.Assert(commandBuffer.State == COMMAND_BUFFER_STATE_READY,
		"command buffer must be reset before recording, state is %d", commandBuffer.State)

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: 0,
	}
	if isSingleUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if isRenderpassContinue {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if isSimultaneousUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}

	if res := vk.BeginCommandBuffer(commandBuffer.Handle, &beginInfo); res != vk.Success {
		err := fmt.Errorf("failed to begin command buffer: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (commandBuffer *VulkanCommandBuffer) End() error {
	if res := vk.EndCommandBuffer(commandBuffer.Handle); res != vk.Success {
		err := fmt.Errorf("failed to end command buffer: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (commandBuffer *VulkanCommandBuffer) UpdateSubmitted() {
	commandBuffer.State = COMMAND_BUFFER_STATE_SUBMITTED
}

func (commandBuffer *VulkanCommandBuffer) Reset() {
	commandBuffer.State = COMMAND_BUFFER_STATE_READY
}

/**
 * Allocates and begins recording a single-use command buffer from the
 * upload pool. Pair with EndSingleUse.
 */
func CommandBufferAllocateAndBeginSingleUse(context *VulkanContext, pool vk.CommandPool) (*VulkanCommandBuffer, error) {
	commandBuffer, err := CommandBufferAllocate(context, pool, true)
	if err != nil {
		return nil, err
	}
	if err := commandBuffer.Begin(true, false, false); err != nil {
		commandBuffer.Free(context, pool)
		return nil, err
	}
	return commandBuffer, nil
}

/**
 * Ends recording, submits to the given queue through the submitter, waits
 * for completion and frees the command buffer.
 */
func (commandBuffer *VulkanCommandBuffer) EndSingleUse(context *VulkanContext, pool vk.CommandPool, submitter *QueueSubmitter, queue vk.Queue) error {
	if err := commandBuffer.End(); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer.Handle},
	}
	if err := submitter.Submit(queue, []vk.SubmitInfo{submitInfo}, vk.NullFence); err != nil {
		return err
	}

	// Wait for the queue to finish before freeing the buffer.
	if err := submitter.WaitIdle(queue); err != nil {
		return err
	}

	commandBuffer.Free(context, pool)
	return nil
}
