package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/resources"
)

// nextFrameSlot advances the frame ring. Reclaiming the *next* slot's
// deferred resources is safe because its fence proved the GPU finished
// that slot's previous work.
func nextFrameSlot(current, framesInFlight uint32) uint32 {
	return (current + 1) % framesInFlight
}

/**
 * FrameSlot holds everything one in-flight frame owns: sync primitives,
 * its command buffer, persistently mapped uniform buffers and the list of
 * GPU resources waiting for this slot's fence before destruction.
 */
type FrameSlot struct {
	ImageAvailableSemaphore vk.Semaphore
	RenderCompleteSemaphore vk.Semaphore
	InFlightFence           *VulkanFence

	CommandBuffer *VulkanCommandBuffer

	GlobalUBOBuffer *VulkanBuffer
	globalMapped    unsafe.Pointer

	InstanceUBOBuffer *VulkanBuffer
	instanceMapped    unsafe.Pointer
	// Aligned stride between consecutive InstanceUBO entries.
	InstanceStride vk.DeviceSize

	// Resources retired while this slot's previous submission may still
	// reference them. Drained once the slot comes around again.
	deferred []func()
}

func FrameSlotCreate(context *VulkanContext) (*FrameSlot, error) {
	slot := &FrameSlot{}

	semaphoreInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var imageAvailable, renderComplete vk.Semaphore
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreInfo, context.Allocator, &imageAvailable); res != vk.Success {
		err := fmt.Errorf("failed to create image available semaphore: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	slot.ImageAvailableSemaphore = imageAvailable
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreInfo, context.Allocator, &renderComplete); res != vk.Success {
		err := fmt.Errorf("failed to create render complete semaphore: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	slot.RenderCompleteSemaphore = renderComplete

	// Signaled so the first wait on this slot falls through.
	fence, err := FenceCreate(context, true)
	if err != nil {
		return nil, err
	}
	slot.InFlightFence = fence

	commandBuffer, err := CommandBufferAllocate(context, context.Device.GraphicsCommandPool, true)
	if err != nil {
		return nil, err
	}
	slot.CommandBuffer = commandBuffer

	// Uniform buffers stay mapped for the lifetime of the slot.
	context.Device.Properties.Limits.Deref()
	alignment := uint64(context.Device.Properties.Limits.MinUniformBufferOffsetAlignment)
	slot.InstanceStride = vk.DeviceSize(alignedUniformSize(resources.InstanceUBOSize, alignment))

	globalBuffer, err := BufferCreate(
		context,
		vk.DeviceSize(resources.GlobalUBOSize),
		vk.BufferUsageUniformBufferBit,
		uint32(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		true)
	if err != nil {
		return nil, err
	}
	slot.GlobalUBOBuffer = globalBuffer
	slot.globalMapped, err = globalBuffer.LockMemory(context, 0, vk.DeviceSize(resources.GlobalUBOSize), 0)
	if err != nil {
		return nil, err
	}

	instanceBuffer, err := BufferCreate(
		context,
		slot.InstanceStride*VULKAN_MAX_MESH_COUNT,
		vk.BufferUsageUniformBufferBit,
		uint32(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		true)
	if err != nil {
		return nil, err
	}
	slot.InstanceUBOBuffer = instanceBuffer
	slot.instanceMapped, err = instanceBuffer.LockMemory(context, 0, slot.InstanceStride*VULKAN_MAX_MESH_COUNT, 0)
	if err != nil {
		return nil, err
	}

	return slot, nil
}

func (slot *FrameSlot) WriteGlobalUBO(ubo *resources.GlobalUBO) {
	vk.Memcopy(slot.globalMapped, resources.UBOToBytes(ubo))
}

func (slot *FrameSlot) WriteInstanceUBO(instanceIndex uint32, ubo *resources.InstanceUBO) {
	core.Assert(instanceIndex < VULKAN_MAX_MESH_COUNT, "instance index %d exceeds capacity", instanceIndex)
	dst := unsafe.Add(slot.instanceMapped, uintptr(slot.InstanceStride)*uintptr(instanceIndex))
	vk.Memcopy(dst, resources.UBOToBytes(ubo))
}

// InstanceOffset is the dynamic descriptor offset for one instance.
func (slot *FrameSlot) InstanceOffset(instanceIndex uint32) uint32 {
	return uint32(slot.InstanceStride) * instanceIndex
}

// Defer queues a destruction callback until the GPU is provably done with
// this slot's last submission.
func (slot *FrameSlot) Defer(destroy func()) {
	slot.deferred = append(slot.deferred, destroy)
}

// Reclaim runs and clears pending destruction callbacks. Call only after
// this slot's fence wait succeeded.
func (slot *FrameSlot) Reclaim() int {
	reclaimed := len(slot.deferred)
	for _, destroy := range slot.deferred {
		destroy()
	}
	slot.deferred = nil
	return reclaimed
}

func (slot *FrameSlot) Destroy(context *VulkanContext) {
	// Anything still deferred is safe to release, the device is idle by now.
	slot.Reclaim()

	if slot.InstanceUBOBuffer != nil {
		if slot.instanceMapped != nil {
			slot.InstanceUBOBuffer.UnlockMemory(context)
			slot.instanceMapped = nil
		}
		slot.InstanceUBOBuffer.Destroy(context)
		slot.InstanceUBOBuffer = nil
	}
	if slot.GlobalUBOBuffer != nil {
		if slot.globalMapped != nil {
			slot.GlobalUBOBuffer.UnlockMemory(context)
			slot.globalMapped = nil
		}
		slot.GlobalUBOBuffer.Destroy(context)
		slot.GlobalUBOBuffer = nil
	}
	if slot.CommandBuffer != nil {
		slot.CommandBuffer.Free(context, context.Device.GraphicsCommandPool)
		slot.CommandBuffer = nil
	}
	if slot.InFlightFence != nil {
		slot.InFlightFence.Destroy(context)
		slot.InFlightFence = nil
	}
	if slot.RenderCompleteSemaphore != vk.NullSemaphore {
		vk.DestroySemaphore(context.Device.LogicalDevice, slot.RenderCompleteSemaphore, context.Allocator)
		slot.RenderCompleteSemaphore = vk.NullSemaphore
	}
	if slot.ImageAvailableSemaphore != vk.NullSemaphore {
		vk.DestroySemaphore(context.Device.LogicalDevice, slot.ImageAvailableSemaphore, context.Allocator)
		slot.ImageAvailableSemaphore = vk.NullSemaphore
	}
}
