package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
)

type VulkanBuffer struct {
	TotalSize vk.DeviceSize
	Handle    vk.Buffer
	Usage     vk.BufferUsageFlagBits
	IsLocked  bool
	Memory    vk.DeviceMemory
	// Index of the heap the memory was allocated from.
	MemoryIndex         int32
	MemoryPropertyFlags uint32
}

func BufferCreate(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlagBits, memoryPropertyFlags uint32, bindOnCreate bool) (*VulkanBuffer, error) {
	core.Assert(size > 0, "buffer size must be nonzero")

	outBuffer := &VulkanBuffer{
		TotalSize:           size,
		Usage:               usage,
		MemoryPropertyFlags: memoryPropertyFlags,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var pBuffer vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &pBuffer); res != vk.Success {
		err := fmt.Errorf("failed to create buffer: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	outBuffer.Handle = pBuffer

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, outBuffer.Handle, &requirements)
	requirements.Deref()

	outBuffer.MemoryIndex = context.FindMemoryIndex(requirements.MemoryTypeBits, memoryPropertyFlags)
	if outBuffer.MemoryIndex == -1 {
		err := fmt.Errorf("unable to create buffer because the required memory type index was not found")
		core.LogError(err.Error())
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(outBuffer.MemoryIndex),
	}
	var pMemory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &pMemory); res != vk.Success {
		err := fmt.Errorf("unable to create buffer because the required memory allocation failed. Error: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	outBuffer.Memory = pMemory

	if bindOnCreate {
		if err := outBuffer.Bind(context, 0); err != nil {
			return nil, err
		}
	}

	return outBuffer, nil
}

func (buffer *VulkanBuffer) Destroy(context *VulkanContext) {
	if buffer.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, buffer.Memory, context.Allocator)
		buffer.Memory = vk.NullDeviceMemory
	}
	if buffer.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.Device.LogicalDevice, buffer.Handle, context.Allocator)
		buffer.Handle = vk.NullBuffer
	}
	buffer.TotalSize = 0
	buffer.IsLocked = false
}

func (buffer *VulkanBuffer) Bind(context *VulkanContext, offset vk.DeviceSize) error {
	if res := vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, offset); res != vk.Success {
		err := fmt.Errorf("failed to bind buffer memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (buffer *VulkanBuffer) LockMemory(context *VulkanContext, offset, size vk.DeviceSize, flags uint32) (unsafe.Pointer, error) {
	var pData unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, buffer.Memory, offset, size, vk.MemoryMapFlags(flags), &pData); res != vk.Success {
		err := fmt.Errorf("failed to map buffer memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	buffer.IsLocked = true
	return pData, nil
}

func (buffer *VulkanBuffer) UnlockMemory(context *VulkanContext) {
	vk.UnmapMemory(context.Device.LogicalDevice, buffer.Memory)
	buffer.IsLocked = false
}

func (buffer *VulkanBuffer) LoadData(context *VulkanContext, offset, size vk.DeviceSize, flags uint32, data []byte) error {
	pData, err := buffer.LockMemory(context, offset, size, flags)
	if err != nil {
		return err
	}
	vk.Memcopy(pData, data)
	buffer.UnlockMemory(context)
	return nil
}

func (buffer *VulkanBuffer) CopyTo(context *VulkanContext, pool vk.CommandPool, submitter *QueueSubmitter, queue vk.Queue, sourceOffset vk.DeviceSize, dest *VulkanBuffer, destOffset, size vk.DeviceSize) error {
	commandBuffer, err := CommandBufferAllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return err
	}

	copyRegion := vk.BufferCopy{
		SrcOffset: sourceOffset,
		DstOffset: destOffset,
		Size:      size,
	}
	vk.CmdCopyBuffer(commandBuffer.Handle, buffer.Handle, dest.Handle, 1, []vk.BufferCopy{copyRegion})

	return commandBuffer.EndSingleUse(context, pool, submitter, queue)
}

/**
 * BufferUploadDeviceLocal creates a device-local buffer with the requested
 * usage and fills it with data through a temporary staging buffer.
 */
func BufferUploadDeviceLocal(context *VulkanContext, submitter *QueueSubmitter, usage vk.BufferUsageFlagBits, data []byte) (*VulkanBuffer, error) {
	size := vk.DeviceSize(len(data))
	core.Assert(size > 0, "device local upload requires a non empty payload")

	staging, err := BufferCreate(
		context,
		size,
		vk.BufferUsageTransferSrcBit,
		uint32(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		true)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, size, 0, data); err != nil {
		return nil, err
	}

	deviceLocal, err := BufferCreate(
		context,
		size,
		usage|vk.BufferUsageTransferDstBit,
		uint32(vk.MemoryPropertyDeviceLocalBit),
		true)
	if err != nil {
		return nil, err
	}

	if err := staging.CopyTo(
		context,
		context.Device.UploadCommandPool,
		submitter,
		context.Device.GraphicsQueue,
		0, deviceLocal, 0, size); err != nil {
		deviceLocal.Destroy(context)
		return nil, err
	}

	return deviceLocal, nil
}
