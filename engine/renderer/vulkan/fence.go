package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
)

type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func FenceCreate(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	// Make the fence signaled if requested so the first frame does not stall.
	outFence := &VulkanFence{
		IsSignaled: createSignaled,
	}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if outFence.IsSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var pFence vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &pFence); res != vk.Success {
		err := fmt.Errorf("failed to create fence: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	outFence.Handle = pFence

	return outFence, nil
}

func (fence *VulkanFence) Destroy(context *VulkanContext) {
	if fence.Handle != vk.NullFence {
		vk.DestroyFence(context.Device.LogicalDevice, fence.Handle, context.Allocator)
		fence.Handle = vk.NullFence
	}
	fence.IsSignaled = false
}

func (fence *VulkanFence) Wait(context *VulkanContext, timeoutNS uint64) bool {
	if fence.IsSignaled {
		return true
	}

	result := vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{fence.Handle}, vk.True, timeoutNS)
	switch result {
	case vk.Success:
		fence.IsSignaled = true
		return true
	case vk.Timeout:
		core.LogWarn("fence wait - Timed out")
	case vk.ErrorDeviceLost:
		core.LogError("fence wait - VK_ERROR_DEVICE_LOST.")
	case vk.ErrorOutOfHostMemory:
		core.LogError("fence wait - VK_ERROR_OUT_OF_HOST_MEMORY.")
	case vk.ErrorOutOfDeviceMemory:
		core.LogError("fence wait - VK_ERROR_OUT_OF_DEVICE_MEMORY.")
	default:
		core.LogError("fence wait - An unknown error has occurred.")
	}

	return false
}

func (fence *VulkanFence) Reset(context *VulkanContext) error {
	if !fence.IsSignaled {
		return nil
	}
	if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{fence.Handle}); res != vk.Success {
		err := fmt.Errorf("failed to reset fence: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	fence.IsSignaled = false
	return nil
}
