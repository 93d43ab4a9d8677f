package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
)

type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	// Effective sample count for this run: the device maximum when MSAA is
	// enabled, one sample otherwise.
	Samples vk.SampleCountFlagBits

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass

	// Frame slots cycling through the GPU, FramesInFlight of them.
	FramesInFlight uint32
	Frames         []*FrameSlot

	ImageIndex   uint32
	CurrentFrame uint32

	RecreatingSwapchain bool
	// Set by the resize event, consumed after present.
	FramebufferResized bool
}

// FindMemoryIndex returns the lowest memory type index matching the filter
// whose property flags are a superset of the requested ones, or -1.
func (vc *VulkanContext) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	types := make([]vk.MemoryType, memoryProperties.MemoryTypeCount)
	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		types[i] = memoryProperties.MemoryTypes[i]
	}

	idx := findMemoryIndex(types, typeFilter, propertyFlags)
	if idx < 0 {
		core.LogWarn("Unable to find suitable memory type!")
	}
	return idx
}

func findMemoryIndex(types []vk.MemoryType, typeFilter, propertyFlags uint32) int32 {
	for i := range types {
		// Check each memory type to see if its bit is set to 1.
		if (typeFilter&(1<<uint32(i))) != 0 && (uint32(types[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	return -1
}
