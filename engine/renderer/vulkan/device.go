package vulkan

import (
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	SwapchainSupport   *VulkanSwapchainSupportInfo
	GraphicsQueueIndex int32
	PresentQueueIndex  int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	// Pool for the per-slot frame command buffers.
	GraphicsCommandPool vk.CommandPool
	// Pool for one-time staging/transfer command buffers.
	UploadCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties

	DepthFormat vk.Format
	// Highest sample count supported by both color and depth attachments.
	MaxMSAASamples vk.SampleCountFlagBits
}

type VulkanPhysicalDeviceRequirements struct {
	Graphics             bool
	Present              bool
	DeviceExtensionNames []string
	SamplerAnisotropy    bool
	DiscreteGPU          bool
}

type VulkanPhysicalDeviceQueueFamilyInfo struct {
	GraphicsFamilyIndex int32
	PresentFamilyIndex  int32
}

func DeviceCreate(context *VulkanContext) error {
	if err := selectPhysicalDevice(context); err != nil {
		return err
	}

	core.LogInfo("Creating logical device...")

	// NOTE: Do not create additional queues for shared indices.
	presentSharesGraphicsQueue := context.Device.GraphicsQueueIndex == context.Device.PresentQueueIndex
	indices := []uint32{uint32(context.Device.GraphicsQueueIndex)}
	if !presentSharesGraphicsQueue {
		indices = append(indices, uint32(context.Device.PresentQueueIndex))
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: indices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	deviceFeatures := vk.PhysicalDeviceFeatures{}
	deviceFeatures.SamplerAnisotropy = vk.True

	portabilityRequired, err := devicePortabilityRequired(context.Device.PhysicalDevice)
	if err != nil {
		return err
	}
	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if portabilityRequired {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
		// Deprecated and ignored, so pass nothing.
		EnabledLayerCount:   0,
		PpEnabledLayerNames: nil,
	}

	if res := vk.CreateDevice(
		context.Device.PhysicalDevice,
		&deviceCreateInfo,
		context.Allocator,
		&context.Device.LogicalDevice); res != vk.Success {
		err := fmt.Errorf("failed to create logical device: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	core.LogInfo("Logical device created.")

	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.GraphicsQueueIndex),
		0,
		&context.Device.GraphicsQueue)

	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.PresentQueueIndex),
		0,
		&context.Device.PresentQueue)
	core.LogInfo("Queues obtained.")

	// Frame command pool allows individual buffer resets.
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vk.CreateCommandPool(
		context.Device.LogicalDevice,
		&poolCreateInfo,
		context.Allocator,
		&context.Device.GraphicsCommandPool); res != vk.Success {
		err := fmt.Errorf("failed to create graphics command pool: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	// Upload pool for short-lived transfer buffers.
	uploadPoolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
	}
	if res := vk.CreateCommandPool(
		context.Device.LogicalDevice,
		&uploadPoolCreateInfo,
		context.Allocator,
		&context.Device.UploadCommandPool); res != vk.Success {
		err := fmt.Errorf("failed to create upload command pool: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Command pools created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	context.Device.GraphicsQueue = nil
	context.Device.PresentQueue = nil

	core.LogInfo("Destroying command pools...")
	vk.DestroyCommandPool(
		context.Device.LogicalDevice,
		context.Device.GraphicsCommandPool,
		context.Allocator)
	vk.DestroyCommandPool(
		context.Device.LogicalDevice,
		context.Device.UploadCommandPool,
		context.Allocator)

	core.LogInfo("Destroying logical device...")
	if context.Device.LogicalDevice != nil {
		vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
		context.Device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	context.Device.PhysicalDevice = nil
	context.Device.SwapchainSupport = nil
	context.Device.GraphicsQueueIndex = -1
	context.Device.PresentQueueIndex = -1
}

func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface, supportInfo *VulkanSwapchainSupportInfo) error {
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface capabilities: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	supportInfo.Capabilities.Deref()
	supportInfo.Capabilities.CurrentExtent.Deref()
	supportInfo.Capabilities.MinImageExtent.Deref()
	supportInfo.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface formats: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	if formatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, supportInfo.Formats); res != vk.Success {
			err := fmt.Errorf("failed to get physical device surface formats: %s", VulkanResultString(res, true))
			core.LogError(err.Error())
			return err
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	var presentModeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface present modes: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	if presentModeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, presentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, supportInfo.PresentModes); res != vk.Success {
			err := fmt.Errorf("failed to get physical device surface present modes: %s", VulkanResultString(res, true))
			core.LogError(err.Error())
			return err
		}
	}
	return nil
}

func DeviceDetectDepthFormat(device *VulkanDevice) bool {
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}
	flags := vk.FormatFeatureDepthStencilAttachmentBit
	for _, candidate := range candidates {
		var properties vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, candidate, &properties)
		properties.Deref()
		if (vk.FormatFeatureFlagBits(properties.OptimalTilingFeatures) & flags) == flags {
			device.DepthFormat = candidate
			return true
		}
	}
	return false
}

// deviceMaxUsableSampleCount resolves the highest MSAA sample count both the
// color and depth framebuffers support.
func deviceMaxUsableSampleCount(properties vk.PhysicalDeviceProperties) vk.SampleCountFlagBits {
	properties.Limits.Deref()
	counts := vk.SampleCountFlagBits(properties.Limits.FramebufferColorSampleCounts) &
		vk.SampleCountFlagBits(properties.Limits.FramebufferDepthSampleCounts)
	for _, bit := range []vk.SampleCountFlagBits{
		vk.SampleCount64Bit, vk.SampleCount32Bit, vk.SampleCount16Bit,
		vk.SampleCount8Bit, vk.SampleCount4Bit, vk.SampleCount2Bit,
	} {
		if counts&bit != 0 {
			return bit
		}
	}
	return vk.SampleCount1Bit
}

func devicePortabilityRequired(physicalDevice vk.PhysicalDevice) (bool, error) {
	var availableExtensionCount uint32
	if res := vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &availableExtensionCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to enumerate device extensions: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return false, err
	}
	if availableExtensionCount == 0 {
		return false, nil
	}
	availableExtensions := make([]vk.ExtensionProperties, availableExtensionCount)
	if res := vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &availableExtensionCount, availableExtensions); res != vk.Success {
		err := fmt.Errorf("failed to enumerate device extensions: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return false, err
	}
	for i := range availableExtensions {
		availableExtensions[i].Deref()
		end := FindFirstZeroInByteArray(availableExtensions[i].ExtensionName[:])
		if vk.ToString(availableExtensions[i].ExtensionName[:end+1]) == "VK_KHR_portability_subset" {
			return true, nil
		}
	}
	return false, nil
}

func selectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to enumerate physical devices: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	if physicalDeviceCount == 0 {
		core.LogError("No devices which support Vulkan were found.")
		return core.ErrNoSuitableGPU
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		err := fmt.Errorf("failed to enumerate physical devices: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	requirements := VulkanPhysicalDeviceRequirements{
		Graphics:             true,
		Present:              true,
		SamplerAnisotropy:    true,
		DiscreteGPU:          true,
		DeviceExtensionNames: []string{vk.KhrSwapchainExtensionName},
	}
	if runtime.GOOS == "darwin" {
		requirements.DiscreteGPU = false
	}

	for i := 0; i < int(physicalDeviceCount); i++ {
		properties := vk.PhysicalDeviceProperties{}
		vk.GetPhysicalDeviceProperties(physicalDevices[i], &properties)
		properties.Deref()

		features := vk.PhysicalDeviceFeatures{}
		vk.GetPhysicalDeviceFeatures(physicalDevices[i], &features)
		features.Deref()

		memory := vk.PhysicalDeviceMemoryProperties{}
		vk.GetPhysicalDeviceMemoryProperties(physicalDevices[i], &memory)
		memory.Deref()

		queueInfo := VulkanPhysicalDeviceQueueFamilyInfo{}
		supportInfo := &VulkanSwapchainSupportInfo{}
		if !physicalDeviceMeetsRequirements(
			physicalDevices[i],
			context.Surface,
			&properties,
			&features,
			&requirements,
			&queueInfo,
			supportInfo) {
			continue
		}

		end := FindFirstZeroInByteArray(properties.DeviceName[:])
		core.LogInfo("Selected device: '%s'.", vk.ToString(properties.DeviceName[:end+1]))
		switch properties.DeviceType {
		default:
			fallthrough
		case vk.PhysicalDeviceTypeOther:
			core.LogInfo("GPU type is Unknown.")
		case vk.PhysicalDeviceTypeIntegratedGpu:
			core.LogInfo("GPU type is Integrated.")
		case vk.PhysicalDeviceTypeDiscreteGpu:
			core.LogInfo("GPU type is Discrete.")
		case vk.PhysicalDeviceTypeVirtualGpu:
			core.LogInfo("GPU type is Virtual.")
		case vk.PhysicalDeviceTypeCpu:
			core.LogInfo("GPU type is CPU.")
		}

		core.LogInfo(
			"GPU Driver version: %d.%d.%d",
			vk.Version.Major(vk.Version(properties.DriverVersion)),
			vk.Version.Minor(vk.Version(properties.DriverVersion)),
			vk.Version.Patch(vk.Version(properties.DriverVersion)),
		)
		core.LogInfo(
			"Vulkan API version: %d.%d.%d",
			vk.Version.Major(vk.Version(properties.ApiVersion)),
			vk.Version.Minor(vk.Version(properties.ApiVersion)),
			vk.Version.Patch(vk.Version(properties.ApiVersion)),
		)

		context.Device.PhysicalDevice = physicalDevices[i]
		context.Device.GraphicsQueueIndex = queueInfo.GraphicsFamilyIndex
		context.Device.PresentQueueIndex = queueInfo.PresentFamilyIndex
		context.Device.SwapchainSupport = supportInfo

		// Keep a copy of properties, features and memory info for later use.
		context.Device.Properties = properties
		context.Device.Features = features
		context.Device.Memory = memory
		context.Device.MaxMSAASamples = deviceMaxUsableSampleCount(properties)
		break
	}

	if context.Device.PhysicalDevice == nil {
		core.LogError("No physical devices were found which meet the requirements.")
		return core.ErrNoSuitableGPU
	}

	core.LogInfo("Physical device selected.")
	return nil
}

func physicalDeviceMeetsRequirements(device vk.PhysicalDevice, surface vk.Surface, properties *vk.PhysicalDeviceProperties, features *vk.PhysicalDeviceFeatures, requirements *VulkanPhysicalDeviceRequirements, outQueueInfo *VulkanPhysicalDeviceQueueFamilyInfo, outSwapchainSupport *VulkanSwapchainSupportInfo) bool {
	outQueueInfo.GraphicsFamilyIndex = -1
	outQueueInfo.PresentFamilyIndex = -1

	if requirements.DiscreteGPU && properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu {
		core.LogInfo("Device is not a discrete GPU, and one is required. Skipping.")
		return false
	}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	for i := 0; i < int(queueFamilyCount); i++ {
		queueFamilies[i].Deref()

		if outQueueInfo.GraphicsFamilyIndex == -1 &&
			vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit > 0 {
			outQueueInfo.GraphicsFamilyIndex = int32(i)
		}

		var supportsPresent vk.Bool32 = vk.False
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supportsPresent); res != vk.Success {
			return false
		}
		if outQueueInfo.PresentFamilyIndex == -1 && supportsPresent == vk.True {
			outQueueInfo.PresentFamilyIndex = int32(i)
		}
	}

	if (requirements.Graphics && outQueueInfo.GraphicsFamilyIndex == -1) ||
		(requirements.Present && outQueueInfo.PresentFamilyIndex == -1) {
		return false
	}
	core.LogDebug("Graphics Family Index: %d", outQueueInfo.GraphicsFamilyIndex)
	core.LogDebug("Present Family Index:  %d", outQueueInfo.PresentFamilyIndex)

	// Query swapchain support.
	if err := DeviceQuerySwapchainSupport(device, surface, outSwapchainSupport); err != nil {
		return false
	}
	if len(outSwapchainSupport.Formats) < 1 || len(outSwapchainSupport.PresentModes) < 1 {
		core.LogInfo("Required swapchain support not present, skipping device.")
		return false
	}

	// Device extensions.
	if len(requirements.DeviceExtensionNames) > 0 {
		var availableExtensionCount uint32
		if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, nil); res != vk.Success {
			return false
		}
		availableExtensions := make([]vk.ExtensionProperties, availableExtensionCount)
		if availableExtensionCount != 0 {
			if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, availableExtensions); res != vk.Success {
				return false
			}
		}
		for _, required := range requirements.DeviceExtensionNames {
			found := false
			for j := range availableExtensions {
				availableExtensions[j].Deref()
				end := FindFirstZeroInByteArray(availableExtensions[j].ExtensionName[:])
				if required == vk.ToString(availableExtensions[j].ExtensionName[:end+1]) {
					found = true
					break
				}
			}
			if !found {
				core.LogInfo("Required extension not found: '%s', skipping device.", required)
				return false
			}
		}
	}

	// Sampler anisotropy
	if requirements.SamplerAnisotropy && features.SamplerAnisotropy == vk.False {
		core.LogInfo("Device does not support samplerAnisotropy, skipping.")
		return false
	}

	return true
}
