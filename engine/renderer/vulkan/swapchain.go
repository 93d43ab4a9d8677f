package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
)

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	Extent      vk.Extent2D
	Images      []vk.Image
	ImageViews  []vk.ImageView

	// Multisampled color target resolved into the swapchain image.
	ColorAttachment *VulkanImage
	DepthAttachment *VulkanImage

	Framebuffers []vk.Framebuffer
}

// chooseSurfaceFormat prefers B8G8R8A8 SRGB with a non linear SRGB color
// space and falls back to the first reported format.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// choosePresentMode picks mailbox when available unless vsync is forced,
// otherwise FIFO which every implementation must support.
func choosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if !vsync {
		for _, mode := range modes {
			if mode == vk.PresentModeMailbox {
				return mode
			}
		}
	}
	return vk.PresentModeFifo
}

// chooseSwapExtent honors the surface's fixed extent when the platform
// reports one, otherwise clamps the framebuffer size into the allowed range.
func chooseSwapExtent(capabilities vk.SurfaceCapabilities, framebufferWidth, framebufferHeight uint32) vk.Extent2D {
	if capabilities.CurrentExtent.Width != vk.MaxUint32 {
		return capabilities.CurrentExtent
	}
	return vk.Extent2D{
		Width:  Clamp(framebufferWidth, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: Clamp(framebufferHeight, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

// clampImageCount requests one image above the minimum without exceeding
// the maximum. A maximum of zero means unbounded.
func clampImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

func SwapchainCreate(context *VulkanContext, width, height uint32, vsync bool) (*VulkanSwapchain, error) {
	swapchain := &VulkanSwapchain{}
	if err := swapchain.create(context, width, height, vsync); err != nil {
		return nil, err
	}
	return swapchain, nil
}

func (swapchain *VulkanSwapchain) create(context *VulkanContext, width, height uint32, vsync bool) error {
	// Requery, surface properties change on resize.
	if err := DeviceQuerySwapchainSupport(
		context.Device.PhysicalDevice,
		context.Surface,
		context.Device.SwapchainSupport); err != nil {
		return err
	}
	support := context.Device.SwapchainSupport

	swapchain.ImageFormat = chooseSurfaceFormat(support.Formats)
	presentMode := choosePresentMode(support.PresentModes, vsync)
	swapchain.Extent = chooseSwapExtent(support.Capabilities, width, height)
	imageCount := clampImageCount(support.Capabilities)

	context.FramebufferWidth = swapchain.Extent.Width
	context.FramebufferHeight = swapchain.Extent.Height

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		queueFamilyIndices := []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = queueFamilyIndices
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var pSwapchain vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &pSwapchain); res != vk.Success {
		err := fmt.Errorf("failed to create swapchain: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	swapchain.Handle = pSwapchain

	var swapchainImageCount uint32
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchainImageCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get swapchain images: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	swapchain.Images = make([]vk.Image, swapchainImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchainImageCount, swapchain.Images); res != vk.Success {
		err := fmt.Errorf("failed to get swapchain images: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	swapchain.ImageViews = make([]vk.ImageView, swapchainImageCount)
	for i := range swapchain.Images {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		var pView vk.ImageView
		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &pView); res != vk.Success {
			err := fmt.Errorf("failed to create swapchain image view: %s", VulkanResultString(res, true))
			core.LogError(err.Error())
			return err
		}
		swapchain.ImageViews[i] = pView
	}

	// MSAA color target shared by every framebuffer. Not needed when
	// rendering single sampled, the swapchain image is drawn directly.
	if context.Samples != vk.SampleCount1Bit {
		colorAttachment, err := ImageCreate(
			context,
			vk.ImageType2d,
			swapchain.Extent.Width,
			swapchain.Extent.Height,
			1,
			context.Samples,
			swapchain.ImageFormat.Format,
			vk.ImageTilingOptimal,
			vk.ImageUsageFlags(vk.ImageUsageTransientAttachmentBit|vk.ImageUsageColorAttachmentBit),
			uint32(vk.MemoryPropertyDeviceLocalBit),
			true,
			vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return err
		}
		swapchain.ColorAttachment = colorAttachment
	}

	if !DeviceDetectDepthFormat(context.Device) {
		context.Device.DepthFormat = vk.FormatUndefined
		err := fmt.Errorf("failed to find a supported depth format")
		core.LogError(err.Error())
		return err
	}

	depthAttachment, err := ImageCreate(
		context,
		vk.ImageType2d,
		swapchain.Extent.Width,
		swapchain.Extent.Height,
		1,
		context.Samples,
		context.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		uint32(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return err
	}
	swapchain.DepthAttachment = depthAttachment

	core.LogInfo("Swapchain created successfully (%dx%d, %d images).",
		swapchain.Extent.Width, swapchain.Extent.Height, swapchainImageCount)
	return nil
}

/**
 * RegenerateFramebuffers builds one framebuffer per swapchain image. With
 * MSAA the shared color target comes first and the swapchain image is the
 * resolve attachment; single sampled rendering attaches the swapchain
 * image directly. Attachment order must match the renderpass.
 */
func (swapchain *VulkanSwapchain) RegenerateFramebuffers(context *VulkanContext, renderpass *VulkanRenderpass) error {
	swapchain.Framebuffers = make([]vk.Framebuffer, len(swapchain.ImageViews))
	for i := range swapchain.ImageViews {
		var attachments []vk.ImageView
		if context.Samples != vk.SampleCount1Bit {
			attachments = []vk.ImageView{
				swapchain.ColorAttachment.View,
				swapchain.DepthAttachment.View,
				swapchain.ImageViews[i],
			}
		} else {
			attachments = []vk.ImageView{
				swapchain.ImageViews[i],
				swapchain.DepthAttachment.View,
			}
		}
		framebufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderpass.Handle,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           swapchain.Extent.Width,
			Height:          swapchain.Extent.Height,
			Layers:          1,
		}
		var pFramebuffer vk.Framebuffer
		if res := vk.CreateFramebuffer(context.Device.LogicalDevice, &framebufferInfo, context.Allocator, &pFramebuffer); res != vk.Success {
			err := fmt.Errorf("failed to create framebuffer: %s", VulkanResultString(res, true))
			core.LogError(err.Error())
			return err
		}
		swapchain.Framebuffers[i] = pFramebuffer
	}
	return nil
}

func (swapchain *VulkanSwapchain) Recreate(context *VulkanContext, width, height uint32, vsync bool, renderpass *VulkanRenderpass) error {
	swapchain.Destroy(context)
	if err := swapchain.create(context, width, height, vsync); err != nil {
		return err
	}
	return swapchain.RegenerateFramebuffers(context, renderpass)
}

func (swapchain *VulkanSwapchain) Destroy(context *VulkanContext) {
	for _, framebuffer := range swapchain.Framebuffers {
		vk.DestroyFramebuffer(context.Device.LogicalDevice, framebuffer, context.Allocator)
	}
	swapchain.Framebuffers = nil

	if swapchain.DepthAttachment != nil {
		swapchain.DepthAttachment.Destroy(context)
		swapchain.DepthAttachment = nil
	}
	if swapchain.ColorAttachment != nil {
		swapchain.ColorAttachment.Destroy(context)
		swapchain.ColorAttachment = nil
	}

	// Only the views are owned here, the images belong to the swapchain.
	for _, view := range swapchain.ImageViews {
		vk.DestroyImageView(context.Device.LogicalDevice, view, context.Allocator)
	}
	swapchain.ImageViews = nil
	swapchain.Images = nil

	if swapchain.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.Device.LogicalDevice, swapchain.Handle, context.Allocator)
		swapchain.Handle = vk.NullSwapchain
	}
}

/**
 * AcquireNextImage fetches the next presentable image index. Returns
 * core.ErrSwapchainOutOfDate when the swapchain no longer matches the
 * surface and must be recreated.
 */
func (swapchain *VulkanSwapchain) AcquireNextImage(context *VulkanContext, timeoutNS uint64, imageAvailableSemaphore vk.Semaphore, fence vk.Fence) (uint32, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(
		context.Device.LogicalDevice,
		swapchain.Handle,
		timeoutNS,
		imageAvailableSemaphore,
		fence,
		&imageIndex)

	switch result {
	case vk.Success, vk.Suboptimal:
		// Suboptimal still acquired an image, present it and recreate after.
		return imageIndex, nil
	case vk.ErrorOutOfDate:
		return 0, core.ErrSwapchainOutOfDate
	default:
		err := fmt.Errorf("failed to acquire swapchain image: %s", VulkanResultString(result, true))
		core.LogError(err.Error())
		return 0, err
	}
}

/**
 * Present queues the image for presentation and reports staleness from
 * either the present call itself or an earlier resize notification.
 */
func (swapchain *VulkanSwapchain) Present(context *VulkanContext, submitter *QueueSubmitter, renderCompleteSemaphore vk.Semaphore, imageIndex uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{swapchain.Handle},
		PImageIndices:      []uint32{imageIndex},
	}

	result := submitter.Present(context.Device.PresentQueue, &presentInfo)
	switch result {
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return core.ErrSwapchainOutOfDate
	case vk.Success:
		return nil
	default:
		err := fmt.Errorf("failed to present swapchain image: %s", VulkanResultString(result, true))
		core.LogError(err.Error())
		return err
	}
}
