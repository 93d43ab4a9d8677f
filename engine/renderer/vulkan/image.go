package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
)

type VulkanImage struct {
	Handle    vk.Image
	Memory    vk.DeviceMemory
	View      vk.ImageView
	Width     uint32
	Height    uint32
	MipLevels uint32
}

/**
 * mipBlit describes one level-to-level downsample of a mip chain.
 * DstLevel is always SrcLevel+1 and each dimension halves until it
 * reaches one.
 */
type mipBlit struct {
	SrcLevel  uint32
	DstLevel  uint32
	SrcWidth  int32
	SrcHeight int32
	DstWidth  int32
	DstHeight int32
}

func mipLevelCount(width, height uint32) uint32 {
	levels := uint32(1)
	for width > 1 || height > 1 {
		if width > 1 {
			width /= 2
		}
		if height > 1 {
			height /= 2
		}
		levels++
	}
	return levels
}

// mipChainPlan lays out every blit required to fill levels 1..K-1 of a
// K-level chain from level 0. Non square and non power-of-two sizes
// clamp each dimension at one.
func mipChainPlan(width, height uint32) []mipBlit {
	blits := []mipBlit{}
	srcW, srcH := int32(width), int32(height)
	level := uint32(0)
	for srcW > 1 || srcH > 1 {
		dstW, dstH := srcW, srcH
		if dstW > 1 {
			dstW /= 2
		}
		if dstH > 1 {
			dstH /= 2
		}
		blits = append(blits, mipBlit{
			SrcLevel:  level,
			DstLevel:  level + 1,
			SrcWidth:  srcW,
			SrcHeight: srcH,
			DstWidth:  dstW,
			DstHeight: dstH,
		})
		srcW, srcH = dstW, dstH
		level++
	}
	return blits
}

func ImageCreate(context *VulkanContext, imageType vk.ImageType, width, height, mipLevels uint32, samples vk.SampleCountFlagBits, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, memoryFlags uint32, createView bool, viewAspectFlags vk.ImageAspectFlags) (*VulkanImage, error) {
	core.Assert(width > 0 && height > 0, "image dimensions must be nonzero, got %dx%d", width, height)

	outImage := &VulkanImage{
		Width:     width,
		Height:    height,
		MipLevels: mipLevels,
	}

	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: imageType,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     mipLevels,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       samples,
		SharingMode:   vk.SharingModeExclusive,
	}

	var pImage vk.Image
	if res := vk.CreateImage(context.Device.LogicalDevice, &imageCreateInfo, context.Allocator, &pImage); res != vk.Success {
		err := fmt.Errorf("failed to create image: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	outImage.Handle = pImage

	var memoryRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(context.Device.LogicalDevice, outImage.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, memoryFlags)
	if memoryType == -1 {
		err := fmt.Errorf("required memory type not found for image")
		core.LogError(err.Error())
		return nil, err
	}

	memoryAllocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: uint32(memoryType),
	}
	var pMemory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &memoryAllocateInfo, context.Allocator, &pMemory); res != vk.Success {
		err := fmt.Errorf("failed to allocate image memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	outImage.Memory = pMemory

	if res := vk.BindImageMemory(context.Device.LogicalDevice, outImage.Handle, outImage.Memory, 0); res != vk.Success {
		err := fmt.Errorf("failed to bind image memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	if createView {
		if err := outImage.ViewCreate(context, format, viewAspectFlags); err != nil {
			return nil, err
		}
	}

	return outImage, nil
}

func (image *VulkanImage) ViewCreate(context *VulkanContext, format vk.Format, aspectFlags vk.ImageAspectFlags) error {
	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image.Handle,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFlags,
			BaseMipLevel:   0,
			LevelCount:     image.MipLevels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var pView vk.ImageView
	if res := vk.CreateImageView(context.Device.LogicalDevice, &viewCreateInfo, context.Allocator, &pView); res != vk.Success {
		err := fmt.Errorf("failed to create image view: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	image.View = pView
	return nil
}

/**
 * TransitionLayout moves all mip levels of the image between layouts with a
 * pipeline barrier recorded on the given command buffer.
 */
func (image *VulkanImage) TransitionLayout(context *VulkanContext, commandBuffer *VulkanCommandBuffer, format vk.Format, oldLayout, newLayout vk.ImageLayout) error {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		DstQueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Image:               image.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     image.MipLevels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var sourceStage, destStage vk.PipelineStageFlags

	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		// Don't care what stage the pipeline is in at the start.
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		destStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		destStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	default:
		err := fmt.Errorf("unsupported layout transition %d -> %d", oldLayout, newLayout)
		core.LogError(err.Error())
		return err
	}

	vk.CmdPipelineBarrier(commandBuffer.Handle,
		sourceStage, destStage,
		0,
		0, nil,
		0, nil,
		1, []vk.ImageMemoryBarrier{barrier})

	return nil
}

func (image *VulkanImage) CopyFromBuffer(context *VulkanContext, buffer *VulkanBuffer, commandBuffer *VulkanCommandBuffer) {
	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageExtent: vk.Extent3D{
			Width:  image.Width,
			Height: image.Height,
			Depth:  1,
		},
	}

	vk.CmdCopyBufferToImage(commandBuffer.Handle, buffer.Handle, image.Handle,
		vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
}

/**
 * GenerateMipmaps fills levels 1..MipLevels-1 by blitting down the chain
 * and leaves every level in ShaderReadOnlyOptimal. Level 0 must be in
 * TransferDstOptimal when this records.
 */
func (image *VulkanImage) GenerateMipmaps(context *VulkanContext, commandBuffer *VulkanCommandBuffer, format vk.Format) error {
	var formatProperties vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(context.Device.PhysicalDevice, format, &formatProperties)
	formatProperties.Deref()
	if vk.FormatFeatureFlagBits(formatProperties.OptimalTilingFeatures)&vk.FormatFeatureSampledImageFilterLinearBit == 0 {
		err := fmt.Errorf("texture image format does not support linear blitting")
		core.LogError(err.Error())
		return err
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		Image:               image.Handle,
		SrcQueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		DstQueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseArrayLayer: 0,
			LayerCount:     1,
			LevelCount:     1,
		},
	}

	for _, blit := range mipChainPlan(image.Width, image.Height) {
		// Source level: transfer dst -> transfer src before reading it.
		barrier.SubresourceRange.BaseMipLevel = blit.SrcLevel
		barrier.OldLayout = vk.ImageLayoutTransferDstOptimal
		barrier.NewLayout = vk.ImageLayoutTransferSrcOptimal
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferReadBit)
		vk.CmdPipelineBarrier(commandBuffer.Handle,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			0,
			0, nil,
			0, nil,
			1, []vk.ImageMemoryBarrier{barrier})

		imageBlit := vk.ImageBlit{
			SrcOffsets: [2]vk.Offset3D{
				{X: 0, Y: 0, Z: 0},
				{X: blit.SrcWidth, Y: blit.SrcHeight, Z: 1},
			},
			SrcSubresource: vk.ImageSubresourceLayers{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:       blit.SrcLevel,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			DstOffsets: [2]vk.Offset3D{
				{X: 0, Y: 0, Z: 0},
				{X: blit.DstWidth, Y: blit.DstHeight, Z: 1},
			},
			DstSubresource: vk.ImageSubresourceLayers{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:       blit.DstLevel,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		vk.CmdBlitImage(commandBuffer.Handle,
			image.Handle, vk.ImageLayoutTransferSrcOptimal,
			image.Handle, vk.ImageLayoutTransferDstOptimal,
			1, []vk.ImageBlit{imageBlit},
			vk.FilterLinear)

		// Source level is done, move it to shader read.
		barrier.OldLayout = vk.ImageLayoutTransferSrcOptimal
		barrier.NewLayout = vk.ImageLayoutShaderReadOnlyOptimal
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferReadBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		vk.CmdPipelineBarrier(commandBuffer.Handle,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
			0,
			0, nil,
			0, nil,
			1, []vk.ImageMemoryBarrier{barrier})
	}

	// The last level never becomes a blit source.
	barrier.SubresourceRange.BaseMipLevel = image.MipLevels - 1
	barrier.OldLayout = vk.ImageLayoutTransferDstOptimal
	barrier.NewLayout = vk.ImageLayoutShaderReadOnlyOptimal
	barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
	barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
	vk.CmdPipelineBarrier(commandBuffer.Handle,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		0,
		0, nil,
		0, nil,
		1, []vk.ImageMemoryBarrier{barrier})

	return nil
}

func (image *VulkanImage) Destroy(context *VulkanContext) {
	if image.View != vk.NullImageView {
		vk.DestroyImageView(context.Device.LogicalDevice, image.View, context.Allocator)
		image.View = vk.NullImageView
	}
	if image.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, image.Memory, context.Allocator)
		image.Memory = vk.NullDeviceMemory
	}
	if image.Handle != vk.NullImage {
		vk.DestroyImage(context.Device.LogicalDevice, image.Handle, context.Allocator)
		image.Handle = vk.NullImage
	}
}

// SamplerCreate builds the shared texture sampler with trilinear filtering
// and anisotropy clamped to the device limit.
func SamplerCreate(context *VulkanContext, mipLevels uint32) (vk.Sampler, error) {
	context.Device.Properties.Limits.Deref()

	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           context.Device.Properties.Limits.MaxSamplerAnisotropy,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		MinLod:                  0,
		MaxLod:                  float32(mipLevels),
		MipLodBias:              0,
	}

	var pSampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &pSampler); res != vk.Success {
		err := fmt.Errorf("failed to create texture sampler: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return vk.NullSampler, err
	}
	return pSampler, nil
}
