package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/resources"
)

type VulkanTexture struct {
	ID        core.ResourceID
	Name      string
	Image     *VulkanImage
	Sampler   vk.Sampler
	MipLevels uint32
}

/**
 * TextureUpload stages the pixel payload into a device-local image,
 * generates the full mip chain and leaves every level shader readable.
 * The whole upload records into one single-use command buffer.
 */
func TextureUpload(context *VulkanContext, submitter *QueueSubmitter, data *resources.TextureData) (*VulkanTexture, error) {
	imageSize := vk.DeviceSize(data.Width * data.Height * 4)
	if vk.DeviceSize(len(data.Pixels)) != imageSize {
		err := fmt.Errorf("texture '%s' payload size %d does not match %dx%d RGBA", data.Name, len(data.Pixels), data.Width, data.Height)
		core.LogError(err.Error())
		return nil, err
	}

	mipLevels := mipLevelCount(data.Width, data.Height)

	staging, err := BufferCreate(
		context,
		imageSize,
		vk.BufferUsageTransferSrcBit,
		uint32(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		true)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, imageSize, 0, data.Pixels); err != nil {
		return nil, err
	}

	format := vk.FormatR8g8b8a8Srgb
	image, err := ImageCreate(
		context,
		vk.ImageType2d,
		data.Width,
		data.Height,
		mipLevels,
		vk.SampleCount1Bit,
		format,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit|vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		uint32(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	commandBuffer, err := CommandBufferAllocateAndBeginSingleUse(context, context.Device.UploadCommandPool)
	if err != nil {
		image.Destroy(context)
		return nil, err
	}

	if err := image.TransitionLayout(context, commandBuffer, format, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		image.Destroy(context)
		return nil, err
	}
	image.CopyFromBuffer(context, staging, commandBuffer)
	if err := image.GenerateMipmaps(context, commandBuffer, format); err != nil {
		image.Destroy(context)
		return nil, err
	}

	if err := commandBuffer.EndSingleUse(context, context.Device.UploadCommandPool, submitter, context.Device.GraphicsQueue); err != nil {
		image.Destroy(context)
		return nil, err
	}

	sampler, err := SamplerCreate(context, mipLevels)
	if err != nil {
		image.Destroy(context)
		return nil, err
	}

	core.LogDebug("Uploaded texture '%s' (%dx%d, %d mip levels).", data.Name, data.Width, data.Height, mipLevels)

	return &VulkanTexture{
		ID:        data.ID,
		Name:      data.Name,
		Image:     image,
		Sampler:   sampler,
		MipLevels: mipLevels,
	}, nil
}

func (texture *VulkanTexture) Destroy(context *VulkanContext) {
	if texture.Sampler != vk.NullSampler {
		vk.DestroySampler(context.Device.LogicalDevice, texture.Sampler, context.Allocator)
		texture.Sampler = vk.NullSampler
	}
	if texture.Image != nil {
		texture.Image.Destroy(context)
		texture.Image = nil
	}
}
