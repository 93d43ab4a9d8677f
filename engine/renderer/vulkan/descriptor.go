package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
)

// alignedUniformSize rounds size up to the device's uniform buffer offset
// alignment. Alignment is always a power of two.
func alignedUniformSize(size, alignment uint64) uint64 {
	if alignment == 0 {
		return size
	}
	return (size + alignment - 1) &^ (alignment - 1)
}

func DescriptorSetLayoutCreate(context *VulkanContext) (vk.DescriptorSetLayout, error) {
	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         BINDING_GLOBAL_UBO,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         BINDING_INSTANCE_UBO,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         BINDING_TEXTURE,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var pLayout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &pLayout); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor set layout: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return vk.NullDescriptorSetLayout, err
	}
	return pLayout, nil
}

// descriptorPoolCapacity is the set capacity of the pool: one set per
// mesh part per frame slot, doubled because a rebuild allocates the new
// generation while the old one is still referenced by in-flight frames.
func descriptorPoolCapacity(framesInFlight uint32) uint32 {
	return 2 * VULKAN_MAX_MESH_COUNT * framesInFlight
}

/**
 * DescriptorPoolCreate sizes the pool for the worst case of two full
 * scene generations, one set per mesh part per frame slot each. Sets
 * are freed individually: a scene rebuild retires the old generation of
 * sets only after the in-flight frames that reference them have fenced.
 */
func DescriptorPoolCreate(context *VulkanContext, framesInFlight uint32) (vk.DescriptorPool, error) {
	maxSets := descriptorPoolCapacity(framesInFlight)
	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: maxSets,
		},
		{
			Type:            vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: maxSets,
		},
		{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: maxSets,
		},
	}

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       maxSets,
	}

	var pPool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &pPool); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor pool: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return vk.NullDescriptorPool, err
	}
	return pPool, nil
}

func DescriptorSetsFree(context *VulkanContext, pool vk.DescriptorPool, sets []vk.DescriptorSet) {
	if len(sets) == 0 {
		return
	}
	if res := vk.FreeDescriptorSets(context.Device.LogicalDevice, pool, uint32(len(sets)), sets); res != vk.Success {
		core.LogWarn("failed to free descriptor sets: %s", VulkanResultString(res, true))
	}
}

func DescriptorSetAllocate(context *VulkanContext, pool vk.DescriptorPool, layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}

	sets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocInfo, &sets[0]); res != vk.Success {
		err := fmt.Errorf("failed to allocate descriptor set: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return vk.NullDescriptorSet, err
	}
	return sets[0], nil
}

/**
 * DescriptorSetUpdate points one set at a frame slot's uniform buffers and
 * a texture. The instance binding covers a single InstanceUBO and is
 * offset dynamically at draw time.
 */
func DescriptorSetUpdate(context *VulkanContext, set vk.DescriptorSet, globalUBO *VulkanBuffer, globalSize vk.DeviceSize, instanceUBO *VulkanBuffer, instanceStride vk.DeviceSize, textureView vk.ImageView, sampler vk.Sampler) {
	globalBufferInfo := vk.DescriptorBufferInfo{
		Buffer: globalUBO.Handle,
		Offset: 0,
		Range:  globalSize,
	}
	instanceBufferInfo := vk.DescriptorBufferInfo{
		Buffer: instanceUBO.Handle,
		Offset: 0,
		Range:  instanceStride,
	}
	imageInfo := vk.DescriptorImageInfo{
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		ImageView:   textureView,
		Sampler:     sampler,
	}

	writes := []vk.WriteDescriptorSet{
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      BINDING_GLOBAL_UBO,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			PBufferInfo:     []vk.DescriptorBufferInfo{globalBufferInfo},
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      BINDING_INSTANCE_UBO,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: 1,
			PBufferInfo:     []vk.DescriptorBufferInfo{instanceBufferInfo},
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      BINDING_TEXTURE,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
		},
	}

	vk.UpdateDescriptorSets(context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
}
