package vulkan

import (
	"fmt"
	"os"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
)

// sliceUint32 reinterprets SPIR-V bytes as the word stream Vulkan expects.
func sliceUint32(data []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

type VulkanShaderModule struct {
	Handle vk.ShaderModule
}

/**
 * ShaderModuleCreateFromFile loads compiled SPIR-V from disk and wraps it
 * in a shader module. The byte slice is reused as the uint32 word stream
 * the API expects.
 */
func ShaderModuleCreateFromFile(context *VulkanContext, path string) (*VulkanShaderModule, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		err := fmt.Errorf("failed to read shader file '%s': %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		err := fmt.Errorf("shader file '%s' is not valid SPIR-V (size %d)", path, len(code))
		core.LogError(err.Error())
		return nil, err
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}

	var pModule vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &pModule); res != vk.Success {
		err := fmt.Errorf("failed to create shader module for '%s': %s", path, VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	return &VulkanShaderModule{Handle: pModule}, nil
}

func (module *VulkanShaderModule) Destroy(context *VulkanContext) {
	if module.Handle != vk.NullShaderModule {
		vk.DestroyShaderModule(context.Device.LogicalDevice, module.Handle, context.Allocator)
		module.Handle = vk.NullShaderModule
	}
}
