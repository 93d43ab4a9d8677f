package vulkan

/**
 * @brief Max number of mesh parts the descriptor pool is sized for. Set
 * allocation beyond this capacity is a fatal error; the pool never grows.
 */
const VULKAN_MAX_MESH_COUNT = 1024

/**
 * @brief Default number of frame slots cycling through the GPU.
 */
const VULKAN_DEFAULT_FRAMES_IN_FLIGHT = 2

/**
 * @brief Descriptor bindings of the single pipeline layout.
 */
const (
	BINDING_GLOBAL_UBO   = 0
	BINDING_INSTANCE_UBO = 1
	BINDING_TEXTURE      = 2
)
