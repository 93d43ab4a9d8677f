package vulkan

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/assets"
	"github.com/spaghettifunk/tessera/engine/config"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/platform"
	"github.com/spaghettifunk/tessera/engine/resources"
	"github.com/spaghettifunk/tessera/engine/world"
)

// sceneResources is one uploaded generation of the scene: the combined
// geometry buffers, the textures its parts sample and one descriptor set
// per part per frame slot. A rebuild swaps the whole generation and
// retires the old one through the frame ring.
type sceneResources struct {
	geometry *GeometryBuffers
	textures map[string]*VulkanTexture
	// partSets[partIndex][frameSlot]
	partSets [][]vk.DescriptorSet
}

type VulkanRenderer struct {
	platform *platform.Platform
	storage  *world.Storage
	context  *VulkanContext

	submitter *QueueSubmitter

	descriptorSetLayout vk.DescriptorSetLayout
	descriptorPool      vk.DescriptorPool
	pipeline            *VulkanPipeline

	scene           *sceneResources
	fallbackTexture *VulkanTexture
	overlay         Overlay

	appName        string
	vertShaderPath string
	fragShaderPath string
	validation     bool
	msaa           bool
	vsync          bool
	framesInFlight uint32
}

type drawCommand struct {
	partIndex     int
	instanceIndex uint32
}

/**
 * Overlay appends its own draw commands inside the open render pass,
 * after the scene geometry has been drawn. InstanceExtensions is queried
 * during instance creation, so the overlay must be attached before
 * Initialize.
 */
type Overlay interface {
	InstanceExtensions() []string
	Record(commandBuffer vk.CommandBuffer, extent vk.Extent2D)
}

func New(p *platform.Platform, storage *world.Storage, cfg *config.Config, vertShaderPath, fragShaderPath string) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		storage:  storage,
		context: &VulkanContext{
			Device: &VulkanDevice{
				GraphicsQueueIndex: -1,
				PresentQueueIndex:  -1,
			},
		},
		submitter:      NewQueueSubmitter(),
		appName:        cfg.Application.Name,
		vertShaderPath: vertShaderPath,
		fragShaderPath: fragShaderPath,
		validation:     cfg.Renderer.Validation,
		msaa:           cfg.Renderer.MSAA,
		vsync:          cfg.Renderer.VSync,
		framesInFlight: cfg.Renderer.FramesInFlight,
	}
}

func (vr *VulkanRenderer) Initialize() error {
	ctx := vr.context

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vulkan: %s", err.Error())
		return err
	}

	if err := vr.createInstance(); err != nil {
		return err
	}

	if vr.validation {
		if err := createDebugMessenger(ctx); err != nil {
			return err
		}
	}

	surfacePtr, err := vr.platform.Window.CreateWindowSurface(ctx.Instance, nil)
	if err != nil {
		core.LogError("failed to create window surface: %s", err.Error())
		return err
	}
	ctx.Surface = vk.SurfaceFromPointer(surfacePtr)

	if err := DeviceCreate(ctx); err != nil {
		return err
	}

	ctx.Samples = vk.SampleCount1Bit
	if vr.msaa {
		ctx.Samples = ctx.Device.MaxMSAASamples
	}

	width, height := vr.platform.DrawableSize()
	swapchain, err := SwapchainCreate(ctx, width, height, vr.vsync)
	if err != nil {
		return err
	}
	ctx.Swapchain = swapchain

	renderpass, err := RenderpassCreate(ctx,
		0, 0, float32(ctx.FramebufferWidth), float32(ctx.FramebufferHeight),
		0.01, 0.01, 0.02, 1.0,
		1.0, 0)
	if err != nil {
		return err
	}
	ctx.MainRenderpass = renderpass

	if err := ctx.Swapchain.RegenerateFramebuffers(ctx, renderpass); err != nil {
		return err
	}

	layout, err := DescriptorSetLayoutCreate(ctx)
	if err != nil {
		return err
	}
	vr.descriptorSetLayout = layout

	pool, err := DescriptorPoolCreate(ctx, vr.framesInFlight)
	if err != nil {
		return err
	}
	vr.descriptorPool = pool

	pipeline, err := PipelineCreate(ctx, renderpass, layout, vr.vertShaderPath, vr.fragShaderPath)
	if err != nil {
		return err
	}
	vr.pipeline = pipeline

	ctx.FramesInFlight = vr.framesInFlight
	ctx.Frames = make([]*FrameSlot, vr.framesInFlight)
	for i := range ctx.Frames {
		slot, err := FrameSlotCreate(ctx)
		if err != nil {
			return err
		}
		ctx.Frames[i] = slot
	}

	fallback, err := TextureUpload(ctx, vr.submitter, assets.FallbackTexture())
	if err != nil {
		return err
	}
	vr.fallbackTexture = fallback

	core.LogInfo("Vulkan renderer initialized (%d frames in flight).", vr.framesInFlight)
	return nil
}

func (vr *VulkanRenderer) createInstance() error {
	ctx := vr.context

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         vk.MakeVersion(1, 2, 0),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PApplicationName:   VulkanSafeString(vr.appName),
		PEngineName:        VulkanSafeString("Tessera"),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
	}

	extensions := vr.platform.GetRequiredExtensionNames()
	if vr.overlay != nil {
		extensions = append(extensions, vr.overlay.InstanceExtensions()...)
	}
	if vr.validation {
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
	}
	core.LogDebug("Required instance extensions: %v", extensions)

	layers := []string{}
	if vr.validation {
		available, err := instanceLayerAvailable("VK_LAYER_KHRONOS_validation")
		if err != nil {
			return err
		}
		if available {
			layers = append(layers, "VK_LAYER_KHRONOS_validation")
		} else {
			core.LogWarn("Validation requested but VK_LAYER_KHRONOS_validation is not installed.")
		}
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     VulkanSafeStrings(layers),
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, ctx.Allocator, &instance); res != vk.Success {
		err := fmt.Errorf("failed to create vulkan instance: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	ctx.Instance = instance

	if err := vk.InitInstance(instance); err != nil {
		core.LogError("failed to initialize instance procedures: %s", err.Error())
		return err
	}
	return nil
}

func instanceLayerAvailable(name string) (bool, error) {
	var layerCount uint32
	if res := vk.EnumerateInstanceLayerProperties(&layerCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to enumerate instance layers: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return false, err
	}
	layers := make([]vk.LayerProperties, layerCount)
	if layerCount > 0 {
		if res := vk.EnumerateInstanceLayerProperties(&layerCount, layers); res != vk.Success {
			err := fmt.Errorf("failed to enumerate instance layers: %s", VulkanResultString(res, true))
			core.LogError(err.Error())
			return false, err
		}
	}
	for i := range layers {
		layers[i].Deref()
		end := FindFirstZeroInByteArray(layers[i].LayerName[:])
		if vk.ToString(layers[i].LayerName[:end+1]) == name {
			return true, nil
		}
	}
	return false, nil
}

// Resized records the new framebuffer size. The swapchain is recreated
// from the frame loop, never from the event callback.
// SetOverlay attaches the UI overlay. Must be called before Initialize.
func (vr *VulkanRenderer) SetOverlay(overlay Overlay) {
	vr.overlay = overlay
}

func (vr *VulkanRenderer) Resized(width, height uint32) {
	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height
	vr.context.FramebufferResized = true
}

/**
 * DrawFrame runs one full frame cycle. rebuildScene uploads a fresh scene
 * generation before recording, used after mesh imports land. Returns
 * core.ErrFrameSkipped when the frame was dropped for a swapchain
 * recreation; callers treat that as a non-fatal skip.
 */
func (vr *VulkanRenderer) DrawFrame(rebuildScene bool) error {
	ctx := vr.context

	if ctx.RecreatingSwapchain {
		return core.ErrFrameSkipped
	}
	if ctx.FramebufferResized {
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		return core.ErrFrameSkipped
	}

	slot := ctx.Frames[ctx.CurrentFrame]

	// The fence proves the GPU finished this slot's previous submission.
	if !slot.InFlightFence.Wait(ctx, math.MaxUint64) {
		return errors.New("in-flight fence wait failed")
	}

	// Anything retired into this slot is now unreferenced.
	slot.Reclaim()

	if rebuildScene {
		if err := vr.rebuildScene(slot); err != nil {
			return err
		}
	}

	imageIndex, err := ctx.Swapchain.AcquireNextImage(ctx, math.MaxUint64, slot.ImageAvailableSemaphore, vk.NullFence)
	if err != nil {
		if errors.Is(err, core.ErrSwapchainOutOfDate) {
			if err := vr.recreateSwapchain(); err != nil {
				return err
			}
			return core.ErrFrameSkipped
		}
		return err
	}
	ctx.ImageIndex = imageIndex

	draws := vr.updateUniforms(slot)

	if err := slot.InFlightFence.Reset(ctx); err != nil {
		return err
	}

	if err := vr.recordCommandBuffer(slot, imageIndex, draws); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{slot.ImageAvailableSemaphore},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{slot.CommandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{slot.RenderCompleteSemaphore},
	}
	if err := vr.submitter.Submit(ctx.Device.GraphicsQueue, []vk.SubmitInfo{submitInfo}, slot.InFlightFence.Handle); err != nil {
		return err
	}
	slot.CommandBuffer.UpdateSubmitted()

	err = ctx.Swapchain.Present(ctx, vr.submitter, slot.RenderCompleteSemaphore, imageIndex)
	stale := errors.Is(err, core.ErrSwapchainOutOfDate)
	if err != nil && !stale {
		return err
	}
	if stale || ctx.FramebufferResized {
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
	}

	ctx.CurrentFrame = nextFrameSlot(ctx.CurrentFrame, ctx.FramesInFlight)
	return nil
}

// updateUniforms writes the camera and per-instance transforms into this
// slot's mapped uniform buffers and returns the frame's draw list.
func (vr *VulkanRenderer) updateUniforms(slot *FrameSlot) []drawCommand {
	ctx := vr.context

	camera := vr.storage.MainCamera()
	aspect := float32(ctx.FramebufferWidth) / float32(ctx.FramebufferHeight)
	globalUBO := resources.GlobalUBO{
		View:       camera.ViewMatrix(),
		Projection: camera.ProjectionMatrix(aspect),
	}
	slot.WriteGlobalUBO(&globalUBO)

	if vr.scene == nil {
		return nil
	}

	draws := []drawCommand{}
	instances := vr.storage.Instances()
	for i, instance := range instances {
		if uint32(i) >= VULKAN_MAX_MESH_COUNT {
			core.LogWarn("Instance count exceeds %d, extra instances are not drawn.", VULKAN_MAX_MESH_COUNT)
			break
		}
		instanceUBO := resources.InstanceUBO{Model: instance.Transform}
		slot.WriteInstanceUBO(uint32(i), &instanceUBO)

		for partIndex, part := range vr.scene.geometry.Parts {
			if part.MeshID == instance.MeshID {
				draws = append(draws, drawCommand{
					partIndex:     partIndex,
					instanceIndex: uint32(i),
				})
			}
		}
	}
	return draws
}

func (vr *VulkanRenderer) recordCommandBuffer(slot *FrameSlot, imageIndex uint32, draws []drawCommand) error {
	ctx := vr.context
	commandBuffer := slot.CommandBuffer

	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	renderpass := ctx.MainRenderpass
	renderpass.W = float32(ctx.Swapchain.Extent.Width)
	renderpass.H = float32(ctx.Swapchain.Extent.Height)
	renderpass.Begin(commandBuffer, ctx.Swapchain.Framebuffers[imageIndex])

	viewport := vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(ctx.Swapchain.Extent.Width),
		Height:   float32(ctx.Swapchain.Extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})

	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: ctx.Swapchain.Extent,
	}
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	if vr.scene != nil && len(draws) > 0 {
		vr.pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)

		vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1,
			[]vk.Buffer{vr.scene.geometry.VertexBuffer.Handle}, []vk.DeviceSize{0})
		vk.CmdBindIndexBuffer(commandBuffer.Handle, vr.scene.geometry.IndexBuffer.Handle, 0, vk.IndexTypeUint32)

		for _, draw := range draws {
			part := vr.scene.geometry.Parts[draw.partIndex]
			set := vr.scene.partSets[draw.partIndex][ctx.CurrentFrame]
			vk.CmdBindDescriptorSets(commandBuffer.Handle,
				vk.PipelineBindPointGraphics,
				vr.pipeline.PipelineLayout,
				0, 1, []vk.DescriptorSet{set},
				1, []uint32{slot.InstanceOffset(draw.instanceIndex)})
			vk.CmdDrawIndexed(commandBuffer.Handle, part.IndexCount, 1, part.FirstIndex, part.VertexOffset, 0)
		}
	}

	if vr.overlay != nil {
		vr.overlay.Record(commandBuffer.Handle, ctx.Swapchain.Extent)
	}

	renderpass.End(commandBuffer)
	return commandBuffer.End()
}

/**
 * rebuildScene uploads a complete new generation of GPU resources from
 * the current storage contents and retires the previous generation into
 * the given frame slot's deferred list.
 */
func (vr *VulkanRenderer) rebuildScene(slot *FrameSlot) error {
	ctx := vr.context

	meshes := vr.storage.Meshes()
	packed := PackGeometry(meshes)
	if len(packed.Parts) == 0 {
		vr.retireScene(slot)
		vr.scene = nil
		return nil
	}
	if len(packed.Parts) > VULKAN_MAX_MESH_COUNT {
		return errors.Newf("scene has %d parts, maximum is %d", len(packed.Parts), VULKAN_MAX_MESH_COUNT)
	}

	geometry, err := GeometryBuffersUpload(ctx, vr.submitter, packed)
	if err != nil {
		return err
	}

	// Upload each distinct texture once.
	textures := map[string]*VulkanTexture{}
	for _, part := range packed.Parts {
		if part.Texture == "" {
			continue
		}
		if _, ok := textures[part.Texture]; ok {
			continue
		}
		data, ok := vr.storage.Texture(part.Texture)
		if !ok {
			core.LogWarn("Texture '%s' not registered, using fallback.", part.Texture)
			continue
		}
		texture, err := TextureUpload(ctx, vr.submitter, data)
		if err != nil {
			return err
		}
		textures[part.Texture] = texture
	}

	partSets := make([][]vk.DescriptorSet, len(packed.Parts))
	for partIndex, part := range packed.Parts {
		texture := vr.fallbackTexture
		if t, ok := textures[part.Texture]; ok {
			texture = t
		}

		partSets[partIndex] = make([]vk.DescriptorSet, ctx.FramesInFlight)
		for frame := uint32(0); frame < ctx.FramesInFlight; frame++ {
			set, err := DescriptorSetAllocate(ctx, vr.descriptorPool, vr.descriptorSetLayout)
			if err != nil {
				return err
			}
			frameSlot := ctx.Frames[frame]
			DescriptorSetUpdate(ctx, set,
				frameSlot.GlobalUBOBuffer, vk.DeviceSize(resources.GlobalUBOSize),
				frameSlot.InstanceUBOBuffer, vk.DeviceSize(resources.InstanceUBOSize),
				texture.Image.View, texture.Sampler)
			partSets[partIndex][frame] = set
		}
	}

	vr.retireScene(slot)
	vr.scene = &sceneResources{
		geometry: geometry,
		textures: textures,
		partSets: partSets,
	}

	core.LogInfo("Scene rebuilt: %d meshes, %d parts, %d textures.",
		len(meshes), len(packed.Parts), len(textures))
	return nil
}

// retireScene defers destruction of the current scene generation until
// the slot's fence proves no in-flight frame references it.
func (vr *VulkanRenderer) retireScene(slot *FrameSlot) {
	if vr.scene == nil {
		return
	}
	ctx := vr.context
	old := vr.scene

	slot.Defer(func() {
		old.geometry.Destroy(ctx)
		for _, texture := range old.textures {
			texture.Destroy(ctx)
		}
		for _, sets := range old.partSets {
			DescriptorSetsFree(ctx, vr.descriptorPool, sets)
		}
	})
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	ctx := vr.context
	if ctx.RecreatingSwapchain {
		return nil
	}
	ctx.RecreatingSwapchain = true
	defer func() { ctx.RecreatingSwapchain = false }()

	width, height := vr.platform.WaitWhileMinimized()

	if res := vk.DeviceWaitIdle(ctx.Device.LogicalDevice); res != vk.Success {
		err := fmt.Errorf("device wait idle failed during swapchain recreation: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	if err := ctx.Swapchain.Recreate(ctx, width, height, vr.vsync, ctx.MainRenderpass); err != nil {
		return err
	}

	ctx.MainRenderpass.W = float32(ctx.FramebufferWidth)
	ctx.MainRenderpass.H = float32(ctx.FramebufferHeight)
	ctx.FramebufferResized = false

	core.LogDebug("Swapchain recreated at %dx%d.", ctx.FramebufferWidth, ctx.FramebufferHeight)
	return nil
}

func (vr *VulkanRenderer) Shutdown() {
	ctx := vr.context
	if ctx.Device.LogicalDevice == nil {
		return
	}

	vk.DeviceWaitIdle(ctx.Device.LogicalDevice)

	if vr.scene != nil {
		vr.scene.geometry.Destroy(ctx)
		for _, texture := range vr.scene.textures {
			texture.Destroy(ctx)
		}
		vr.scene = nil
	}
	if vr.fallbackTexture != nil {
		vr.fallbackTexture.Destroy(ctx)
		vr.fallbackTexture = nil
	}

	for _, slot := range ctx.Frames {
		slot.Destroy(ctx)
	}
	ctx.Frames = nil

	if vr.pipeline != nil {
		vr.pipeline.Destroy(ctx)
		vr.pipeline = nil
	}
	if vr.descriptorPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(ctx.Device.LogicalDevice, vr.descriptorPool, ctx.Allocator)
		vr.descriptorPool = vk.NullDescriptorPool
	}
	if vr.descriptorSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(ctx.Device.LogicalDevice, vr.descriptorSetLayout, ctx.Allocator)
		vr.descriptorSetLayout = vk.NullDescriptorSetLayout
	}
	if ctx.MainRenderpass != nil {
		ctx.MainRenderpass.Destroy(ctx)
		ctx.MainRenderpass = nil
	}
	if ctx.Swapchain != nil {
		ctx.Swapchain.Destroy(ctx)
		ctx.Swapchain = nil
	}

	DeviceDestroy(ctx)

	if ctx.Surface != vk.NullSurface {
		vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
		ctx.Surface = vk.NullSurface
	}
	if vr.validation {
		destroyDebugMessenger(ctx)
	}
	if ctx.Instance != nil {
		vk.DestroyInstance(ctx.Instance, ctx.Allocator)
		ctx.Instance = nil
	}

	core.LogInfo("Vulkan renderer shut down.")
}
