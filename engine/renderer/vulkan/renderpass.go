package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
)

type VulkanRenderpassState int

const (
	RENDERPASS_STATE_READY VulkanRenderpassState = iota
	RENDERPASS_STATE_RECORDING
	RENDERPASS_STATE_IN_RENDER_PASS
	RENDERPASS_STATE_RECORDING_ENDED
	RENDERPASS_STATE_SUBMITTED
	RENDERPASS_STATE_NOT_ALLOCATED
)

type VulkanRenderpass struct {
	Handle vk.RenderPass
	X      float32
	Y      float32
	W      float32
	H      float32

	R float32
	G float32
	B float32
	A float32

	Depth   float32
	Stencil uint32

	State VulkanRenderpassState
}

/**
 * RenderpassCreate builds the main renderpass. With MSAA, attachment zero
 * is the multisampled color target, attachment one the depth target and
 * attachment two the single sample swapchain image the color resolves
 * into for presentation. Single sampled rendering drops the resolve and
 * presents the color attachment directly.
 */
func RenderpassCreate(context *VulkanContext, x, y, w, h, r, g, b, a, depth float32, stencil uint32) (*VulkanRenderpass, error) {
	outRenderpass := &VulkanRenderpass{
		X: x, Y: y, W: w, H: h,
		R: r, G: g, B: b, A: a,
		Depth:   depth,
		Stencil: stencil,
		State:   RENDERPASS_STATE_NOT_ALLOCATED,
	}

	multisampled := context.Samples != vk.SampleCount1Bit

	colorAttachment := vk.AttachmentDescription{
		Format:         context.Swapchain.ImageFormat.Format,
		Samples:        context.Samples,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutColorAttachmentOptimal,
	}
	if !multisampled {
		colorAttachment.StoreOp = vk.AttachmentStoreOpStore
		colorAttachment.FinalLayout = vk.ImageLayoutPresentSrc
	}

	depthAttachment := vk.AttachmentDescription{
		Format:         context.Device.DepthFormat,
		Samples:        context.Samples,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	colorAttachmentRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	depthAttachmentRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorAttachmentRef},
		PDepthStencilAttachment: &depthAttachmentRef,
	}

	attachments := []vk.AttachmentDescription{colorAttachment, depthAttachment}
	if multisampled {
		colorResolveAttachment := vk.AttachmentDescription{
			Format:         context.Swapchain.ImageFormat.Format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpDontCare,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		}
		colorResolveRef := vk.AttachmentReference{
			Attachment: 2,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}
		subpass.PResolveAttachments = []vk.AttachmentReference{colorResolveRef}
		attachments = append(attachments, colorResolveAttachment)
	}

	dependency := vk.SubpassDependency{
		SrcSubpass: vk.SubpassExternal,
		DstSubpass: 0,
		SrcStageMask: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit |
			vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask: 0,
		DstStageMask: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit |
			vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit |
			vk.AccessDepthStencilAttachmentWriteBit),
	}

	renderpassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var pRenderpass vk.RenderPass
	if res := vk.CreateRenderPass(context.Device.LogicalDevice, &renderpassInfo, context.Allocator, &pRenderpass); res != vk.Success {
		err := fmt.Errorf("failed to create renderpass: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	outRenderpass.Handle = pRenderpass
	outRenderpass.State = RENDERPASS_STATE_READY

	return outRenderpass, nil
}

func (renderpass *VulkanRenderpass) Destroy(context *VulkanContext) {
	if renderpass.Handle != vk.NullRenderPass {
		vk.DestroyRenderPass(context.Device.LogicalDevice, renderpass.Handle, context.Allocator)
		renderpass.Handle = vk.NullRenderPass
	}
	renderpass.State = RENDERPASS_STATE_NOT_ALLOCATED
}

func (renderpass *VulkanRenderpass) Begin(commandBuffer *VulkanCommandBuffer, frameBuffer vk.Framebuffer) {
	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor([]float32{renderpass.R, renderpass.G, renderpass.B, renderpass.A})
	clearValues[1].SetDepthStencil(renderpass.Depth, renderpass.Stencil)

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderpass.Handle,
		Framebuffer: frameBuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{
				X: int32(renderpass.X),
				Y: int32(renderpass.Y),
			},
			Extent: vk.Extent2D{
				Width:  uint32(renderpass.W),
				Height: uint32(renderpass.H),
			},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}

	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

func (renderpass *VulkanRenderpass) End(commandBuffer *VulkanCommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
}
