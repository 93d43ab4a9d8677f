package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/resources"
)

/**
 * PartAllocation locates one mesh part inside the combined vertex and
 * index buffers. Indices stay part-local; VertexOffset is applied at draw
 * time through CmdDrawIndexed.
 */
type PartAllocation struct {
	MeshID       core.ResourceID
	Texture      string
	FirstIndex   uint32
	IndexCount   uint32
	VertexOffset int32
}

// PackedGeometry is the CPU side result of packing every registered mesh
// into two flat arrays, one draw range per part.
type PackedGeometry struct {
	Vertices []resources.Vertex3D
	Indices  []uint32
	Parts    []PartAllocation
}

// PackGeometry concatenates all mesh parts in registration order. Offsets
// grow monotonically so parts of the same mesh stay adjacent.
func PackGeometry(meshes []*resources.MeshData) *PackedGeometry {
	packed := &PackedGeometry{}
	for _, mesh := range meshes {
		for _, part := range mesh.Parts {
			allocation := PartAllocation{
				MeshID:       mesh.ID,
				Texture:      part.Texture,
				FirstIndex:   uint32(len(packed.Indices)),
				IndexCount:   uint32(len(part.Indices)),
				VertexOffset: int32(len(packed.Vertices)),
			}
			packed.Vertices = append(packed.Vertices, part.Vertices...)
			packed.Indices = append(packed.Indices, part.Indices...)
			packed.Parts = append(packed.Parts, allocation)
		}
	}
	return packed
}

// GeometryBuffers owns the combined device-local vertex and index buffers
// for the whole scene.
type GeometryBuffers struct {
	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer
	Parts        []PartAllocation
}

func GeometryBuffersUpload(context *VulkanContext, submitter *QueueSubmitter, packed *PackedGeometry) (*GeometryBuffers, error) {
	if len(packed.Vertices) == 0 || len(packed.Indices) == 0 {
		err := fmt.Errorf("cannot upload empty geometry")
		core.LogError(err.Error())
		return nil, err
	}

	vertexBuffer, err := BufferUploadDeviceLocal(
		context,
		submitter,
		vk.BufferUsageVertexBufferBit,
		resources.VerticesToBytes(packed.Vertices))
	if err != nil {
		return nil, err
	}

	indexBuffer, err := BufferUploadDeviceLocal(
		context,
		submitter,
		vk.BufferUsageIndexBufferBit,
		resources.IndicesToBytes(packed.Indices))
	if err != nil {
		vertexBuffer.Destroy(context)
		return nil, err
	}

	core.LogDebug("Uploaded geometry: %d vertices, %d indices, %d parts.",
		len(packed.Vertices), len(packed.Indices), len(packed.Parts))

	return &GeometryBuffers{
		VertexBuffer: vertexBuffer,
		IndexBuffer:  indexBuffer,
		Parts:        packed.Parts,
	}, nil
}

func (geometry *GeometryBuffers) Destroy(context *VulkanContext) {
	if geometry.VertexBuffer != nil {
		geometry.VertexBuffer.Destroy(context)
		geometry.VertexBuffer = nil
	}
	if geometry.IndexBuffer != nil {
		geometry.IndexBuffer.Destroy(context)
		geometry.IndexBuffer = nil
	}
	geometry.Parts = nil
}
