package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/resources"
)

func makePart(vertexCount, indexCount int, texture string) *resources.MeshPart {
	part := &resources.MeshPart{Texture: texture}
	for i := 0; i < vertexCount; i++ {
		part.Vertices = append(part.Vertices, resources.Vertex3D{})
	}
	for i := 0; i < indexCount; i++ {
		part.Indices = append(part.Indices, uint32(i%vertexCount))
	}
	return part
}

func TestPackGeometry(t *testing.T) {
	meshA := &resources.MeshData{
		ID:   core.NewResourceID(),
		Name: "a",
		Parts: []*resources.MeshPart{
			makePart(4, 6, "brick"),
			makePart(3, 3, "wood"),
			makePart(8, 12, "brick"),
		},
	}
	meshB := &resources.MeshData{
		ID:   core.NewResourceID(),
		Name: "b",
		Parts: []*resources.MeshPart{
			makePart(5, 9, ""),
			makePart(2, 3, "metal"),
		},
	}

	packed := PackGeometry([]*resources.MeshData{meshA, meshB})
	require.Len(t, packed.Parts, 5)

	assert.Len(t, packed.Vertices, 4+3+8+5+2)
	assert.Len(t, packed.Indices, 6+3+12+9+3)

	// Offsets concatenate monotonically in registration order.
	wantVertexOffsets := []int32{0, 4, 7, 15, 20}
	wantFirstIndices := []uint32{0, 6, 9, 21, 30}
	for i, part := range packed.Parts {
		assert.Equal(t, wantVertexOffsets[i], part.VertexOffset, "part %d vertex offset", i)
		assert.Equal(t, wantFirstIndices[i], part.FirstIndex, "part %d first index", i)
	}

	// Parts carry their owning mesh and texture through packing.
	assert.Equal(t, meshA.ID, packed.Parts[0].MeshID)
	assert.Equal(t, meshA.ID, packed.Parts[2].MeshID)
	assert.Equal(t, meshB.ID, packed.Parts[3].MeshID)
	assert.Equal(t, "wood", packed.Parts[1].Texture)
	assert.Equal(t, "", packed.Parts[3].Texture)
	assert.Equal(t, uint32(3), packed.Parts[4].IndexCount)
}

func TestPackGeometryEmpty(t *testing.T) {
	packed := PackGeometry(nil)
	assert.Empty(t, packed.Vertices)
	assert.Empty(t, packed.Indices)
	assert.Empty(t, packed.Parts)
}
