package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tessera/engine/resources"
	"github.com/spaghettifunk/tessera/engine/world"
)

func testMesh(path string, parts int) *resources.MeshData {
	mesh := &resources.MeshData{Name: path, Path: path}
	for i := 0; i < parts; i++ {
		mesh.Parts = append(mesh.Parts, &resources.MeshPart{
			Vertices: make([]resources.Vertex3D, 3),
			Indices:  []uint32{0, 1, 2},
		})
	}
	return mesh
}

func TestDrainPendingRegistersImports(t *testing.T) {
	storage := world.NewStorage()
	r := &Renderer{storage: storage, pending: make(chan *pendingImport, 4)}

	r.pending <- &pendingImport{
		mesh: testMesh("viking_room.obj", 3),
		textures: []*resources.TextureData{
			{Name: "viking_room.png", Width: 2, Height: 2, Pixels: make([]byte, 16)},
		},
	}
	r.pending <- &pendingImport{mesh: testMesh("cube.obj", 2)}

	require.True(t, r.drainPending())
	assert.Equal(t, 2, storage.MeshCount())
	assert.Len(t, storage.Instances(), 2)

	_, ok := storage.Texture("viking_room.png")
	assert.True(t, ok)

	// Nothing queued, nothing to rebuild.
	assert.False(t, r.drainPending())
}

func TestDrainPendingHotReloadKeepsInstances(t *testing.T) {
	storage := world.NewStorage()
	r := &Renderer{storage: storage, pending: make(chan *pendingImport, 4)}

	r.pending <- &pendingImport{mesh: testMesh("cube.obj", 1)}
	require.True(t, r.drainPending())

	meshes := storage.Meshes()
	require.Len(t, meshes, 1)
	firstID := meshes[0].ID
	require.Len(t, storage.Instances(), 1)

	// Re-importing the same path replaces the mesh data but keeps its ID
	// and does not place a second instance.
	r.pending <- &pendingImport{mesh: testMesh("cube.obj", 2)}
	require.True(t, r.drainPending())

	meshes = storage.Meshes()
	require.Len(t, meshes, 1)
	assert.Equal(t, firstID, meshes[0].ID)
	assert.Len(t, storage.Instances(), 1)
	assert.Len(t, meshes[0].Parts, 2)
}
