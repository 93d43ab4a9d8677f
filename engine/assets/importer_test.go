package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
`

func writeAsset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportMeshTriangulatesQuad(t *testing.T) {
	path := writeAsset(t, "quad.obj", quadOBJ)

	mesh, err := ImportMesh(path)
	require.NoError(t, err)

	assert.Equal(t, "quad", mesh.Name)
	require.Len(t, mesh.Parts, 1)

	part := mesh.Parts[0]
	// A quad becomes two triangles: 6 indices over 4 unique vertices.
	assert.Len(t, part.Indices, 6)
	assert.Len(t, part.Vertices, 4)
	for _, idx := range part.Indices {
		assert.Less(t, int(idx), len(part.Vertices))
	}
}

func TestImportMeshFlipsV(t *testing.T) {
	path := writeAsset(t, "quad.obj", quadOBJ)

	mesh, err := ImportMesh(path)
	require.NoError(t, err)

	// OBJ uses a bottom-left UV origin; the engine samples top-left.
	v0 := mesh.Parts[0].Vertices[0]
	assert.InDelta(t, 1.0, v0.TexCoord.Y(), 1e-6)
}

func TestImportMeshMissingFile(t *testing.T) {
	_, err := ImportMesh(filepath.Join(t.TempDir(), "nope.obj"))
	assert.Error(t, err)
}

func TestImportMeshNoFaces(t *testing.T) {
	path := writeAsset(t, "empty.obj", "o empty\nv 0 0 0\n")
	_, err := ImportMesh(path)
	assert.Error(t, err)
}

func TestFallbackTexture(t *testing.T) {
	tex := FallbackTexture()
	assert.Equal(t, uint32(64), tex.Width)
	assert.Equal(t, uint32(64), tex.Height)
	assert.Len(t, tex.Pixels, 64*64*4)
	// Alpha is opaque everywhere.
	for i := 3; i < len(tex.Pixels); i += 4 {
		require.Equal(t, byte(0xFF), tex.Pixels[i])
	}
}

func TestDetermineAssetType(t *testing.T) {
	tests := []struct {
		path string
		want AssetType
	}{
		{"meshes/car.obj", AssetTypeMesh},
		{"textures/brick.PNG", AssetTypeTexture},
		{"textures/photo.jpeg", AssetTypeTexture},
		{"shaders/vert.spv", AssetTypeShader},
		{"notes/readme.md", AssetTypeNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, determineAssetType(tt.path), tt.path)
	}
}
