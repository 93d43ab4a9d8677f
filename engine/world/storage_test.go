package world

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tessera/engine/resources"
)

func testMesh(name, path string, parts int) *resources.MeshData {
	m := &resources.MeshData{Name: name, Path: path}
	for i := 0; i < parts; i++ {
		m.Parts = append(m.Parts, &resources.MeshPart{
			Vertices: make([]resources.Vertex3D, 3),
			Indices:  []uint32{0, 1, 2},
		})
	}
	return m
}

func TestRegisterMeshAssignsStableIDs(t *testing.T) {
	s := NewStorage()

	id1 := s.RegisterMesh(testMesh("a", "meshes/a.obj", 1))
	id2 := s.RegisterMesh(testMesh("b", "meshes/b.obj", 2))
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, s.MeshCount())

	// Re-importing the same path replaces data but keeps the ID.
	again := s.RegisterMesh(testMesh("a-reloaded", "meshes/a.obj", 3))
	assert.Equal(t, id1, again)
	assert.Equal(t, 2, s.MeshCount())

	m, ok := s.Mesh(id1)
	require.True(t, ok)
	assert.Equal(t, "a-reloaded", m.Name)
	assert.Len(t, m.Parts, 3)
}

func TestMeshesPreserveRegistrationOrder(t *testing.T) {
	s := NewStorage()
	s.RegisterMesh(testMesh("first", "1.obj", 1))
	s.RegisterMesh(testMesh("second", "2.obj", 1))
	s.RegisterMesh(testMesh("third", "3.obj", 1))

	var names []string
	for _, m := range s.Meshes() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func TestConcurrentRegistration(t *testing.T) {
	s := NewStorage()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := s.RegisterMesh(testMesh("m", "", 1))
			s.AddInstance(id, mgl32.Ident4())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 16, s.MeshCount())
	assert.Len(t, s.Instances(), 16)
}

func TestAddInstanceDefaults(t *testing.T) {
	s := NewStorage()
	id := s.RegisterMesh(testMesh("m", "m.obj", 1))
	inst := s.AddInstance(id, mgl32.Ident4())

	assert.Equal(t, id, inst.MeshID)
	assert.Equal(t, mgl32.Ident4(), inst.Transform)
}
