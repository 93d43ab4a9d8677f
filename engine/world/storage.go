package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/resources"
)

// Instance places a registered mesh in the world.
type Instance struct {
	ID        core.ResourceID
	MeshID    core.ResourceID
	Transform mgl32.Mat4
}

// Storage owns the CPU-side registry of meshes, textures and instances. The
// renderer reads from it when packing geometry and recording draws.
// All methods are safe for concurrent use; import workers register assets
// while the render loop iterates.
type Storage struct {
	mu              sync.RWMutex
	meshes          map[core.ResourceID]*resources.MeshData
	meshOrder       []core.ResourceID
	meshesByPath    map[string]core.ResourceID
	textures        map[string]*resources.TextureData
	instances       []*Instance
	camera          *Camera
}

func NewStorage() *Storage {
	return &Storage{
		meshes:       make(map[core.ResourceID]*resources.MeshData),
		meshesByPath: make(map[string]core.ResourceID),
		textures:     make(map[string]*resources.TextureData),
		camera:       NewCamera(),
	}
}

// RegisterMesh stores the mesh and returns its ID. Re-importing a path that
// is already registered replaces the mesh data in place so hot-reload keeps
// existing instances valid.
func (s *Storage) RegisterMesh(mesh *resources.MeshData) core.ResourceID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.meshesByPath[mesh.Path]; ok && mesh.Path != "" {
		mesh.ID = existing
		s.meshes[existing] = mesh
		return existing
	}

	if mesh.ID == core.NilResourceID {
		mesh.ID = core.NewResourceID()
	}
	s.meshes[mesh.ID] = mesh
	s.meshOrder = append(s.meshOrder, mesh.ID)
	if mesh.Path != "" {
		s.meshesByPath[mesh.Path] = mesh.ID
	}
	return mesh.ID
}

// AddInstance places a mesh in the world with the given transform.
func (s *Storage) AddInstance(meshID core.ResourceID, transform mgl32.Mat4) *Instance {
	inst := &Instance{
		ID:        core.NewResourceID(),
		MeshID:    meshID,
		Transform: transform,
	}
	s.mu.Lock()
	s.instances = append(s.instances, inst)
	s.mu.Unlock()
	return inst
}

// Meshes returns all registered meshes in registration order.
func (s *Storage) Meshes() []*resources.MeshData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*resources.MeshData, 0, len(s.meshOrder))
	for _, id := range s.meshOrder {
		out = append(out, s.meshes[id])
	}
	return out
}

func (s *Storage) Mesh(id core.ResourceID) (*resources.MeshData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meshes[id]
	return m, ok
}

func (s *Storage) MeshCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshOrder)
}

// HasInstanceForMesh reports whether any instance references the mesh.
func (s *Storage) HasInstanceForMesh(meshID core.ResourceID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inst := range s.instances {
		if inst.MeshID == meshID {
			return true
		}
	}
	return false
}

// Instances returns a snapshot of the world's render instances.
func (s *Storage) Instances() []*Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

func (s *Storage) RegisterTexture(tex *resources.TextureData) {
	s.mu.Lock()
	if tex.ID == core.NilResourceID {
		tex.ID = core.NewResourceID()
	}
	s.textures[tex.Name] = tex
	s.mu.Unlock()
}

func (s *Storage) Texture(name string) (*resources.TextureData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.textures[name]
	return t, ok
}

func (s *Storage) MainCamera() *Camera {
	return s.camera
}
