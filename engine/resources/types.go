package resources

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tessera/engine/core"
)

// Vertex3D is the single vertex layout the engine renders. Field order
// matches the pipeline's vertex attribute descriptions.
type Vertex3D struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
}

const (
	Vertex3DSize           = uint32(unsafe.Sizeof(Vertex3D{}))
	Vertex3DPositionOffset = uint32(unsafe.Offsetof(Vertex3D{}.Position))
	Vertex3DColorOffset    = uint32(unsafe.Offsetof(Vertex3D{}.Color))
	Vertex3DTexCoordOffset = uint32(unsafe.Offsetof(Vertex3D{}.TexCoord))
)

// MeshPart is one drawable section of a mesh: a contiguous range of vertices
// and indices plus the name of the texture it samples.
type MeshPart struct {
	Vertices []Vertex3D
	Indices  []uint32
	Texture  string
}

// MeshData is a fully decoded mesh, ready for GPU upload. Parts keep their
// own vertex/index slices; the renderer packs them into the shared buffers
// and tracks per-part offsets.
type MeshData struct {
	ID    core.ResourceID
	Name  string
	Path  string
	Parts []*MeshPart
}

// TextureData is a decoded RGBA image ready for staging upload.
type TextureData struct {
	ID     core.ResourceID
	Name   string
	Width  uint32
	Height uint32
	// Tightly packed RGBA, Width*Height*4 bytes.
	Pixels []byte
}

// GlobalUBO holds per-frame camera state. Bound at descriptor binding 0 in
// the vertex stage. Mat4 fields keep std140-compatible alignment.
type GlobalUBO struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// InstanceUBO holds the per-instance model transform. Bound at descriptor
// binding 1 in the vertex stage.
type InstanceUBO struct {
	Model mgl32.Mat4
}

const (
	GlobalUBOSize   = uint64(unsafe.Sizeof(GlobalUBO{}))
	InstanceUBOSize = uint64(unsafe.Sizeof(InstanceUBO{}))
)

// VerticesToBytes reinterprets a vertex slice as raw bytes for staging.
func VerticesToBytes(verts []Vertex3D) []byte {
	if len(verts) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), len(verts)*int(Vertex3DSize))
}

// IndicesToBytes reinterprets an index slice as raw bytes for staging.
func IndicesToBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
}

// UBOToBytes reinterprets a uniform struct as raw bytes for the mapped range.
func UBOToBytes[T GlobalUBO | InstanceUBO](ubo *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(ubo)), int(unsafe.Sizeof(*ubo)))
}
