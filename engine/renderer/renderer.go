package renderer

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/tessera/engine/assets"
	"github.com/spaghettifunk/tessera/engine/config"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/jobs"
	"github.com/spaghettifunk/tessera/engine/platform"
	"github.com/spaghettifunk/tessera/engine/resources"
	"github.com/spaghettifunk/tessera/engine/renderer/vulkan"
	"github.com/spaghettifunk/tessera/engine/world"
)

// pendingImport is one decoded mesh plus the textures its parts sample,
// handed from an import worker to the render loop.
type pendingImport struct {
	mesh     *resources.MeshData
	textures []*resources.TextureData
}

/**
 * Renderer is the engine-facing front end. Mesh imports are decoded on
 * worker goroutines and queued on a buffered channel; the render loop
 * drains the queue between the fence wait and command recording, so GPU
 * uploads never race an in-flight frame.
 */
type Renderer struct {
	backend *vulkan.VulkanRenderer
	storage *world.Storage
	jobs    *jobs.System

	pending chan *pendingImport
	// Set when imports landed but the GPU scene has not been rebuilt yet,
	// e.g. because the frame was skipped for a swapchain recreation.
	sceneDirty bool
}

func New(p *platform.Platform, storage *world.Storage, jobSystem *jobs.System, cfg *config.Config) *Renderer {
	shaderDir := filepath.Join(cfg.Assets.Dir, "shaders")
	backend := vulkan.New(p, storage, cfg,
		filepath.Join(shaderDir, "mesh.vert.spv"),
		filepath.Join(shaderDir, "mesh.frag.spv"))

	return &Renderer{
		backend: backend,
		storage: storage,
		jobs:    jobSystem,
		pending: make(chan *pendingImport, cfg.Renderer.ImportQueueSize),
	}
}

func (r *Renderer) Initialize() error {
	return r.backend.Initialize()
}

// SetOverlay attaches a UI overlay that draws on top of the scene each
// frame. Must be called before Initialize so its instance extensions are
// picked up.
func (r *Renderer) SetOverlay(overlay vulkan.Overlay) {
	r.backend.SetOverlay(overlay)
}

/**
 * ImportMesh decodes the OBJ at path on a worker and queues the result
 * for the next frame. Textures referenced by the mesh's materials are
 * decoded alongside, resolved relative to the mesh file.
 */
func (r *Renderer) ImportMesh(path string) {
	task := jobs.Task{
		Name: "import-mesh:" + filepath.Base(path),
		OnStart: func() (interface{}, error) {
			mesh, err := assets.ImportMesh(path)
			if err != nil {
				return nil, err
			}

			imported := &pendingImport{mesh: mesh}
			seen := map[string]bool{}
			for _, part := range mesh.Parts {
				if part.Texture == "" || seen[part.Texture] {
					continue
				}
				seen[part.Texture] = true

				texPath := part.Texture
				if !filepath.IsAbs(texPath) {
					texPath = filepath.Join(filepath.Dir(path), texPath)
				}
				tex, texErr := assets.ImportTexture(texPath)
				if texErr != nil {
					core.LogWarn("Texture %q for mesh %q failed to load: %s", part.Texture, mesh.Name, texErr.Error())
					continue
				}
				// Key the texture by the material reference so draw-time
				// lookup matches.
				tex.Name = part.Texture
				imported.textures = append(imported.textures, tex)
			}
			return imported, nil
		},
		OnComplete: func(result interface{}) {
			imported := result.(*pendingImport)
			select {
			case r.pending <- imported:
			default:
				core.LogWarn("Import queue full, dropping mesh %q.", imported.mesh.Name)
			}
		},
		OnFailure: func(err error) {
			core.LogError("Mesh import failed: %s", err.Error())
		},
	}
	r.jobs.Submit(task)
}

// drainPending registers every queued import and reports whether the GPU
// scene needs a rebuild. Never blocks.
func (r *Renderer) drainPending() bool {
	rebuilt := false
	for {
		select {
		case imported := <-r.pending:
			for _, tex := range imported.textures {
				r.storage.RegisterTexture(tex)
			}
			meshID := r.storage.RegisterMesh(imported.mesh)
			// First import of a mesh places it at the origin. Hot reloads
			// keep the existing instances.
			if !r.storage.HasInstanceForMesh(meshID) {
				r.storage.AddInstance(meshID, mgl32.Ident4())
			}
			core.LogDebug("Mesh %q registered as %s.", imported.mesh.Name, meshID)
			rebuilt = true
		default:
			return rebuilt
		}
	}
}

// DrawFrame drains pending imports and renders one frame. A skipped frame
// (swapchain recreation in progress) is not an error; the rebuild carries
// over to the next frame.
func (r *Renderer) DrawFrame() error {
	if r.drainPending() {
		r.sceneDirty = true
	}
	if err := r.backend.DrawFrame(r.sceneDirty); err != nil {
		if errors.Is(err, core.ErrFrameSkipped) {
			return nil
		}
		return err
	}
	r.sceneDirty = false
	return nil
}

func (r *Renderer) Resized(width, height uint32) {
	r.backend.Resized(width, height)
}

func (r *Renderer) Shutdown() {
	r.backend.Shutdown()
}
