package testbed

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/tessera/engine"
	"github.com/spaghettifunk/tessera/engine/assets"
	"github.com/spaghettifunk/tessera/engine/core"
)

const (
	moveSpeed   = 5.0
	mouseSensit = 0.002
)

type gameState struct {
	meshesQueued bool
}

// NewGame builds a simple model viewer: every OBJ under the asset
// directory is imported at startup and a free camera flies the scene.
func NewGame() *engine.Game {
	state := &gameState{}

	return &engine.Game{
		State:        state,
		FnInitialize: state.initialize,
		FnUpdate:     state.update,
		FnOnResize:   state.onResize,
	}
}

func (s *gameState) initialize(e *engine.Engine) error {
	meshes := e.Assets().Assets(assets.AssetTypeMesh)
	if len(meshes) == 0 {
		core.LogWarn("No meshes found in the asset directory; the scene will be empty.")
	}
	for _, info := range meshes {
		e.ImportMesh(info.Path)
	}
	s.meshesQueued = len(meshes) > 0
	return nil
}

func (s *gameState) update(e *engine.Engine, deltaTime float64) error {
	camera := e.Storage().MainCamera()

	var move mgl32.Vec3
	step := float32(moveSpeed * deltaTime)
	if core.InputIsKeyDown(core.KEY_W) {
		move[2] += step
	}
	if core.InputIsKeyDown(core.KEY_S) {
		move[2] -= step
	}
	if core.InputIsKeyDown(core.KEY_D) {
		move[0] += step
	}
	if core.InputIsKeyDown(core.KEY_A) {
		move[0] -= step
	}
	if core.InputIsKeyDown(core.KEY_SPACE) {
		move[1] += step
	}
	if core.InputIsKeyDown(core.KEY_LSHIFT) {
		move[1] -= step
	}
	if move.Len() > 0 {
		camera.Move(move)
	}

	dx, dy := core.InputMouseDelta()
	if dx != 0 || dy != 0 {
		camera.Rotate(float32(dx)*mouseSensit, -float32(dy)*mouseSensit)
	}

	return nil
}

func (s *gameState) onResize(width, height uint32) error {
	core.LogDebug("Game notified of resize to %dx%d.", width, height)
	return nil
}
