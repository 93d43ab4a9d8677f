package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/tessera/engine/assets"
	"github.com/spaghettifunk/tessera/engine/config"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/jobs"
	"github.com/spaghettifunk/tessera/engine/platform"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/world"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	cfg          *config.Config
	isRunning    bool
	isSuspended  bool

	platform     *platform.Platform
	assetManager *assets.Manager
	jobSystem    *jobs.System
	storage      *world.Storage
	renderer     *renderer.Renderer

	clock    *core.Clock
	lastTime float64
}

func New(cfg *config.Config, g *Game) (*Engine, error) {
	core.SetLogLevel(cfg.LogLevel)

	p := platform.New()

	am, err := assets.NewManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	js, err := jobs.NewSystem(cfg.Assets.ImportWorkers, cfg.Renderer.ImportQueueSize)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	storage := world.NewStorage()

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		cfg:          cfg,
		clock:        core.NewClock(),
		platform:     p,
		assetManager: am,
		jobSystem:    js,
		storage:      storage,
		renderer:     renderer.New(p, storage, js, cfg),
		isRunning:    true,
		isSuspended:  false,
		lastTime:     0,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if err := core.InputInitialize(); err != nil {
		return err
	}
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)
	core.EventRegister(core.EVENT_CODE_ASSET_CHANGED, e.onAssetChanged)

	if err := e.platform.Startup(e.cfg.Application.Name,
		e.cfg.Application.PosX,
		e.cfg.Application.PosY,
		e.cfg.Application.Width,
		e.cfg.Application.Height); err != nil {
		return err
	}

	if err := e.assetManager.Initialize(e.cfg.Assets.Dir, e.cfg.Assets.WatchChanges); err != nil {
		return err
	}

	if err := e.renderer.Initialize(); err != nil {
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// updateGame runs the game's update callback. A failing update stops the
// loop so shutdown still tears the renderer down, instead of aborting the
// process with GPU work in flight.
func (e *Engine) updateGame(delta float64) bool {
	if e.gameInstance.FnUpdate == nil {
		return true
	}
	if err := e.gameInstance.FnUpdate(e, delta); err != nil {
		core.LogError("Game update failed, stopping: %s", err.Error())
		return false
	}
	return true
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
		}

		if e.isSuspended {
			// Block until an event arrives rather than spinning.
			e.platform.WaitMessages()
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if !e.updateGame(delta) {
			e.isRunning = false
			break
		}

		if err := e.renderer.DrawFrame(); err != nil {
			core.LogError("Frame failed: %s", err.Error())
			e.isRunning = false
			break
		}

		core.MetricsUpdate(delta)
		e.lastTime = currentTime
	}

	return e.Shutdown()
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	// Stop producing work before tearing down the GPU.
	if err := e.jobSystem.Shutdown(); err != nil {
		core.LogWarn(err.Error())
	}
	if err := e.assetManager.Shutdown(); err != nil {
		core.LogWarn(err.Error())
	}

	e.renderer.Shutdown()

	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	return e.platform.Shutdown()
}

// Storage exposes the world registry for game code.
func (e *Engine) Storage() *world.Storage {
	return e.storage
}

// Assets exposes the asset manager for path resolution.
func (e *Engine) Assets() *assets.Manager {
	return e.assetManager
}

// ImportMesh queues an asynchronous mesh import. The mesh appears in the
// world once decoding finishes and the next frame rebuilds the scene.
func (e *Engine) ImportMesh(path string) {
	e.renderer.ImportMesh(e.assetManager.ResolvePath(path))
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_APPLICATION_QUIT,
		})
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	re, ok := context.Data.(*core.ResizeEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	// A zero area framebuffer means the window is minimized.
	if re.Width == 0 || re.Height == 0 {
		core.LogInfo("Window minimized, suspending.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming.")
		e.isSuspended = false
	}

	e.renderer.Resized(re.Width, re.Height)
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(re.Width, re.Height); err != nil {
			core.LogError(err.Error())
		}
	}
	return false
}

// onAssetChanged re-imports meshes edited on disk while the engine runs.
func (e *Engine) onAssetChanged(context core.EventContext) bool {
	path, ok := context.Data.(string)
	if !ok {
		return false
	}
	if strings.ToLower(filepath.Ext(path)) != ".obj" {
		return false
	}
	core.LogInfo("Mesh %q changed on disk, re-importing.", path)
	e.renderer.ImportMesh(path)
	return true
}
