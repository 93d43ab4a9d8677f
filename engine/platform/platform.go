package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/tessera/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window
}

func New() *Platform {
	return &Platform{
		Window: nil,
	}
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogFatal("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogFatal("failed to create window: %s", err)
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(keyCallback)
	p.Window.SetCursorPosCallback(cursorPosCallback)
	p.Window.SetFramebufferSizeCallback(framebufferSizeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. Returns false once the
// window has been asked to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

// DrawableSize returns the framebuffer size in pixels, which may differ from
// the window size on high-DPI displays.
// WaitMessages blocks until at least one window event arrives.
func (p *Platform) WaitMessages() {
	glfw.WaitEvents()
}

func (p *Platform) DrawableSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// WaitWhileMinimized blocks until the framebuffer has a non-zero area.
// Swapchain creation with a zero extent is invalid, so a minimized window
// simply parks the render loop here.
func (p *Platform) WaitWhileMinimized() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	for w == 0 || h == 0 {
		glfw.WaitEvents()
		w, h = p.Window.GetFramebufferSize()
	}
	return uint32(w), uint32(h)
}

func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

func GetAbsoluteTime() float64 {
	return glfw.GetTime()
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	switch action {
	case glfw.Press:
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_KEY_PRESSED,
			Data: &core.KeyEvent{KeyCode: int(key)},
		})
	case glfw.Release:
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_KEY_RELEASED,
			Data: &core.KeyEvent{KeyCode: int(key)},
		})
	}
}

func cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_MOUSE_MOVED,
		Data: [2]float64{xpos, ypos},
	})
}

func framebufferSizeCallback(w *glfw.Window, width, height int) {
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.ResizeEvent{Width: uint32(width), Height: uint32(height)},
	})
}
