package core

import "sync"

// Key codes mirror GLFW's values for the keys the engine reacts to.
const (
	KEY_ESCAPE = 256
	KEY_W      = 87
	KEY_A      = 65
	KEY_S      = 83
	KEY_D      = 68
	KEY_SPACE  = 32
	KEY_LSHIFT = 340
)

type inputState struct {
	mu      sync.RWMutex
	keys    map[int]bool
	mouseX  float64
	mouseY  float64
	mouseDX float64
	mouseDY float64
}

var onceInput sync.Once
var input *inputState

func InputInitialize() error {
	onceInput.Do(func() {
		input = &inputState{
			keys: make(map[int]bool),
		}
		EventRegister(EVENT_CODE_KEY_PRESSED, onInputKey)
		EventRegister(EVENT_CODE_KEY_RELEASED, onInputKey)
		EventRegister(EVENT_CODE_MOUSE_MOVED, onInputMouse)
	})
	return nil
}

func InputShutdown() error {
	return nil
}

func onInputKey(context EventContext) bool {
	ke, ok := context.Data.(*KeyEvent)
	if !ok {
		return false
	}
	input.mu.Lock()
	input.keys[ke.KeyCode] = context.Type == EVENT_CODE_KEY_PRESSED
	input.mu.Unlock()
	return false
}

func onInputMouse(context EventContext) bool {
	pos, ok := context.Data.([2]float64)
	if !ok {
		return false
	}
	input.mu.Lock()
	if input.mouseX != 0 || input.mouseY != 0 {
		input.mouseDX = pos[0] - input.mouseX
		input.mouseDY = pos[1] - input.mouseY
	}
	input.mouseX = pos[0]
	input.mouseY = pos[1]
	input.mu.Unlock()
	return false
}

func InputIsKeyDown(key int) bool {
	if input == nil {
		return false
	}
	input.mu.RLock()
	defer input.mu.RUnlock()
	return input.keys[key]
}

// InputMouseDelta returns the cursor movement since the last call and resets it.
func InputMouseDelta() (float64, float64) {
	if input == nil {
		return 0, 0
	}
	input.mu.Lock()
	defer input.mu.Unlock()
	dx, dy := input.mouseDX, input.mouseDY
	input.mouseDX, input.mouseDY = 0, 0
	return dx, dy
}
