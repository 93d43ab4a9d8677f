package core

import "sync"

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed.
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released.
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Mouse moved.
	EVENT_CODE_MOUSE_MOVED SystemEventCode = 0x04

	// Resized/resolution changed from the OS.
	EVENT_CODE_RESIZED SystemEventCode = 0x05

	// A watched asset file changed on disk.
	EVENT_CODE_ASSET_CHANGED SystemEventCode = 0x06

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// EventContext carries the payload of a fired event. Data is typed by the
// event code: *KeyEvent for key codes, *ResizeEvent for EVENT_CODE_RESIZED,
// string (path) for EVENT_CODE_ASSET_CHANGED.
type EventContext struct {
	Type SystemEventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode int
}

type ResizeEvent struct {
	Width  uint32
	Height uint32
}

// Should return true if handled, which stops propagation.
type FnOnEvent func(context EventContext) bool

type eventSystemState struct {
	mu         sync.RWMutex
	registered map[SystemEventCode][]FnOnEvent
}

var onceEvent sync.Once
var eventState *eventSystemState

func EventSystemInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			registered: make(map[SystemEventCode][]FnOnEvent),
		}
	})
	return true
}

func EventSystemShutdown() error {
	if eventState == nil {
		return nil
	}
	eventState.mu.Lock()
	eventState.registered = make(map[SystemEventCode][]FnOnEvent)
	eventState.mu.Unlock()
	return nil
}

// Register to listen for when events are sent with the provided code.
func EventRegister(code SystemEventCode, onEvent FnOnEvent) bool {
	if eventState == nil || onEvent == nil {
		return false
	}
	eventState.mu.Lock()
	eventState.registered[code] = append(eventState.registered[code], onEvent)
	eventState.mu.Unlock()
	return true
}

// Fires an event to listeners of the given code. If a handler returns true,
// the event is considered handled and is not passed on to any more listeners.
func EventFire(context EventContext) bool {
	if eventState == nil {
		return false
	}
	eventState.mu.RLock()
	listeners := eventState.registered[context.Type]
	eventState.mu.RUnlock()

	for _, cb := range listeners {
		if cb(context) {
			return true
		}
	}
	return false
}
