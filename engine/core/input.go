package core

import "sync"

// Key code definitions, Win32 virtual key values.
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_PRIOR     KeyCode = 0x21 // page up
	KEY_NEXT      KeyCode = 0x22 // page down
	KEY_END       KeyCode = 0x23
	KEY_HOME      KeyCode = 0x24
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_A         KeyCode = 0x41
	KEY_D         KeyCode = 0x44
	KEY_P         KeyCode = 0x50
	KEY_S         KeyCode = 0x53
	KEY_W         KeyCode = 0x57
	KEY_UNKNOWN   KeyCode = 0xFF
	KEYS_MAX_KEYS KeyCode = 0x100
)

type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// Input state holding the current and previous keyboard snapshot.
type InputState struct {
	mu               sync.RWMutex
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
}

var onceInput sync.Once
var inputState *InputState

func InputInitialize() error {
	onceInput.Do(func() {
		inputState = &InputState{}
	})
	LogInfo("Input subsystem initialized.")
	return nil
}

func InputShutdown() error {
	if inputState == nil {
		return nil
	}
	inputState.mu.Lock()
	defer inputState.mu.Unlock()
	inputState.KeyboardCurrent = KeyboardState{}
	inputState.KeyboardPrevious = KeyboardState{}
	return nil
}

// InputUpdate copies the current state into the previous one. Call it once
// at the end of every frame.
func InputUpdate(deltaTime float64) error {
	if inputState == nil {
		return nil
	}
	inputState.mu.Lock()
	defer inputState.mu.Unlock()
	inputState.KeyboardPrevious = inputState.KeyboardCurrent
	return nil
}

func InputIsKeyDown(key KeyCode) bool {
	if inputState == nil || key >= KEYS_MAX_KEYS {
		return false
	}
	inputState.mu.RLock()
	defer inputState.mu.RUnlock()
	return inputState.KeyboardCurrent.Keys[key]
}

func InputIsKeyUp(key KeyCode) bool {
	return !InputIsKeyDown(key)
}

func InputWasKeyDown(key KeyCode) bool {
	if inputState == nil || key >= KEYS_MAX_KEYS {
		return false
	}
	inputState.mu.RLock()
	defer inputState.mu.RUnlock()
	return inputState.KeyboardPrevious.Keys[key]
}

// InputProcessKey records a key transition and fires the matching event.
func InputProcessKey(key KeyCode, pressed bool) error {
	if inputState == nil || key >= KEYS_MAX_KEYS {
		return nil
	}

	inputState.mu.Lock()
	changed := inputState.KeyboardCurrent.Keys[key] != pressed
	inputState.KeyboardCurrent.Keys[key] = pressed
	inputState.mu.Unlock()

	// key repeats still fire so held keys keep steering the camera
	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	} else if !changed {
		return nil
	}

	EventFire(EventContext{
		Type: code,
		Data: &KeyEvent{
			KeyCode: key,
			Pressed: pressed,
		},
	})
	return nil
}
