package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shadow-demo/core"
	"shadow-demo/scene"
)

type heldKeys map[int]bool

func (h heldKeys) IsKeyPressed(key int) bool { return h[key] }

func TestKeyboardActions(t *testing.T) {
	kb := keyboard{window: heldKeys{core.KeyW: true, core.KeyLeft: true}}

	assert.True(t, kb.Active(scene.MoveForward))
	assert.True(t, kb.Active(scene.TurnLeft))
	assert.False(t, kb.Active(scene.MoveBackward))
	assert.False(t, kb.Active(scene.TurnUp))
}

func TestEveryActionIsBound(t *testing.T) {
	for _, a := range []scene.CameraAction{
		scene.MoveForward, scene.MoveBackward, scene.MoveLeft, scene.MoveRight,
		scene.TurnLeft, scene.TurnRight, scene.TurnUp, scene.TurnDown,
	} {
		_, ok := keyBindings[a]
		assert.True(t, ok, "action %d has no key", a)
	}
}

func TestFPSTitle(t *testing.T) {
	assert.Equal(t, "Shadow Demo - FPS: 60", fpsTitle("Shadow Demo", 59.7))
}
