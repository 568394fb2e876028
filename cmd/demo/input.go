package main

import (
	"shadow-demo/core"
	"shadow-demo/scene"
)

// keyBindings maps camera actions to keys. WASD moves, the arrows turn.
var keyBindings = map[scene.CameraAction]int{
	scene.MoveForward:  core.KeyW,
	scene.MoveBackward: core.KeyS,
	scene.MoveLeft:     core.KeyA,
	scene.MoveRight:    core.KeyD,
	scene.TurnLeft:     core.KeyLeft,
	scene.TurnRight:    core.KeyRight,
	scene.TurnUp:       core.KeyUp,
	scene.TurnDown:     core.KeyDown,
}

type keyPoller interface {
	IsKeyPressed(key int) bool
}

// keyboard reports the camera actions whose key is held.
type keyboard struct {
	window keyPoller
}

func (k keyboard) Active(a scene.CameraAction) bool {
	key, ok := keyBindings[a]
	return ok && k.window.IsKeyPressed(key)
}
