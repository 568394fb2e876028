package gpu

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrEmptyBuffer           = errors.New("empty buffer data")
	ErrSlotOutOfRange        = errors.New("slot out of range")
	ErrBadLayout             = errors.New("invalid vertex layout")
	ErrShaderCompile         = errors.New("shader compile failed")
	ErrShaderLink            = errors.New("shader link failed")
	ErrShaderSource          = errors.New("malformed shader source")
	ErrFramebufferIncomplete = errors.New("framebuffer incomplete")
	ErrTextureKind           = errors.New("wrong texture kind")
)

// maxDrainedErrors bounds CheckError when no context is current, where some
// drivers report the same error forever.
const maxDrainedErrors = 32

// CheckError drains the device error queue. The first pending error is logged
// together with op; it returns true when the queue was empty.
func CheckError(dev Device, op string) bool {
	first := dev.GetError()
	if first == 0 {
		return true
	}
	extra := 0
	for extra < maxDrainedErrors && dev.GetError() != 0 {
		extra++
	}
	slog.Error("gpu error", "op", op, "code", fmt.Sprintf("0x%04X", first), "more", extra)
	return false
}
