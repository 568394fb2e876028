package gpu

import "fmt"

// Framebuffer is a depth-only render target with no color attachment.
type Framebuffer struct {
	dev    Device
	id     uint32
	width  int32
	height int32
}

// NewDepthFramebuffer attaches slot of the depth texture tex and checks that
// the result is complete. An incomplete framebuffer is released before the
// error is returned.
func NewDepthFramebuffer(dev Device, tex *Texture, slot int) (*Framebuffer, error) {
	if tex.Kind() != DepthTexture {
		return nil, fmt.Errorf("framebuffer needs a depth texture, got %s: %w", tex.Kind(), ErrTextureKind)
	}
	if slot < 0 || slot >= tex.Len() {
		return nil, fmt.Errorf("framebuffer depth slot %d of %d: %w", slot, tex.Len(), ErrSlotOutOfRange)
	}

	w, h := tex.Size(slot)
	fb := &Framebuffer{dev: dev, id: dev.GenFramebuffer(), width: w, height: h}
	dev.BindFramebuffer(fb.id)
	dev.FramebufferDepthTexture(tex.ID(slot))
	dev.DisableColorBuffers()
	status, complete := dev.CheckFramebufferStatus()
	dev.BindFramebuffer(0)

	if !complete {
		dev.DeleteFramebuffer(fb.id)
		return nil, fmt.Errorf("depth framebuffer status=0x%X: %w", status, ErrFramebufferIncomplete)
	}
	return fb, nil
}

func (fb *Framebuffer) Bind()   { fb.dev.BindFramebuffer(fb.id) }
func (fb *Framebuffer) Unbind() { fb.dev.BindFramebuffer(0) }

func (fb *Framebuffer) ID() uint32 { return fb.id }

// Size is the resolution of the attached depth image.
func (fb *Framebuffer) Size() (int32, int32) { return fb.width, fb.height }

func (fb *Framebuffer) Destroy() {
	if fb.id == 0 {
		return
	}
	fb.dev.DeleteFramebuffer(fb.id)
	fb.id = 0
}
