package gpu

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
)

// TextureKind tells color textures from depth textures.
type TextureKind int

const (
	ColorTexture TextureKind = iota
	DepthTexture
)

func (k TextureKind) String() string {
	if k == DepthTexture {
		return "depth"
	}
	return "color"
}

// Texture owns one or more 2D texture objects of the same kind, addressed by
// slot. Depth textures share one resolution; color textures keep their own.
type Texture struct {
	dev   Device
	kind  TextureKind
	ids   []uint32
	sizes [][2]int32
}

// depthParams keeps lookups outside the light frustum lit: the border depth
// of 1 never occludes.
var depthParams = TextureParams{
	MinFilter: Nearest,
	MagFilter: Nearest,
	Wrap:      ClampToBorder,
	Border:    [4]float32{1, 1, 1, 1},
}

var colorParams = TextureParams{
	MinFilter: LinearMipmapLinear,
	MagFilter: Linear,
	Wrap:      Repeat,
}

// NewDepthTexture allocates count depth-only textures of width×height with
// 32-bit float storage.
func NewDepthTexture(dev Device, count, width, height int) (*Texture, error) {
	if count <= 0 {
		return nil, fmt.Errorf("depth texture count %d: %w", count, ErrSlotOutOfRange)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("depth texture size %dx%d is invalid", width, height)
	}

	t := &Texture{dev: dev, kind: DepthTexture, ids: dev.GenTextures(count)}
	for _, id := range t.ids {
		dev.BindTexture(id)
		dev.TexImage2D(FormatDepth32F, int32(width), int32(height), nil)
		dev.TexParameters(depthParams)
		t.sizes = append(t.sizes, [2]int32{int32(width), int32(height)})
	}
	dev.BindTexture(0)
	return t, nil
}

// NewColorTexture uploads each image into its own slot as RGBA8 with
// mipmaps. Rows are flipped so that v=0 is the bottom of the image.
func NewColorTexture(dev Device, imgs ...image.Image) (*Texture, error) {
	if len(imgs) == 0 {
		return nil, fmt.Errorf("color texture: %w", ErrEmptyBuffer)
	}

	t := &Texture{dev: dev, kind: ColorTexture, ids: dev.GenTextures(len(imgs))}
	for i, img := range imgs {
		rgba := flippedRGBA(img)
		w, h := int32(rgba.Rect.Dx()), int32(rgba.Rect.Dy())
		dev.BindTexture(t.ids[i])
		dev.TexParameters(colorParams)
		dev.TexImage2D(FormatRGBA8, w, h, rgba.Pix)
		dev.GenerateMipmap()
		t.sizes = append(t.sizes, [2]int32{w, h})
	}
	dev.BindTexture(0)
	return t, nil
}

// LoadColorTexture decodes PNG or JPEG files and uploads them in order.
func LoadColorTexture(dev Device, paths ...string) (*Texture, error) {
	imgs := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		img, err := decodeImage(p)
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}
	return NewColorTexture(dev, imgs...)
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return img, nil
}

func flippedRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	stride := dst.Stride
	row := make([]byte, stride)
	for top, bottom := 0, b.Dy()-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := dst.Pix[top*stride : (top+1)*stride]
		z := dst.Pix[bottom*stride : (bottom+1)*stride]
		copy(row, a)
		copy(a, z)
		copy(z, row)
	}
	return dst
}

// Bind attaches slot to texture unit. It panics on an out-of-range slot.
func (t *Texture) Bind(slot int, unit uint32) {
	t.dev.ActiveTexture(unit)
	t.dev.BindTexture(t.ids[slot])
}

// Unbind clears unit.
func (t *Texture) Unbind(unit uint32) {
	t.dev.ActiveTexture(unit)
	t.dev.BindTexture(0)
}

func (t *Texture) ID(slot int) uint32 { return t.ids[slot] }
func (t *Texture) Len() int            { return len(t.ids) }
func (t *Texture) Kind() TextureKind   { return t.kind }

// Size returns the width and height of slot.
func (t *Texture) Size(slot int) (int32, int32) {
	s := t.sizes[slot]
	return s[0], s[1]
}

func (t *Texture) Destroy() {
	if t.ids == nil {
		return
	}
	t.dev.DeleteTextures(t.ids)
	t.ids = nil
	t.sizes = nil
}
