package renderer

// DrawOrder enforces opaque-before-translucent within one shading pass.
// Blending reads whatever is already in the color buffer, so every opaque
// surface must be there before the first translucent one.
type DrawOrder struct {
	translucentSeen bool
}

// Admit records a draw and reports ErrDrawOrder for an opaque draw that
// follows a translucent one.
func (o *DrawOrder) Admit(translucent bool) error {
	if translucent {
		o.translucentSeen = true
		return nil
	}
	if o.translucentSeen {
		return ErrDrawOrder
	}
	return nil
}

// Reset starts a new pass.
func (o *DrawOrder) Reset() { o.translucentSeen = false }
