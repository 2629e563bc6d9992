package svgtpl

import "errors"

// Errors that abort a render. Everything else degrades the card instead of
// failing it: a less polished card beats a failed video.
var (
	ErrTemplateNotFound  = errors.New("template not found")
	ErrMalformedTemplate = errors.New("malformed template")
)

// errPatternUnresolved marks a fill reference that cannot be walked to an
// image resource. It never escapes InjectImage: the injector converts the
// container to a direct image instead.
var errPatternUnresolved = errors.New("pattern reference unresolved")
