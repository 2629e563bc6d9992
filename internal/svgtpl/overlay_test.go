package svgtpl

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFill(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.NRGBA{A: 255}

	assert.Equal(t, white, parseFill("#ffffff"))
	assert.Equal(t, white, parseFill("#FFF"))
	assert.Equal(t, white, parseFill("white"))
	assert.Equal(t, color.NRGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 255}, parseFill("#1a1a2e"))
	assert.Equal(t, black, parseFill(""))
	assert.Equal(t, black, parseFill("black"))
	assert.Equal(t, black, parseFill("url(#gradient)"))
	assert.Equal(t, black, parseFill("#zzz"))
}
