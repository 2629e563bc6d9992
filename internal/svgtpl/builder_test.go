package svgtpl

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeRaster records what it was asked to draw and returns a blank buffer.
type fakeRaster struct {
	svg     []byte
	width   int
	height  int
	overlay Overlay
}

func (f *fakeRaster) Rasterize(_ context.Context, svg []byte, width, height int, ov Overlay) (image.Image, error) {
	f.svg = svg
	f.width = width
	f.height = height
	f.overlay = ov
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

// fakeComposer encodes the card dimensions instead of pixels.
type fakeComposer struct{}

func (fakeComposer) Compose(card image.Image) ([]byte, error) {
	return []byte(fmt.Sprintf("png %dx%d", card.Bounds().Dx(), card.Bounds().Dy())), nil
}

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.svg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestBuilder(raster *fakeRaster) *Builder {
	return NewBuilder(testLogger(), nil, raster, fakeComposer{})
}

func TestBuildCardEmptyBodyNoImageKeepsFloor(t *testing.T) {
	path := writeTemplate(t, directImageTpl)
	raster := &fakeRaster{}

	out, layout, err := newTestBuilder(raster).BuildCardLayout(context.Background(), CardRequest{
		TemplatePath: path,
		Body:         "",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out)

	// Authored 400×800 is the floor; empty content cannot shrink it.
	assert.Equal(t, 800.0, layout.FinalHeight)
	assert.Equal(t, 400.0, layout.FinalWidth)
	assert.Equal(t, 800, raster.height)

	// Source sits at its computed offset below the (empty) text block.
	assert.Greater(t, layout.SourceY, layout.TextBottom)
	assert.Contains(t, string(raster.svg), "source: web")
}

func TestBuildCardMissingImageSlotCompletes(t *testing.T) {
	noImage := `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="800">
		<text id="input_text" x="24" y="90" font-size="22"/>
		<text id="source" x="24" y="700"/>
	</svg>`
	path := writeTemplate(t, noImage)

	core, logs := observer.New(zapcore.WarnLevel)
	builder := NewBuilder(zap.New(core).Sugar(), nil, &fakeRaster{}, fakeComposer{})

	out, layout, err := builder.BuildCardLayout(context.Background(), CardRequest{
		TemplatePath: path,
		Body:         "short body",
		Image:        pngBytes(t, 100, 100),
	})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	// The default image block height holds the layout open, and the slot
	// degradation left a warning behind.
	assert.InDelta(t, DefaultImageHeight, layout.ImageBottom-layout.ImageY, 1e-9)
	assert.NotZero(t, logs.FilterMessageSnippet("image slot missing").Len())
}

func TestBuildCardMalformedTemplate(t *testing.T) {
	path := writeTemplate(t, `<svg><oops`)
	raster := &fakeRaster{}

	_, err := newTestBuilder(raster).BuildCard(context.Background(), CardRequest{TemplatePath: path})
	assert.ErrorIs(t, err, ErrMalformedTemplate)
	assert.Nil(t, raster.svg, "no partial output may reach the rasterizer")
}

func TestBuildCardTemplateNotFound(t *testing.T) {
	_, err := newTestBuilder(&fakeRaster{}).BuildCard(context.Background(), CardRequest{
		TemplatePath: filepath.Join(t.TempDir(), "absent.svg"),
	})
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestBuildCardDeterministic(t *testing.T) {
	path := writeTemplate(t, patternImageTpl)
	req := CardRequest{
		TemplatePath: path,
		Body:         "Determinism means running the same injection twice yields identical geometry every time.",
		Image:        pngBytes(t, 1200, 600),
		Source:       "source: example.com",
	}

	r1, r2 := &fakeRaster{}, &fakeRaster{}
	_, layout1, err := newTestBuilder(r1).BuildCardLayout(context.Background(), req)
	require.NoError(t, err)
	_, layout2, err := newTestBuilder(r2).BuildCardLayout(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, layout1, layout2)
	assert.Equal(t, r1.svg, r2.svg, "mutated documents must be byte-identical")
}

func TestBuildCardCancelledContext(t *testing.T) {
	path := writeTemplate(t, directImageTpl)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	raster := &fakeRaster{}
	_, err := newTestBuilder(raster).BuildCard(ctx, CardRequest{TemplatePath: path, Body: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, raster.svg)
}

// The rasterizer cannot draw <image> payloads or <text> glyphs from the SVG
// alone, so the builder must hand it the decoded image at its layout position
// plus every text line and the attribution.
func TestBuildCardOverlayCarriesImageAndText(t *testing.T) {
	path := writeTemplate(t, directImageTpl)
	raster := &fakeRaster{}

	body := "A body long enough to wrap onto more than one line on this card."
	_, layout, err := newTestBuilder(raster).BuildCardLayout(context.Background(), CardRequest{
		TemplatePath: path,
		Body:         body,
		Image:        pngBytes(t, 100, 100),
		Source:       "source: example.com",
	})
	require.NoError(t, err)

	ov := raster.overlay
	require.NotNil(t, ov.Image, "decoded image must reach the raster stage")
	// Slot is 300 wide at x=50; a square image keeps a square fit.
	assert.Equal(t, image.Rect(50, int(layout.ImageY), 350, int(layout.ImageY+300)), ov.ImageRect)

	require.NotEmpty(t, ov.Texts)
	first := ov.Texts[0]
	assert.Equal(t, 24.0, first.X)
	assert.Equal(t, 90.0, first.Y)
	require.NotNil(t, first.Face)

	last := ov.Texts[len(ov.Texts)-1]
	assert.Equal(t, "source: example.com", last.Value)
	assert.Equal(t, layout.SourceY, last.Y)

	var joined strings.Builder
	for _, span := range ov.Texts[:len(ov.Texts)-1] {
		joined.WriteString(span.Value)
		joined.WriteString(" ")
	}
	assert.Equal(t, strings.Fields(body), strings.Fields(joined.String()))
}

func TestBuildCardTextOnlyOverlayHasNoImage(t *testing.T) {
	path := writeTemplate(t, directImageTpl)
	raster := &fakeRaster{}

	_, err := newTestBuilder(raster).BuildCard(context.Background(), CardRequest{
		TemplatePath: path,
		Body:         "no image on this card",
	})
	require.NoError(t, err)
	assert.Nil(t, raster.overlay.Image)
	assert.NotEmpty(t, raster.overlay.Texts)
}

func TestBuildCardGrowsWithLongBody(t *testing.T) {
	path := writeTemplate(t, directImageTpl)
	long := ""
	for i := 0; i < 80; i++ {
		long += "every extra word pushes the card taller "
	}

	_, layout, err := newTestBuilder(&fakeRaster{}).BuildCardLayout(context.Background(), CardRequest{
		TemplatePath: path,
		Body:         long,
	})
	require.NoError(t, err)
	assert.Greater(t, layout.FinalHeight, 800.0)
	assert.InDelta(t, layout.SourceY+SourceHeight+BottomPadding, layout.FinalHeight, 1e-9)
}
