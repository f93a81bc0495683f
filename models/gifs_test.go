package models

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGif(frames int) *gif.GIF {
	g := &gif.GIF{}
	for i := 0; i < frames; i++ {
		img := image.NewPaletted(image.Rect(0, 0, 8, 8), palette.Plan9)
		img.Set(i%8, i%8, color.White)
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, i*10)
	}
	return g
}

type gifDoer struct {
	status int
	body   []byte
}

func (d gifDoer) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{StatusCode: d.status, Body: io.NopCloser(bytes.NewReader(d.body))}, nil
}

func TestAnsiGifGetAndRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, testGif(3)))

	var g AnsiGif
	require.NoError(t, g.Get(context.Background(), gifDoer{status: http.StatusOK, body: buf.Bytes()}, "https://media.giphy.com/a.gif"))
	require.Len(t, g.Gif.Image, 3)

	require.NoError(t, g.Render())
	require.Len(t, g.Rendered, 3)
	for i, frame := range g.Rendered {
		assert.Equal(t, i*10, frame.Delay)
		assert.NotEmpty(t, frame.Output)
	}
}

func TestAnsiGifGetErrors(t *testing.T) {
	var g AnsiGif
	err := g.Get(context.Background(), gifDoer{status: http.StatusNotFound}, "https://media.giphy.com/a.gif")
	assert.ErrorContains(t, err, "404")

	err = g.Get(context.Background(), gifDoer{status: http.StatusOK, body: []byte("not a gif")}, "https://media.giphy.com/a.gif")
	assert.ErrorContains(t, err, "could not decode gif")
}

func TestAnsiGifRenderEmpty(t *testing.T) {
	var g AnsiGif
	assert.Error(t, g.Render())
}

func TestReverseFrames(t *testing.T) {
	frames := []RenderedImg{{Output: "a"}, {Output: "b"}, {Output: "c"}}
	ReverseFrames(frames)

	var out []string
	for _, f := range frames {
		out = append(out, f.Output)
	}
	assert.Equal(t, "c,b,a", strings.Join(out, ","))

	g := AnsiGif{Rendered: []RenderedImg{{Output: "a"}, {Output: "b"}}}
	g.Reverse()
	assert.Equal(t, "b", g.Rendered[0].Output)
}

func TestMaxDimensions(t *testing.T) {
	g := AnsiGif{Gif: &gif.GIF{Image: []*image.Paletted{
		image.NewPaletted(image.Rect(0, 0, 10, 4), palette.Plan9),
		image.NewPaletted(image.Rect(2, 2, 6, 9), palette.Plan9),
	}}}

	x, y := g.maxDimensions()
	assert.Equal(t, 10, x)
	assert.Equal(t, 9, y)
}
