package models

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/eliukblau/pixterm/pkg/ansimage"
	"github.com/pkg/errors"
)

// a rendered image extracted from a gif with its timing
type RenderedImg struct {
	Output string
	Delay  int
}

type AnsiGif struct {
	Gif      *gif.GIF
	Rendered []RenderedImg
}

// Get downloads and decodes the gif at url.
func (g *AnsiGif) Get(ctx context.Context, doer Doer, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	res, err := doer.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %d while downloading %s", res.StatusCode, url)
	}
	g.Gif, err = gif.DecodeAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "could not decode gif")
	}
	return nil
}

// Render draws every frame over the previous ones, as a gif player would,
// and converts the result to ansi.
func (g *AnsiGif) Render() (err error) {
	// https://stackoverflow.com/a/33296596/8135079
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while rendering gif", slog.Any("panic", r))
			err = fmt.Errorf("render: %v", r)
		}
	}()
	if g.Gif == nil || len(g.Gif.Image) == 0 {
		return errors.New("no frame to render")
	}

	imgWidth, imgHeight := g.maxDimensions()

	overpaintImage := image.NewRGBA(image.Rect(0, 0, imgWidth, imgHeight))
	draw.Draw(overpaintImage, overpaintImage.Bounds(), g.Gif.Image[0], image.Point{}, draw.Src)

	// set image scale factor for ANSIPixel grid, background color and scale mode
	tx, ty := 30, 9
	sfy, sfx := ansimage.BlockSizeY, ansimage.BlockSizeX
	mc := color.RGBA{0x00, 0x00, 0x00, 0xff}
	dm := ansimage.DitheringMode(0)
	sm := ansimage.ScaleMode(2)

	g.Rendered = make([]RenderedImg, 0, len(g.Gif.Image))
	for i, srcImg := range g.Gif.Image {
		draw.Draw(overpaintImage, overpaintImage.Bounds(), srcImg, image.Point{}, draw.Over)
		pix, err := ansimage.NewScaledFromImage(overpaintImage, sfy*ty, sfx*tx, mc, sm, dm)
		if err != nil {
			return errors.Wrapf(err, "could not render frame %d", i)
		}
		pix.SetMaxProcs(runtime.NumCPU())
		g.Rendered = append(g.Rendered, RenderedImg{Delay: g.delay(i), Output: pix.Render()})
	}
	return nil
}

func (g *AnsiGif) delay(i int) int {
	if i < len(g.Gif.Delay) {
		return g.Gif.Delay[i]
	}
	return 0
}

// Get max AnsiGif dimensions.
func (g *AnsiGif) maxDimensions() (x, y int) {
	var lowestX int
	var lowestY int
	var highestX int
	var highestY int

	for _, img := range g.Gif.Image {
		if img.Rect.Min.X < lowestX {
			lowestX = img.Rect.Min.X
		}
		if img.Rect.Min.Y < lowestY {
			lowestY = img.Rect.Min.Y
		}
		if img.Rect.Max.X > highestX {
			highestX = img.Rect.Max.X
		}
		if img.Rect.Max.Y > highestY {
			highestY = img.Rect.Max.Y
		}
	}

	return highestX - lowestX, highestY - lowestY
}

func (g *AnsiGif) Reverse() {
	ReverseFrames(g.Rendered)
}

func ReverseFrames(frames []RenderedImg) {
	for i := len(frames)/2 - 1; i >= 0; i-- {
		opp := len(frames) - 1 - i
		frames[i], frames[opp] = frames[opp], frames[i]
	}
}
