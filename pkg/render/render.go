package render

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tigerbot-team/linefollower/pkg/sim"
	"github.com/tigerbot-team/linefollower/pkg/track"
)

type Options struct {
	Width, Height int
	// Margin around the drawing, in pixels.
	Margin float64
}

func DefaultOptions() Options {
	return Options{Width: 800, Height: 800, Margin: 20}
}

// Trajectory draws the track in grey and the car's path in red, scaled to
// fit.  The y axis points up.
func Trajectory(tr *track.Track, trace []sim.Step, opts Options) (image.Image, error) {
	dc, err := draw(tr, trace, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func SavePNG(path string, tr *track.Track, trace []sim.Step, opts Options) error {
	dc, err := draw(tr, trace, opts)
	if err != nil {
		return err
	}
	return errors.Wrapf(dc.SavePNG(path), "failed to write %s", path)
}

func draw(tr *track.Track, trace []sim.Step, opts Options) (*gg.Context, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errors.Errorf("bad image size %dx%d", opts.Width, opts.Height)
	}
	if 2*opts.Margin >= math.Min(float64(opts.Width), float64(opts.Height)) {
		return nil, errors.Errorf("margin %v too large for %dx%d image", opts.Margin, opts.Width, opts.Height)
	}

	bottomLeft, topRight := tr.Bounds()
	for _, s := range trace {
		bottomLeft.X = math.Min(bottomLeft.X, s.Position.X)
		bottomLeft.Y = math.Min(bottomLeft.Y, s.Position.Y)
		topRight.X = math.Max(topRight.X, s.Position.X)
		topRight.Y = math.Max(topRight.Y, s.Position.Y)
	}
	span := r2.Sub(topRight, bottomLeft)
	scale := math.Min(
		(float64(opts.Width)-2*opts.Margin)/math.Max(span.X, 1e-9),
		(float64(opts.Height)-2*opts.Margin)/math.Max(span.Y, 1e-9),
	)
	toImage := func(p r2.Vec) (float64, float64) {
		return opts.Margin + (p.X-bottomLeft.X)*scale,
			float64(opts.Height) - opts.Margin - (p.Y-bottomLeft.Y)*scale
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0.5, 0.5, 0.5)
	for i := 0; i < tr.Len(); i++ {
		x, y := toImage(tr.Point(i))
		dc.DrawCircle(x, y, 1.5)
	}
	dc.Fill()

	if len(trace) > 0 {
		dc.SetRGB(0.9, 0.1, 0)
		dc.SetLineWidth(2)
		for i, s := range trace {
			x, y := toImage(s.Position)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}
	return dc, nil
}
