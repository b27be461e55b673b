package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/limaJavier/floorplanning/pkg/model"
)

// RenderPNG rasterizes the solution onto w.
func RenderPNG(w io.Writer, solution model.Solution, site model.Site, opts ...Option) error {
	sc := buildScene(solution, site, newRenderer(opts...))
	dc := gg.NewContext(int(math.Ceil(sc.Width)), int(math.Ceil(sc.Height)))

	dc.SetHexColor("#F0F0F0")
	dc.Clear()

	dc.SetHexColor("#CCCCCC")
	dc.SetLineWidth(0.5)
	for _, line := range sc.Grid {
		dc.DrawLine(line.X1, line.Y1, line.X2, line.Y2)
	}
	dc.Stroke()

	for _, b := range sc.Corridors {
		if err := drawBox(dc, b, 1.5); err != nil {
			return err
		}
	}

	dc.SetRGBA(0, 0.5, 0, 0.6)
	dc.SetLineWidth(1.5)
	dc.SetDash(6, 4)
	for _, link := range sc.Links {
		dc.DrawLine(link.X1, link.Y1, link.X2, link.Y2)
	}
	dc.Stroke()
	dc.SetDash()

	for _, b := range sc.Rooms {
		if err := drawBox(dc, b, 1); err != nil {
			return err
		}
	}

	radius := max(2, dc.FontHeight()/3)
	for _, door := range sc.Doors {
		dc.DrawRectangle(door.X-radius, door.Y-radius, 2*radius, 2*radius)
		dc.SetHexColor("#FF0000")
		dc.FillPreserve()
		dc.SetHexColor("#000000")
		dc.SetLineWidth(1)
		dc.Stroke()
	}
	for _, center := range sc.Centers {
		dc.DrawCircle(center.X, center.Y, radius)
		dc.SetHexColor("#FFD700")
		dc.FillPreserve()
		dc.SetHexColor("#000000")
		dc.Stroke()
	}

	dc.SetHexColor("#000000")
	dc.DrawStringAnchored(sc.Title, sc.Width/2, titleHeight/2, 0.5, 0.5)
	lineHeight := dc.FontHeight() * 1.4
	for i, line := range sc.Stats {
		dc.DrawStringAnchored(line, margin, sc.Height-statsHeight+float64(i+1)*lineHeight, 0, 0.5)
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("%w: encode png: %w", ErrRender, err)
	}
	return nil
}

func drawBox(dc *gg.Context, b box, lineWidth float64) error {
	r, g, bl, err := hexRGB(b.Fill)
	if err != nil {
		return err
	}
	dc.DrawRectangle(b.X, b.Y, b.W, b.H)
	dc.SetRGBA(r, g, bl, b.Opacity)
	dc.FillPreserve()
	dc.SetHexColor(b.Stroke)
	dc.SetLineWidth(lineWidth)
	dc.Stroke()

	if len(b.Lines) == 0 {
		return nil
	}
	dc.SetHexColor("#000000")
	lineHeight := dc.FontHeight() * 1.2
	top := b.Y + b.H/2 - lineHeight*float64(len(b.Lines)-1)/2
	for i, line := range b.Lines {
		dc.DrawStringAnchored(line, b.X+b.W/2, top+float64(i)*lineHeight, 0.5, 0.5)
	}
	return nil
}

func hexRGB(hex string) (r, g, b float64, err error) {
	value, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: colour %q: %w", ErrRender, hex, err)
	}
	return float64(value>>16&0xFF) / 255, float64(value>>8&0xFF) / 255, float64(value&0xFF) / 255, nil
}

// SavePNG writes the raster to path.
func SavePNG(path string, solution model.Solution, site model.Site, opts ...Option) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrRender, cerr)
		}
	}()
	return RenderPNG(file, solution, site, opts...)
}
