package render

import (
	"bytes"
	"fmt"
	"html"
	"os"

	"github.com/limaJavier/floorplanning/pkg/model"
)

func RenderSVG(solution model.Solution, site model.Site, opts ...Option) []byte {
	r := newRenderer(opts...)
	sc := buildScene(solution, site, r)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		sc.Width, sc.Height, sc.Width, sc.Height)
	fmt.Fprintf(&buf, `  <rect class="background" x="0" y="0" width="%.1f" height="%.1f" fill="#F0F0F0"/>`+"\n", sc.Width, sc.Height)

	if len(sc.Grid) > 0 {
		buf.WriteString(`  <g class="grid" stroke="#CCCCCC" stroke-width="0.5">` + "\n")
		for _, line := range sc.Grid {
			writeLine(&buf, line, "")
		}
		buf.WriteString("  </g>\n")
	}

	for _, b := range sc.Corridors {
		writeBox(&buf, b, "corridor", 1.5)
	}
	for _, link := range sc.Links {
		writeLine(&buf, link, ` class="link" stroke="#008000" stroke-opacity="0.6" stroke-width="1.5" stroke-dasharray="6 4"`)
	}
	for _, b := range sc.Rooms {
		writeBox(&buf, b, "room", 1)
	}

	radius := r.scale / 3
	for _, door := range sc.Doors {
		fmt.Fprintf(&buf, `  <rect class="door" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#FF0000" stroke="#000000"/>`+"\n",
			door.X-radius, door.Y-radius, 2*radius, 2*radius)
	}
	for _, center := range sc.Centers {
		fmt.Fprintf(&buf, `  <circle class="center" cx="%.1f" cy="%.1f" r="%.1f" fill="#FFD700" stroke="#000000"/>`+"\n",
			center.X, center.Y, radius)
	}

	fmt.Fprintf(&buf, `  <text class="title" x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="16">%s</text>`+"\n",
		sc.Width/2, titleHeight/2, html.EscapeString(sc.Title))
	for i, line := range sc.Stats {
		fmt.Fprintf(&buf, `  <text class="stats" x="%.1f" y="%.1f" font-family="sans-serif" font-size="11">%s</text>`+"\n",
			margin, sc.Height-statsHeight+float64(i+1)*18, html.EscapeString(line))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeLine(buf *bytes.Buffer, line segment, attrs string) {
	fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"%s/>`+"\n", line.X1, line.Y1, line.X2, line.Y2, attrs)
}

func writeBox(buf *bytes.Buffer, b box, class string, strokeWidth float64) {
	fmt.Fprintf(buf, `  <rect class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="%.2f" stroke="%s" stroke-width="%.1f"/>`+"\n",
		class, b.X, b.Y, b.W, b.H, b.Fill, b.Opacity, b.Stroke, strokeWidth)
	if len(b.Lines) == 0 {
		return
	}
	weight := "normal"
	if b.Bold {
		weight = "bold"
	}
	fmt.Fprintf(buf, `  <text class="%s-label" x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="10" font-weight="%s">`,
		class, b.X+b.W/2, b.Y+b.H/2, weight)
	for i, line := range b.Lines {
		dy := "0"
		if i > 0 {
			dy = "1.2em"
		}
		fmt.Fprintf(buf, `<tspan x="%.1f" dy="%s">%s</tspan>`, b.X+b.W/2, dy, html.EscapeString(line))
	}
	buf.WriteString("</text>\n")
}

// SaveSVG writes the vector drawing to path.
func SaveSVG(path string, solution model.Solution, site model.Site, opts ...Option) error {
	if err := os.WriteFile(path, RenderSVG(solution, site, opts...), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}
