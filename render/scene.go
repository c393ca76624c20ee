package render

import (
	"fmt"
	"strconv"
	"strings"
)

// Shape is a single drawable element of a scene. Layout code builds shapes;
// serialization to SVG happens only when the scene is written out, so
// geometry stays testable without parsing markup.
type Shape interface {
	svg(b *strings.Builder)
}

type Rect struct {
	X, Y, W, H  float64
	Rx          float64
	Fill        string
	Stroke      string
	StrokeWidth float64
}

type Circle struct {
	CX, CY, R   float64
	Fill        string
	Stroke      string
	StrokeWidth float64
}

type Polygon struct {
	Points  [][2]float64
	Fill    string
	Opacity float64
}

type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	StrokeWidth    float64
	Dash           string
}

type Text struct {
	X, Y   float64
	Value  string
	Size   float64
	Fill   string
	Anchor string // "start", "middle", "end"
	Weight string // "", "bold"
}

// Scene is an ordered list of shapes on a fixed canvas.
type Scene struct {
	Width      float64
	Height     float64
	Background string
	shapes     []Shape
}

func NewScene(width, height float64, background string) *Scene {
	return &Scene{Width: width, Height: height, Background: background}
}

func (s *Scene) Add(shapes ...Shape) {
	s.shapes = append(s.shapes, shapes...)
}

// Len reports the number of shapes in the scene.
func (s *Scene) Len() int { return len(s.shapes) }

// SVG serializes the scene to a standalone SVG document.
func (s *Scene) SVG() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(s.Width), num(s.Height), num(s.Width), num(s.Height))
	b.WriteByte('\n')
	if s.Background != "" {
		fmt.Fprintf(&b, `<rect x="0" y="0" width="%s" height="%s" fill="%s"/>`, num(s.Width), num(s.Height), s.Background)
		b.WriteByte('\n')
	}
	for _, shape := range s.shapes {
		shape.svg(&b)
		b.WriteByte('\n')
	}
	b.WriteString("</svg>\n")
	return b.String()
}

func (r Rect) svg(b *strings.Builder) {
	fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s"`, num(r.X), num(r.Y), num(r.W), num(r.H))
	if r.Rx > 0 {
		fmt.Fprintf(b, ` rx="%s"`, num(r.Rx))
	}
	writePaint(b, r.Fill, r.Stroke, r.StrokeWidth)
	b.WriteString("/>")
}

func (c Circle) svg(b *strings.Builder) {
	fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s"`, num(c.CX), num(c.CY), num(c.R))
	writePaint(b, c.Fill, c.Stroke, c.StrokeWidth)
	b.WriteString("/>")
}

func (p Polygon) svg(b *strings.Builder) {
	points := make([]string, 0, len(p.Points))
	for _, pt := range p.Points {
		points = append(points, num(pt[0])+","+num(pt[1]))
	}
	fmt.Fprintf(b, `<polygon points="%s"`, strings.Join(points, " "))
	if p.Fill != "" {
		fmt.Fprintf(b, ` fill="%s"`, p.Fill)
	}
	if p.Opacity > 0 && p.Opacity < 1 {
		fmt.Fprintf(b, ` opacity="%s"`, num(p.Opacity))
	}
	b.WriteString("/>")
}

func (l Line) svg(b *strings.Builder) {
	fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"`,
		num(l.X1), num(l.Y1), num(l.X2), num(l.Y2), l.Stroke)
	if l.StrokeWidth > 0 {
		fmt.Fprintf(b, ` stroke-width="%s"`, num(l.StrokeWidth))
	}
	if l.Dash != "" {
		fmt.Fprintf(b, ` stroke-dasharray="%s"`, l.Dash)
	}
	b.WriteString("/>")
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func (t Text) svg(b *strings.Builder) {
	fmt.Fprintf(b, `<text x="%s" y="%s" font-family="sans-serif" font-size="%s"`, num(t.X), num(t.Y), num(t.Size))
	if t.Fill != "" {
		fmt.Fprintf(b, ` fill="%s"`, t.Fill)
	}
	if t.Anchor != "" {
		fmt.Fprintf(b, ` text-anchor="%s"`, t.Anchor)
	}
	if t.Weight != "" {
		fmt.Fprintf(b, ` font-weight="%s"`, t.Weight)
	}
	b.WriteString(">")
	textEscaper.WriteString(b, t.Value)
	b.WriteString("</text>")
}

func writePaint(b *strings.Builder, fill, stroke string, strokeWidth float64) {
	if fill != "" {
		fmt.Fprintf(b, ` fill="%s"`, fill)
	}
	if stroke != "" {
		fmt.Fprintf(b, ` stroke="%s"`, stroke)
	}
	if strokeWidth > 0 {
		fmt.Fprintf(b, ` stroke-width="%s"`, num(strokeWidth))
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
