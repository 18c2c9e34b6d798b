package diagram

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Palette matching the reference plots.
var (
	colBackground = color.RGBA{255, 255, 255, 255}
	colSensor     = color.RGBA{173, 216, 230, 255} // lightblue
	colSensorEdge = color.RGBA{200, 30, 30, 255}
	colObject     = color.RGBA{255, 255, 255, 255}
	colObjectEdge = color.RGBA{30, 60, 200, 255}
	colLine       = color.RGBA{20, 20, 20, 255}
	colAccent     = color.RGBA{230, 160, 30, 255}
)

// supersample is the oversampling factor: primitives are rasterized at
// this scale and downscaled once at the end for smooth edges.
const supersample = 2

// canvas is a simple 2D raster target. All coordinates are in final
// output pixels; the canvas scales them internally.
type canvas struct {
	img *image.RGBA
}

func newCanvas(w, h int) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, w*supersample, h*supersample))
	draw.Draw(img, img.Bounds(), &image.Uniform{colBackground}, image.Point{}, draw.Src)
	return &canvas{img: img}
}

func (c *canvas) fillRect(x0, y0, x1, y1 float64, col color.RGBA) {
	r := scaleRect(x0, y0, x1, y1)
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), &image.Uniform{col}, image.Point{}, draw.Src)
}

func (c *canvas) strokeRect(x0, y0, x1, y1 float64, col color.RGBA) {
	c.line(x0, y0, x1, y0, col)
	c.line(x1, y0, x1, y1, col)
	c.line(x1, y1, x0, y1, col)
	c.line(x0, y1, x0, y0, col)
}

// line draws a solid line with the supersampled pen width.
func (c *canvas) line(x0, y0, x1, y1 float64, col color.RGBA) {
	c.stampedLine(x0, y0, x1, y1, col, 1, 0)
}

// dashedLine draws a line with the given dash length in output pixels.
func (c *canvas) dashedLine(x0, y0, x1, y1 float64, col color.RGBA, dash float64) {
	c.stampedLine(x0, y0, x1, y1, col, 1, dash)
}

// stampedLine walks the segment stamping a small square pen. A dash
// period of 0 means solid.
func (c *canvas) stampedLine(x0, y0, x1, y1 float64, col color.RGBA, width, dash float64) {
	sx0, sy0 := x0*supersample, y0*supersample
	sx1, sy1 := x1*supersample, y1*supersample
	length := math.Hypot(sx1-sx0, sy1-sy0)
	if length == 0 {
		c.stamp(sx0, sy0, width*supersample, col)
		return
	}
	steps := int(length) + 1
	dashPeriod := dash * supersample * 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		if dashPeriod > 0 {
			phase := math.Mod(t*length, dashPeriod)
			if phase > dashPeriod/2 {
				continue
			}
		}
		c.stamp(sx0+t*(sx1-sx0), sy0+t*(sy1-sy0), width*supersample, col)
	}
}

func (c *canvas) circle(cx, cy, radius float64, col color.RGBA) {
	scx, scy, sr := cx*supersample, cy*supersample, radius*supersample
	circumference := 2 * math.Pi * sr
	steps := int(circumference) + 8
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.stamp(scx+sr*math.Cos(a), scy+sr*math.Sin(a), supersample, col)
	}
}

func (c *canvas) fillCircle(cx, cy, radius float64, col color.RGBA) {
	for r := 0.0; r <= radius; r += 0.5 {
		c.circle(cx, cy, r, col)
	}
}

func (c *canvas) stamp(x, y, size float64, col color.RGBA) {
	half := int(size / 2)
	xi, yi := int(x), int(y)
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			c.img.SetRGBA(xi+dx, yi+dy, col)
		}
	}
}

// label renders text anchored so its center sits at (x, y). Labels are
// drawn after finalization would blur them, so they go on the
// supersampled image at scaled size; basicfont only has one face, so
// they are stamped per-pixel at the supersample factor.
func (c *canvas) label(x, y float64, text string, col color.RGBA) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Round()

	mask := image.NewAlpha(image.Rect(0, 0, w, face.Metrics().Height.Round()))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.NewUniform(color.Alpha{255}),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Round()),
	}
	d.DrawString(text)

	// Stamp each glyph pixel as a supersample-sized block so the text
	// survives the final downscale at readable size.
	b := mask.Bounds()
	originX := x*supersample - float64(w*supersample)/2
	originY := y*supersample - float64(b.Dy()*supersample)/2
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			if mask.AlphaAt(px, py).A > 128 {
				c.stamp(originX+float64(px*supersample), originY+float64(py*supersample), supersample, col)
			}
		}
	}
}

// finalize downscales the supersampled buffer to the output size.
// NRGBA keeps the result directly encodable as WebP.
func (c *canvas) finalize() image.Image {
	b := c.img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx()/supersample, b.Dy()/supersample))
	xdraw.CatmullRom.Scale(out, out.Bounds(), c.img, b, xdraw.Over, nil)
	return out
}

func scaleRect(x0, y0, x1, y1 float64) image.Rectangle {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return image.Rect(
		int(x0*supersample), int(y0*supersample),
		int(x1*supersample), int(y1*supersample),
	)
}
