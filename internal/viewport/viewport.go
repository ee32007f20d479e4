// Package viewport converts between screen pixels and canvas world
// coordinates: screen = world*zoom + offset.
package viewport

import (
	"math"

	"github.com/soochol/flowboard/internal/geometry"
)

const (
	MinZoom = 0.1
	MaxZoom = 3.0

	// ZoomStep is the zoom change applied by the zoom in/out buttons.
	ZoomStep = 0.1
)

// Viewport is the zoom and pan state of a canvas view, plus the pixel
// size of the area it is drawn into.
type Viewport struct {
	Zoom   float64        `json:"zoom"`
	Offset geometry.Point `json:"offset"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
}

// New returns an unzoomed, unpanned viewport of the given pixel size.
func New(width, height float64) *Viewport {
	return &Viewport{Zoom: 1, Width: width, Height: height}
}

// WorldToScreen projects a world point into screen pixels.
func (v *Viewport) WorldToScreen(p geometry.Point) geometry.Point {
	return geometry.Point{X: p.X*v.Zoom + v.Offset.X, Y: p.Y*v.Zoom + v.Offset.Y}
}

// ScreenToWorld is the inverse of WorldToScreen.
func (v *Viewport) ScreenToWorld(p geometry.Point) geometry.Point {
	return geometry.Point{X: (p.X - v.Offset.X) / v.Zoom, Y: (p.Y - v.Offset.Y) / v.Zoom}
}

// ZoomAt changes the zoom by delta, keeping the world point under anchor
// fixed on screen.
func (v *Viewport) ZoomAt(delta float64, anchor geometry.Point) {
	v.SetZoom(v.Zoom+delta, anchor)
}

// SetZoom sets an absolute zoom level anchored at a screen point.
func (v *Viewport) SetZoom(zoom float64, anchor geometry.Point) {
	world := v.ScreenToWorld(anchor)
	v.Zoom = Clamp(zoom)
	v.Offset = geometry.Point{
		X: anchor.X - world.X*v.Zoom,
		Y: anchor.Y - world.Y*v.Zoom,
	}
}

// ZoomIn and ZoomOut are the toolbar presets. They use the same anchored
// policy as wheel zoom, pivoting on the viewport center.
func (v *Viewport) ZoomIn()  { v.ZoomAt(ZoomStep, v.Center()) }
func (v *Viewport) ZoomOut() { v.ZoomAt(-ZoomStep, v.Center()) }

// Center returns the screen-space center of the viewport.
func (v *Viewport) Center() geometry.Point {
	return geometry.Point{X: v.Width / 2, Y: v.Height / 2}
}

// Pan moves the view by a raw screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.Offset.X += dx
	v.Offset.Y += dy
}

// Reset restores zoom 1 and no offset.
func (v *Viewport) Reset() {
	v.Zoom = 1
	v.Offset = geometry.Point{}
}

// Resize records a new pixel size. Zoom and offset are untouched.
func (v *Viewport) Resize(width, height float64) {
	v.Width, v.Height = width, height
}

// VisibleWorldRect returns the world-space area currently on screen.
func (v *Viewport) VisibleWorldRect() geometry.Rect {
	tl := v.ScreenToWorld(geometry.Point{})
	return geometry.Rect{X: tl.X, Y: tl.Y, Width: v.Width / v.Zoom, Height: v.Height / v.Zoom}
}

// Clamp limits z to [MinZoom, MaxZoom]. NaN clamps to 1.
func Clamp(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
