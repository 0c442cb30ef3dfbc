// Package render draws the intersection top-down with ebiten. Renderer is
// the windowed Presenter: the simulation tells it when agents appear and
// leave, and every frame where they are.
package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/crosswalk/ecs"
	"github.com/milk9111/crosswalk/path"
	"github.com/milk9111/crosswalk/phase"
	"github.com/milk9111/crosswalk/sim"
)

const (
	pathSamples = 64

	carLength      = 4.2
	carWidth       = 1.9
	pedestrianSize = 0.7
)

var (
	backgroundColor = color.RGBA{R: 0x1d, G: 0x22, B: 0x27, A: 0xff}
	pathColor       = color.RGBA{R: 0x4a, G: 0x52, B: 0x5a, A: 0xff}
	waypointColor   = color.RGBA{R: 0x7f, G: 0x8c, B: 0x8d, A: 0xff}
	carColor        = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	walkingColor    = color.RGBA{R: 0xf1, G: 0xc4, B: 0x0f, A: 0xff}
	waitingColor    = color.RGBA{R: 0x95, G: 0xa5, B: 0xa6, A: 0xff}

	signalColors = map[phase.Phase]color.RGBA{
		phase.Cars:                    {R: 0x2e, G: 0xcc, B: 0x71, A: 0xff},
		phase.TransitionToPedestrians: {R: 0xf3, G: 0x9c, B: 0x12, A: 0xff},
		phase.Pedestrians:             {R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff},
		phase.TransitionToCars:        {R: 0xf3, G: 0x9c, B: 0x12, A: 0xff},
	}
)

type sprite struct {
	kind    sim.Kind
	pos     mgl64.Vec3
	heading mgl64.Vec3
	state   sim.VisualState
}

type Renderer struct {
	proj      Projection
	paths     [][]mgl64.Vec3
	waypoints []mgl64.Vec3

	sprites map[ecs.Entity]*sprite
	phase   phase.Phase
	pixel   *ebiten.Image
	Debug   bool
}

// NewRenderer samples every path once and fits the view to a width x
// height screen.
func NewRenderer(paths []*path.Path, waypoints []mgl64.Vec3, width, height int) *Renderer {
	r := &Renderer{
		waypoints: append([]mgl64.Vec3(nil), waypoints...),
		sprites:   make(map[ecs.Entity]*sprite),
	}

	bounds := append([]mgl64.Vec3(nil), waypoints...)
	for _, p := range paths {
		pts := make([]mgl64.Vec3, pathSamples+1)
		for i := range pts {
			pts[i] = p.PointAt(float64(i) / pathSamples)
		}
		r.paths = append(r.paths, pts)
		bounds = append(bounds, pts...)
	}
	r.proj = Fit(bounds, float64(width), float64(height), 24)
	return r
}

func (r *Renderer) AgentCreated(a sim.Agent) {
	r.sprites[a.ID] = &sprite{kind: a.Kind, pos: a.Position, heading: a.Heading(), state: a.State}
}

func (r *Renderer) AgentRemoved(id ecs.Entity) {
	delete(r.sprites, id)
}

// Frame moves the sprites the simulation still reports. Agents it no longer
// lists keep their last position until AgentRemoved arrives.
func (r *Renderer) Frame(f sim.Frame) {
	r.phase = f.Phase.Phase
	for _, a := range f.Agents {
		s, ok := r.sprites[a.ID]
		if !ok {
			continue
		}
		s.pos = a.Position
		s.heading = a.Heading()
		s.state = a.State
	}
}

// Len returns how many agents are on screen.
func (r *Renderer) Len() int {
	return len(r.sprites)
}

func (r *Renderer) Projection() Projection {
	return r.proj
}

func (r *Renderer) Draw(screen *ebiten.Image) {
	if r.pixel == nil {
		r.pixel = ebiten.NewImage(1, 1)
		r.pixel.Fill(color.White)
	}
	screen.Fill(backgroundColor)

	for _, pts := range r.paths {
		for i := 1; i < len(pts); i++ {
			x0, y0 := r.proj.ToScreen(pts[i-1])
			x1, y1 := r.proj.ToScreen(pts[i])
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, pathColor, true)
		}
	}

	signal := signalColors[r.phase]
	for _, wp := range r.waypoints {
		x, y := r.proj.ToScreen(wp)
		vector.StrokeCircle(screen, x, y, float32(1.5*r.proj.Scale), 2, waypointColor, true)
		vector.FillCircle(screen, x, y, 4, signal, true)
	}

	for _, s := range r.sprites {
		switch s.kind {
		case sim.KindCar:
			r.drawRect(screen, s, carLength, carWidth, carColor)
		case sim.KindPedestrian:
			clr := walkingColor
			if s.state == sim.Waiting {
				clr = waitingColor
			}
			r.drawRect(screen, s, pedestrianSize, pedestrianSize, clr)
		}
	}

	if r.Debug {
		for _, s := range r.sprites {
			x, y := r.proj.ToScreen(s.pos)
			tip := s.pos.Add(s.heading.Mul(3))
			tx, ty := r.proj.ToScreen(tip)
			vector.StrokeLine(screen, x, y, tx, ty, 1, color.White, false)
		}
	}
}

// drawRect draws a length x width box centred on the sprite, long side
// along its heading.
func (r *Renderer) drawRect(screen *ebiten.Image, s *sprite, length, width float64, clr color.Color) {
	x, y := r.proj.ToScreen(s.pos)
	w := length * r.proj.Scale
	h := width * r.proj.Scale

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(-w/2, -h/2)
	op.GeoM.Rotate(r.proj.Angle(s.heading))
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	screen.DrawImage(r.pixel, op)
}
