package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/crosswalk/config"
	"github.com/milk9111/crosswalk/data"
	"github.com/milk9111/crosswalk/logging"
	"github.com/milk9111/crosswalk/path"
	"github.com/milk9111/crosswalk/render"
	"github.com/milk9111/crosswalk/sim"
	"github.com/sirupsen/logrus"
)

const (
	frameInterval = 33 * time.Millisecond
	maxStep       = 0.1
	pathSamples   = 48
)

var (
	pathStyle     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	waypointStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	carStyle      = tcell.StyleDefault.Foreground(tcell.ColorRed)
	walkingStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	waitingStyle  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	statusStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// view draws the latest frame as characters. Terminal cells are about twice
// as tall as they are wide, so the ground is projected onto twice as many
// rows as the screen has and every other row is kept.
type view struct {
	sim.NopPresenter

	paths     [][]mgl64.Vec3
	waypoints []mgl64.Vec3
	proj      render.Projection
	frame     sim.Frame
}

func newView(paths []*path.Path, waypoints []mgl64.Vec3) *view {
	v := &view{waypoints: waypoints}
	for _, p := range paths {
		pts := make([]mgl64.Vec3, pathSamples+1)
		for i := range pts {
			pts[i] = p.PointAt(float64(i) / pathSamples)
		}
		v.paths = append(v.paths, pts)
	}
	return v
}

func (v *view) Frame(f sim.Frame) {
	v.frame = f
}

// resize fits the intersection to a cols x rows terminal, keeping the last
// row for the status line.
func (v *view) resize(cols, rows int) {
	bounds := append([]mgl64.Vec3(nil), v.waypoints...)
	for _, pts := range v.paths {
		bounds = append(bounds, pts...)
	}
	v.proj = render.Fit(bounds, float64(cols), float64(2*(rows-1)), 1)
}

func (v *view) cell(p mgl64.Vec3) (int, int) {
	x, y := v.proj.ToScreen(p)
	return int(x), int(y / 2)
}

// glyph picks the character for an agent: an arrow along a car's heading,
// a dot for a waiting pedestrian and a star for a walking one.
func glyph(a sim.Agent) (rune, tcell.Style) {
	if a.Kind == sim.KindPedestrian {
		if a.State == sim.Waiting {
			return 'o', waitingStyle
		}
		return '*', walkingStyle
	}
	h := a.Heading()
	if math.Abs(h.X()) >= math.Abs(h.Z()) {
		if h.X() >= 0 {
			return '>', carStyle
		}
		return '<', carStyle
	}
	if h.Z() >= 0 {
		return 'v', carStyle
	}
	return '^', carStyle
}

func statusLine(f sim.Frame) string {
	line := fmt.Sprintf(" %s  %s", f.Status.Countdown, f.Status.Description)
	if f.Status.Walking > 0 || f.Status.Waiting > 0 {
		line += fmt.Sprintf("  (%d walking, %d waiting)", f.Status.Walking, f.Status.Waiting)
	}
	return line + "   q to quit "
}

func (v *view) draw(screen tcell.Screen) {
	screen.Clear()
	cols, rows := screen.Size()

	for _, pts := range v.paths {
		for _, p := range pts {
			x, y := v.cell(p)
			screen.SetContent(x, y, '.', nil, pathStyle)
		}
	}
	for _, wp := range v.waypoints {
		x, y := v.cell(wp)
		screen.SetContent(x, y, '+', nil, waypointStyle)
	}
	for _, a := range v.frame.Agents {
		x, y := v.cell(a.Position)
		r, style := glyph(a)
		screen.SetContent(x, y, r, nil, style)
	}

	line := []rune(statusLine(v.frame))
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(line) {
			r = line[x]
		}
		screen.SetContent(x, rows-1, r, nil, statusStyle)
	}
	screen.Show()
}

func main() {
	configFile := flag.String("config", "", "YAML config file")
	logFile := flag.String("log", "", "write logs to this file (default: discard)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logrus.Fatal(err)
	}

	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			logrus.Fatal(err)
		}
		defer f.Close()
		out = f
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, out)
	if err != nil {
		logrus.Fatal(err)
	}

	set, err := data.Load(context.Background(), cfg.Data.Paths, cfg.Data.Waypoints, logger)
	if err != nil {
		logrus.Fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		logrus.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		logrus.Fatal(err)
	}
	defer screen.Fini()

	v := newView(set.Paths, set.Waypoints)
	v.resize(screen.Size())
	s := sim.New(set.Paths, set.Waypoints, append(cfg.Options(), sim.WithLogger(logger), sim.WithPresenter(v))...)
	s.Start()

	run(screen, s, v)
}

func run(screen tcell.Screen, s *sim.Simulation, v *view) {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return
				}
			case *tcell.EventResize:
				v.resize(screen.Size())
				screen.Sync()
			}
		case now := <-ticker.C:
			dt := math.Min(now.Sub(last).Seconds(), maxStep)
			last = now
			s.Step(dt)
			v.draw(screen)
		}
	}
}
