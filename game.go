package main

import (
	"context"
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/crosswalk/config"
	"github.com/milk9111/crosswalk/data"
	"github.com/milk9111/crosswalk/render"
	"github.com/milk9111/crosswalk/sim"
	"github.com/sirupsen/logrus"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// Longest step taken after a stall, in seconds.
	maxStep = 0.1
)

type loadResult struct {
	set *data.Set
	err error
}

type Game struct {
	log     *logrus.Logger
	cfg     *config.Config
	watcher *config.Watcher
	debug   bool

	loaded   chan loadResult
	err      error
	sim      *sim.Simulation
	renderer *render.Renderer
	hud      *HUD
}

// NewGame starts loading the intersection in the background. Nothing is
// stepped until it arrives.
func NewGame(cfg *config.Config, logger *logrus.Logger, watcher *config.Watcher, debug bool) *Game {
	g := &Game{
		log:     logger,
		cfg:     cfg,
		watcher: watcher,
		debug:   debug,
		loaded:  make(chan loadResult, 1),
		hud:     NewHUD(),
	}
	go func() {
		set, err := data.Load(context.Background(), cfg.Data.Paths, cfg.Data.Waypoints, logger)
		g.loaded <- loadResult{set: set, err: err}
	}()
	return g
}

func (g *Game) start(set *data.Set) {
	g.renderer = render.NewRenderer(set.Paths, set.Waypoints, baseWidth, baseHeight)
	g.renderer.Debug = g.debug

	opts := append(g.cfg.Options(), sim.WithLogger(g.log), sim.WithPresenter(g.renderer))
	g.sim = sim.New(set.Paths, set.Waypoints, opts...)
	g.sim.Start()
}

func (g *Game) Update() error {
	if g.err != nil {
		return nil
	}
	if g.sim == nil {
		select {
		case res := <-g.loaded:
			if res.err != nil {
				g.err = res.err
				g.log.WithError(res.err).Error("failed to load intersection data")
				g.hud.SetMessage(fmt.Sprintf("Error: %v", res.err))
				return nil
			}
			g.start(res.set)
		default:
			g.hud.SetMessage("Loading...")
			g.hud.UI.Update()
			return nil
		}
	}

	g.drainWatcher()

	dt := math.Min(1/float64(ebiten.TPS()), maxStep)
	frame := g.sim.Step(dt)
	g.hud.SetStatus(frame.Status)
	g.hud.UI.Update()
	return nil
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case next, ok := <-g.watcher.Changes:
			if !ok {
				g.watcher = nil
				return
			}
			config.Apply(g.sim, g.log, g.cfg, next)
			g.cfg = next
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.WithError(err).Warn("config reload failed")
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.renderer != nil {
		g.renderer.Draw(screen)
	}
	g.hud.UI.Draw(screen)

	if g.debug && g.sim != nil {
		st := g.sim.Phase()
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.2f  %s %.1fs  agents: %d",
			ebiten.ActualFPS(), st.Phase, st.Timer, g.renderer.Len()), 12, baseHeight-20)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
