package main

import (
	"flag"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/crosswalk/config"
	"github.com/milk9111/crosswalk/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	configFile := flag.String("config", "", "YAML config file (watched for changes)")
	pathsFile := flag.String("paths", "", "path JSON file, overrides the config")
	waypointsFile := flag.String("waypoints", "", "waypoint JSON file, overrides the config")
	seed := flag.Uint64("seed", 0, "random seed, overrides the config (0 keeps it)")
	debug := flag.Bool("debug", false, "enable debug mode")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logrus.Fatal(err)
	}
	if *pathsFile != "" {
		cfg.Data.Paths = *pathsFile
	}
	if *waypointsFile != "" {
		cfg.Data.Waypoints = *waypointsFile
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	level := cfg.Log.Level
	if *debug {
		level = "debug"
	}

	logger, err := logging.New(level, cfg.Log.Format, nil)
	if err != nil {
		logrus.Fatal(err)
	}

	var watcher *config.Watcher
	if *configFile != "" {
		watcher, err = config.NewWatcher(*configFile)
		if err != nil {
			logger.WithError(err).Warn("config changes will not be picked up")
		} else {
			defer watcher.Close()
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("crosswalk")

	game := NewGame(cfg, logger, watcher, *debug)
	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal(err)
	}
}
