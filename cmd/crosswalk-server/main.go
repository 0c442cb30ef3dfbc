package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/milk9111/crosswalk/config"
	"github.com/milk9111/crosswalk/data"
	"github.com/milk9111/crosswalk/logging"
	"github.com/milk9111/crosswalk/server"
	"github.com/milk9111/crosswalk/sim"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	configFile := flag.String("config", "", "YAML config file (watched for changes)")
	addr := flag.String("addr", "", "listen address, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logrus.Fatal(err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, err := data.Load(ctx, cfg.Data.Paths, cfg.Data.Waypoints, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to load intersection data")
	}

	hub := server.NewHub(logger)
	defer hub.Close()
	s := sim.New(set.Paths, set.Waypoints, append(cfg.Options(), sim.WithLogger(logger), sim.WithPresenter(hub))...)

	hooks := make(chan func(*sim.Simulation))
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: hub.Handler(), ReadHeaderTimeout: 5 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx, s, cfg.Server.TickHz, hooks)
	})
	g.Go(func() error {
		logger.WithField("addr", srv.Addr).Info("serving spectators")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	if *configFile != "" {
		g.Go(func() error {
			return watch(ctx, *configFile, cfg, logger, hooks)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("server stopped")
	}
	logger.Info("server stopped")
}

// watch turns config reloads into hooks run by the stepping goroutine.
func watch(ctx context.Context, file string, cfg *config.Config, logger *logrus.Logger, hooks chan<- func(*sim.Simulation)) error {
	w, err := config.NewWatcher(file)
	if err != nil {
		logger.WithError(err).Warn("config changes will not be picked up")
		return nil
	}
	defer w.Close()

	prev := cfg
	for {
		select {
		case <-ctx.Done():
			return nil
		case next := <-w.Changes:
			from := prev
			select {
			case hooks <- func(s *sim.Simulation) { config.Apply(s, logger, from, next) }:
				prev = next
			case <-ctx.Done():
				return nil
			}
		case err := <-w.Errors:
			logger.WithError(err).Warn("config reload failed")
		}
	}
}
