// Package config holds the tunables of a simulation run. Everything has a
// default in the embedded default.yaml; a file on disk only needs the keys it
// changes.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/milk9111/crosswalk/phase"
	"github.com/milk9111/crosswalk/sim"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	SyncReferenceMS *int64           `yaml:"sync_reference_ms"`
	Seed            uint64           `yaml:"seed"`
	Phase           PhaseConfig      `yaml:"phase"`
	Cars            CarConfig        `yaml:"cars"`
	Pedestrians     PedestrianConfig `yaml:"pedestrians"`
	Data            DataConfig       `yaml:"data"`
	Log             LogConfig        `yaml:"log"`
	Server          ServerConfig     `yaml:"server"`
}

type PhaseConfig struct {
	Cars         float64 `yaml:"cars"`
	Pedestrians  float64 `yaml:"pedestrians"`
	StopTimeout  float64 `yaml:"stop_timeout"`
	ClearTimeout float64 `yaml:"clear_timeout"`
}

type CarConfig struct {
	SpeedMin        float64 `yaml:"speed_min"`
	SpeedMax        float64 `yaml:"speed_max"`
	IntervalMin     float64 `yaml:"interval_min"`
	IntervalMax     float64 `yaml:"interval_max"`
	InitialDelayMax float64 `yaml:"initial_delay_max"`
}

type PedestrianConfig struct {
	PerWaypointMin int     `yaml:"per_waypoint_min"`
	PerWaypointMax int     `yaml:"per_waypoint_max"`
	SpeedMin       float64 `yaml:"speed_min"`
	SpeedMax       float64 `yaml:"speed_max"`
	RingInner      float64 `yaml:"ring_inner"`
	RingOuter      float64 `yaml:"ring_outer"`
	DestJitter     float64 `yaml:"dest_jitter"`
	Stagger        float64 `yaml:"stagger"`
}

// DataConfig points at the path and waypoint files. Empty means embedded.
type DataConfig struct {
	Paths     string `yaml:"paths"`
	Waypoints string `yaml:"waypoints"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ServerConfig struct {
	Addr   string  `yaml:"addr"`
	TickHz float64 `yaml:"tick_hz"`
}

// Default returns the embedded configuration.
func Default() *Config {
	var c Config
	if err := yaml.Unmarshal(defaultYAML, &c); err != nil {
		panic(fmt.Sprintf("config: embedded default.yaml: %v", err))
	}
	return &c
}

// Parse overlays b on the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads file, or returns the defaults when file is empty.
func Load(file string) (*Config, error) {
	if file == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", file, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", file, err)
	}
	return c, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func checkRange(name string, lo, hi float64) error {
	if lo < 0 || hi < lo {
		return invalid("%s range [%g, %g]", name, lo, hi)
	}
	return nil
}

func (c *Config) Validate() error {
	p := c.Phase
	if p.Cars <= 0 || p.Pedestrians <= 0 || p.StopTimeout <= 0 || p.ClearTimeout <= 0 {
		return invalid("phase durations must be positive")
	}

	if c.Cars.SpeedMin <= 0 {
		return invalid("cars.speed_min must be positive")
	}
	if c.Cars.IntervalMin <= 0 {
		return invalid("cars.interval_min must be positive")
	}
	if c.Cars.InitialDelayMax < 0 {
		return invalid("cars.initial_delay_max is negative")
	}

	ped := c.Pedestrians
	if ped.PerWaypointMin < 0 || ped.PerWaypointMax < ped.PerWaypointMin {
		return invalid("pedestrians.per_waypoint range [%d, %d]", ped.PerWaypointMin, ped.PerWaypointMax)
	}
	if ped.SpeedMin <= 0 {
		return invalid("pedestrians.speed_min must be positive")
	}
	if ped.DestJitter < 0 || ped.Stagger < 0 {
		return invalid("pedestrians.dest_jitter and stagger must not be negative")
	}
	for _, r := range []struct {
		name   string
		lo, hi float64
	}{
		{"cars.speed", c.Cars.SpeedMin, c.Cars.SpeedMax},
		{"cars.interval", c.Cars.IntervalMin, c.Cars.IntervalMax},
		{"pedestrians.speed", ped.SpeedMin, ped.SpeedMax},
		{"pedestrians.ring", ped.RingInner, ped.RingOuter},
	} {
		if err := checkRange(r.name, r.lo, r.hi); err != nil {
			return err
		}
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format %q", c.Log.Format)
	}
	if c.Server.TickHz <= 0 {
		return invalid("server.tick_hz must be positive")
	}
	return nil
}

// SyncReference returns the configured wall-clock reference, if any.
func (c *Config) SyncReference() (time.Time, bool) {
	if c.SyncReferenceMS == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*c.SyncReferenceMS), true
}

func (c *Config) Durations() phase.Durations {
	return phase.Durations{
		Cars:         c.Phase.Cars,
		Pedestrians:  c.Phase.Pedestrians,
		StopTimeout:  c.Phase.StopTimeout,
		ClearTimeout: c.Phase.ClearTimeout,
	}
}

func (c *Config) CarSettings() sim.CarSettings {
	return sim.CarSettings(c.Cars)
}

func (c *Config) PedestrianSettings() sim.PedestrianSettings {
	return sim.PedestrianSettings(c.Pedestrians)
}

// Options turns the configuration into simulation options. A zero seed
// leaves the simulation to seed itself from the clock.
func (c *Config) Options() []sim.Option {
	opts := []sim.Option{
		sim.WithDurations(c.Durations()),
		sim.WithCarSettings(c.CarSettings()),
		sim.WithPedestrianSettings(c.PedestrianSettings()),
	}
	if c.Seed != 0 {
		opts = append(opts, sim.WithSource(sim.NewSource(c.Seed)))
	}
	if ref, ok := c.SyncReference(); ok {
		opts = append(opts, sim.WithSyncReference(ref))
	}
	return opts
}
