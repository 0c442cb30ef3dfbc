package config

import (
	"github.com/milk9111/crosswalk/sim"
	"github.com/sirupsen/logrus"
)

// Apply carries the settings that may change at runtime from next into a
// running simulation: the log level, and the sync reference when it moved.
// Timing and spawn ranges only take effect on restart. Apply must run on
// the goroutine that steps s.
func Apply(s *sim.Simulation, logger *logrus.Logger, prev, next *Config) {
	if lvl, err := logrus.ParseLevel(next.Log.Level); err == nil && lvl != logger.GetLevel() {
		logger.SetLevel(lvl)
		logger.WithField("level", lvl.String()).Info("log level changed")
	}

	ref, ok := next.SyncReference()
	if !ok {
		return
	}
	if old, had := prev.SyncReference(); had && old.Equal(ref) {
		return
	}
	logger.WithField("sync_reference_ms", ref.UnixMilli()).Info("sync reference changed")
	s.Resync(ref)
}
