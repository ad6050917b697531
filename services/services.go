// Package services bundles the handles a running campaign server needs
// threaded through it, in place of the package-level globals the original
// tool used for its config, clock, logger, and message sink.
package services

import (
	"log"
	"time"

	"dyncserver/config"
	"dyncserver/persistence"
	"dyncserver/webhook"
)

// Clock abstracts wall-clock access so turn processing can be driven by a
// fixed time in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// Services is the set of collaborators a campaign server's handlers need:
// configuration, persistence, a logger, and the outbound chat notifier.
type Services struct {
	Config   *config.Config
	Store    *persistence.Store
	Notifier *webhook.Notifier
	Logger   *log.Logger
	Clock    Clock
}

// New wires a Services bundle from a loaded config and a snapshot path.
func New(cfg *config.Config, snapshotPath string, logger *log.Logger) *Services {
	if logger == nil {
		logger = log.Default()
	}
	return &Services{
		Config:   cfg,
		Store:    persistence.NewStore(snapshotPath),
		Notifier: webhook.New(cfg.Comms.User, cfg.Comms.URL),
		Logger:   logger,
		Clock:    SystemClock{},
	}
}
