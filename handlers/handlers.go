package handlers

import (
	"context"

	"Bitwaves/config"
	"Bitwaves/services"
)

// TrackCatalog is what the public track listing needs from the playout
// client.
type TrackCatalog interface {
	GetRequestableTracks(ctx context.Context) ([]services.Track, error)
}

// Handlers carries the wired dependencies for every HTTP handler.
type Handlers struct {
	cfg       *config.Config
	store     *services.RequestStore
	blocklist *services.Blocklist
	catalog   TrackCatalog
	clock     services.Clock
}

func New(cfg *config.Config, store *services.RequestStore, blocklist *services.Blocklist, catalog TrackCatalog) *Handlers {
	return &Handlers{
		cfg:       cfg,
		store:     store,
		blocklist: blocklist,
		catalog:   catalog,
		clock:     services.SystemClock(),
	}
}
