package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"Bitwaves/config"
)

// Processor periodically reconciles eligible requests against the
// playout system's available slots. One instance runs per process;
// Start is idempotent and Stop waits for any in-flight tick.
type Processor struct {
	store *RequestStore
	agent PlayoutAgent
	clock Clock

	interval          time.Duration
	continueOnFailure bool

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	inFlight atomic.Bool
}

func NewProcessor(cfg *config.Config, store *RequestStore, agent PlayoutAgent) *Processor {
	return newProcessor(cfg, store, agent, SystemClock())
}

func newProcessor(cfg *config.Config, store *RequestStore, agent PlayoutAgent, clock Clock) *Processor {
	return &Processor{
		store:             store,
		agent:             agent,
		clock:             clock,
		interval:          cfg.TickInterval,
		continueOnFailure: cfg.ContinueOnFailure,
	}
}

// Start launches the periodic loop. Calling it on a running processor
// does nothing.
func (p *Processor) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		slog.Warn("Request processor already started")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.started = true
	p.mu.Unlock()

	go p.run(ctx)
}

// Stop cancels the timer and waits for an in-flight tick to finish. No
// new work starts after Stop returns.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.started = false
	p.mu.Unlock()

	cancel()
	<-done
}

func (p *Processor) run(ctx context.Context) {
	defer close(p.done)

	slog.Info("Starting request processor", "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Kick once on boot
	p.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Request processor stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick runs one reconcile pass. The guard skips re-entrant invocations
// rather than queueing them; a panic is logged so the timer keeps firing.
func (p *Processor) tick(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		slog.Debug("Previous tick still running, skipping")
		return
	}
	defer p.inFlight.Store(false)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Processor tick panicked", "panic", r)
		}
	}()

	now := p.clock.Now()
	if released := p.store.ReleaseExpiredHolds(now); released > 0 {
		slog.Info("Released expired holds", "count", released)
	}

	slots, err := p.agent.GetAvailableSlots(ctx)
	if err != nil {
		slog.Error("Failed to query available slots", "error", err)
		return
	}
	if len(slots) == 0 {
		return
	}

	eligible := p.store.EligibleForAutoProcess(now)
	if len(eligible) == 0 {
		return
	}
	slog.Debug("Processing eligible requests", "eligible", len(eligible), "slots", len(slots))

	slotIdx := 0
	for _, req := range eligible {
		if slotIdx >= len(slots) {
			// Out of capacity; the rest waits for the next tick.
			break
		}
		if ctx.Err() != nil {
			return
		}
		if !p.store.ClaimForProcessing(req.ID) {
			// Lost a race with an admin action or another claim.
			continue
		}

		slot := slots[slotIdx]
		ok, err := p.agent.RequestTrack(ctx, req.TrackGuid, slot, DeliveryLabel(req.RequestedBy, req.Message))
		if err != nil || !ok {
			p.store.ReleaseClaim(req.ID)
			slog.Error("Failed to deliver request", "request_id", req.ID, "track_guid", req.TrackGuid, "error", err)
			if !p.continueOnFailure {
				// One failed slot usually means no further progress is
				// possible this tick.
				return
			}
			slotIdx++
			continue
		}

		p.store.CommitProcessed(req.ID)
		slotIdx++
		slog.Info("Processed request", "request_id", req.ID, "track_guid", req.TrackGuid)
	}
}
