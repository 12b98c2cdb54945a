package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"Bitwaves/config"
	"Bitwaves/models"

	"github.com/google/uuid"
)

// RequestStore is the single source of truth for all song requests. All
// state transitions go through it; each method is atomic with respect to
// the others, so HTTP handlers and the processor can share one instance.
//
// Requests are never physically removed. Deletion is a status so that
// rate limiting and auditing keep their history.
type RequestStore struct {
	mu    sync.Mutex
	items []*models.Request
	byID  map[string]*models.Request

	autoProcessDelay time.Duration
	holdMax          time.Duration
	maxMessageLen    int

	clock Clock
	newID func() string

	// onChange receives a snapshot after every mutation. It must not
	// block and must not call back into the store; the caller decides
	// how to persist (best-effort, per the durability model).
	onChange func(models.Request)
}

func NewRequestStore(cfg *config.Config) *RequestStore {
	return newRequestStore(cfg, SystemClock(), uuid.NewString)
}

// newRequestStore injects the clock and id source, primarily for tests.
func newRequestStore(cfg *config.Config, clock Clock, newID func() string) *RequestStore {
	return &RequestStore{
		byID:             make(map[string]*models.Request),
		autoProcessDelay: cfg.AutoProcessDelay,
		holdMax:          cfg.HoldMaxDuration,
		maxMessageLen:    cfg.MaxMessageLength,
		clock:            clock,
		newID:            newID,
	}
}

// OnChange registers the persistence hook. Call before the store is shared.
func (s *RequestStore) OnChange(fn func(models.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Hydrate loads persisted snapshots into an empty store. A request that
// was claimed when the process died comes back as pending with its
// autoProcessAt unchanged, so the delivery attempt is retried.
func (s *RequestStore) Hydrate(requests []models.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range requests {
		if _, ok := s.byID[r.ID]; ok {
			continue
		}
		if r.Status == models.StatusProcessing {
			r.Status = models.StatusPending
		}
		item := r
		s.items = append(s.items, &item)
		s.byID[item.ID] = &item
	}
}

// AddRequest creates a pending request eligible for auto-processing
// after the configured delay. The message is truncated to the cap.
func (s *RequestStore) AddRequest(trackGuid, requestedBy, message, ipAddress string) (models.Request, error) {
	if trackGuid == "" {
		return models.Request{}, fmt.Errorf("trackGuid is required")
	}
	if requestedBy == "" {
		return models.Request{}, fmt.Errorf("requestedBy is required")
	}
	message = TruncateMessage(message, s.maxMessageLen)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	item := &models.Request{
		ID:            s.newID(),
		TrackGuid:     trackGuid,
		RequestedBy:   requestedBy,
		Message:       message,
		IPAddress:     ipAddress,
		RequestedAt:   now,
		Status:        models.StatusPending,
		AutoProcessAt: now.Add(s.autoProcessDelay),
	}
	s.items = append(s.items, item)
	s.byID[item.ID] = item
	s.notify(item)
	return *item, nil
}

// HoldRequest pauses a pending request until an admin releases it or the
// hold expires.
func (s *RequestStore) HoldRequest(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || r.Status != models.StatusPending {
		return false
	}
	expires := s.clock.Now().Add(s.holdMax)
	r.Status = models.StatusHeld
	r.HoldExpiresAt = &expires
	s.notify(r)
	return true
}

// UnholdRequest returns a held request to pending. The auto-process
// delay starts over from now.
func (s *RequestStore) UnholdRequest(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || r.Status != models.StatusHeld {
		return false
	}
	r.Status = models.StatusPending
	r.HoldExpiresAt = nil
	r.AutoProcessAt = s.clock.Now().Add(s.autoProcessDelay)
	s.notify(r)
	return true
}

// ForceProcessNow makes a pending or held request immediately eligible.
// Processing itself still happens on the next processor tick.
func (s *RequestStore) ForceProcessNow(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || (r.Status != models.StatusPending && r.Status != models.StatusHeld) {
		return false
	}
	r.Status = models.StatusPending
	r.HoldExpiresAt = nil
	r.AutoProcessAt = s.clock.Now()
	s.notify(r)
	return true
}

// DeleteRequest marks a request deleted. Valid from any non-deleted
// state, including processed (moderation override). The record stays.
func (s *RequestStore) DeleteRequest(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || r.Status == models.StatusDeleted {
		return false
	}
	r.Status = models.StatusDeleted
	s.notify(r)
	return true
}

// ClaimForProcessing reserves a pending request for one delivery
// attempt. Exactly one concurrent caller wins; everyone else gets false.
func (s *RequestStore) ClaimForProcessing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || r.Status != models.StatusPending {
		return false
	}
	r.Status = models.StatusProcessing
	s.notify(r)
	return true
}

// CommitProcessed finalizes a claimed request after the playout system
// confirmed placement.
func (s *RequestStore) CommitProcessed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || r.Status != models.StatusProcessing {
		return false
	}
	now := s.clock.Now()
	r.Status = models.StatusProcessed
	r.ProcessedAt = &now
	r.HoldExpiresAt = nil
	s.notify(r)
	return true
}

// ReleaseClaim puts a claimed request back to pending after a failed
// delivery attempt. autoProcessAt is left alone so it stays immediately
// eligible on the next tick.
func (s *RequestStore) ReleaseClaim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || r.Status != models.StatusProcessing {
		return false
	}
	r.Status = models.StatusPending
	s.notify(r)
	return true
}

// ReleaseExpiredHolds releases every held request whose hold lapsed,
// making it immediately eligible. Returns how many were released.
func (s *RequestStore) ReleaseExpiredHolds(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := 0
	for _, r := range s.items {
		if r.Status != models.StatusHeld || r.HoldExpiresAt == nil {
			continue
		}
		if r.HoldExpiresAt.After(now) {
			continue
		}
		r.Status = models.StatusPending
		r.HoldExpiresAt = nil
		r.AutoProcessAt = now
		s.notify(r)
		released++
	}
	return released
}

// ListByStatusBucket groups requests for the admin page. Buckets are
// newest-first; processed sorts by processedAt instead of requestedAt.
func (s *RequestStore) ListByStatusBucket() models.RequestBuckets {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b models.RequestBuckets
	for _, r := range s.items {
		switch r.Status {
		case models.StatusPending:
			b.Pending = append(b.Pending, *r)
		case models.StatusHeld:
			b.Held = append(b.Held, *r)
		case models.StatusProcessing:
			b.Processing = append(b.Processing, *r)
		case models.StatusProcessed:
			b.Processed = append(b.Processed, *r)
		}
	}
	byRequestedDesc := func(list []models.Request) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].RequestedAt.After(list[j].RequestedAt)
		})
	}
	byRequestedDesc(b.Pending)
	byRequestedDesc(b.Held)
	byRequestedDesc(b.Processing)
	sort.SliceStable(b.Processed, func(i, j int) bool {
		return b.Processed[i].ProcessedAt.After(*b.Processed[j].ProcessedAt)
	})
	return b
}

// EligibleForAutoProcess returns pending requests whose autoProcessAt
// has passed, oldest eligibility first. Forced requests carry
// autoProcessAt = time of the force, so they interleave by recency of
// the force action; ties break on requestedAt.
func (s *RequestStore) EligibleForAutoProcess(now time.Time) []models.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	var eligible []models.Request
	for _, r := range s.items {
		if r.Status == models.StatusPending && !r.AutoProcessAt.After(now) {
			eligible = append(eligible, *r)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if !eligible[i].AutoProcessAt.Equal(eligible[j].AutoProcessAt) {
			return eligible[i].AutoProcessAt.Before(eligible[j].AutoProcessAt)
		}
		return eligible[i].RequestedAt.Before(eligible[j].RequestedAt)
	})
	return eligible
}

// ActivityWindowCount counts non-deleted requests from an IP submitted
// within the trailing window.
func (s *RequestStore) ActivityWindowCount(ip string, window time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	cutoff := now.Add(-window)
	for _, r := range s.items {
		if r.Status == models.StatusDeleted || r.IPAddress != ip {
			continue
		}
		if !r.RequestedAt.Before(cutoff) && !r.RequestedAt.After(now) {
			count++
		}
	}
	return count
}

// OldestActivityInWindow returns the earliest requestedAt from an IP
// within the trailing window, for computing when the limit frees up.
func (s *RequestStore) OldestActivityInWindow(ip string, window time.Duration, now time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest time.Time
	found := false
	cutoff := now.Add(-window)
	for _, r := range s.items {
		if r.Status == models.StatusDeleted || r.IPAddress != ip {
			continue
		}
		if r.RequestedAt.Before(cutoff) || r.RequestedAt.After(now) {
			continue
		}
		if !found || r.RequestedAt.Before(oldest) {
			oldest = r.RequestedAt
			found = true
		}
	}
	return oldest, found
}

// LastActivityTimestamp returns the latest of requestedAt and
// processedAt over all non-deleted requests for a track.
func (s *RequestStore) LastActivityTimestamp(trackGuid string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last time.Time
	found := false
	for _, r := range s.items {
		if r.Status == models.StatusDeleted || r.TrackGuid != trackGuid {
			continue
		}
		ts := r.RequestedAt
		if r.ProcessedAt != nil && r.ProcessedAt.After(ts) {
			ts = *r.ProcessedAt
		}
		if !found || ts.After(last) {
			last = ts
			found = true
		}
	}
	return last, found
}

// Get returns a snapshot of one request.
func (s *RequestStore) Get(id string) (models.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return models.Request{}, false
	}
	return *r, true
}

func (s *RequestStore) notify(r *models.Request) {
	if s.onChange != nil {
		s.onChange(*r)
	}
}
