package services

import (
	"sort"
	"sync"

	"Bitwaves/models"
)

// Blocklist is the in-memory view of blocked submitter addresses. The
// handlers keep it in sync with the blocked_ips table; reads here are
// on the hot submission path.
type Blocklist struct {
	mu      sync.Mutex
	entries map[string]models.BlockedIP
	clock   Clock
}

func NewBlocklist() *Blocklist {
	return &Blocklist{
		entries: make(map[string]models.BlockedIP),
		clock:   SystemClock(),
	}
}

// Hydrate loads persisted entries at startup.
func (b *Blocklist) Hydrate(entries []models.BlockedIP) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range entries {
		b.entries[e.IP] = e
	}
}

func (b *Blocklist) IsBlocked(ip string) bool {
	if ip == "" {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.entries[ip]
	return ok
}

// Add records a blocked address and returns the stored entry.
func (b *Blocklist) Add(ip, reason, addedBy string) models.BlockedIP {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry := models.BlockedIP{
		IP:      ip,
		Reason:  reason,
		AddedBy: addedBy,
		AddedAt: b.clock.Now(),
	}
	b.entries[ip] = entry
	return entry
}

// Remove unblocks an address. Returns false if it was not blocked.
func (b *Blocklist) Remove(ip string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.entries[ip]; !ok {
		return false
	}
	delete(b.entries, ip)
	return true
}

// List returns entries newest-first.
func (b *Blocklist) List() []models.BlockedIP {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := make([]models.BlockedIP, 0, len(b.entries))
	for _, e := range b.entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].AddedAt.After(list[j].AddedAt)
	})
	return list
}
