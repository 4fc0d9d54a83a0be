package session

import (
	"context"
	"sync"
	"time"
)

// MemoryDenylist keeps revoked ids in process. A background loop drops
// entries whose tokens have expired.
type MemoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time

	purgeWG   sync.WaitGroup
	purgeStop chan struct{}
	closeOnce sync.Once
}

func NewMemoryDenylist(purgeInterval time.Duration) *MemoryDenylist {
	d := &MemoryDenylist{
		revoked:   make(map[string]time.Time),
		now:       time.Now,
		purgeStop: make(chan struct{}),
	}

	if purgeInterval > 0 {
		d.purgeWG.Add(1)
		go d.purgeLoop(purgeInterval)
	}

	return d
}

func (d *MemoryDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	d.mu.Lock()
	d.revoked[tokenID] = d.now().Add(ttl)
	d.mu.Unlock()
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	expiresAt, ok := d.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !d.now().Before(expiresAt) {
		delete(d.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

func (d *MemoryDenylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.revoked)
}

func (d *MemoryDenylist) purgeLoop(interval time.Duration) {
	defer d.purgeWG.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.purgeExpired()
		case <-d.purgeStop:
			return
		}
	}
}

func (d *MemoryDenylist) purgeExpired() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, expiresAt := range d.revoked {
		if !now.Before(expiresAt) {
			delete(d.revoked, id)
		}
	}
}

func (d *MemoryDenylist) Close() {
	d.closeOnce.Do(func() {
		close(d.purgeStop)
		d.purgeWG.Wait()
	})
}
