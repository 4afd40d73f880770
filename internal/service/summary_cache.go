package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/thinkforge-api/internal/events"
)

type cachedDashboard struct {
	dashboard Dashboard
	expires   time.Time
}

// summaryCache keeps recently computed dashboards per user. A non-positive
// ttl disables caching.
//
// Every invalidation bumps the user's generation. A dashboard computed from
// reads that started before an invalidation is not stored.
type summaryCache struct {
	ttl time.Duration
	loc *time.Location
	now func() time.Time

	mu          sync.Mutex
	entries     map[uuid.UUID]cachedDashboard
	generations map[uuid.UUID]uint64
}

func newSummaryCache(ttl time.Duration, loc *time.Location, now func() time.Time) *summaryCache {
	if loc == nil {
		loc = time.UTC
	}
	return &summaryCache{
		ttl:         ttl,
		loc:         loc,
		now:         now,
		entries:     make(map[uuid.UUID]cachedDashboard),
		generations: make(map[uuid.UUID]uint64),
	}
}

func (c *summaryCache) get(userID uuid.UUID) (Dashboard, bool) {
	if c.ttl <= 0 {
		return Dashboard{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[userID]
	if !ok {
		return Dashboard{}, false
	}
	if !c.now().Before(entry.expires) {
		delete(c.entries, userID)
		return Dashboard{}, false
	}
	return entry.dashboard, true
}

// generation returns the user's current generation. Take it before reading
// the data a dashboard is computed from.
func (c *summaryCache) generation(userID uuid.UUID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userID]
}

// put stores d unless the user was invalidated since gen was taken. Entries
// never outlive the local day they were computed on, since the streak
// depends on it.
func (c *summaryCache) put(userID uuid.UUID, gen uint64, d Dashboard) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[userID] != gen {
		return
	}

	now := c.now()
	expires := now.Add(c.ttl)
	if midnight := nextMidnight(now, c.loc); midnight.Before(expires) {
		expires = midnight
	}
	c.entries[userID] = cachedDashboard{dashboard: d, expires: expires}
}

func (c *summaryCache) invalidate(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.generations[userID]++
}

// HandleEvent drops the cached dashboard of the event's user. Every
// activity type changes something the dashboard shows.
func (c *summaryCache) HandleEvent(_ context.Context, event *events.ActivityEvent) error {
	if event != nil {
		c.invalidate(event.UserID)
	}
	return nil
}

func nextMidnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}
