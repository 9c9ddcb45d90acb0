package forecast

import (
	"container/list"
	"sync"
)

// daySummary holds the temperature reductions for one pinned day.
type daySummary struct {
	Min, Mean, Max int
}

type summaryEntry struct {
	day     string
	summary daySummary
}

// summaryCache keeps the most recently used daily summaries, keyed by
// pinned day. It is safe for concurrent use.
type summaryCache struct {
	mu    sync.Mutex
	limit int
	order *list.List // front is most recent
	byDay map[string]*list.Element
}

func newSummaryCache(limit int) *summaryCache {
	return &summaryCache{
		limit: max(limit, 1),
		order: list.New(),
		byDay: make(map[string]*list.Element),
	}
}

func (c *summaryCache) get(day string) (daySummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byDay[day]
	if !ok {
		return daySummary{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*summaryEntry).summary, true
}

// put stores s for day and drops the least recently used days beyond the
// limit.
func (c *summaryCache) put(day string, s daySummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byDay[day]; ok {
		el.Value.(*summaryEntry).summary = s
		c.order.MoveToFront(el)
		return
	}
	c.byDay[day] = c.order.PushFront(&summaryEntry{day: day, summary: s})

	for c.order.Len() > c.limit {
		oldest := c.order.Back()
		delete(c.byDay, c.order.Remove(oldest).(*summaryEntry).day)
	}
}

func (c *summaryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
