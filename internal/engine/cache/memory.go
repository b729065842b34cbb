package cache

import (
	"container/list"
)

// memoryTier is the bounded in-memory LRU tier. It is not safe for
// concurrent use on its own; the Store serializes access to it.
type memoryTier struct {
	capacity int
	order    *list.List // front = most recently used
	items    map[string]*list.Element
}

func newMemoryTier(capacity int) *memoryTier {
	return &memoryTier{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// get returns the entry for key and promotes it to most recently used.
// Expired entries are removed and reported as absent.
func (m *memoryTier) get(key string) (Entry, bool) {
	elem, ok := m.items[key]
	if !ok {
		return Entry{}, false
	}

	entry := elem.Value.(Entry)
	if entry.IsExpired() {
		m.remove(elem)
		return Entry{}, false
	}

	m.order.MoveToFront(elem)
	return entry, true
}

// put inserts or overwrites the entry for key, evicting the least
// recently used entry first when the tier is at capacity.
func (m *memoryTier) put(entry Entry) {
	if elem, ok := m.items[entry.Key]; ok {
		elem.Value = entry
		m.order.MoveToFront(elem)
		return
	}

	if m.order.Len() >= m.capacity {
		m.evictOldest()
	}

	m.items[entry.Key] = m.order.PushFront(entry)
}

// evictOldest drops the entry at the back of the recency list.
func (m *memoryTier) evictOldest() {
	oldest := m.order.Back()
	if oldest != nil {
		m.remove(oldest)
	}
}

func (m *memoryTier) remove(elem *list.Element) {
	entry := elem.Value.(Entry)
	m.order.Remove(elem)
	delete(m.items, entry.Key)
}

func (m *memoryTier) clear() {
	m.order.Init()
	m.items = make(map[string]*list.Element, m.capacity)
}

func (m *memoryTier) len() int {
	return m.order.Len()
}
