package repository

import (
	"context"
	"sync"
	"time"

	"hotelier/internal/models"
)

type memoryEntry struct {
	hotels    []models.HotelAvailability
	expiresAt time.Time
}

// MemoryAvailabilityCache is the in-process fallback cache used when redis
// is down or not configured. Entries expire lazily on read.
type MemoryAvailabilityCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryAvailabilityCache() *MemoryAvailabilityCache {
	return &MemoryAvailabilityCache{entries: make(map[string]memoryEntry)}
}

func (m *MemoryAvailabilityCache) Get(_ context.Context, key string) ([]models.HotelAvailability, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.hotels, true, nil
}

func (m *MemoryAvailabilityCache) Set(_ context.Context, key string, hotels []models.HotelAvailability, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{hotels: hotels, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryAvailabilityCache) Invalidate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	return nil
}
