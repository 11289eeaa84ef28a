package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dharsanguruparan/watchme-vault/internal/model"
)

// MemoryRegistrar keeps recordings in a map. It backs DATABASE_DRIVER=memory
// for local runs and enforces the same uniqueness rule as the SQL table.
type MemoryRegistrar struct {
	mu         sync.RWMutex
	recordings map[string]model.Recording
}

// NewMemoryRegistrar constructs an empty in-memory registrar.
func NewMemoryRegistrar() *MemoryRegistrar {
	return &MemoryRegistrar{recordings: make(map[string]model.Recording)}
}

func memoryKey(deviceID, recordedAt string) string {
	return deviceID + "\x00" + recordedAt
}

// Register stores rec unless the (device, recorded-at) pair is taken.
func (m *MemoryRegistrar) Register(ctx context.Context, rec model.Recording) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memoryKey(rec.DeviceID, rec.RecordedAt.String())
	if _, ok := m.recordings[key]; ok {
		return fmt.Errorf("%w: device %s at %s", ErrDuplicate, rec.DeviceID, rec.RecordedAt)
	}
	if rec.Status == "" {
		rec.Status = model.StatusPending
	}
	rec.CreatedAt = time.Now().UTC()
	m.recordings[key] = rec
	return nil
}

// Get returns the recording for deviceID and the RFC 3339 recorded-at text.
func (m *MemoryRegistrar) Get(deviceID, recordedAt string) (model.Recording, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recordings[memoryKey(deviceID, recordedAt)]
	return rec, ok
}

func (m *MemoryRegistrar) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.recordings)
}

func (m *MemoryRegistrar) Configured() bool { return m != nil }
