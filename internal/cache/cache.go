package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Tier identifies which cache tier served a lookup.
type Tier string

const (
	TierMemory Tier = "memory"
	TierDisk   Tier = "disk"
	TierNone   Tier = "none"
)

// Stats holds cumulative lookup counters since process start.
type Stats struct {
	TotalRequests uint64  `json:"total_requests"`
	MemoryHits    uint64  `json:"memory_hits"`
	DiskHits      uint64  `json:"disk_hits"`
	Misses        uint64  `json:"misses"`
	HitRate       float64 `json:"hit_rate"`
}

// Options configures the cache manager.
type Options struct {
	Dir           string        // disk tier directory
	MemoryTTL     time.Duration // short horizon
	DiskTTL       time.Duration // long horizon
	MaxBytes      int64         // disk tier size cap
	MemoryEntries int           // LRU capacity of the memory tier
}

// memoryEntry is a cached payload with its expiration time.
type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Manager is a two-tier query cache: a fast in-memory LRU tier and a
// durable on-disk tier with independent TTLs. The memory tier is a
// performance cache over entries also written to disk; neither tier
// ever returns a logically expired entry. Disk I/O failures degrade to
// misses and no-op writes, so the cache is never a reason retrieval fails.
type Manager struct {
	mem   *lru.Cache[string, *memoryEntry]
	memMu sync.RWMutex

	dir       string
	memoryTTL time.Duration
	diskTTL   time.Duration
	maxBytes  int64

	totalRequests atomic.Uint64
	memoryHits    atomic.Uint64
	diskHits      atomic.Uint64
	misses        atomic.Uint64

	// nowFn is replaced in tests to control entry age.
	nowFn func() time.Time

	log *zap.Logger
}

// NewManager creates the cache manager. The disk directory is created if
// missing; failure to create it leaves the manager running memory-only
// with a warning rather than failing construction.
func NewManager(opts Options, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MemoryTTL <= 0 || opts.DiskTTL <= 0 {
		return nil, fmt.Errorf("cache TTLs must be positive")
	}
	if opts.MemoryEntries <= 0 {
		opts.MemoryEntries = 1000
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 100 << 20
	}

	mem, err := lru.New[string, *memoryEntry](opts.MemoryEntries)
	if err != nil {
		return nil, fmt.Errorf("create memory tier: %w", err)
	}

	m := &Manager{
		mem:       mem,
		dir:       opts.Dir,
		memoryTTL: opts.MemoryTTL,
		diskTTL:   opts.DiskTTL,
		maxBytes:  opts.MaxBytes,
		nowFn:     time.Now,
		log:       log,
	}
	m.initDiskTier()
	return m, nil
}

// Key builds the cache key for a query and top_k pair. The query is
// normalized (trimmed, whitespace collapsed, ASCII lowercased) so
// trivially different spellings share an entry.
func Key(query string, topK int) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|k=%d", normalized, topK)))
	return hex.EncodeToString(sum[:])
}

// Get looks up a payload, memory tier first. An entry past its tier's
// TTL is treated as absent and removed. A disk hit repopulates the
// memory tier.
func (m *Manager) Get(key string) ([]byte, bool, Tier) {
	m.totalRequests.Add(1)
	now := m.nowFn()

	m.memMu.RLock()
	entry, found := m.mem.Get(key)
	m.memMu.RUnlock()

	if found {
		if now.Before(entry.expiresAt) {
			m.memoryHits.Add(1)
			return entry.payload, true, TierMemory
		}
		m.memMu.Lock()
		m.mem.Remove(key)
		m.memMu.Unlock()
	}

	if payload, ok := m.diskGet(key, now); ok {
		m.diskHits.Add(1)
		m.memAdd(key, payload, now)
		return payload, true, TierDisk
	}

	m.misses.Add(1)
	return nil, false, TierNone
}

// Set writes the payload through both tiers. The disk write is atomic
// (temp file then rename) and best-effort: an I/O failure leaves the
// memory tier populated and logs a warning.
func (m *Manager) Set(key string, payload []byte) {
	now := m.nowFn()
	m.memAdd(key, payload, now)
	m.diskSet(key, payload, now)
}

// Stats returns cumulative counters since process start. Purely
// observational; never mutates cache state.
func (m *Manager) Stats() Stats {
	s := Stats{
		TotalRequests: m.totalRequests.Load(),
		MemoryHits:    m.memoryHits.Load(),
		DiskHits:      m.diskHits.Load(),
		Misses:        m.misses.Load(),
	}
	if s.TotalRequests > 0 {
		s.HitRate = float64(s.MemoryHits+s.DiskHits) / float64(s.TotalRequests)
	}
	return s
}

// Purge empties the memory tier. Disk entries are left for Cleanup.
func (m *Manager) Purge() {
	m.memMu.Lock()
	m.mem.Purge()
	m.memMu.Unlock()
}

func (m *Manager) memAdd(key string, payload []byte, now time.Time) {
	entry := &memoryEntry{
		payload:   payload,
		expiresAt: now.Add(m.memoryTTL),
	}
	m.memMu.Lock()
	m.mem.Add(key, entry)
	m.memMu.Unlock()
}
