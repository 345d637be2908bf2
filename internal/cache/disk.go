package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// diskEntry is the self-contained on-disk record for one cache key.
type diskEntry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt int64           `json:"created_at"` // unix seconds
	ExpiresAt int64           `json:"expires_at"` // unix seconds
	Size      int64           `json:"size"`       // payload size in bytes
}

const diskEntryExt = ".json"

// initDiskTier creates the cache directory. On failure the manager
// degrades to memory-only operation.
func (m *Manager) initDiskTier() {
	if m.dir == "" {
		return
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		m.log.Warn("cache directory unavailable, running memory-only",
			zap.String("dir", m.dir), zap.Error(err))
		m.dir = ""
	}
}

// diskGet reads one entry from the disk tier. Expired or unreadable
// entries are treated as absent; expired files are removed best-effort.
func (m *Manager) diskGet(key string, now time.Time) ([]byte, bool) {
	if m.dir == "" {
		return nil, false
	}
	path := m.entryPath(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Warn("disk cache read failed, treating as miss",
				zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		m.log.Warn("disk cache entry corrupted, removing",
			zap.String("key", key), zap.Error(err))
		_ = os.Remove(path)
		return nil, false
	}

	if now.Unix() > entry.ExpiresAt {
		_ = os.Remove(path)
		return nil, false
	}
	return entry.Payload, true
}

// diskSet writes one entry atomically: marshal to a temp file in the
// same directory, then rename into place so concurrent readers never
// observe partial content. Failures are logged and dropped.
func (m *Manager) diskSet(key string, payload []byte, now time.Time) {
	if m.dir == "" {
		return
	}

	entry := diskEntry{
		Key:       key,
		Payload:   json.RawMessage(payload),
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(m.diskTTL).Unix(),
		Size:      int64(len(payload)),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		m.log.Warn("disk cache entry marshal failed, dropping write",
			zap.String("key", key), zap.Error(err))
		return
	}

	tmp, err := os.CreateTemp(m.dir, key+".tmp-*")
	if err != nil {
		m.log.Warn("disk cache write failed, dropping write",
			zap.String("key", key), zap.Error(err))
		return
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		m.log.Warn("disk cache write failed, dropping write",
			zap.String("key", key), zap.Error(err))
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		m.log.Warn("disk cache write failed, dropping write",
			zap.String("key", key), zap.Error(err))
		return
	}
	if err := os.Rename(tmpName, m.entryPath(key)); err != nil {
		_ = os.Remove(tmpName)
		m.log.Warn("disk cache rename failed, dropping write",
			zap.String("key", key), zap.Error(err))
		return
	}

	m.enforceSizeCap()
}

// Cleanup removes stale disk entries and returns the count removed.
// Safe to call concurrently with reads; the atomic-rename write pattern
// means readers never observe torn entries.
func (m *Manager) Cleanup() int {
	if m.dir == "" {
		return 0
	}
	now := m.nowFn().Unix()

	removed := 0
	for _, meta := range m.listEntries() {
		if now > meta.expiresAt {
			if err := os.Remove(meta.path); err == nil {
				removed++
			}
		}
	}
	if removed > 0 {
		m.log.Info("cache cleanup removed stale entries", zap.Int("removed", removed))
	}
	return removed
}

// entryMeta is the on-disk bookkeeping view used by cleanup/eviction.
type entryMeta struct {
	path      string
	createdAt int64
	expiresAt int64
	size      int64
}

// listEntries scans the disk tier. Unreadable entries are skipped; their
// removal is left to the corrupted-entry path in diskGet.
func (m *Manager) listEntries() []entryMeta {
	dirents, err := os.ReadDir(m.dir)
	if err != nil {
		m.log.Warn("disk cache scan failed", zap.Error(err))
		return nil
	}

	metas := make([]entryMeta, 0, len(dirents))
	for _, de := range dirents {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, diskEntryExt) {
			continue
		}
		path := filepath.Join(m.dir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry diskEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		metas = append(metas, entryMeta{
			path:      path,
			createdAt: entry.CreatedAt,
			expiresAt: entry.ExpiresAt,
			size:      int64(len(data)),
		})
	}
	return metas
}

// enforceSizeCap evicts oldest entries first until total disk usage is
// back under the configured bound. The bound is approximate; the cache
// is not correctness-critical.
func (m *Manager) enforceSizeCap() {
	metas := m.listEntries()

	var total int64
	for _, meta := range metas {
		total += meta.size
	}
	if total <= m.maxBytes {
		return
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].createdAt < metas[j].createdAt
	})
	for _, meta := range metas {
		if total <= m.maxBytes {
			break
		}
		if err := os.Remove(meta.path); err != nil {
			m.log.Warn("disk cache eviction failed", zap.String("path", meta.path), zap.Error(err))
			continue
		}
		total -= meta.size
	}
}

func (m *Manager) entryPath(key string) string {
	return filepath.Join(m.dir, key+diskEntryExt)
}
