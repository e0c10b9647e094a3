// Package cache stores downloaded job logs on disk so repeated
// invocations against the same job skip the download. Completed job logs
// never change, which makes them safe to cache; entries still expire so
// the directory cannot grow without bound.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type LogCache struct {
	dir     string
	maxSize int64
	ttl     time.Duration
}

func NewLogCache(dir string, maxSizeMB int, ttl time.Duration) (*LogCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log cache dir: %w", err)
	}
	return &LogCache{
		dir:     dir,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		ttl:     ttl,
	}, nil
}

func (lc *LogCache) jobPath(jobID int64, attempt int) string {
	return filepath.Join(lc.dir, fmt.Sprintf("job-%d-attempt-%d.log", jobID, attempt))
}

// Get returns the cached log for a job attempt, or ok=false when the
// entry is missing or older than the TTL.
func (lc *LogCache) Get(jobID int64, attempt int) (string, bool) {
	path := lc.jobPath(jobID, attempt)
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) > lc.ttl {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Put stores a job log. Write failures are returned but callers treat
// the cache as best-effort and carry on with the in-memory copy.
func (lc *LogCache) Put(jobID int64, attempt int, content string) error {
	if err := os.WriteFile(lc.jobPath(jobID, attempt), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write log cache entry: %w", err)
	}
	return nil
}

// Evict removes expired entries, then oldest-first until the total size
// fits under the cap.
func (lc *LogCache) Evict() error {
	type entry struct {
		path    string
		modTime time.Time
		size    int64
	}

	dirEntries, err := os.ReadDir(lc.dir)
	if err != nil {
		return err
	}

	var entries []entry
	var totalSize int64
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, entry{
			path:    filepath.Join(lc.dir, de.Name()),
			modTime: info.ModTime(),
			size:    info.Size(),
		})
		totalSize += info.Size()
	}

	now := time.Now()
	remaining := entries[:0]
	for _, e := range entries {
		if now.Sub(e.modTime) > lc.ttl {
			os.Remove(e.path)
			totalSize -= e.size
		} else {
			remaining = append(remaining, e)
		}
	}
	entries = remaining

	if totalSize > lc.maxSize {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].modTime.Before(entries[j].modTime)
		})
		for _, e := range entries {
			if totalSize <= lc.maxSize {
				break
			}
			os.Remove(e.path)
			totalSize -= e.size
		}
	}
	return nil
}
