package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// statsCacheVersion invalidates every cached entry when the statistics shape changes
const statsCacheVersion = "1"

// CacheManager caches computed statistics per stored session
type CacheManager struct {
	cacheDir string
}

// CacheMetadata stores metadata about the cache
type CacheMetadata struct {
	CacheVersion string    `yaml:"cache_version"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// StatsIndexEntry describes one cached statistics file
type StatsIndexEntry struct {
	ID           string    `yaml:"id"`
	ContentHash  string    `yaml:"content_hash"`
	Source       string    `yaml:"source,omitempty"`
	MessageCount int       `yaml:"message_count"`
	OptionsKey   string    `yaml:"options_key"`
	CachedAt     time.Time `yaml:"cached_at"`
}

// StatsIndex is the YAML index of cached statistics
type StatsIndex struct {
	Entries  []StatsIndexEntry `yaml:"entries"`
	Metadata CacheMetadata     `yaml:"metadata"`
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{
		cacheDir: cacheDir,
	}
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	return os.MkdirAll(cm.cacheDir, 0755)
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetIndexPath returns the path to the index YAML file
func (cm *CacheManager) GetIndexPath() string {
	return filepath.Join(cm.cacheDir, "sessions.yaml")
}

// GetStatsPath returns the path to a session's cached statistics
func (cm *CacheManager) GetStatsPath(sessionID string) string {
	return filepath.Join(cm.cacheDir, fmt.Sprintf("stats_%s.json", sessionID))
}

// OptionsKey fingerprints the aggregation options that change results
func OptionsKey(opts AggregateOptions) string {
	return fmt.Sprintf("v%s/top%d/gap%s/s%d-%d-%d", statsCacheVersion, opts.TopN, opts.ConversationGap,
		opts.Sampling.Threshold, opts.Sampling.Size, opts.Sampling.Seed)
}

// LoadIndex loads the stats index
func (cm *CacheManager) LoadIndex() (*StatsIndex, error) {
	data, err := os.ReadFile(cm.GetIndexPath())
	if err != nil {
		return nil, err
	}

	var index StatsIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}
	return &index, nil
}

// SaveIndex saves the stats index
func (cm *CacheManager) SaveIndex(index *StatsIndex) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	return os.WriteFile(cm.GetIndexPath(), data, 0644)
}

func (cm *CacheManager) loadOrNewIndex() *StatsIndex {
	index, err := cm.LoadIndex()
	if err == nil && index.Metadata.CacheVersion == statsCacheVersion {
		return index
	}
	now := time.Now()
	return &StatsIndex{
		Entries: make([]StatsIndexEntry, 0),
		Metadata: CacheMetadata{
			CacheVersion: statsCacheVersion,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

// LoadStats returns cached statistics when the entry matches the session content and options
func (cm *CacheManager) LoadStats(session *Session, optionsKey string) (*Statistics, bool) {
	index, err := cm.LoadIndex()
	if err != nil || index.Metadata.CacheVersion != statsCacheVersion {
		return nil, false
	}

	for _, entry := range index.Entries {
		if entry.ID != session.ID {
			continue
		}
		if entry.ContentHash != session.ContentHash || entry.OptionsKey != optionsKey {
			LogDebug("Stats cache stale for %s", session.ID)
			return nil, false
		}
		data, err := os.ReadFile(cm.GetStatsPath(session.ID))
		if err != nil {
			return nil, false
		}
		var stats Statistics
		if err := json.Unmarshal(data, &stats); err != nil {
			LogWarn("Ignoring corrupt stats cache %s: %v", cm.GetStatsPath(session.ID), err)
			return nil, false
		}
		return &stats, true
	}
	return nil, false
}

// SaveStats writes statistics for session and updates the index
func (cm *CacheManager) SaveStats(session *Session, optionsKey string, stats *Statistics) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	if err := os.WriteFile(cm.GetStatsPath(session.ID), data, 0644); err != nil {
		return err
	}

	index := cm.loadOrNewIndex()
	entry := StatsIndexEntry{
		ID:           session.ID,
		ContentHash:  session.ContentHash,
		Source:       session.Source,
		MessageCount: len(session.Records),
		OptionsKey:   optionsKey,
		CachedAt:     time.Now(),
	}

	found := false
	for i := range index.Entries {
		if index.Entries[i].ID == session.ID {
			index.Entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		index.Entries = append(index.Entries, entry)
	}
	index.Metadata.UpdatedAt = time.Now()
	return cm.SaveIndex(index)
}

// Invalidate drops one session's cached statistics
func (cm *CacheManager) Invalidate(sessionID string) error {
	index, err := cm.LoadIndex()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	kept := index.Entries[:0]
	for _, entry := range index.Entries {
		if entry.ID != sessionID {
			kept = append(kept, entry)
		}
	}
	index.Entries = kept

	if err := os.Remove(cm.GetStatsPath(sessionID)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return cm.SaveIndex(index)
}

// ClearCache clears the cache
func (cm *CacheManager) ClearCache() error {
	index, err := cm.LoadIndex()
	if err == nil {
		for _, entry := range index.Entries {
			_ = os.Remove(cm.GetStatsPath(entry.ID))
		}
	}

	if err := os.Remove(cm.GetIndexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
