package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/internal/ingest"
	"github.com/huangsam/donorlens/schema"
)

// maxCacheAge bounds how long a cached ingest result stays valid
const maxCacheAge = 7 * 24 * time.Hour

// cachedIngest reads the gift file, reusing a cached parse when the file bytes are unchanged.
func cachedIngest(path string, mgr contract.StoreManager) (*ingest.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", path, err)
	}

	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetIngestStore()
	}
	if store == nil {
		// Fallback to direct parsing
		return ingest.ReadCSV(bytes.NewReader(data))
	}

	key := generateCacheKey(data)

	// Check for cache hit
	if result := checkCacheHit(store, key); result != nil {
		return result, nil
	}

	// Cache miss: parse and store
	return computeAndStore(store, data, key)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) *ingest.Result {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == schema.IngestCacheVersion {
		if time.Since(time.Unix(ts, 0)) <= maxCacheAge {
			var result ingest.Result
			if err := json.Unmarshal(data, &result); err == nil {
				return &result // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// computeAndStore parses the input and stores the result in cache
func computeAndStore(store contract.CacheStore, data []byte, key string) (*ingest.Result, error) {
	result, err := ingest.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(result); err == nil {
		if err := store.Set(key, payload, schema.IngestCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to store ingest cache entry", err)
		}
	}

	return result, nil
}

// generateCacheKey hashes the raw input bytes
func generateCacheKey(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
