package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/huangsam/foilact/core/report"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// currentCacheVersion defines the version of the cached report schema
const currentCacheVersion = 1

// cacheMaxAge is how long a cached report stays valid
const cacheMaxAge = 7 * 24 * time.Hour

// cachedParseReport parses a report file, going through the report cache when the
// context carries a store manager with one. Parse failures are never cached; empty
// reports are, and come back with their EmptyResultError.
func cachedParseReport(ctx context.Context, path string, info fs.FileInfo, sw schema.Software) (*schema.Report, error) {
	mgr := storeManagerFromContext(ctx)
	if mgr == nil {
		return report.ParseFile(path, sw)
	}
	reports := mgr.GetReportCache()
	if reports == nil {
		// Fallback to direct parsing
		return report.ParseFile(path, sw)
	}

	key := generateCacheKey(path, info, sw)

	// Check for cache hit
	if rep := checkCacheHit(reports, key); rep != nil {
		contract.LogDebug("Report cache hit", "report", path)
		if len(rep.Peaks) == 0 {
			return rep, &contract.EmptyResultError{Source: rep.Source}
		}
		return rep, nil
	}

	// Cache miss: parse and store
	return parseAndStore(reports, key, path, sw)
}

// checkCacheHit attempts to retrieve and validate a cached report
func checkCacheHit(reports contract.CacheStore, key string) *schema.Report {
	data, version, ts, err := reports.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion && time.Since(time.Unix(ts, 0)) <= cacheMaxAge {
		var rep schema.Report
		if err := json.Unmarshal(data, &rep); err == nil {
			return &rep // Cache hit
		}
	}
	return nil // Cache miss (stale or version mismatch)
}

// parseAndStore parses the report and stores it in the cache
func parseAndStore(reports contract.CacheStore, key, path string, sw schema.Software) (*schema.Report, error) {
	rep, err := report.ParseFile(path, sw)
	if err != nil && !errors.Is(err, contract.ErrEmptyResult) {
		return nil, err
	}

	if data, mErr := json.Marshal(rep); mErr == nil {
		if sErr := reports.Set(key, data, currentCacheVersion, time.Now().Unix()); sErr != nil {
			contract.LogDebug("Report cache write failed", "report", path, "error", sErr)
		}
	}
	return rep, err
}

// generateCacheKey identifies a report by variant, path, size and modification time
func generateCacheKey(path string, info fs.FileInfo, sw schema.Software) string {
	key := fmt.Sprintf("%s:%s:%d:%d", sw, path, info.Size(), info.ModTime().UnixNano())
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
