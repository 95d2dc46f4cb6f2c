package types

import (
	"encoding/json"
	"strings"
)

// Cache sources.
const (
	CacheSourceNode   = "node"
	CacheSourceClient = "client"
)

// CacheMetadata reports whether a read was served from a cache and how fresh it is.
// A miss is never an error; it is CacheHit=false.
type CacheMetadata struct {
	CacheHit      bool   `json:"cache_hit"`
	CacheDisabled bool   `json:"cache_disabled,omitempty"`
	CacheHeight   *int64 `json:"cache_height,omitempty"` // block height the cached data was taken at
	Source        string `json:"source,omitempty"`
	Action        string `json:"action,omitempty"`
	RowsServed    int    `json:"rows_served,omitempty"`
}

// ParseCacheMetadata reads the JSON notice lines a node appends to call logs.
// Non-JSON lines are ignored; later lines override earlier ones.
func ParseCacheMetadata(logs string) CacheMetadata {
	md := CacheMetadata{}
	for _, line := range strings.Split(logs, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] != '{' {
			continue
		}
		var notice struct {
			CacheHit      *bool    `json:"cache_hit"`
			CacheDisabled *bool    `json:"cache_disabled"`
			CacheHeight   *float64 `json:"cache_height"`
		}
		if err := json.Unmarshal([]byte(line), &notice); err != nil {
			continue
		}
		if notice.CacheHit != nil {
			md.CacheHit = *notice.CacheHit
			md.Source = CacheSourceNode
		}
		if notice.CacheDisabled != nil {
			md.CacheDisabled = *notice.CacheDisabled
		}
		if notice.CacheHeight != nil {
			h := int64(*notice.CacheHeight)
			md.CacheHeight = &h
		}
	}
	return md
}

// CacheStats aggregates metadata across several reads.
type CacheStats struct {
	Queries int     `json:"queries"`
	Hits    int     `json:"hits"`
	Misses  int     `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

func AggregateCacheMetadata(entries []CacheMetadata) CacheStats {
	s := CacheStats{Queries: len(entries)}
	for _, e := range entries {
		if e.CacheHit {
			s.Hits++
		}
	}
	s.Misses = s.Queries - s.Hits
	if s.Queries > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Queries)
	}
	return s
}
