package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCacheMetadata(t *testing.T) {
	tests := []struct {
		name     string
		logs     string
		expected CacheMetadata
	}{
		{
			name:     "hit with height",
			logs:     `{"cache_hit": true, "cache_height": 1000}`,
			expected: CacheMetadata{CacheHit: true, CacheHeight: int64Ptr(1000), Source: CacheSourceNode},
		},
		{
			name:     "miss",
			logs:     `{"cache_hit": false}`,
			expected: CacheMetadata{CacheHit: false, Source: CacheSourceNode},
		},
		{
			name:     "disabled",
			logs:     `{"cache_disabled": true}`,
			expected: CacheMetadata{CacheDisabled: true},
		},
		{
			name:     "mixed lines, last notice wins",
			logs:     "plain text\n{\"cache_hit\": false}\n{not json\n  {\"cache_hit\": true, \"cache_height\": 42}",
			expected: CacheMetadata{CacheHit: true, CacheHeight: int64Ptr(42), Source: CacheSourceNode},
		},
		{
			name:     "no logs",
			logs:     "",
			expected: CacheMetadata{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCacheMetadata(tt.logs))
		})
	}
}

func TestAggregateCacheMetadata(t *testing.T) {
	stats := AggregateCacheMetadata([]CacheMetadata{{CacheHit: true}, {CacheHit: false}, {CacheHit: true}, {}})
	assert.Equal(t, 4, stats.Queries)
	assert.Equal(t, 2, stats.Hits)
	assert.Equal(t, 2, stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)

	assert.Equal(t, CacheStats{}, AggregateCacheMetadata(nil))
}

func int64Ptr(i int64) *int64 {
	return &i
}
