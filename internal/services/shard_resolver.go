package services

import (
	"hash/fnv"
)

// ResolveShard maps a tenant id onto one of shardCount buckets. The
// storage tree's tenantShard directory is derived from it, so the fan-out
// is stable across restarts.
func ResolveShard(tenantID string, shardCount int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tenantID))
	return int(h.Sum32()) % shardCount
}
