package tfbuffer

import (
	"sync"
	"time"

	"blainsmith.com/go/seahash"

	"github.com/grailbio/tf/tfchain"
	"github.com/grailbio/tf/tfcore"
)

// numEdgeShards mirrors bamprovider.numConcurrentMapShards: enough shards
// that real frame-graph sizes (tens to low thousands of edges) spread
// thinly across them.
const numEdgeShards = 256

type edgeShard struct {
	mu     sync.Mutex
	chains map[tfcore.EdgeKey]*tfchain.Chain
}

// edgeStore is a sharded, thread-safe map from edge key to its chain,
// the same sharding-by-hash trick bamprovider's concurrentMap uses for
// mate lookups, applied here to per-edge histories instead of SAM mate
// records.
type edgeStore struct {
	shards        [numEdgeShards]edgeShard
	cacheDuration time.Duration
}

func newEdgeStore(cacheDuration time.Duration) *edgeStore {
	s := &edgeStore{cacheDuration: cacheDuration}
	for i := range s.shards {
		s.shards[i].chains = make(map[tfcore.EdgeKey]*tfchain.Chain)
	}
	return s
}

func (s *edgeStore) shardFor(key tfcore.EdgeKey) *edgeShard {
	h := seahash.Sum64([]byte(key.Parent + "\x00" + key.Child))
	return &s.shards[h%uint64(numEdgeShards)]
}

// getOrCreate returns the chain for key, creating a new one with the given
// static flag if none exists. It reports the existing chain's static flag
// so the caller can enforce invariant 3 (static/dynamic consistency;
// spec.md 3) without edgeStore itself needing to know about tferrors.
func (s *edgeStore) getOrCreate(key tfcore.EdgeKey, isStatic bool) (chain *tfchain.Chain, existingIsStatic bool, created bool) {
	shard := s.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if c, ok := shard.chains[key]; ok {
		return c, c.IsStatic(), false
	}
	c := tfchain.New(key.Parent, key.Child, isStatic, s.cacheDuration)
	shard.chains[key] = c
	return c, isStatic, true
}

// get returns the chain for key, if one has been created.
func (s *edgeStore) get(key tfcore.EdgeKey) (*tfchain.Chain, bool) {
	shard := s.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	c, ok := shard.chains[key]
	return c, ok
}
