// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package mempool

import (
	"path/filepath"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/macfarla/linea-sequencer/common/config"
)

// BundleSaveFilename is the file the pool persists to under the data
// directory.
const BundleSaveFilename = "bundles.dump"

// BundlePool holds candidate transaction bundles for the block builder until
// they are consumed or become stale. The primary store is a byte-weight
// bounded cache keyed by bundle identifier; a secondary index groups bundles
// by target block number. Every mutation path, including capacity evictions
// inside the cache, updates the index in the same logical operation, so a
// bundle is reachable through a block bucket exactly when it is retrievable
// from the cache.
//
// All methods are safe for concurrent use without external locking.
type BundlePool struct {
	cache      *weightedCache
	blockIndex *blockIndex

	saveFilePath   string
	maxBlockHeight atomic.Uint64
}

func NewBundlePool(params *config.Configuration) *BundlePool {
	pool := &BundlePool{
		blockIndex:   newBlockIndex(),
		saveFilePath: filepath.Join(params.DataDir, BundleSaveFilename),
	}
	pool.cache = newWeightedCache(params.BundlePoolMaxSizeBytes, NewLRUPolicy(),
		func(bundle *TransactionBundle) {
			log.Trace("Dropping transaction bundle",
				"block", bundle.blockNumber,
				"bundle", bundle.bundleIdentifier.Hex())
			pool.blockIndex.remove(bundle)
		})
	return pool
}

// Get returns the bundle stored under the given identifier, or nil.
func (pool *BundlePool) Get(hash common.Hash) *TransactionBundle {
	bundle, _ := pool.cache.get(hash)
	return bundle
}

// GetByUUID returns the bundle stored under the hash derived from the given
// replacement UUID, or nil.
func (pool *BundlePool) GetByUUID(replacementUUID uuid.UUID) *TransactionBundle {
	return pool.Get(UUIDToHash(replacementUUID))
}

// GetBundlesByBlockNumber returns all pooled bundles targeting the given
// block number, or an empty slice.
func (pool *BundlePool) GetBundlesByBlockNumber(blockNumber uint64) []*TransactionBundle {
	return pool.blockIndex.getByBlockNumber(blockNumber)
}

// PutOrReplace inserts the bundle under the given hash, fully replacing any
// bundle already stored there, and keeps the block index in step. Capacity
// pressure may evict other entries, or even the bundle just inserted when it
// alone exceeds the pool capacity.
func (pool *BundlePool) PutOrReplace(hash common.Hash, bundle *TransactionBundle) {
	if existing, ok := pool.cache.peek(hash); ok {
		pool.blockIndex.remove(existing)
	}
	// Index before inserting: should the cache immediately evict the new
	// bundle to restore capacity, the eviction notification must find it in
	// the index to unlink it.
	pool.blockIndex.add(bundle)
	pool.cache.put(hash, bundle)
}

// PutOrReplaceByUUID inserts the bundle under the hash derived from the given
// replacement UUID.
func (pool *BundlePool) PutOrReplaceByUUID(replacementUUID uuid.UUID, bundle *TransactionBundle) {
	pool.PutOrReplace(UUIDToHash(replacementUUID), bundle)
}

// Remove drops the bundle stored under the given hash and unlinks it from the
// block index, reporting whether an entry existed.
func (pool *BundlePool) Remove(hash common.Hash) bool {
	existing, ok := pool.cache.remove(hash)
	if !ok {
		return false
	}
	pool.blockIndex.remove(existing)
	return true
}

// RemoveByUUID drops the bundle stored under the hash derived from the given
// replacement UUID.
func (pool *BundlePool) RemoveByUUID(replacementUUID uuid.UUID) bool {
	return pool.Remove(UUIDToHash(replacementUUID))
}

// RemoveByBlockNumber detaches the whole bucket for the given block number
// and drops every bundle it referenced from the cache.
func (pool *BundlePool) RemoveByBlockNumber(blockNumber uint64) {
	for _, bundle := range pool.blockIndex.detach(blockNumber) {
		pool.cache.remove(bundle.bundleIdentifier)
	}
}

// Size is the approximate number of bundles currently pooled.
func (pool *BundlePool) Size() int {
	return pool.cache.estimatedSize()
}

// OnBlockAdded advances the high-water mark to the given height and culls
// every bucket strictly below it. Out-of-order or duplicate notifications are
// tolerated; the mark only moves forward. The policy is deliberately reorg
// unaware: once a height has been observed, bundles targeting lower heights
// are gone for good even if a reorg later reinstates such a height.
func (pool *BundlePool) OnBlockAdded(height uint64) {
	latest := pool.advanceMaxBlockHeight(height)
	for _, blockNumber := range pool.blockIndex.keysBelow(latest) {
		pool.RemoveByBlockNumber(blockNumber)
	}
}

// MaxBlockHeight is the highest block height observed so far.
func (pool *BundlePool) MaxBlockHeight() uint64 {
	return pool.maxBlockHeight.Load()
}

func (pool *BundlePool) advanceMaxBlockHeight(height uint64) uint64 {
	for {
		current := pool.maxBlockHeight.Load()
		if height <= current {
			return current
		}
		if pool.maxBlockHeight.CompareAndSwap(current, height) {
			return height
		}
	}
}
