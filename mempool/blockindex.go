// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package mempool

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/huandu/skiplist"
)

// blockIndex is the secondary index of the pool: target block number to the
// bucket of bundles aimed at it. Buckets are created on demand and deleted as
// soon as they drain, so no empty buckets persist. The skiplist keeps the
// bucket keys ordered, which makes culling below a height and the
// deterministic ascending save order plain traversals.
//
// All methods are safe for concurrent use.
type blockIndex struct {
	mtx sync.RWMutex

	buckets *skiplist.SkipList // uint64 -> []*TransactionBundle
}

func newBlockIndex() *blockIndex {
	return &blockIndex{
		buckets: skiplist.New(skiplist.Uint64),
	}
}

// add appends the bundle to the bucket of its target block.
func (idx *blockIndex) add(bundle *TransactionBundle) {
	idx.mtx.Lock()
	defer idx.mtx.Unlock()

	var bucket []*TransactionBundle
	if elem := idx.buckets.Get(bundle.blockNumber); elem != nil {
		bucket = elem.Value.([]*TransactionBundle)
	}
	idx.buckets.Set(bundle.blockNumber, append(bucket, bundle))
}

// remove drops the bundle from its bucket, deleting the bucket when it
// becomes empty.
func (idx *blockIndex) remove(bundle *TransactionBundle) {
	idx.mtx.Lock()
	defer idx.mtx.Unlock()

	elem := idx.buckets.Get(bundle.blockNumber)
	if elem == nil {
		return
	}
	bucket := elem.Value.([]*TransactionBundle)
	remaining := make([]*TransactionBundle, 0, len(bucket))
	for _, indexed := range bucket {
		if indexed.bundleIdentifier != bundle.bundleIdentifier {
			remaining = append(remaining, indexed)
		}
	}
	if len(remaining) == 0 {
		idx.buckets.Remove(bundle.blockNumber)
		return
	}
	idx.buckets.Set(bundle.blockNumber, remaining)
}

// getByBlockNumber returns a copy of the bucket for the given block number,
// or an empty slice when there is none.
func (idx *blockIndex) getByBlockNumber(blockNumber uint64) []*TransactionBundle {
	idx.mtx.RLock()
	defer idx.mtx.RUnlock()

	elem := idx.buckets.Get(blockNumber)
	if elem == nil {
		return nil
	}
	bucket := elem.Value.([]*TransactionBundle)
	out := make([]*TransactionBundle, len(bucket))
	copy(out, bucket)
	return out
}

// detach atomically removes the whole bucket for the given block number and
// returns its contents.
func (idx *blockIndex) detach(blockNumber uint64) []*TransactionBundle {
	idx.mtx.Lock()
	defer idx.mtx.Unlock()

	elem := idx.buckets.Remove(blockNumber)
	if elem == nil {
		return nil
	}
	return elem.Value.([]*TransactionBundle)
}

// keysBelow snapshots the bucket keys strictly less than the limit, in
// ascending order. Snapshotting first lets the caller remove buckets while
// new insertions keep landing concurrently.
func (idx *blockIndex) keysBelow(limit uint64) []uint64 {
	idx.mtx.RLock()
	defer idx.mtx.RUnlock()

	var keys []uint64
	for elem := idx.buckets.Front(); elem != nil; elem = elem.Next() {
		key := elem.Key().(uint64)
		if key >= limit {
			break
		}
		keys = append(keys, key)
	}
	return keys
}

// all returns every indexed bundle ordered by target block ascending, and by
// insertion order within a block.
func (idx *blockIndex) all() []*TransactionBundle {
	idx.mtx.RLock()
	defer idx.mtx.RUnlock()

	var bundles []*TransactionBundle
	for elem := idx.buckets.Front(); elem != nil; elem = elem.Next() {
		bundles = append(bundles, elem.Value.([]*TransactionBundle)...)
	}
	return bundles
}

// contains reports whether the bundle identifier sits in the bucket of the
// given block number.
func (idx *blockIndex) contains(blockNumber uint64, identifier common.Hash) bool {
	idx.mtx.RLock()
	defer idx.mtx.RUnlock()

	elem := idx.buckets.Get(blockNumber)
	if elem == nil {
		return false
	}
	for _, indexed := range elem.Value.([]*TransactionBundle) {
		if indexed.bundleIdentifier == identifier {
			return true
		}
	}
	return false
}
