// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package mempool

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macfarla/linea-sequencer/common/config"
)

func newTestPool(t *testing.T, maxSizeBytes uint64) *BundlePool {
	t.Helper()
	return NewBundlePool(&config.Configuration{
		DataDir:                t.TempDir(),
		BundlePoolMaxSizeBytes: maxSizeBytes,
	})
}

func TestPoolPutGetRemove(t *testing.T) {
	pool := newTestPool(t, 1<<20)
	bundle := newTestBundle(t, 100, 2)
	hash := bundle.BundleIdentifier()

	assert.Nil(t, pool.Get(hash))
	assert.Equal(t, 0, pool.Size())

	pool.PutOrReplace(hash, bundle)
	assert.Same(t, bundle, pool.Get(hash))
	assert.Equal(t, 1, pool.Size())
	require.Len(t, pool.GetBundlesByBlockNumber(100), 1)

	assert.True(t, pool.Remove(hash))
	assert.Nil(t, pool.Get(hash))
	assert.Empty(t, pool.GetBundlesByBlockNumber(100))
}

func TestPoolRemoveAbsentIsNoOp(t *testing.T) {
	pool := newTestPool(t, 1<<20)
	bundle := newTestBundle(t, 100, 1)
	pool.PutOrReplace(bundle.BundleIdentifier(), bundle)

	assert.False(t, pool.Remove(testBundleHash(999)))
	assert.Equal(t, 1, pool.Size())
	assert.Len(t, pool.GetBundlesByBlockNumber(100), 1)
}

func TestPoolReplaceUpdatesBlockIndex(t *testing.T) {
	pool := newTestPool(t, 1<<20)
	hash := testBundleHash(1)
	original := newTestBundle(t, 100, 1)
	replacement := newTestBundle(t, 200, 1)

	pool.PutOrReplace(hash, original)
	pool.PutOrReplace(hash, replacement)

	assert.Same(t, replacement, pool.Get(hash))
	assert.Equal(t, 1, pool.Size())
	// replacement is a full swap, the old target bucket must be gone
	assert.Empty(t, pool.GetBundlesByBlockNumber(100))
	require.Len(t, pool.GetBundlesByBlockNumber(200), 1)
}

func TestPoolEvictionKeepsIndexConsistent(t *testing.T) {
	bundleA := newTestBundle(t, 100, 1)
	bundleB := newTestBundle(t, 100, 1)
	pool := newTestPool(t, bundleA.Weight()+bundleB.Weight()-1)

	pool.PutOrReplace(bundleA.BundleIdentifier(), bundleA)
	pool.PutOrReplace(bundleB.BundleIdentifier(), bundleB)

	// exactly one of the two survived, in both store and index
	assert.Equal(t, 1, pool.Size())
	bucket := pool.GetBundlesByBlockNumber(100)
	require.Len(t, bucket, 1)
	survivor := bucket[0]
	assert.Same(t, survivor, pool.Get(survivor.BundleIdentifier()))

	evictedHash := bundleA.BundleIdentifier()
	if survivor == bundleA {
		evictedHash = bundleB.BundleIdentifier()
	}
	assert.Nil(t, pool.Get(evictedHash))
	assert.False(t, pool.blockIndex.contains(100, evictedHash))
}

func TestPoolRemoveByBlockNumber(t *testing.T) {
	pool := newTestPool(t, 1<<20)
	first := newTestBundle(t, 100, 1)
	second := newTestBundle(t, 100, 2)
	other := newTestBundle(t, 200, 1)
	pool.PutOrReplace(first.BundleIdentifier(), first)
	pool.PutOrReplace(second.BundleIdentifier(), second)
	pool.PutOrReplace(other.BundleIdentifier(), other)

	pool.RemoveByBlockNumber(100)

	assert.Nil(t, pool.Get(first.BundleIdentifier()))
	assert.Nil(t, pool.Get(second.BundleIdentifier()))
	assert.Same(t, other, pool.Get(other.BundleIdentifier()))
	assert.Empty(t, pool.GetBundlesByBlockNumber(100))
	assert.Equal(t, 1, pool.Size())
}

func TestPoolUUIDOperations(t *testing.T) {
	pool := newTestPool(t, 1<<20)
	replacementUUID := uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479")
	bundle := newTestBundle(t, 100, 1)

	pool.PutOrReplaceByUUID(replacementUUID, bundle)

	assert.Same(t, bundle, pool.GetByUUID(replacementUUID))
	assert.Same(t, bundle, pool.Get(UUIDToHash(replacementUUID)))

	assert.True(t, pool.RemoveByUUID(replacementUUID))
	assert.Nil(t, pool.GetByUUID(replacementUUID))
	assert.False(t, pool.RemoveByUUID(replacementUUID))
}

func TestPoolOnBlockAddedCullsStaleBuckets(t *testing.T) {
	pool := newTestPool(t, 1<<20)
	for _, blockNumber := range []uint64{90, 100, 120, 150, 200} {
		bundle := newTestBundle(t, blockNumber, 1)
		pool.PutOrReplace(bundle.BundleIdentifier(), bundle)
	}

	pool.OnBlockAdded(90)
	assert.Equal(t, uint64(90), pool.MaxBlockHeight())
	assert.Equal(t, 5, pool.Size())

	pool.OnBlockAdded(150)
	assert.Equal(t, uint64(150), pool.MaxBlockHeight())
	assert.Empty(t, pool.GetBundlesByBlockNumber(90))
	assert.Empty(t, pool.GetBundlesByBlockNumber(100))
	assert.Empty(t, pool.GetBundlesByBlockNumber(120))
	assert.Len(t, pool.GetBundlesByBlockNumber(150), 1)
	assert.Len(t, pool.GetBundlesByBlockNumber(200), 1)
	assert.Equal(t, 2, pool.Size())
}

func TestPoolOnBlockAddedIsMonotonic(t *testing.T) {
	pool := newTestPool(t, 1<<20)
	kept := newTestBundle(t, 200, 1)
	pool.PutOrReplace(kept.BundleIdentifier(), kept)

	pool.OnBlockAdded(150)
	pool.OnBlockAdded(120)

	// the mark never moves backwards and nothing further is culled
	assert.Equal(t, uint64(150), pool.MaxBlockHeight())
	assert.Same(t, kept, pool.Get(kept.BundleIdentifier()))
}

func TestPoolConcurrentMutation(t *testing.T) {
	pool := newTestPool(t, 1<<20)

	bundles := make([][]*TransactionBundle, 8)
	for worker := range bundles {
		for i := 0; i < 50; i++ {
			bundles[worker] = append(bundles[worker],
				newTestBundle(t, uint64(100+worker), 1+i%2))
		}
	}

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i, bundle := range bundles[worker] {
				pool.PutOrReplace(bundle.BundleIdentifier(), bundle)
				pool.Get(bundle.BundleIdentifier())
				pool.GetBundlesByBlockNumber(bundle.BlockNumber())
				if i%5 == 0 {
					pool.Remove(bundle.BundleIdentifier())
				}
			}
		}(worker)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for height := uint64(90); height <= 104; height++ {
			pool.OnBlockAdded(height)
		}
	}()
	wg.Wait()

	// whatever survived must be consistent between store and index
	for _, bundle := range pool.blockIndex.all() {
		assert.Same(t, bundle, pool.Get(bundle.BundleIdentifier()))
	}
	assert.Equal(t, uint64(104), pool.MaxBlockHeight())
}
