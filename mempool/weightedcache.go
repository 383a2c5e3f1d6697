// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package mempool

import (
	"container/list"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// EvictionPolicy selects which entries the weighted cache drops when its
// total weight exceeds capacity. The cache serializes all calls, so
// implementations need no internal locking. The pool contract only fixes the
// capacity invariant and the eviction notification; the victim order is up to
// the policy.
type EvictionPolicy interface {
	// Added records a newly inserted key.
	Added(key common.Hash)
	// Accessed records a lookup hit for key.
	Accessed(key common.Hash)
	// Removed forgets key, whatever the removal reason.
	Removed(key common.Hash)
	// Victim picks the next key to evict. It returns false only when the
	// policy tracks no keys.
	Victim() (common.Hash, bool)
}

// lruPolicy evicts the least recently used entry first. Insertion and lookup
// hits both refresh recency.
type lruPolicy struct {
	order    *list.List
	elements map[common.Hash]*list.Element
}

// NewLRUPolicy returns the default victim-selection policy of the bundle
// pool: least recently used first.
func NewLRUPolicy() EvictionPolicy {
	return &lruPolicy{
		order:    list.New(),
		elements: make(map[common.Hash]*list.Element),
	}
}

func (p *lruPolicy) Added(key common.Hash) {
	if elem, ok := p.elements[key]; ok {
		p.order.MoveToFront(elem)
		return
	}
	p.elements[key] = p.order.PushFront(key)
}

func (p *lruPolicy) Accessed(key common.Hash) {
	if elem, ok := p.elements[key]; ok {
		p.order.MoveToFront(elem)
	}
}

func (p *lruPolicy) Removed(key common.Hash) {
	if elem, ok := p.elements[key]; ok {
		p.order.Remove(elem)
		delete(p.elements, key)
	}
}

func (p *lruPolicy) Victim() (common.Hash, bool) {
	back := p.order.Back()
	if back == nil {
		return common.Hash{}, false
	}
	return back.Value.(common.Hash), true
}

// weightedCache is the primary bundle store: identifier to bundle, bounded by
// total byte weight. When an insert pushes the total weight over capacity the
// eviction policy picks victims until the weight fits again, and every such
// capacity-driven removal fires the onEvict notification. Explicit removals
// do not notify.
//
// All methods are safe for concurrent use. onEvict runs with the cache lock
// held; it may take the block index lock but must never call back into the
// cache (lock order is cache before index).
type weightedCache struct {
	mtx sync.Mutex

	capacity uint64
	weight   uint64
	entries  map[common.Hash]*TransactionBundle
	policy   EvictionPolicy
	onEvict  func(*TransactionBundle)
}

func newWeightedCache(capacity uint64, policy EvictionPolicy,
	onEvict func(*TransactionBundle)) *weightedCache {
	return &weightedCache{
		capacity: capacity,
		entries:  make(map[common.Hash]*TransactionBundle),
		policy:   policy,
		onEvict:  onEvict,
	}
}

// put inserts or fully replaces the entry for key, then evicts until the
// total weight is back within capacity. The victims are not necessarily
// distinct from the entry just inserted.
func (c *weightedCache) put(key common.Hash, bundle *TransactionBundle) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if prev, ok := c.entries[key]; ok {
		c.weight -= prev.Weight()
		c.policy.Removed(key)
	}
	c.entries[key] = bundle
	c.weight += bundle.Weight()
	c.policy.Added(key)

	for c.weight > c.capacity {
		victim, ok := c.policy.Victim()
		if !ok {
			break
		}
		evicted := c.entries[victim]
		delete(c.entries, victim)
		c.weight -= evicted.Weight()
		c.policy.Removed(victim)
		c.onEvict(evicted)
	}
}

func (c *weightedCache) get(key common.Hash) (*TransactionBundle, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	bundle, ok := c.entries[key]
	if ok {
		c.policy.Accessed(key)
	}
	return bundle, ok
}

// peek is get without refreshing the entry's standing with the policy.
func (c *weightedCache) peek(key common.Hash) (*TransactionBundle, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	bundle, ok := c.entries[key]
	return bundle, ok
}

// remove drops the entry for key if present and reports whether it existed.
// It never fires the eviction notification; the caller is responsible for
// keeping the block index in sync.
func (c *weightedCache) remove(key common.Hash) (*TransactionBundle, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	bundle, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	delete(c.entries, key)
	c.weight -= bundle.Weight()
	c.policy.Removed(key)
	return bundle, true
}

// estimatedSize is the live entry count. It is exact for this in-process
// cache, but callers should treat it as an estimate per the pool contract.
func (c *weightedCache) estimatedSize() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return len(c.entries)
}

func (c *weightedCache) totalWeight() uint64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.weight
}
