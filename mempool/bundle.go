// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package mempool

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// TransactionBundle is an ordered group of transactions intended for a
// specific block, with an optional inclusive timestamp validity window and an
// optional set of transaction hashes that are allowed to revert without
// invalidating the bundle. A bundle is immutable once constructed; an update
// under the same identifier is a whole-object replacement, never a merge.
type TransactionBundle struct {
	bundleIdentifier    common.Hash
	pendingTransactions []*PendingBundleTx
	blockNumber         uint64
	minTimestamp        *uint64
	maxTimestamp        *uint64
	revertingTxHashes   []common.Hash
}

// PendingBundleTx wraps a transaction queued as part of a bundle. It carries
// the byte weight used for pool capacity accounting, a non-owning reference
// back to the owning bundle and a flag marking the first transaction of the
// bundle. The back reference is set at construction and never reassigned.
type PendingBundleTx struct {
	tx          *types.Transaction
	weight      uint64
	bundle      *TransactionBundle
	bundleStart bool
}

func NewTransactionBundle(bundleIdentifier common.Hash, txs []*types.Transaction,
	blockNumber uint64, minTimestamp, maxTimestamp *uint64,
	revertingTxHashes []common.Hash) *TransactionBundle {

	bundle := &TransactionBundle{
		bundleIdentifier:  bundleIdentifier,
		blockNumber:       blockNumber,
		minTimestamp:      minTimestamp,
		maxTimestamp:      maxTimestamp,
		revertingTxHashes: revertingTxHashes,
	}
	bundle.pendingTransactions = make([]*PendingBundleTx, 0, len(txs))
	for i, tx := range txs {
		bundle.pendingTransactions = append(bundle.pendingTransactions, &PendingBundleTx{
			tx:          tx,
			weight:      tx.Size(),
			bundle:      bundle,
			bundleStart: i == 0,
		})
	}
	return bundle
}

func (b *TransactionBundle) BundleIdentifier() common.Hash {
	return b.bundleIdentifier
}

func (b *TransactionBundle) PendingTransactions() []*PendingBundleTx {
	return b.pendingTransactions
}

func (b *TransactionBundle) BlockNumber() uint64 {
	return b.blockNumber
}

func (b *TransactionBundle) MinTimestamp() *uint64 {
	return b.minTimestamp
}

func (b *TransactionBundle) MaxTimestamp() *uint64 {
	return b.maxTimestamp
}

func (b *TransactionBundle) RevertingTxHashes() []common.Hash {
	return b.revertingTxHashes
}

// Weight is the byte weight of the whole bundle, the unit the pool capacity
// is accounted in.
func (b *TransactionBundle) Weight() uint64 {
	var total uint64
	for _, ptx := range b.pendingTransactions {
		total += ptx.weight
	}
	return total
}

// IsRevertingHash reports whether the given transaction hash is permitted to
// revert without invalidating the bundle.
func (b *TransactionBundle) IsRevertingHash(hash common.Hash) bool {
	for _, revHash := range b.revertingTxHashes {
		if revHash == hash {
			return true
		}
	}
	return false
}

func (ptx *PendingBundleTx) Transaction() *types.Transaction {
	return ptx.tx
}

func (ptx *PendingBundleTx) Weight() uint64 {
	return ptx.weight
}

// Bundle returns the bundle this transaction belongs to.
func (ptx *PendingBundleTx) Bundle() *TransactionBundle {
	return ptx.bundle
}

// IsBundleStart reports whether this is the first transaction of its bundle.
func (ptx *PendingBundleTx) IsBundleStart() bool {
	return ptx.bundleStart
}

// UUIDToHash converts a replacement UUID into the hash the pool is keyed by,
// hashing the UUID's 16 raw bytes (most significant first). The derivation is
// fixed so the same UUID always maps to the same pool entry.
func UUIDToHash(id uuid.UUID) common.Hash {
	return crypto.Keccak256Hash(id[:])
}
