// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package mempool

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	linerr "github.com/macfarla/linea-sequencer/errors"
)

// On-disk bundle grammar, one bundle per ASCII line:
//
//	version | blockNumber | identifier | minTimestamp | maxTimestamp | revertingTxHashes | txs $
//
// Absent optional fields serialize as the empty string. Transactions are the
// canonical binary encoding, base64. The terminator guards against truncated
// writes being silently restored.
const (
	fieldSeparator       = "|"
	itemSeparator        = ","
	lineTerminator       = "$"
	serializationVersion = "1"

	bundleSerializationFields = 7
)

// SerializeForDisk renders the bundle as a single line of the versioned disk
// grammar. The output is deterministic and round-trips exactly through
// RestoreFromSerialized.
func (b *TransactionBundle) SerializeForDisk() (string, error) {
	var sb strings.Builder
	sb.WriteString(serializationVersion)
	sb.WriteString(fieldSeparator)
	sb.WriteString(strconv.FormatUint(b.blockNumber, 10))
	sb.WriteString(fieldSeparator)
	sb.WriteString(b.bundleIdentifier.Hex())
	sb.WriteString(fieldSeparator)
	if b.minTimestamp != nil {
		sb.WriteString(strconv.FormatUint(*b.minTimestamp, 10))
	}
	sb.WriteString(fieldSeparator)
	if b.maxTimestamp != nil {
		sb.WriteString(strconv.FormatUint(*b.maxTimestamp, 10))
	}
	sb.WriteString(fieldSeparator)
	for i, revHash := range b.revertingTxHashes {
		if i > 0 {
			sb.WriteString(itemSeparator)
		}
		sb.WriteString(revHash.Hex())
	}
	sb.WriteString(fieldSeparator)
	for i, ptx := range b.pendingTransactions {
		if i > 0 {
			sb.WriteString(itemSeparator)
		}
		encoded, err := ptx.serializeForDisk()
		if err != nil {
			return "", err
		}
		sb.WriteString(encoded)
	}
	sb.WriteString(lineTerminator)
	return sb.String(), nil
}

// serializeForDisk encodes the wrapped transaction as base64 over its
// canonical binary encoding.
func (ptx *PendingBundleTx) serializeForDisk() (string, error) {
	raw, err := ptx.tx.MarshalBinary()
	if err != nil {
		return "", linerr.SimpleWithMessage(linerr.ErrBundleFieldEncoding, err,
			"cannot encode bundle transaction")
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// RestoreFromSerialized parses one line of the disk grammar back into a
// bundle. A missing terminator, an unsupported version tag or a field count
// other than 7 fail with a typed malformed-serialization error; a bad line
// never affects the restoration of other lines.
func RestoreFromSerialized(line string) (*TransactionBundle, error) {
	if !strings.HasSuffix(line, lineTerminator) {
		return nil, linerr.SimpleWithMessage(linerr.ErrBundleUnterminated, nil,
			"unterminated bundle serialization, missing terminal "+lineTerminator)
	}

	parts := strings.Split(strings.TrimSuffix(line, lineTerminator), fieldSeparator)
	if parts[0] != serializationVersion {
		return nil, linerr.SimpleWithMessage(linerr.ErrBundleVersion, nil,
			"unsupported bundle serialization version "+parts[0])
	}
	if len(parts) != bundleSerializationFields {
		return nil, linerr.SimpleWithMessage(linerr.ErrBundleFieldCount, nil,
			"invalid bundle serialization, expected 7 fields but got "+
				strconv.Itoa(len(parts)))
	}

	blockNumber, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, linerr.SimpleWithMessage(linerr.ErrBundleFieldEncoding, err,
			"invalid bundle block number "+parts[1])
	}
	bundleIdentifier, err := ParseBundleHash(parts[2])
	if err != nil {
		return nil, err
	}
	minTimestamp, err := parseOptionalTimestamp(parts[3])
	if err != nil {
		return nil, err
	}
	maxTimestamp, err := parseOptionalTimestamp(parts[4])
	if err != nil {
		return nil, err
	}

	var revertingTxHashes []common.Hash
	if parts[5] != "" {
		for _, item := range strings.Split(parts[5], itemSeparator) {
			revHash, err := ParseBundleHash(item)
			if err != nil {
				return nil, err
			}
			revertingTxHashes = append(revertingTxHashes, revHash)
		}
	}

	var txs []*types.Transaction
	for _, item := range strings.Split(parts[6], itemSeparator) {
		raw, err := base64.StdEncoding.DecodeString(item)
		if err != nil {
			return nil, linerr.SimpleWithMessage(linerr.ErrBundleFieldEncoding, err,
				"invalid bundle transaction base64")
		}
		tx := new(types.Transaction)
		if err := tx.UnmarshalBinary(raw); err != nil {
			return nil, linerr.SimpleWithMessage(linerr.ErrBundleFieldEncoding, err,
				"invalid bundle transaction encoding")
		}
		txs = append(txs, tx)
	}

	return NewTransactionBundle(bundleIdentifier, txs, blockNumber,
		minTimestamp, maxTimestamp, revertingTxHashes), nil
}

// ParseBundleHash parses a 0x-prefixed 32 byte hex hash, reporting a typed
// invalid-argument error on malformed input.
func ParseBundleHash(s string) (common.Hash, error) {
	raw, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, linerr.SimpleWithMessage(linerr.ErrInvalidHash, err,
			"invalid hash "+s)
	}
	if len(raw) != common.HashLength {
		return common.Hash{}, linerr.SimpleWithMessage(linerr.ErrInvalidHash, nil,
			"invalid hash length "+strconv.Itoa(len(raw)))
	}
	return common.BytesToHash(raw), nil
}

func parseOptionalTimestamp(s string) (*uint64, error) {
	if s == "" {
		return nil, nil
	}
	ts, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, linerr.SimpleWithMessage(linerr.ErrBundleFieldEncoding, err,
			"invalid bundle timestamp "+s)
	}
	return &ts, nil
}
