// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package errors

import "fmt"

type ErrCode int

const (
	// invalid arguments supplied by a caller
	ErrInvalidHash ErrCode = 11001
	ErrInvalidUUID ErrCode = 11002

	// malformed on-disk bundle serialization
	ErrBundleUnterminated  ErrCode = 12001
	ErrBundleVersion       ErrCode = 12002
	ErrBundleFieldCount    ErrCode = 12003
	ErrBundleFieldEncoding ErrCode = 12004

	// pool persistence
	ErrPoolIO ErrCode = 13001
)

var errCodeStrings = map[ErrCode]string{
	ErrInvalidHash:         "ErrInvalidHash",
	ErrInvalidUUID:         "ErrInvalidUUID",
	ErrBundleUnterminated:  "ErrBundleUnterminated",
	ErrBundleVersion:       "ErrBundleVersion",
	ErrBundleFieldCount:    "ErrBundleFieldCount",
	ErrBundleFieldEncoding: "ErrBundleFieldEncoding",
	ErrPoolIO:              "ErrPoolIO",
}

func (c ErrCode) String() string {
	if s, ok := errCodeStrings[c]; ok {
		return s
	}
	return fmt.Sprintf("ErrCode(%d)", int(c))
}
