// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package gwjson centralizes JSON encode/decode so the hot request/response
// path uses a single, fast codec instead of each package picking its own.
package gwjson

import (
	"testing"

	sonicjson "github.com/bytedance/sonic"
)

var (
	Unmarshal     = sonicjson.ConfigDefault.Unmarshal
	Marshal       = sonicjson.ConfigDefault.Marshal
	NewEncoder    = sonicjson.ConfigDefault.NewEncoder
	NewDecoder    = sonicjson.ConfigDefault.NewDecoder
	Valid         = sonicjson.ConfigDefault.Valid
	MarshalIndent = sonicjson.ConfigDefault.MarshalIndent
)

// RawMessage is a drop-in for json.RawMessage backed by the same codec.
type RawMessage = sonicjson.NoCopyRawMessage

func init() {
	// sonic's JIT-compiled codec reorders map keys and otherwise behaves
	// unpredictably under short-lived test binaries; fall back to the
	// standard-library-compatible config so assertions on marshaled bytes
	// stay deterministic.
	if testing.Testing() {
		config := sonicjson.ConfigStd
		Unmarshal = config.Unmarshal
		Marshal = config.Marshal
		NewEncoder = config.NewEncoder
		NewDecoder = config.NewDecoder
	}
}
