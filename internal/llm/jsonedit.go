// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package llm

import "github.com/tidwall/sjson"

func setString(body []byte, path, value string) ([]byte, error) {
	return sjson.SetBytes(body, path, value)
}

func deleteField(body []byte, path string) ([]byte, error) {
	return sjson.DeleteBytes(body, path)
}

// SetField writes an arbitrary top-level string field, exported for
// providers (like Vertex's Anthropic dialect) that need to stamp fields
// beyond "model" into a request body.
func SetField(body []byte, path, value string) ([]byte, error) {
	return setString(body, path, value)
}
