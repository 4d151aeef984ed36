// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package peek implements bounded prefix-body peeking: capturing up to N
// bytes of a request/response body for inspection while still forwarding
// the full stream, unchanged and in order, to its original destination.
package peek

// BufList accumulates byte slices without copying until a caller drains
// them.
type BufList struct {
	chunks    [][]byte
	remaining int
}

// Push appends a chunk to the list.
func (b *BufList) Push(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	b.chunks = append(b.chunks, chunk)
	b.remaining += len(chunk)
}

// Remaining returns the total number of buffered bytes.
func (b *BufList) Remaining() int {
	return b.remaining
}

// CopyToBytes drains up to n bytes from the front of the list, returning
// fewer if the list holds less than n.
func (b *BufList) CopyToBytes(n int) []byte {
	if n > b.remaining {
		n = b.remaining
	}
	out := make([]byte, 0, n)
	for n > 0 && len(b.chunks) > 0 {
		chunk := b.chunks[0]
		if len(chunk) <= n {
			out = append(out, chunk...)
			n -= len(chunk)
			b.remaining -= len(chunk)
			b.chunks = b.chunks[1:]
			continue
		}
		out = append(out, chunk[:n]...)
		b.chunks[0] = chunk[n:]
		b.remaining -= n
		n = 0
	}
	return out
}
