// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package peek

import "io"

// Body wraps an io.ReadCloser, capturing up to limit bytes of its prefix
// into a channel while passing every byte read through to the caller
// unchanged and in order. Trailers are untouched: Go surfaces them via the
// request/response's own Trailer map after the body is fully read, which
// this wrapper has no reason to intercept. The channel handoff (a
// buffered channel of size 1) lets callers await the captured prefix
// without blocking the read path.
type Body struct {
	inner io.ReadCloser
	limit int
	buf   BufList
	out   chan []byte
	sent  bool
}

// Peek wraps body, returning the wrapped reader to use in its place and a
// channel that receives exactly one prefix (length <= limit) once the
// capture completes, either because limit bytes were seen or the
// underlying body reached EOF first.
func Peek(body io.ReadCloser, limit int) (*Body, <-chan []byte) {
	ch := make(chan []byte, 1)
	return &Body{inner: body, limit: limit, out: ch}, ch
}

func (b *Body) Read(p []byte) (int, error) {
	n, err := b.inner.Read(p)
	if n > 0 && !b.sent {
		want := min(b.limit-b.buf.Remaining(), n)
		if want > 0 {
			chunk := make([]byte, want)
			copy(chunk, p[:want])
			b.buf.Push(chunk)
		}
		if b.buf.Remaining() >= b.limit {
			b.send()
		}
	}
	if err == io.EOF {
		b.send()
	}
	return n, err
}

func (b *Body) Close() error {
	b.send()
	return b.inner.Close()
}

func (b *Body) send() {
	if b.sent {
		return
	}
	b.sent = true
	want := min(b.buf.Remaining(), b.limit)
	b.out <- b.buf.CopyToBytes(want)
	close(b.out)
}
