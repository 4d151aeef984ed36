// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package peek

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeek_EmptyBody(t *testing.T) {
	body, ch := Peek(io.NopCloser(strings.NewReader("")), 100)
	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, <-ch)
}

func TestPeek_ShortBodyUnderLimit(t *testing.T) {
	payload := "hello world"
	body, ch := Peek(io.NopCloser(strings.NewReader(payload)), 100)
	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
	assert.Equal(t, payload, string(<-ch))
}

func TestPeek_PartialCaptureAtLimit(t *testing.T) {
	payload := bytes.Repeat([]byte{'a'}, 100)
	body, ch := Peek(io.NopCloser(bytes.NewReader(payload)), 99)
	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, payload[:99], <-ch)
}

// multiChunkReader emits one byte per Read call, exercising BufList's
// accumulation of many small chunks.
type multiChunkReader struct {
	data []byte
	pos  int
}

func (r *multiChunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}

func TestPeek_MultipleChunksCapturesPrefixAndForwardsAll(t *testing.T) {
	payload := bytes.Repeat([]byte{'a'}, 100)
	body, ch := Peek(io.NopCloser(&multiChunkReader{data: payload}), 99)
	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, payload[:99], <-ch)
}

func TestPeek_CloseBeforeFullReadStillSendsCapturedPrefix(t *testing.T) {
	payload := bytes.Repeat([]byte{'b'}, 10)
	body, ch := Peek(io.NopCloser(bytes.NewReader(payload)), 100)
	buf := make([]byte, 3)
	_, err := body.Read(buf)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, []byte{'b', 'b', 'b'}, <-ch)
}
