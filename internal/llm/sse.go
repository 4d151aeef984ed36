// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package llm

import (
	"bytes"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/agentedge/gateway/internal/gwtypes"
)

// SSEState is a streaming response scanner's position within one
// server-sent-events frame, generalized into an explicit state machine
// since this gateway forwards every provider's stream through the same
// scanner rather than one per dialect.
type SSEState int

const (
	// StateBetweenFrames is positioned at a frame boundary: the next bytes
	// either start a new field line or are another blank line.
	StateBetweenFrames SSEState = iota
	// StateInEventName has seen an "event:" field and is accumulating the
	// rest of that line.
	StateInEventName
	// StateInData has seen a "data:" field and is accumulating the rest of
	// that line; multiple consecutive data lines join with "\n" per the
	// SSE spec.
	StateInData
	// StateDone has seen a literal "data: [DONE]" frame, the sentinel every
	// OpenAI-compatible dialect emits at stream end; no further frames are
	// parsed, though bytes are still forwarded unchanged.
	StateDone
)

// doneSentinel is OpenAI's (and everything downstream of it) end-of-stream
// marker.
const doneSentinel = "[DONE]"

// SSEForwarder scans a streamed response for usage data while forwarding
// every byte to the client unchanged; parsing failures never affect what
// is forwarded; only what the gateway logs as a side effect.
type SSEForwarder struct {
	state   SSEState
	partial []byte
	// eventName and dataLines hold the frame in progress, which may span
	// several chunks.
	eventName string
	dataLines [][]byte
	onFrame   func(eventName string, data []byte)
}

// NewSSEForwarder builds a forwarder that calls onFrame once per complete
// SSE frame parsed, other than the terminal [DONE] sentinel.
func NewSSEForwarder(onFrame func(eventName string, data []byte)) *SSEForwarder {
	return &SSEForwarder{onFrame: onFrame}
}

// Forward records chunk into the scanner and returns it unchanged; callers
// pass the return value straight to the client's response writer.
func (f *SSEForwarder) Forward(chunk []byte) []byte {
	f.scan(chunk)
	return chunk
}

func (f *SSEForwarder) scan(chunk []byte) {
	if f.state == StateDone {
		return
	}
	buf := append(f.partial, chunk...)

	for {
		i := bytes.IndexByte(buf, '\n')
		if i == -1 {
			break
		}
		line := bytes.TrimRight(buf[:i], "\r")
		buf = buf[i+1:]

		switch {
		case len(line) == 0:
			if len(f.dataLines) > 0 {
				data := bytes.Join(f.dataLines, []byte("\n"))
				if string(data) == doneSentinel {
					f.state = StateDone
					f.partial = nil
					f.eventName, f.dataLines = "", nil
					return
				}
				if f.onFrame != nil {
					f.onFrame(f.eventName, data)
				}
			}
			f.eventName, f.dataLines = "", nil
			f.state = StateBetweenFrames
		case bytes.HasPrefix(line, []byte("event:")):
			f.eventName = strings.TrimSpace(string(bytes.TrimPrefix(line, []byte("event:"))))
			f.state = StateInEventName
		case bytes.HasPrefix(line, []byte("data:")):
			// Copied: buf may share its backing array with f.partial.
			f.dataLines = append(f.dataLines, append([]byte(nil), bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))...))
			f.state = StateInData
		default:
			// Comment line or unrecognized field: ignored for parsing
			// purposes, still forwarded as part of the raw chunk.
		}
	}
	f.partial = append(f.partial[:0], buf...)
}

// UsageExtractor returns a frame callback appropriate for the given input
// format, suitable for passing to NewSSEForwarder. Unrecognized or
// unparsable frames are silently skipped; usage accounting from a stream
// is always best-effort.
func UsageExtractor(format gwtypes.InputFormat, into *TokenUsage) func(eventName string, data []byte) {
	switch format {
	case gwtypes.InputMessages:
		return func(_ string, data []byte) { extractAnthropicStreamUsage(data, into) }
	default:
		return func(_ string, data []byte) { extractOpenAIStreamUsage(data, into) }
	}
}

// extractOpenAIStreamUsage reads the "usage" object OpenAI-compatible
// dialects attach to the final chunk of a stream (when the client set
// stream_options.include_usage), including the reasoning_tokens counter
// reasoning models report nested under completion_tokens_details.
func extractOpenAIStreamUsage(data []byte, into *TokenUsage) {
	usage := gjson.GetBytes(data, "usage")
	if !usage.Exists() {
		return
	}
	into.PromptTokens = int(usage.Get("prompt_tokens").Int())
	into.CompletionTokens = int(usage.Get("completion_tokens").Int())
	into.TotalTokens = int(usage.Get("total_tokens").Int())
	if v := usage.Get("completion_tokens_details.reasoning_tokens"); v.Exists() {
		into.ReasoningTokens = int(v.Int())
	}
	if v := usage.Get("prompt_tokens_details.cached_tokens"); v.Exists() {
		into.CachedInputTokens = int(v.Int())
	}
}

// extractAnthropicStreamUsage reads usage off Anthropic's message_start and
// message_delta events; the final totals live on message_delta. Cache
// accounting (cache_creation_input_tokens/cache_read_input_tokens) only
// ever appears on message_start, since message_delta only repeats the
// fields that can still change once the message body streams in.
func extractAnthropicStreamUsage(data []byte, into *TokenUsage) {
	root := gjson.ParseBytes(data)
	if u := root.Get("message.usage"); u.Exists() {
		into.PromptTokens = int(u.Get("input_tokens").Int())
		if v := u.Get("cache_creation_input_tokens"); v.Exists() {
			into.CacheCreationInputTokens = int(v.Int())
		}
		if v := u.Get("cache_read_input_tokens"); v.Exists() {
			into.CachedInputTokens = int(v.Int())
		}
	}
	if u := root.Get("usage"); u.Exists() {
		if v := u.Get("output_tokens"); v.Exists() {
			into.CompletionTokens = int(v.Int())
		}
		if v := u.Get("input_tokens"); v.Exists() {
			into.PromptTokens = int(v.Int())
		}
		if v := u.Get("cache_creation_input_tokens"); v.Exists() {
			into.CacheCreationInputTokens = int(v.Int())
		}
		if v := u.Get("cache_read_input_tokens"); v.Exists() {
			into.CachedInputTokens = int(v.Int())
		}
	}
	if into.PromptTokens > 0 || into.CompletionTokens > 0 {
		into.TotalTokens = into.PromptTokens + into.CompletionTokens
	}
}
