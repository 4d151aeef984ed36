// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package httpversion resolves which HTTP version to speak on the
// upstream leg of a proxied request, and strips headers that are
// hop-by-hop or invalid once a request is re-issued over HTTP/2.
package httpversion

import (
	"net/http"
	"strings"
)

// Version is the resolved upstream protocol.
type Version int

const (
	Version1_1 Version = iota
	Version2
)

// Resolve implements the version-selection algorithm in priority order:
//
//  1. An explicit route/service override always wins.
//  2. Otherwise, if the downstream connection is TLS, mirror its
//     negotiated version — except a gRPC request (content-type
//     "application/grpc*") always forces HTTP/2, since gRPC cannot be
//     carried over 1.1.
//  3. Otherwise (plaintext downstream), mirror the downstream version so
//     an h2c client talking HTTP/2 cleartext gets an HTTP/2 upstream call.
func Resolve(override *Version, downstreamTLS bool, downstreamProtoMajor int, contentType string) Version {
	if override != nil {
		return *override
	}
	if downstreamTLS {
		if isGRPC(contentType) {
			return Version2
		}
		if downstreamProtoMajor >= 2 {
			return Version2
		}
		return Version1_1
	}
	if downstreamProtoMajor >= 2 {
		return Version2
	}
	return Version1_1
}

func isGRPC(contentType string) bool {
	return strings.HasPrefix(contentType, "application/grpc")
}

// hopByHopHeaders are stripped before forwarding a request upstream,
// regardless of the negotiated version; per RFC 7230 §6.1 these are
// connection-scoped and never valid to forward.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// StripHopByHop removes hop-by-hop headers in place. When forwarding over
// HTTP/2, Connection-related and Transfer-Encoding headers are invalid on
// the wire (HTTP/2 has no chunked transfer encoding or Connection header)
// and must never be forwarded.
func StripHopByHop(h http.Header) {
	for _, name := range hopByHopHeaders {
		h.Del(name)
	}
}
