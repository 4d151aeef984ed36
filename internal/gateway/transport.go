// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package gateway

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/agentedge/gateway/internal/httpversion"
)

// transports holds one lazily-shared *http.Client per (version, TLS)
// combination the gateway can dial upstream with: HTTP/1.1 plaintext,
// HTTP/1.1 over TLS, h2c (HTTP/2 cleartext), and HTTP/2 over TLS.
// httpversion.Resolve decides which of the four a given request needs;
// this just builds the round trippers that can speak each one.
type transports struct {
	h1Plain *http.Client
	h1TLS   *http.Client
	h2Plain *http.Client
	h2TLS   *http.Client
}

const dialTimeout = 10 * time.Second

func newTransports() *transports {
	dialer := &net.Dialer{Timeout: dialTimeout}

	h1Plain := &http.Transport{DialContext: dialer.DialContext}

	// TLSNextProto disables ALPN's automatic upgrade to HTTP/2 so a
	// version override of "1.1" is honored even against a backend that
	// would otherwise negotiate HTTP/2.
	h1TLS := &http.Transport{
		DialContext:   dialer.DialContext,
		TLSNextProto:  map[string]func(string, *tls.Conn) http.RoundTripper{},
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}

	// h2c: HTTP/2 over plaintext, dialing a raw TCP connection instead of
	// negotiating TLS+ALPN, per golang.org/x/net/http2's documented
	// pattern for talking h2c to a backend that supports it without a
	// protocol upgrade handshake.
	h2Plain := &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
	}

	h2TLS := &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, cfg *tls.Config) (net.Conn, error) {
			conn, err := tls.Dial(network, addr, cfg)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}

	return &transports{
		h1Plain: &http.Client{Transport: h1Plain},
		h1TLS:   &http.Client{Transport: h1TLS},
		h2Plain: &http.Client{Transport: h2Plain},
		h2TLS:   &http.Client{Transport: h2TLS},
	}
}

// clientFor picks the client that speaks the resolved upstream version
// against a TLS or plaintext backend.
func (t *transports) clientFor(version httpversion.Version, tlsScheme bool) *http.Client {
	switch {
	case version == httpversion.Version2 && tlsScheme:
		return t.h2TLS
	case version == httpversion.Version2:
		return t.h2Plain
	case tlsScheme:
		return t.h1TLS
	default:
		return t.h1Plain
	}
}
