// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package gateway

import (
	"bytes"
	"io"
	"net/http"

	"github.com/agentedge/gateway/internal/gwtypes"
)

// toGatewayRequest builds the pipeline's normalized Request from an
// inbound net/http request. body has already been fully read so route
// matching, policy evaluation, and LLM param extraction can all inspect it
// without racing a single io.Reader.
func toGatewayRequest(r *http.Request, body []byte) *gwtypes.Request {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return &gwtypes.Request{
		Method:     r.Method,
		Scheme:     scheme,
		Authority:  r.Host,
		Path:       r.URL.Path,
		RawQuery:   r.URL.RawQuery,
		Header:     r.Header.Clone(),
		Body:       io.NopCloser(bytes.NewReader(body)),
		TLS:        r.TLS != nil,
		ProtoMajor: r.ProtoMajor,
		ProtoMinor: r.ProtoMinor,
	}
}

// writeDirectResponse sends a policy short-circuit response to the client.
func writeDirectResponse(w http.ResponseWriter, status int, body string, headers http.Header) {
	for k, values := range headers {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(status)
	if body != "" {
		_, _ = w.Write([]byte(body))
	}
}

// writeError maps a structured gateway error to an HTTP response, per
// gwerrors' status table.
func writeError(w http.ResponseWriter, status int, message string) {
	http.Error(w, message, status)
}
