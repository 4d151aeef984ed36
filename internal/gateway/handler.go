// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/agentedge/gateway/internal/eviction"
	"github.com/agentedge/gateway/internal/gwerrors"
	"github.com/agentedge/gateway/internal/gwlog"
	"github.com/agentedge/gateway/internal/gwtrace"
	"github.com/agentedge/gateway/internal/gwtypes"
	"github.com/agentedge/gateway/internal/httpversion"
	"github.com/agentedge/gateway/internal/llm"
	"github.com/agentedge/gateway/internal/llm/provider"
	"github.com/agentedge/gateway/internal/route"
	"github.com/agentedge/gateway/internal/selector"
)

// maxRequestBody bounds how much of a client request this gateway buffers
// before matching, translating, and forwarding it; a request larger than
// this is rejected with KindBodyTooLarge rather than read into memory
// unbounded.
const maxRequestBody = 32 << 20 // 32MiB

// Handler is the gateway's single entry point: one net/http.Handler that
// runs the whole pipeline (route match, policy, LLM translation, endpoint
// selection, MCP guards, credential attachment, upstream call, outlier
// observation) per request.
type Handler struct {
	rt         *Runtime
	log        *zap.Logger
	transports *transports
}

// NewHandler builds a Handler serving rt. One *Handler can be swapped for
// another wholesale (e.g. atomic.Pointer[Handler]) to pick up a config
// reload without restarting the listener.
func NewHandler(rt *Runtime, log *zap.Logger) *Handler {
	return &Handler{rt: rt, log: log, transports: newTransports()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := gwtrace.StartRequest(r.Context(), r.Method, r.URL.Path)
	defer span.End()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}
	if len(body) > maxRequestBody {
		writeGatewayError(w, gwerrors.New(gwerrors.KindBodyTooLarge, "request body exceeds the configured limit"))
		return
	}

	req := toGatewayRequest(r, body)

	matchCtx, matchSpan := gwtrace.StartStage(ctx, "route")
	rule, _ := route.Match(h.rt.table, req)
	matchSpan.End()
	if rule == nil {
		writeGatewayError(w, gwerrors.New(gwerrors.KindNoRouteMatched, "no route matched this request"))
		return
	}
	gwtrace.SetRoute(span, rule.Namespace, rule.Name)
	rr := h.rt.ruleFor(rule)

	policyCtx, policySpan := gwtrace.StartStage(matchCtx, "policy")
	directResp, err := rr.engine.Evaluate(policyCtx, req)
	policySpan.End()
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	if directResp != nil {
		writeDirectResponse(w, directResp.DirectStatus, directResp.DirectBody, directResp.ResponseHeaders)
		return
	}

	backend, endpoint := selector.Select(rr.backends, now())
	if endpoint == nil {
		writeGatewayError(w, gwerrors.New(gwerrors.KindUpstreamTransport, "no healthy endpoint available for this route"))
		return
	}
	gwtrace.SetBackend(span, endpoint.Address, endpoint.Port)
	idx := indexOfBackend(rr.backends, backend)

	outboundHost, outboundPath, outboundBody, scheme, usageFormat, err := h.resolveTarget(backend, endpoint, req, body)
	if err != nil {
		writeGatewayError(w, err)
		return
	}

	if backend.Ref.LLM == nil {
		if err := mcpGuardCheck(h.rt.mcpChain, serviceName(backend.Ref), body); err != nil {
			writeGatewayError(w, err)
			return
		}
	}

	outboundReq, err := h.buildOutboundRequest(ctx, req, scheme, outboundHost, outboundPath, outboundBody)
	if err != nil {
		writeGatewayError(w, gwerrors.Wrap(gwerrors.KindInternalInvariant, "building upstream request", err))
		return
	}

	var auth = rr.auth[idx]
	if err := auth.Do(ctx, outboundReq, outboundBody); err != nil {
		writeGatewayError(w, gwerrors.Wrap(gwerrors.KindUpstreamTransport, "attaching backend credentials", err))
		return
	}

	version := httpversion.Resolve(rr.httpOverride[idx], req.TLS, req.ProtoMajor, req.Header.Get("Content-Type"))
	client := h.transports.clientFor(version, scheme == "https")

	_, upstreamSpan := gwtrace.StartStage(ctx, "upstream")
	resp, doErr := client.Do(outboundReq)
	upstreamSpan.End()

	status := 0
	var respHeaders http.Header
	if doErr == nil {
		status = resp.StatusCode
		respHeaders = resp.Header
	}
	eviction.Observe(endpoint, rr.eviction, status, doErr != nil, respHeaders, now())

	if doErr != nil {
		h.log.Debug("upstream call failed", append(gwlog.Backend(serviceName(backend.Ref), endpoint.Address, endpoint.Port), zap.Error(doErr))...)
		writeGatewayError(w, gwerrors.Wrap(gwerrors.KindUpstreamTransport, "upstream request failed", doErr))
		return
	}
	defer resp.Body.Close()

	h.writeUpstreamResponse(w, resp, usageFormat)
}

// resolveTarget decides where the request goes and what body to send:
// for an LLM-backed backend this runs the provider dialect resolution
// (format detection, param extraction, alias resolution, body reshape);
// otherwise the request is forwarded to the endpoint as-is.
func (h *Handler) resolveTarget(backend *gwtypes.Backend, endpoint *gwtypes.Endpoint, req *gwtypes.Request, body []byte) (host, path string, outBody []byte, scheme string, usageFormat gwtypes.InputFormat, err error) {
	if backend.Ref.LLM == nil {
		host = endpoint.Address
		if endpoint.Port != 0 {
			host = fmt.Sprintf("%s:%d", endpoint.Address, endpoint.Port)
		}
		scheme = "http"
		if endpoint.Port == 443 {
			scheme = "https"
		}
		return host, req.Path, body, scheme, gwtypes.InputPassthrough, nil
	}

	format := llm.Detect(nil, req.Path)
	params := llm.ExtractParams(body, format)
	target, resolveErr := provider.Resolve(backend.Ref.LLM.Provider, params, body)
	if resolveErr != nil {
		return "", "", nil, "", "", gwerrors.Wrap(gwerrors.KindTranslationFailure, "resolving llm provider target", resolveErr)
	}
	return target.Host, target.Path, target.Body, "https", format, nil
}

func (h *Handler) buildOutboundRequest(ctx context.Context, req *gwtypes.Request, scheme, host, path string, body []byte) (*http.Request, error) {
	url := scheme + "://" + host + path
	outboundReq, err := http.NewRequestWithContext(ctx, req.Method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	outboundReq.Header = req.Header.Clone()
	httpversion.StripHopByHop(outboundReq.Header)
	outboundReq.Host = host
	outboundReq.ContentLength = int64(len(body))
	outboundReq.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return outboundReq, nil
}

// writeUpstreamResponse copies the upstream response to the client,
// scanning server-sent-events streams for usage data as a side effect
// without altering a single byte forwarded.
func (h *Handler) writeUpstreamResponse(w http.ResponseWriter, resp *http.Response, format gwtypes.InputFormat) {
	httpversion.StripHopByHop(resp.Header)
	for k, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		body, _ := io.ReadAll(resp.Body)
		if usage := llm.ExtractUnaryUsage(body, format); usage.TotalTokens > 0 {
			h.log.Debug("unary usage", zap.Int("prompt_tokens", usage.PromptTokens), zap.Int("completion_tokens", usage.CompletionTokens), zap.Int("total_tokens", usage.TotalTokens))
		}
		_, _ = w.Write(body)
		return
	}

	var usage llm.TokenUsage
	forwarder := llm.NewSSEForwarder(llm.UsageExtractor(format, &usage))
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			_, _ = w.Write(forwarder.Forward(buf[:n]))
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			break
		}
	}
	if usage.TotalTokens > 0 {
		h.log.Debug("stream usage", zap.Int("prompt_tokens", usage.PromptTokens), zap.Int("completion_tokens", usage.CompletionTokens), zap.Int("total_tokens", usage.TotalTokens))
	}
}

func writeGatewayError(w http.ResponseWriter, err error) {
	var gwErr *gwerrors.Error
	if ge, ok := err.(*gwerrors.Error); ok {
		gwErr = ge
	} else {
		gwErr = gwerrors.Wrap(gwerrors.KindInternalInvariant, "unexpected error", err)
	}
	writeError(w, gwErr.Status(), gwErr.Message)
}

func indexOfBackend(backends []gwtypes.Backend, b *gwtypes.Backend) int {
	for i := range backends {
		if &backends[i] == b {
			return i
		}
	}
	return 0
}

func serviceName(ref gwtypes.BackendRef) string {
	if ref.Service != nil {
		return ref.Service.Name
	}
	return ref.Address
}
