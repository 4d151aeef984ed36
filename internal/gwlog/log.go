// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package gwlog wraps zap with the field vocabulary shared by route
// matching, policy evaluation, eviction, and LLM translation, so every
// component logs the same shape of event instead of ad hoc strings.
package gwlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production zap.Logger, or a development logger when debug is
// true, mirroring the two modes the gateway CLI exposes on "serve --debug".
func New(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		// Config.Build only fails on a malformed encoder/sink name, which the
		// two built-in configs above never produce.
		panic(err)
	}
	return logger
}

// Route returns the fields identifying a matched route for a log line.
func Route(namespace, name string, ruleIndex int) []zap.Field {
	return []zap.Field{
		zap.String("route.namespace", namespace),
		zap.String("route.name", name),
		zap.Int("route.rule", ruleIndex),
	}
}

// Decision returns the fields describing a policy or eviction decision.
func Decision(kind string, allowed bool) []zap.Field {
	return []zap.Field{
		zap.String("decision.kind", kind),
		zap.Bool("decision.allowed", allowed),
	}
}

// Backend returns the fields identifying a selected backend/endpoint.
func Backend(name, address string, port int) []zap.Field {
	return []zap.Field{
		zap.String("backend.name", name),
		zap.String("backend.address", address),
		zap.Int("backend.port", port),
	}
}
