// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package mcpsecurity

import "fmt"

// WASMGuardConfig configures a security probe compiled to WebAssembly,
// letting an operator load custom detection logic without recompiling the
// gateway.
type WASMGuardConfig struct {
	ModulePath   string
	FunctionName string
	MaxMemory    int
}

const (
	defaultWASMFunctionName = "evaluate"
	defaultWASMMaxMemory    = 10 * 1024 * 1024
)

// DefaultWASMGuardConfig supplies defaults for every field but
// ModulePath, which has none.
func DefaultWASMGuardConfig(modulePath string) WASMGuardConfig {
	return WASMGuardConfig{ModulePath: modulePath, FunctionName: defaultWASMFunctionName, MaxMemory: defaultWASMMaxMemory}
}

// WASMGuard loads a security probe module to evaluate. Unlike the other
// native guards, this gateway carries no WASM runtime (wasmtime/wasmer
// have no presence anywhere in the example corpus this gateway was built
// against), so evaluation always fails with ErrNotImplemented rather than
// silently allowing — a guard an operator explicitly configured should
// fail loudly, not pretend to run.
type WASMGuard struct {
	config WASMGuardConfig
}

// NewWASMGuard validates the config; it does not attempt to load
// config.ModulePath, since there is no WASM runtime here to load it into.
func NewWASMGuard(config WASMGuardConfig) (*WASMGuard, error) {
	if config.ModulePath == "" {
		return nil, fmt.Errorf("mcpsecurity: wasm guard module_path cannot be empty")
	}
	return &WASMGuard{config: config}, nil
}

func (g *WASMGuard) Name() string { return "wasm" }

func (g *WASMGuard) EvaluateToolsList([]Tool, Context) (Decision, error) {
	return Deny, ErrNotImplemented
}

func (g *WASMGuard) EvaluateToolInvoke(Context) (Decision, error) {
	return Deny, ErrNotImplemented
}
