// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package version holds the build-time version string, set via
// -ldflags "-X .../internal/version.Version=..." and otherwise left at
// its "dev" default for local builds.
package version

var Version = "dev"
