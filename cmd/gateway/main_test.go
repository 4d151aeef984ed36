// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_doMain(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		sf     serveFn
		expOut string
	}{
		{
			name:   "version",
			args:   []string{"version"},
			expOut: "gateway CLI: dev\n",
		},
		{
			name: "serve with config",
			args: []string{"serve", "./gateway.yaml"},
			sf: func(_ context.Context, c cmdServe, _, _ io.Writer) error {
				require.Equal(t, "./gateway.yaml", c.Config)
				return nil
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			doMain(t.Context(), out, os.Stderr, tt.args, nil, tt.sf)
			require.Equal(t, tt.expOut, out.String())
		})
	}
}
