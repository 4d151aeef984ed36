// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package eviction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPredicate_StatusAndTransportError(t *testing.T) {
	assert.True(t, DefaultPredicate.Unhealthy(ResponseOutcome{Status: 500}))
	assert.True(t, DefaultPredicate.Unhealthy(ResponseOutcome{TransportError: true}))
	assert.False(t, DefaultPredicate.Unhealthy(ResponseOutcome{Status: 200}))
	assert.False(t, DefaultPredicate.Unhealthy(ResponseOutcome{Status: 404}))
}

func TestCompileUnhealthyExpression_CustomPredicate(t *testing.T) {
	pred, err := CompileUnhealthyExpression(`response.status >= 500 || response.status == 429`)
	require.NoError(t, err)
	assert.True(t, pred.Unhealthy(ResponseOutcome{Status: 429}))
	assert.True(t, pred.Unhealthy(ResponseOutcome{Status: 503}))
	assert.False(t, pred.Unhealthy(ResponseOutcome{Status: 200}))
}

func TestCompileUnhealthyExpression_InvalidExpressionErrors(t *testing.T) {
	_, err := CompileUnhealthyExpression(`this is not cel (`)
	assert.Error(t, err)
}
