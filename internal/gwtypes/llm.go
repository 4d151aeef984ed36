// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package gwtypes

// ProviderKind tags which wire dialect a backend speaks, at the type
// level rather than branching on a string everywhere it's used.
type ProviderKind string

const (
	ProviderOpenAI       ProviderKind = "openai"
	ProviderAzureOpenAI  ProviderKind = "azure-openai"
	ProviderGemini       ProviderKind = "gemini"
	ProviderAnthropic    ProviderKind = "anthropic"
	ProviderVertex       ProviderKind = "vertex"
	ProviderVertexOpenAI ProviderKind = "vertex-openai"
	ProviderBedrock      ProviderKind = "bedrock"
)

// InputFormat is the wire dialect the gateway detects the *client* speaking,
// independent of what the backend provider speaks; translation happens
// between these two when they differ.
type InputFormat string

const (
	InputCompletions InputFormat = "completions"
	InputMessages    InputFormat = "messages"
	InputResponses   InputFormat = "responses"
	InputCountTokens InputFormat = "count_tokens"
	InputDetect      InputFormat = "detect"
	InputPassthrough InputFormat = "passthrough"
)

// Provider describes a single LLM backend's dialect and connection shape.
// Each concrete type below corresponds to one supported outbound LLM
// target; dispatch is a type switch on the concrete provider type,
// mirroring backendauth's handler-per-provider split.
type Provider interface {
	Kind() ProviderKind
}

type OpenAIProvider struct {
	Model        string
	ModelAliases map[string]string
}

func (OpenAIProvider) Kind() ProviderKind { return ProviderOpenAI }

// AzureOpenAIProviderVariant distinguishes the three Azure OpenAI URL
// shapes a deployment can be addressed by.
type AzureOpenAIProviderVariant int

const (
	AzureOpenAIVariantV1 AzureOpenAIProviderVariant = iota
	AzureOpenAIVariantPreview
	AzureOpenAIVariantDeployment
)

type AzureOpenAIProvider struct {
	Host       string
	APIVersion string
	Deployment string
	Variant    AzureOpenAIProviderVariant
	Model      string
}

func (AzureOpenAIProvider) Kind() ProviderKind { return ProviderAzureOpenAI }

type GeminiProvider struct {
	Model        string
	ModelAliases map[string]string
}

func (GeminiProvider) Kind() ProviderKind { return ProviderGemini }

type AnthropicProvider struct {
	Model        string
	ModelAliases map[string]string
}

func (AnthropicProvider) Kind() ProviderKind { return ProviderAnthropic }

type VertexProvider struct {
	ProjectID string
	Region    string
	Model     string
	// Anthropic selects the Vertex "publishers/anthropic" dialect
	// (anthropic_version injected, model field stripped from the body);
	// otherwise the OpenAI-compat Vertex dialect is used.
	Anthropic bool
}

func (v VertexProvider) Kind() ProviderKind {
	if v.Anthropic {
		return ProviderVertex
	}
	return ProviderVertexOpenAI
}

type BedrockProvider struct {
	Region string
	Model  string
}

func (BedrockProvider) Kind() ProviderKind { return ProviderBedrock }

// LLMBackend attaches LLM routing metadata to a BackendRef: which provider
// dialect it speaks.
type LLMBackend struct {
	Provider Provider
}

// LLMRequestParams is the set of provider-agnostic fields the translator
// extracts by walking the request body, independent of which wire format
// the client used. Unknown/extra fields in the original body are left
// untouched and forwarded as-is; this struct only names the fields the
// gateway itself needs to reason about (model aliasing, streaming, usage
// accounting).
type LLMRequestParams struct {
	Model        string
	Stream       bool
	MaxTokens    int
	Temperature  *float64
	System       string
	InputFormat  InputFormat
}

// LLMUsage is the token accounting the gateway extracts best-effort from
// streamed or unary responses for the eviction/health side channel.
type LLMUsage struct {
	PromptTokens             int
	CompletionTokens         int
	TotalTokens              int
	ReasoningTokens          int
	CacheCreationInputTokens int
	CachedInputTokens        int
}
