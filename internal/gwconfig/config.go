// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package gwconfig defines the gateway's static configuration shapes and a
// yaml.v3-based loader. There is no hot-reload here: config loading and
// reload (xDS or file-watch) are out of scope; a process restart picks up
// a new config file.
package gwconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HTTPVersion is an upstream HTTP version override, parsed leniently to
// accept both bare "2" and the common alternate spellings operators
// actually type in YAML.
type HTTPVersion int

const (
	HTTPVersionUnset HTTPVersion = iota
	HTTPVersion11
	HTTPVersion2
)

func (v *HTTPVersion) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", "auto":
		*v = HTTPVersionUnset
	case "1.1", "http/1.1", "http1.1", "h1":
		*v = HTTPVersion11
	case "2", "http/2", "http2", "h2":
		*v = HTTPVersion2
	default:
		return fmt.Errorf("gwconfig: unrecognized http version %q", s)
	}
	return nil
}

// BackendHTTP is a per-backend HTTP policy: an optional version override
// applied on the upstream leg.
type BackendHTTP struct {
	Version HTTPVersion `yaml:"version"`
}

func (h BackendHTTP) IsHTTP11() bool { return h.Version == HTTPVersion11 }
func (h BackendHTTP) IsHTTP2() bool  { return h.Version == HTTPVersion2 }

// PathMatch is the YAML shape of a route rule's path predicate.
type PathMatch struct {
	Exact  string `yaml:"exact,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
	Regex  string `yaml:"regex,omitempty"`
}

// HeaderMatch is the YAML shape of a header predicate.
type HeaderMatch struct {
	Name  string `yaml:"name"`
	Exact string `yaml:"exact,omitempty"`
	Regex string `yaml:"regex,omitempty"`
}

// QueryMatch is the YAML shape of a query-param predicate.
type QueryMatch struct {
	Name  string `yaml:"name"`
	Exact string `yaml:"exact,omitempty"`
	Regex string `yaml:"regex,omitempty"`
}

// Backend is one weighted backend target in the YAML config.
type Backend struct {
	Weight    int          `yaml:"weight"`
	Address   string       `yaml:"address,omitempty"`
	Namespace string       `yaml:"namespace,omitempty"`
	Name      string       `yaml:"name,omitempty"`
	Port      int          `yaml:"port,omitempty"`
	LLM       *LLM         `yaml:"llm,omitempty"`
	HTTP      BackendHTTP  `yaml:"http,omitempty"`
	Auth      *BackendAuth `yaml:"auth,omitempty"`
}

// BackendAuth selects exactly one upstream-credential scheme for a backend.
// At most one of these should be set; which one applies is a property of
// the provider the backend speaks to, not a runtime choice.
type BackendAuth struct {
	APIKey      *APIKeyAuth       `yaml:"apiKey,omitempty"`
	Azure       *AzureAuth        `yaml:"azure,omitempty"`
	AzureAPIKey *AzureAPIKeyAuth  `yaml:"azureApiKey,omitempty"`
	Gemini      *GeminiAPIKeyAuth `yaml:"geminiApiKey,omitempty"`
	AWS         *AWSAuth          `yaml:"aws,omitempty"`
}

// APIKeyAuth sends a static credential as a request header, the scheme
// OpenAI, Anthropic, and most other LLM APIs use for authentication.
type APIKeyAuth struct {
	Key    string `yaml:"key"`
	Header string `yaml:"header,omitempty"` // defaults to "Authorization" with a "Bearer " prefix
}

// AzureAuth configures Azure AD bearer-token authentication, either from a
// pre-obtained access token or dynamically via workload/managed identity.
type AzureAuth struct {
	AccessToken        string `yaml:"accessToken,omitempty"`
	UseManagedIdentity bool   `yaml:"useManagedIdentity,omitempty"`
	ClientID           string `yaml:"clientId,omitempty"`
	TenantID           string `yaml:"tenantId,omitempty"`
}

// AzureAPIKeyAuth sends a static key on Azure OpenAI's "api-key" header.
type AzureAPIKeyAuth struct {
	Key string `yaml:"key"`
}

// GeminiAPIKeyAuth appends the key as a "?key=" query parameter, Gemini's
// one departure from header-based API key auth.
type GeminiAPIKeyAuth struct {
	Key string `yaml:"key"`
}

// AWSAuth configures SigV4 request signing for AWS Bedrock.
type AWSAuth struct {
	Region             string `yaml:"region"`
	CredentialFileName string `yaml:"credentialFile,omitempty"`
}

// LLM names which provider dialect a backend speaks and the connection
// details needed to reach it.
type LLM struct {
	Provider     string            `yaml:"provider"`
	Model        string            `yaml:"model,omitempty"`
	ModelAliases map[string]string `yaml:"modelAliases,omitempty"`
	Host         string            `yaml:"host,omitempty"`
	APIVersion   string            `yaml:"apiVersion,omitempty"`
	Deployment   string            `yaml:"deployment,omitempty"`
	ProjectID    string            `yaml:"projectId,omitempty"`
	Region       string            `yaml:"region,omitempty"`
	Anthropic    bool              `yaml:"anthropic,omitempty"`
}

// AuthMode is the Strict/Optional/Permissive enforcement level shared by
// basic auth and JWT policy steps.
type AuthMode string

const (
	AuthModeOptional   AuthMode = "optional"
	AuthModeStrict     AuthMode = "strict"
	AuthModePermissive AuthMode = "permissive"
)

type JWTPolicy struct {
	Issuer    string   `yaml:"issuer"`
	JWKSURI   string   `yaml:"jwksUri"`
	Audiences []string `yaml:"audiences"`
	Mode      AuthMode `yaml:"mode,omitempty"`
}

type BasicAuthPolicy struct {
	HtpasswdPath string   `yaml:"htpasswdPath"`
	Mode         AuthMode `yaml:"mode,omitempty"`
}

type RBACRule struct {
	Allow      bool     `yaml:"allow"`
	Principals []string `yaml:"principals,omitempty"`
	Methods    []string `yaml:"methods,omitempty"`
	Paths      []string `yaml:"paths,omitempty"`
}

type RBACPolicy struct {
	Rules []RBACRule `yaml:"rules"`
}

type CSRFPolicy struct {
	AdditionalOrigins []string `yaml:"additionalOrigins,omitempty"`
}

type RewritePolicy struct {
	PathPrefix    string            `yaml:"pathPrefix,omitempty"`
	HostRewrite   string            `yaml:"hostRewrite,omitempty"`
	SetHeaders    map[string]string `yaml:"setHeaders,omitempty"`
	RemoveHeaders []string          `yaml:"removeHeaders,omitempty"`
}

// Policy bundles the per-route policy configuration.
type Policy struct {
	JWT       *JWTPolicy       `yaml:"jwt,omitempty"`
	BasicAuth *BasicAuthPolicy `yaml:"basicAuth,omitempty"`
	RBAC      *RBACPolicy      `yaml:"rbac,omitempty"`
	CSRF      *CSRFPolicy      `yaml:"csrf,omitempty"`
	Rewrite   *RewritePolicy   `yaml:"rewrite,omitempty"`
}

// EvictionPolicy is the YAML shape of outlier detection for a rule's
// backends. Fields left unset fall back to Defaults below.
type EvictionPolicy struct {
	UnhealthyExpression string        `yaml:"unhealthyExpression,omitempty"`
	EvictionDuration    time.Duration `yaml:"evictionDuration,omitempty"`
	HealthThreshold     float64       `yaml:"healthThreshold,omitempty"`
	HealthOnUnevict     float64       `yaml:"healthOnUnevict,omitempty"`
}

const (
	DefaultEvictionDuration = 30 * time.Second
	DefaultHealthThreshold  = 0.5
	DefaultHealthOnUnevict  = 1.0
	// DefaultEWMAAlpha records the smoothing factor of the endpoint health
	// EWMA (health starts at 1.0). The eviction package applies its own
	// constant eviction.Alpha, of the same value, and does not read this
	// one; EvictionPolicy has no alpha field.
	DefaultEWMAAlpha = 0.25
)

// Rule is one YAML route rule.
type Rule struct {
	Hostnames []string      `yaml:"hostnames,omitempty"`
	Path      *PathMatch    `yaml:"path,omitempty"`
	Methods   []string      `yaml:"methods,omitempty"`
	Headers   []HeaderMatch `yaml:"headers,omitempty"`
	Query     []QueryMatch  `yaml:"query,omitempty"`
	Backends  []Backend     `yaml:"backends"`
	Policy    *Policy       `yaml:"policy,omitempty"`
	Eviction  *EvictionPolicy `yaml:"eviction,omitempty"`
}

// Route is a named collection of rules, mirroring a Gateway API HTTPRoute.
type Route struct {
	Namespace string `yaml:"namespace"`
	Name      string `yaml:"name"`
	Rules     []Rule `yaml:"rules"`
}

// Config is the top-level static configuration file.
type Config struct {
	ListenAddr string  `yaml:"listenAddr"`
	Routes     []Route `yaml:"routes"`
	// DefaultEviction applies to any rule without its own Eviction block.
	DefaultEviction EvictionPolicy `yaml:"defaultEviction,omitempty"`
}

// Load reads and parses a YAML config file, then fills in defaults with
// FillDefaults before returning.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gwconfig: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("gwconfig: parsing %s: %w", path, err)
	}
	cfg.FillDefaults()
	return &cfg, nil
}

// FillDefaults applies the package-level eviction defaults to any policy
// left unset, in place.
func (c *Config) FillDefaults() {
	fillEviction(&c.DefaultEviction)
	for ri := range c.Routes {
		for rj := range c.Routes[ri].Rules {
			rule := &c.Routes[ri].Rules[rj]
			if rule.Eviction == nil {
				merged := c.DefaultEviction
				rule.Eviction = &merged
				continue
			}
			fillEviction(rule.Eviction)
		}
	}
}

func fillEviction(e *EvictionPolicy) {
	if e.EvictionDuration == 0 {
		e.EvictionDuration = DefaultEvictionDuration
	}
	if e.HealthThreshold == 0 {
		e.HealthThreshold = DefaultHealthThreshold
	}
	if e.HealthOnUnevict == 0 {
		e.HealthOnUnevict = DefaultHealthOnUnevict
	}
}
