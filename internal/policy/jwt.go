// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package policy

import (
	"context"
	"errors"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/agentedge/gateway/internal/gwerrors"
	"github.com/agentedge/gateway/internal/gwtypes"
)

// JWTErrorKind classifies why a token failed verification (InvalidAudience,
// InvalidIssuer, ExpiredSignature, InvalidSignature) instead of a single
// opaque "invalid token" bucket.
type JWTErrorKind string

const (
	JWTErrorInvalidAudience   JWTErrorKind = "InvalidAudience"
	JWTErrorInvalidIssuer     JWTErrorKind = "InvalidIssuer"
	JWTErrorExpiredSignature  JWTErrorKind = "ExpiredSignature"
	JWTErrorInvalidSignature  JWTErrorKind = "InvalidSignature"
	JWTErrorMalformed         JWTErrorKind = "Malformed"
)

// JWTVerifyError carries the classified reason a token was rejected.
type JWTVerifyError struct {
	Kind JWTErrorKind
	Err  error
}

func (e *JWTVerifyError) Error() string { return string(e.Kind) + ": " + e.Err.Error() }
func (e *JWTVerifyError) Unwrap() error { return e.Err }

// JWTVerifier is the black-box collaborator that validates a bearer token
// against a JWKS/issuer/audience configuration and returns its claims.
// Concrete implementations (go-oidc here) are an external collaborator;
// the gateway only depends on this interface.
type JWTVerifier interface {
	Verify(ctx context.Context, policy *gwtypes.JWTPolicy, rawToken string) (claims map[string]any, err error)
}

// OIDCVerifier implements JWTVerifier against a coreos/go-oidc-backed
// remote key set, resolving one verifier per distinct issuer/audience
// policy and caching it for reuse.
type OIDCVerifier struct {
	providers map[string]*oidc.IDTokenVerifier
}

func NewOIDCVerifier() *OIDCVerifier {
	return &OIDCVerifier{providers: map[string]*oidc.IDTokenVerifier{}}
}

func (v *OIDCVerifier) verifierFor(p *gwtypes.JWTPolicy) *oidc.IDTokenVerifier {
	key := p.Issuer + "|" + strings.Join(p.Audiences, ",")
	if cached, ok := v.providers[key]; ok {
		return cached
	}
	keySet := oidc.NewRemoteKeySet(context.Background(), p.JWKSURI)
	cfg := &oidc.Config{SkipClientIDCheck: len(p.Audiences) == 0}
	verifier := oidc.NewVerifier(p.Issuer, keySet, cfg)
	v.providers[key] = verifier
	return verifier
}

func (v *OIDCVerifier) Verify(ctx context.Context, p *gwtypes.JWTPolicy, rawToken string) (map[string]any, error) {
	verifier := v.verifierFor(p)
	idToken, err := verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, classifyOIDCError(err)
	}
	if len(p.Audiences) > 0 && !audienceMatches(idToken.Audience, p.Audiences) {
		return nil, &JWTVerifyError{Kind: JWTErrorInvalidAudience, Err: errors.New("token audience not accepted")}
	}
	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, &JWTVerifyError{Kind: JWTErrorMalformed, Err: err}
	}
	return claims, nil
}

func audienceMatches(got []string, want []string) bool {
	for _, g := range got {
		for _, w := range want {
			if g == w {
				return true
			}
		}
	}
	return false
}

func classifyOIDCError(err error) *JWTVerifyError {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "expired"):
		return &JWTVerifyError{Kind: JWTErrorExpiredSignature, Err: err}
	case strings.Contains(msg, "issuer"):
		return &JWTVerifyError{Kind: JWTErrorInvalidIssuer, Err: err}
	case strings.Contains(msg, "audience"):
		return &JWTVerifyError{Kind: JWTErrorInvalidAudience, Err: err}
	case strings.Contains(msg, "signature"):
		return &JWTVerifyError{Kind: JWTErrorInvalidSignature, Err: err}
	default:
		return &JWTVerifyError{Kind: JWTErrorMalformed, Err: err}
	}
}

// JWTStep applies a JWTPolicy to a request's Authorization bearer token,
// honoring the same Strict/Optional/Permissive modes basic auth does: a
// missing token is rejected only in Strict mode, an invalid token is
// rejected unless the mode is Permissive.
type JWTStep struct {
	policy   *gwtypes.JWTPolicy
	verifier JWTVerifier
}

func NewJWTStep(p *gwtypes.JWTPolicy, verifier JWTVerifier) *JWTStep {
	return &JWTStep{policy: p, verifier: verifier}
}

func (j *JWTStep) Name() string { return "jwt" }

func (j *JWTStep) Apply(ctx context.Context, req *gwtypes.Request) (*Response, error) {
	token, ok := bearerToken(req.Header.Get("Authorization"))
	if !ok {
		if j.policy.Mode == gwtypes.AuthModeStrict {
			return nil, gwerrors.New(gwerrors.KindAuthMissing, "missing bearer token")
		}
		return nil, nil
	}

	claims, err := j.verifier.Verify(ctx, j.policy, token)
	if err != nil {
		if j.policy.Mode == gwtypes.AuthModePermissive {
			return nil, nil
		}
		var verr *JWTVerifyError
		if errors.As(err, &verr) {
			return nil, gwerrors.Wrap(gwerrors.KindAuthInvalid, string(verr.Kind), verr)
		}
		return nil, gwerrors.Wrap(gwerrors.KindAuthInvalid, "token verification failed", err)
	}
	req.Claims = claims
	return nil, nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
