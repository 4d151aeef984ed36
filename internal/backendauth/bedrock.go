// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package backendauth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/agentedge/gateway/internal/gwconfig"
)

// awsHandler implements [Handler] for AWS Bedrock SigV4 request signing.
type awsHandler struct {
	credentials aws.Credentials
	signer      *v4.Signer
	region      string
}

func newAWSHandler(ctx context.Context, auth *gwconfig.AWSAuth) (Handler, error) {
	if auth.Region == "" {
		return nil, missingField("aws.region")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(auth.Region)}
	if auth.CredentialFileName != "" {
		opts = append(opts, config.WithSharedCredentialsFiles([]string{auth.CredentialFileName}))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("backendauth: loading aws config: %w", err)
	}
	credentials, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("backendauth: retrieving aws credentials: %w", err)
	}
	return &awsHandler{credentials: credentials, signer: v4.NewSigner(), region: auth.Region}, nil
}

// Do implements [Handler.Do]. It signs the request in place: the caller
// must have already set the final URL, method, and body before calling, as
// the signature covers all three.
func (a *awsHandler) Do(ctx context.Context, req *http.Request, body []byte) error {
	payloadHash := sha256.Sum256(body)
	return a.signer.SignHTTP(ctx, a.credentials, req, hex.EncodeToString(payloadHash[:]), "bedrock", a.region, time.Now())
}

// BedrockHost returns the regional Bedrock runtime endpoint host a signed
// request must target; SigV4 signatures are bound to the host header, so
// this must match exactly what the request is sent to.
func BedrockHost(region string) string {
	return fmt.Sprintf("bedrock-runtime.%s.amazonaws.com", region)
}
